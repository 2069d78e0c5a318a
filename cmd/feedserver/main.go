package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"events_rss/internal/assemble"
	"events_rss/internal/cache"
	"events_rss/internal/config"
	"events_rss/internal/directory"
	"events_rss/internal/linkedevents"
	"events_rss/internal/logger"
	"events_rss/internal/middleware"
	"events_rss/internal/render"
	"events_rss/internal/scheduler"
	"events_rss/internal/server"
	"events_rss/internal/transform"
)

func main() {
	logger.Init()
	defer logger.Log.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Config load error: %v", err)
	}

	displayTZ, err := cfg.Location()
	if err != nil {
		logger.Log.Fatalf("Display timezone error: %v", err)
	}

	// Cache store: shared Postgres when configured, in-process otherwise.
	var store cache.Store
	if cfg.PostgresDSN != "" {
		pgStore, err := cache.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Log.Fatalf("Cache store error: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		logger.Log.Warn("No Postgres DSN configured, using in-process cache store")
		store = cache.NewMemoryStore()
	}

	events := linkedevents.NewClient(cfg.LinkedEventsBaseURL, cfg.UpstreamTimeout)

	assembler := &assemble.Assembler{
		Client: events,
		Transformer: &transform.Transformer{
			Opts: transform.Options{
				EventURLTemplate:  cfg.EventURLTemplate,
				FetchImageData:    cfg.FetchImageData,
				IncludeCategories: cfg.IncludeCategories,
				SkipSuperEvents:   cfg.SkipSuperEvents,
			},
			EventBaseURL: cfg.LinkedEventsBaseURL,
			Images:       events,
		},
		FeedBaseURL: cfg.FeedBaseURL,
		TTL:         cfg.CacheTTL,
		Days:        cfg.EventDays,
	}

	refresh := &scheduler.Scheduler{
		Directory: directory.NewClient(cfg.DirectoryBaseURL, cfg.ConsortiumID,
			cfg.DirectoryLocationKey, cfg.UpstreamTimeout),
		Build: func(taskCtx context.Context, id, lang string) ([]byte, error) {
			feed, err := assembler.Assemble(taskCtx, id, lang)
			if err != nil {
				return nil, err
			}
			return render.Render(feed, displayTZ)
		},
		Store:       store,
		Languages:   cfg.Languages,
		Interval:    cfg.RefreshInterval,
		Workers:     cfg.WorkerCount,
		TaskTimeout: cfg.TaskTimeout,
	}
	go refresh.Run(ctx)

	srv := server.NewServer(store)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", srv.GetFeed)
	mux.HandleFunc("GET /status", srv.Status)
	mux.Handle("GET /metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: middleware.RequestID(middleware.Logging(mux)),
	}
	go func() {
		logger.Log.Infof("Starting HTTP server on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Log.Fatalf("Forced shutdown: %v", err)
	}
}
