// Package scheduler periodically rebuilds the serialized feed cache for
// the discovered location universe. Cycles never overlap; tasks are
// isolated so one upstream outage cannot stall the rest of the refresh.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"events_rss/internal/cache"
	"events_rss/internal/logger"
	"events_rss/internal/metrics"
)

// Directory enumerates the location universe.
type Directory interface {
	LocationIDs(ctx context.Context) ([]string, error)
}

// BuildFunc runs the full pipeline for one location/language pair and
// returns the serialized feed.
type BuildFunc func(ctx context.Context, locationID, lang string) ([]byte, error)

type Scheduler struct {
	Directory Directory
	Build     BuildFunc
	Store     cache.Store

	Languages   []string
	Interval    time.Duration
	Workers     int
	TaskTimeout time.Duration

	active atomic.Bool
}

// Run refreshes once immediately, then on every interval tick until the
// context is cancelled. A tick that arrives while a cycle is still in
// flight is coalesced, so cycles from consecutive ticks never stack.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.Log.WithFields(map[string]interface{}{
		"service":  "refresh",
		"interval": s.Interval.String(),
	})

	s.startCycle(ctx, log)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.startCycle(ctx, log)
		case <-ctx.Done():
			log.Info("Stopping refresh scheduler by context")
			return
		}
	}
}

func (s *Scheduler) startCycle(ctx context.Context, log *logger.Entry) {
	if !s.active.CompareAndSwap(false, true) {
		log.Warn("Previous refresh cycle still running, skipping this tick")
		metrics.RefreshCyclesTotal.WithLabelValues("skipped").Inc()
		return
	}
	go func() {
		defer s.active.Store(false)
		s.cycle(ctx, log)
	}()
}

// RunOnce executes a single refresh cycle synchronously. Exposed for
// one-shot invocations and tests.
func (s *Scheduler) RunOnce(ctx context.Context) {
	log := logger.Log.WithField("service", "refresh")
	if !s.active.CompareAndSwap(false, true) {
		return
	}
	defer s.active.Store(false)
	s.cycle(ctx, log)
}

func (s *Scheduler) cycle(ctx context.Context, log *logger.Entry) {
	started := time.Now()

	ids, err := s.Directory.LocationIDs(ctx)
	if err != nil {
		// Previous cache entries stay valid until the next cycle.
		log.Errorf("Location discovery failed, aborting cycle: %v", err)
		metrics.RefreshCyclesTotal.WithLabelValues("discovery_failed").Inc()
		return
	}
	metrics.DiscoveredLocations.Set(float64(len(ids)))
	log.WithField("locations", len(ids)).Info("Starting refresh cycle")

	type task struct {
		id   string
		lang string
	}
	tasks := make(chan task)

	var wg sync.WaitGroup
	for i := 0; i < s.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tk := range tasks {
				s.refresh(ctx, tk.id, tk.lang, log)
			}
		}()
	}

feed:
	for _, id := range ids {
		for _, lang := range s.Languages {
			select {
			case tasks <- task{id: id, lang: lang}:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(tasks)
	wg.Wait()

	metrics.RefreshCyclesTotal.WithLabelValues("completed").Inc()
	metrics.RefreshCycleDuration.Observe(time.Since(started).Seconds())
	log.WithField("duration", time.Since(started).String()).Info("Refresh cycle finished")
}

// refresh rebuilds one cache entry under the per-task timeout. Failures
// are logged and contained; the stale entry, if any, stays readable.
func (s *Scheduler) refresh(ctx context.Context, id, lang string, log *logger.Entry) {
	taskCtx, cancel := context.WithTimeout(ctx, s.TaskTimeout)
	defer cancel()

	taskLog := log.WithFields(map[string]interface{}{
		"location": id,
		"language": lang,
	})

	body, err := s.Build(taskCtx, id, lang)
	if err != nil {
		taskLog.Warnf("Refresh task failed: %v", err)
		metrics.RefreshTasksTotal.WithLabelValues("failed").Inc()
		return
	}
	if err := s.Store.Set(taskCtx, cache.Key(id, lang), body); err != nil {
		taskLog.Warnf("Cache write failed: %v", err)
		metrics.RefreshTasksTotal.WithLabelValues("failed").Inc()
		return
	}

	taskLog.Debug("Cache entry refreshed")
	metrics.RefreshTasksTotal.WithLabelValues("ok").Inc()
}
