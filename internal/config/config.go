package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var languagePattern = regexp.MustCompile(`^[a-z]{2}$`)

// Config holds the full runtime configuration. Values are read from the
// environment with the FEED_ prefix, e.g. FEED_LINKED_EVENTS_BASE_URL.
type Config struct {
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Upstream endpoints.
	FeedBaseURL         string `envconfig:"FEED_BASE_URL" required:"true"`
	LinkedEventsBaseURL string `envconfig:"LINKED_EVENTS_BASE_URL" required:"true"`
	DirectoryBaseURL    string `envconfig:"DIRECTORY_BASE_URL" required:"true"`

	// EventURLTemplate, when set, overrides per-event info URLs; the
	// literal {id} is replaced with the event identifier.
	EventURLTemplate string `envconfig:"EVENT_URL_TEMPLATE"`

	// Directory discovery: which consortium to enumerate and which
	// customData entry carries the Linked Events location id.
	ConsortiumID         string `envconfig:"CONSORTIUM" required:"true"`
	DirectoryLocationKey string `envconfig:"DIRECTORY_LOCATION_KEY" default:"linkedevents_id"`

	// Cache store. An empty DSN selects the in-process store.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// CacheTTL is surfaced as the channel <ttl> value, in minutes.
	CacheTTL int `envconfig:"CACHE_TTL" default:"60"`

	// Refresh scheduling.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"15m"`
	WorkerCount     int           `envconfig:"WORKER_COUNT" default:"4"`
	TaskTimeout     time.Duration `envconfig:"TASK_TIMEOUT" default:"30s"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`

	// Feature toggles.
	FetchImageData    bool `envconfig:"FETCH_IMAGE_DATA" default:"false"`
	IncludeCategories bool `envconfig:"INCLUDE_CATEGORIES" default:"false"`
	SkipSuperEvents   bool `envconfig:"SKIP_SUPER_EVENTS" default:"false"`

	// Languages the refresh job builds feeds for.
	Languages []string `envconfig:"LANGUAGES" default:"fi,sv,en"`

	// DisplayTimezone is the IANA zone used for all human-facing
	// timestamps in the feed, independent of the server clock.
	DisplayTimezone string `envconfig:"DISPLAY_TIMEZONE" default:"Europe/Helsinki"`

	// EventDays is the upstream listing window, in days.
	EventDays int `envconfig:"EVENT_DAYS" default:"31"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("feed", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks URL fields, scheduling bounds and the display timezone.
func (cfg *Config) Validate() error {
	for name, u := range map[string]string{
		"FEED_BASE_URL":          cfg.FeedBaseURL,
		"LINKED_EVENTS_BASE_URL": cfg.LinkedEventsBaseURL,
		"DIRECTORY_BASE_URL":     cfg.DirectoryBaseURL,
	} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return fmt.Errorf("invalid %s: %s", name, u)
		}
	}
	if cfg.RefreshInterval < time.Minute {
		return errors.New("refresh interval must be ≥ 1 minute")
	}
	if cfg.WorkerCount < 1 {
		return errors.New("worker count must be ≥ 1")
	}
	if cfg.TaskTimeout <= 0 {
		return errors.New("task timeout must be positive")
	}
	if len(cfg.Languages) == 0 {
		return errors.New("at least one language is required")
	}
	for _, lang := range cfg.Languages {
		if !languagePattern.MatchString(lang) {
			return fmt.Errorf("invalid language code: %s", lang)
		}
	}
	if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid display timezone: %s", cfg.DisplayTimezone)
	}
	if cfg.EventDays < 1 {
		return errors.New("event days must be ≥ 1")
	}
	return nil
}

// Location resolves the configured display timezone.
func (cfg *Config) Location() (*time.Location, error) {
	return time.LoadLocation(cfg.DisplayTimezone)
}
