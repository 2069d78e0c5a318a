// Package assemble builds one feed for a location set and language:
// loads the locations, pages through the upstream event listing, and
// fills in the channel metadata.
package assemble

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"events_rss/internal/linkedevents"
	"events_rss/internal/locations"
	"events_rss/internal/logger"
	"events_rss/internal/models"
	"events_rss/internal/transform"
)

// EventSource is the slice of the upstream client the assembler needs.
type EventSource interface {
	locations.PlaceFetcher
	Events(ctx context.Context, locations string, page, days int, includeKeywords bool) (*linkedevents.EventPage, error)
}

type Assembler struct {
	Client      EventSource
	Transformer *transform.Transformer

	FeedBaseURL string
	TTL         int
	Days        int
}

// Assemble produces the feed for a comma-joined location id list.
// Location loading is fail-fast; event pages accumulate until the
// upstream stops providing a parseable next-page cursor. Items keep
// upstream page order.
func (a *Assembler) Assemble(ctx context.Context, locationIDs, lang string) (*models.Feed, error) {
	locs, err := locations.Load(ctx, a.Client, locationIDs, lang)
	if err != nil {
		return nil, err
	}

	log := logger.Log.WithFields(map[string]interface{}{
		"locations": locationIDs,
		"language":  lang,
	})

	var items []models.Item
	page := 1
	for {
		eventPage, err := a.Client.Events(ctx, locationIDs, page, a.Days, a.Transformer.Opts.IncludeCategories)
		if err != nil {
			return nil, fmt.Errorf("assemble %s: %w", locationIDs, err)
		}

		for _, event := range eventPage.Data {
			if item, ok := a.Transformer.Transform(ctx, event, lang, locs); ok {
				items = append(items, *item)
			}
		}

		next, ok := nextPage(eventPage.Next, log)
		if !ok {
			break
		}
		page = next
	}

	names := strings.Join(locs.Names(), ", ")
	now := time.Now().UTC()

	return &models.Feed{
		Title: names,
		Link: fmt.Sprintf("%s/events?location=%s&preferred_language=%s",
			a.FeedBaseURL, locationIDs, lang),
		Description:   names,
		PubDate:       now,
		LastBuildDate: now,
		TTL:           a.TTL,
		Items:         items,
	}, nil
}

// nextPage extracts the page number from the upstream next-page URL.
// Upstream pagination anomalies are common; a missing or unparsable
// cursor ends traversal normally instead of failing the refresh.
func nextPage(next string, log *logger.Entry) (int, bool) {
	if next == "" {
		return 0, false
	}
	u, err := url.Parse(next)
	if err != nil {
		log.Warnf("Ignoring unparsable pagination cursor %q: %v", next, err)
		return 0, false
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		log.Warnf("Ignoring pagination cursor without page number: %q", next)
		return 0, false
	}
	return n, true
}

var _ EventSource = (*linkedevents.Client)(nil)
