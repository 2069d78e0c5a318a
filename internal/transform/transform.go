// Package transform maps raw upstream event records into normalized
// feed items. Failures are contained per event, per keyword, per image
// and per timestamp; one malformed record never aborts a batch.
package transform

import (
	"bytes"
	"context"
	"image"
	"strings"
	"time"
	"unicode"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"events_rss/internal/locations"
	"events_rss/internal/logger"
	"events_rss/internal/models"
	"events_rss/internal/resolve"
)

// ImageFetcher retrieves raw image bytes for enclosure metadata.
type ImageFetcher interface {
	Image(ctx context.Context, url string) ([]byte, error)
}

// Options are the static feature toggles applied to every event.
type Options struct {
	EventURLTemplate  string
	FetchImageData    bool
	IncludeCategories bool
	SkipSuperEvents   bool
}

type Transformer struct {
	Opts Options

	// EventBaseURL builds the item GUID: {base}/event/{id}.
	EventBaseURL string

	Images ImageFetcher
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Transform builds one feed item from a raw event record. The boolean
// reports whether an item was produced; skipped events (super events,
// records without a usable id or location) return false.
func (t *Transformer) Transform(ctx context.Context, event resolve.RawRecord, lang string, locs *locations.Set) (*models.Item, bool) {
	id, ok := resolve.ResolvePlain(event, "id")
	if !ok {
		logger.Log.Warn("Skipping event without id")
		return nil, false
	}
	log := logger.Log.WithField("event", id)

	if t.Opts.SkipSuperEvents {
		if kind, ok := resolve.ResolvePlain(event, "super_event_type"); ok && kind != "" {
			log.WithField("super_event_type", kind).Debug("Skipping super event")
			return nil, false
		}
	}

	locationID, _ := resolve.ResolvePlain(event, "location.@id")
	loc, ok := locs.Get(locationID)
	if !ok {
		log.WithField("location", locationID).Warn("Skipping event at unknown location")
		return nil, false
	}

	item := &models.Item{
		GUID: t.EventBaseURL + "/event/" + id,
	}

	if t.Opts.IncludeCategories {
		item.Categories = t.categories(event, lang, log)
	}

	item.Enclosure, item.Featured = t.image(ctx, event, log)

	eventURL := t.eventURL(event, lang, id, loc)
	item.Link = eventURL
	item.URL = eventURL

	title, _ := resolve.ResolveLocalized(event, "name", lang)
	item.Title = title
	item.XCalTitle = title

	description, _ := resolve.ResolveLocalized(event, "short_description", lang)
	item.Description = description
	item.Content = description

	item.Author = loc.Email
	item.Location = loc.Name
	item.LocationAddress = loc.StreetAddress
	item.LocationCity = loc.Locality

	organizer, ok := resolve.ResolveLocalized(event, "provider", lang)
	if !ok {
		organizer, _ = resolve.ResolveLocalized(event, "location.name", lang)
		if organizer == "" {
			organizer = loc.Name
		}
	}
	item.Organizer = organizer
	item.OrganizerURL, _ = resolve.ResolveLocalized(event, "info_url.name", lang)

	item.Cost, _ = resolve.Resolve(event,
		resolve.ParsePath("offers.*.price."+lang),
		resolve.ParsePath("offers.*.price"))

	item.PubDate = t.timestamp(event, "last_modified_time", log)
	item.DTStart = t.timestamp(event, "start_time", log)
	item.DTEnd = t.timestamp(event, "end_time", log)
	item.Event = models.EventMeta{Start: item.DTStart, End: item.DTEnd}

	return item, true
}

// categories extracts keyword categories. A keyword whose name does not
// resolve is dropped individually.
func (t *Transformer) categories(event resolve.RawRecord, lang string, log *logger.Entry) []models.Category {
	keywords, ok := resolve.Query(event, resolve.ParsePath("keywords"))
	if !ok {
		return nil
	}
	list, ok := keywords.([]any)
	if !ok {
		return nil
	}

	var out []models.Category
	for _, keyword := range list {
		name, ok := resolve.ResolveLocalized(keyword, "name", lang)
		if !ok {
			log.Debug("Dropping keyword without resolvable name")
			continue
		}
		domain, _ := resolve.ResolvePlain(keyword, "@id")
		out = append(out, models.Category{
			Content: capitalize(name),
			Domain:  domain,
		})
	}
	return out
}

// image builds the enclosure/featured pair from the first listed image.
// With data fetching enabled, any fetch or decode failure discards both;
// they are never emitted half-populated.
func (t *Transformer) image(ctx context.Context, event resolve.RawRecord, log *logger.Entry) (*models.Enclosure, *models.Image) {
	url, ok := resolve.String(event, resolve.ParsePath("images.*.url"))
	if !ok {
		return nil, nil
	}

	name, _ := resolve.String(event, resolve.ParsePath("images.*.name"))
	alt, _ := resolve.String(event, resolve.ParsePath("images.*.alt_text"))

	enclosure := &models.Enclosure{URL: url}
	featured := &models.Image{
		URL:         url,
		Title:       name,
		Link:        url,
		Description: alt,
	}

	if !t.Opts.FetchImageData {
		return enclosure, featured
	}

	data, err := t.Images.Image(ctx, url)
	if err != nil {
		log.WithField("image", url).Warnf("Image fetch failed: %v", err)
		return nil, nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		log.WithField("image", url).Warnf("Image decode failed: %v", err)
		return nil, nil
	}

	enclosure.Length = len(data)
	enclosure.Type = "image/" + format
	featured.Width = cfg.Width
	featured.Height = cfg.Height
	return enclosure, featured
}

// eventURL resolution order: configured template, localized event info
// URL, hosting location info URL.
func (t *Transformer) eventURL(event resolve.RawRecord, lang, id string, loc models.Location) string {
	if t.Opts.EventURLTemplate != "" {
		return strings.ReplaceAll(t.Opts.EventURLTemplate, "{id}", id)
	}
	if url, ok := resolve.ResolveLocalized(event, "info_url", lang); ok {
		return url
	}
	return loc.InfoURL
}

// timestamp parses one time field. A parse failure is logged and leaves
// the field absent without affecting the rest of the item.
func (t *Transformer) timestamp(event resolve.RawRecord, field string, log *logger.Entry) *time.Time {
	raw, ok := resolve.ResolvePlain(event, field)
	if !ok {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	log.WithField("field", field).Warnf("Failed to parse timestamp %q", raw)
	return nil
}

// capitalize upper-cases the first rune and lower-cases the rest, the
// display form used for category text.
func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
