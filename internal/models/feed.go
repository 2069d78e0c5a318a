// Package models defines the normalized feed entities produced by the
// pipeline. All types are plain values: built once during assembly,
// never mutated afterwards. Rendering to XML lives in internal/render.
package models

import "time"

// Location is one resolved place record, keyed upstream by its @id.
type Location struct {
	ID            string
	Name          string
	StreetAddress string
	Locality      string
	Email         string
	InfoURL       string
}

// Category pairs title-cased display text with the upstream keyword id.
type Category struct {
	Content string
	Domain  string
}

// Enclosure describes the item image as an RSS enclosure. Length and
// Type stay zero when image data fetching is disabled.
type Enclosure struct {
	URL    string
	Length int
	Type   string
}

// Image is the xcal featured image. Width and Height are zero unless
// the image bytes were fetched and decoded. Image and Enclosure always
// appear together or not at all.
type Image struct {
	URL         string
	Title       string
	Link        string
	Description string
	Width       int
	Height      int
}

// EventMeta carries the event-module start/end timestamps, duplicating
// the flat xcal fields for consumers of either vocabulary.
type EventMeta struct {
	Start *time.Time
	End   *time.Time
}

// Item is one normalized event. GUID is the upstream event URL and is
// not a permalink. Start ≤ End is expected but not enforced; upstream
// data may violate it.
type Item struct {
	Title       string
	Link        string
	Description string
	Author      string
	Categories  []Category
	Enclosure   *Enclosure
	GUID        string
	PubDate     *time.Time

	// Flat xcal fields.
	XCalTitle       string
	Featured        *Image
	DTStart         *time.Time
	DTEnd           *time.Time
	Content         string
	URL             string
	Cost            string
	Location        string
	LocationAddress string
	LocationCity    string
	Organizer       string
	OrganizerURL    string

	Event EventMeta
}

// Feed is one assembled channel. Title and Description are the joined
// display names of the requested locations.
type Feed struct {
	Title         string
	Link          string
	Description   string
	Language      string
	PubDate       time.Time
	LastBuildDate time.Time
	TTL           int
	Items         []Item
}
