// Package render serializes an assembled feed into RSS 2.0 XML with the
// event-module (ev) and xcal extension namespaces.
package render

import (
	"encoding/xml"
	"strings"
	"time"

	"events_rss/internal/models"
)

const (
	eventNS = "http://purl.org/rss/2.0/modules/event/"
	xcalNS  = "urn:ietf:params:xml:ns:xcal"

	generator = "Linked Events RSS"
	docsURL   = "https://validator.w3.org/feed/docs/rss2.html"

	// Channel dates follow RFC 822; event dates use a local wall-clock
	// date+time layout required by the downstream feed consumer.
	rfc822Layout = "Mon, 02 Jan 2006 15:04:05 -0700"
	eventLayout  = "2006-01-02T15:04:05"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	EventNS string     `xml:"xmlns:ev,attr"`
	XCalNS  string     `xml:"xmlns:xcal,attr"`
	Channel channelXML `xml:"channel"`
}

type channelXML struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	PubDate       string    `xml:"pubDate,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Generator     string    `xml:"generator"`
	Docs          string    `xml:"docs"`
	TTL           int       `xml:"ttl"`
	Items         []itemXML `xml:"item"`
}

type itemXML struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link,omitempty"`
	Description string        `xml:"description,omitempty"`
	Author      string        `xml:"author,omitempty"`
	Categories  []categoryXML `xml:"category,omitempty"`
	Enclosure   *enclosureXML `xml:"enclosure,omitempty"`
	GUID        *guidXML      `xml:"guid,omitempty"`
	PubDate     string        `xml:"pubDate,omitempty"`

	XCalTitle       string             `xml:"xcal:title,omitempty"`
	Featured        *imageXML          `xml:"xcal:featured,omitempty"`
	DTStart         string             `xml:"xcal:dtstart,omitempty"`
	DTEnd           string             `xml:"xcal:dtend,omitempty"`
	Content         string             `xml:"xcal:content,omitempty"`
	URL             string             `xml:"xcal:url,omitempty"`
	Cost            string             `xml:"xcal:cost,omitempty"`
	XCalCategories  *xcalCategoriesXML `xml:"xcal:categories,omitempty"`
	Location        string             `xml:"xcal:location,omitempty"`
	LocationAddress string             `xml:"xcal:location-address,omitempty"`
	LocationCity    string             `xml:"xcal:location-city,omitempty"`
	Organizer       string             `xml:"xcal:organizer,omitempty"`
	OrganizerURL    string             `xml:"xcal:organizer-url,omitempty"`

	EvStart string `xml:"ev:startdate,omitempty"`
	EvEnd   string `xml:"ev:enddate,omitempty"`
}

type categoryXML struct {
	Domain  string `xml:"domain,attr,omitempty"`
	Content string `xml:",chardata"`
}

type xcalCategoriesXML struct {
	Categories []categoryXML `xml:"xcal:category"`
}

type enclosureXML struct {
	URL    string `xml:"url,attr"`
	Length int    `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type guidXML struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Content     string `xml:",chardata"`
}

type imageXML struct {
	URL         string `xml:"url,omitempty"`
	Title       string `xml:"title,omitempty"`
	Link        string `xml:"link,omitempty"`
	Width       int    `xml:"width,omitempty"`
	Height      int    `xml:"height,omitempty"`
	Description string `xml:"description,omitempty"`
}

// Render serializes feed into an RSS document with all human-facing
// timestamps expressed in tz. It performs no I/O; the input feed is not
// modified.
func Render(feed *models.Feed, tz *time.Location) ([]byte, error) {
	doc := rssXML{
		Version: "2.0",
		EventNS: eventNS,
		XCalNS:  xcalNS,
		Channel: channelXML{
			Title:         clean(feed.Title),
			Link:          clean(feed.Link),
			Description:   clean(feed.Description),
			Language:      clean(feed.Language),
			PubDate:       feed.PubDate.In(tz).Format(rfc822Layout),
			LastBuildDate: feed.LastBuildDate.In(tz).Format(rfc822Layout),
			Generator:     generator,
			Docs:          docsURL,
			TTL:           feed.TTL,
		},
	}

	for i := range feed.Items {
		doc.Channel.Items = append(doc.Channel.Items, renderItem(&feed.Items[i], tz))
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

func renderItem(item *models.Item, tz *time.Location) itemXML {
	out := itemXML{
		Title:           clean(item.Title),
		Link:            clean(item.Link),
		Description:     clean(item.Description),
		Author:          clean(item.Author),
		PubDate:         formatRFC822(item.PubDate, tz),
		XCalTitle:       clean(item.XCalTitle),
		DTStart:         formatEvent(item.DTStart, tz),
		DTEnd:           formatEvent(item.DTEnd, tz),
		Content:         clean(item.Content),
		URL:             clean(item.URL),
		Cost:            clean(item.Cost),
		Location:        clean(item.Location),
		LocationAddress: clean(item.LocationAddress),
		LocationCity:    clean(item.LocationCity),
		Organizer:       clean(item.Organizer),
		OrganizerURL:    clean(item.OrganizerURL),
		EvStart:         formatEvent(item.Event.Start, tz),
		EvEnd:           formatEvent(item.Event.End, tz),
	}

	for _, c := range item.Categories {
		out.Categories = append(out.Categories, categoryXML{
			Domain:  clean(c.Domain),
			Content: clean(c.Content),
		})
	}
	if len(out.Categories) > 0 {
		out.XCalCategories = &xcalCategoriesXML{Categories: out.Categories}
	}

	if item.Enclosure != nil {
		out.Enclosure = &enclosureXML{
			URL:    clean(item.Enclosure.URL),
			Length: item.Enclosure.Length,
			Type:   clean(item.Enclosure.Type),
		}
	}
	if item.Featured != nil {
		out.Featured = &imageXML{
			URL:         clean(item.Featured.URL),
			Title:       clean(item.Featured.Title),
			Link:        clean(item.Featured.Link),
			Width:       item.Featured.Width,
			Height:      item.Featured.Height,
			Description: clean(item.Featured.Description),
		}
	}
	if item.GUID != "" {
		out.GUID = &guidXML{IsPermaLink: "false", Content: clean(item.GUID)}
	}

	return out
}

func formatRFC822(t *time.Time, tz *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(tz).Format(rfc822Layout)
}

func formatEvent(t *time.Time, tz *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(tz).Format(eventLayout)
}

// clean removes code points that are illegal in XML 1.0: control
// characters other than tab/CR/LF, and the surrogate range. Escaping of
// the metacharacters is left to the marshaller so text is escaped
// exactly once.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		if legalXMLRune(r) {
			return r
		}
		return -1
	}, s)
}

func legalXMLRune(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
