package render_test

import (
	"strings"
	"testing"
	"time"

	"events_rss/internal/models"
	"events_rss/internal/render"

	"github.com/stretchr/testify/require"
)

func helsinki(t *testing.T) *time.Location {
	t.Helper()
	tz, err := time.LoadLocation("Europe/Helsinki")
	require.NoError(t, err)
	return tz
}

func baseFeed() *models.Feed {
	built := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.Feed{
		Title:         "Keskustakirjasto",
		Link:          "https://feeds.example.org/events?location=tprek:123&preferred_language=fi",
		Description:   "Keskustakirjasto",
		PubDate:       built,
		LastBuildDate: built,
		TTL:           60,
	}
}

func TestRender_EndToEnd(t *testing.T) {
	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	feed := baseFeed()
	feed.Items = []models.Item{{
		Title:     "Konsertti",
		XCalTitle: "Konsertti",
		GUID:      "https://api.example.org/v1/event/helmet:1",
		DTStart:   &start,
		DTEnd:     &end,
		Event:     models.EventMeta{Start: &start, End: &end},
	}}

	out, err := render.Render(feed, helsinki(t))
	require.NoError(t, err)
	xml := string(out)

	require.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, xml, `<rss version="2.0" xmlns:ev="http://purl.org/rss/2.0/modules/event/" xmlns:xcal="urn:ietf:params:xml:ns:xcal">`)
	require.Contains(t, xml, "<title>Konsertti</title>")
	// 18:00 UTC is 21:00 in Helsinki (EEST, +3) on that date.
	require.Contains(t, xml, "<xcal:dtstart>2024-05-01T21:00:00</xcal:dtstart>")
	require.Contains(t, xml, "<xcal:dtend>2024-05-01T23:00:00</xcal:dtend>")
	require.Contains(t, xml, "<ev:startdate>2024-05-01T21:00:00</ev:startdate>")
	require.Contains(t, xml, `<guid isPermaLink="false">https://api.example.org/v1/event/helmet:1</guid>`)
	require.NotContains(t, xml, "<enclosure")
	require.NotContains(t, xml, "<xcal:featured")
	require.Contains(t, xml, "<generator>Linked Events RSS</generator>")
	require.Contains(t, xml, "<ttl>60</ttl>")
}

func TestRender_ChannelDatesRFC822(t *testing.T) {
	out, err := render.Render(baseFeed(), helsinki(t))
	require.NoError(t, err)

	// 12:00 UTC rendered in the display zone.
	require.Contains(t, string(out), "<pubDate>Wed, 01 May 2024 15:00:00 +0300</pubDate>")
	require.Contains(t, string(out), "<lastBuildDate>Wed, 01 May 2024 15:00:00 +0300</lastBuildDate>")
}

func TestRender_SingleEscape(t *testing.T) {
	feed := baseFeed()
	feed.Items = []models.Item{{Title: `<a>&`}}

	out, err := render.Render(feed, helsinki(t))
	require.NoError(t, err)

	require.Contains(t, string(out), "<title>&lt;a&gt;&amp;</title>")
	require.NotContains(t, string(out), "&amp;lt;")
}

func TestRender_StripsIllegalCodePoints(t *testing.T) {
	feed := baseFeed()
	feed.Items = []models.Item{{Title: "Kon\x00ser\x08tti", Description: "tab\tok"}}

	out, err := render.Render(feed, helsinki(t))
	require.NoError(t, err)

	require.Contains(t, string(out), "<title>Konsertti</title>")
	// Tab is legal and survives.
	require.Contains(t, string(out), "tab\tok")
	require.NotContains(t, string(out), "\x00")
}

func TestRender_SkipsEmptyOptionalElements(t *testing.T) {
	feed := baseFeed()
	feed.Items = []models.Item{{Title: "Konsertti"}}

	out, err := render.Render(feed, helsinki(t))
	require.NoError(t, err)
	xml := string(out)

	require.Contains(t, xml, "<item>")
	item := xml[strings.Index(xml, "<item>"):]
	for _, tag := range []string{"<link>", "<description>", "<author>", "<xcal:cost>", "<xcal:organizer>", "<pubDate>", "<guid", "<category", "<xcal:categories>"} {
		require.NotContains(t, item, tag)
	}
	require.Contains(t, item, "<title>Konsertti</title>")
}

func TestRender_PlaceholderEnclosureKeptWhole(t *testing.T) {
	feed := baseFeed()
	feed.Items = []models.Item{{
		Title:     "Konsertti",
		Enclosure: &models.Enclosure{URL: "https://img.example.org/1.jpg"},
		Featured:  &models.Image{URL: "https://img.example.org/1.jpg", Link: "https://img.example.org/1.jpg"},
	}}

	out, err := render.Render(feed, helsinki(t))
	require.NoError(t, err)
	xml := string(out)

	require.Contains(t, xml, `<enclosure url="https://img.example.org/1.jpg" length="0" type=""></enclosure>`)
	require.Contains(t, xml, "<xcal:featured>")
	// Unfetched metadata is omitted, not rendered as zeros.
	require.NotContains(t, xml, "<width>")
	require.NotContains(t, xml, "<height>")
}

func TestRender_Categories(t *testing.T) {
	feed := baseFeed()
	feed.Items = []models.Item{{
		Title: "Konsertti",
		Categories: []models.Category{
			{Content: "Musiikki", Domain: "yso:p1808"},
			{Content: "Konsertit", Domain: "yso:p7969"},
		},
	}}

	out, err := render.Render(feed, helsinki(t))
	require.NoError(t, err)
	xml := string(out)

	require.Contains(t, xml, `<category domain="yso:p1808">Musiikki</category>`)
	require.Contains(t, xml, "<xcal:categories>")
	require.Contains(t, xml, `<xcal:category domain="yso:p7969">Konsertit</xcal:category>`)
}
