// Package linkedevents is the client for the upstream event and place
// APIs, plus raw image fetching for enclosure metadata.
package linkedevents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"events_rss/internal/resolve"
)

// EventPage is one page of the upstream event listing. Data holds the
// raw event records; Next is the upstream next-page URL, empty on the
// last page.
type EventPage struct {
	Data []resolve.RawRecord
	Next string
}

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Events fetches one page of the event listing for a comma-joined
// location set.
func (c *Client) Events(ctx context.Context, locations string, page, days int, includeKeywords bool) (*EventPage, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("location", locations).
		SetQueryParam("days", strconv.Itoa(days)).
		SetQueryParam("sort", "start_time")
	if includeKeywords {
		req.SetQueryParam("include", "keywords")
	}
	if page > 1 {
		req.SetQueryParam("page", strconv.Itoa(page))
	}

	resp, err := req.Get("/event/")
	if err != nil {
		return nil, fmt.Errorf("event listing: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("event listing: unexpected status %d", resp.StatusCode())
	}

	var body struct {
		Data []any `json:"data"`
		Meta struct {
			Next *string `json:"next"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("event listing: %w", err)
	}

	out := &EventPage{Data: body.Data}
	if body.Meta.Next != nil {
		out.Next = *body.Meta.Next
	}
	return out, nil
}

// Place fetches one place record by its identifier. Any non-200 status
// is an error; the caller decides whether that fails the batch.
func (c *Client) Place(ctx context.Context, id string) (resolve.RawRecord, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/place/{id}/")
	if err != nil {
		return nil, fmt.Errorf("place %s: %w", id, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("place %s: unexpected status %d", id, resp.StatusCode())
	}

	var rec any
	if err := json.Unmarshal(resp.Body(), &rec); err != nil {
		return nil, fmt.Errorf("place %s: %w", id, err)
	}
	return rec, nil
}

// Image fetches raw image bytes from an absolute URL.
func (c *Client) Image(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("image %s: unexpected status %d", url, resp.StatusCode())
	}
	return resp.Body(), nil
}
