// Package directory discovers the location universe from the library
// consortium directory service.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	http        *resty.Client
	consortium  string
	locationKey string
}

// NewClient builds a directory client. locationKey selects which
// customData entry carries the Linked Events location id.
func NewClient(baseURL, consortium, locationKey string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c, consortium: consortium, locationKey: locationKey}
}

type libraryPage struct {
	Total int `json:"total"`
	Items []struct {
		CustomData []struct {
			ID    string `json:"id"`
			Value string `json:"value"`
		} `json:"customData"`
	} `json:"items"`
}

// LocationIDs pages through the consortium directory with the explicit
// total/skip protocol and returns the deduplicated, sorted set of
// configured location identifiers.
func (c *Client) LocationIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	skip := 0

	for {
		req := c.http.R().
			SetContext(ctx).
			SetQueryParam("consortium", c.consortium).
			SetQueryParam("with", "customData")
		if skip > 0 {
			req.SetQueryParam("skip", strconv.Itoa(skip))
		}

		resp, err := req.Get("/library")
		if err != nil {
			return nil, fmt.Errorf("directory: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("directory: unexpected status %d", resp.StatusCode())
		}

		var page libraryPage
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, fmt.Errorf("directory: %w", err)
		}
		// An empty page terminates even when the reported total says
		// otherwise.
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			for _, data := range item.CustomData {
				if data.ID == c.locationKey && data.Value != "" {
					seen[data.Value] = struct{}{}
				}
			}
		}

		skip += len(page.Items)
		if skip >= page.Total {
			break
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
