// Package locations resolves requested location identifiers into
// enriched place records. One unresolvable place fails the whole batch:
// a feed that partially describes unknown places is worse than no feed.
package locations

import (
	"context"
	"fmt"
	"strings"

	"events_rss/internal/models"
	"events_rss/internal/resolve"
)

// PlaceNotFoundError names the location id that could not be resolved.
type PlaceNotFoundError struct {
	ID string
}

func (e *PlaceNotFoundError) Error() string {
	return fmt.Sprintf("place not found: %s", e.ID)
}

// PlaceFetcher is the slice of the upstream client the loader needs.
type PlaceFetcher interface {
	Place(ctx context.Context, id string) (resolve.RawRecord, error)
}

// Set holds the loaded locations keyed by their upstream @id, plus the
// request order for deterministic channel titles.
type Set struct {
	ByID  map[string]models.Location
	Order []string
}

// Get looks up a location by the @id reference found on event records.
func (s *Set) Get(id string) (models.Location, bool) {
	loc, ok := s.ByID[id]
	return loc, ok
}

// Names returns the display names in request order, skipping locations
// whose name did not resolve.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Order))
	for _, id := range s.Order {
		if name := s.ByID[id].Name; name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Load resolves a comma-joined id list in the given language. Any fetch
// or parse failure maps to PlaceNotFoundError for the offending id.
func Load(ctx context.Context, fetcher PlaceFetcher, ids, lang string) (*Set, error) {
	set := &Set{ByID: make(map[string]models.Location)}

	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, &PlaceNotFoundError{ID: id}
		}

		rec, err := fetcher.Place(ctx, id)
		if err != nil {
			return nil, &PlaceNotFoundError{ID: id}
		}

		aid, ok := resolve.ResolvePlain(rec, "@id")
		if !ok {
			return nil, &PlaceNotFoundError{ID: id}
		}

		name, _ := resolve.ResolveLocalized(rec, "name", lang)
		street, _ := resolve.ResolveLocalized(rec, "street_address", lang)
		locality, _ := resolve.ResolveLocalized(rec, "address_locality", lang)
		email, _ := resolve.ResolvePlain(rec, "email")
		infoURL, _ := resolve.ResolveLocalized(rec, "info_url", lang)

		set.ByID[aid] = models.Location{
			ID:            aid,
			Name:          name,
			StreetAddress: street,
			Locality:      locality,
			Email:         email,
			InfoURL:       infoURL,
		}
		set.Order = append(set.Order, aid)
	}

	return set, nil
}
