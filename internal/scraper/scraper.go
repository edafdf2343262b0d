package scraper

import (
	"context"
	"log"
	"slices"
	"strings"
	"unicode"

	"eventhub/pkg/models"
)

// Source is implemented by each listings source (live page, JSON feed).
// Each source maps its own format into models.Event.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.Event, error)
}

// Aggregator pulls every source and folds duplicates together.
type Aggregator struct {
	Sources []Source
}

func NewAggregator(sources ...Source) *Aggregator {
	return &Aggregator{Sources: sources}
}

// FetchAndMerge returns the union of all sources in first-seen order.
// Two listings are the same event when their normalized name and date
// match. A failing source is logged and skipped.
func (a *Aggregator) FetchAndMerge(ctx context.Context) ([]models.Event, error) {
	var out []models.Event
	index := make(map[string]int)

	for _, src := range a.Sources {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		log.Printf("[scraper] fetching from %s", src.Name())
		evs, err := src.FetchAll(ctx)
		if err != nil {
			log.Printf("[scraper] source %s error: %v", src.Name(), err)
			continue
		}
		log.Printf("[scraper] %s returned %d events", src.Name(), len(evs))

		for _, e := range evs {
			key := canonicalKey(e)
			if key == "" {
				continue
			}
			if i, ok := index[key]; ok {
				out[i] = mergeEvent(out[i], e)
				continue
			}
			index[key] = len(out)
			out = append(out, e)
		}
	}
	return out, nil
}

func canonicalKey(e models.Event) string {
	name := normalizeKey(e.Name)
	if name == "" {
		return ""
	}
	return name + "|" + strings.TrimSpace(e.Date)
}

// normalizeKey lowercases s, keeps letters and digits, and collapses
// everything else to single spaces.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))

	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteRune(' ')
			prevSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// mergeEvent resolves two listings of the same event:
//
//   - identity (id, name, date) stays with base
//   - empty text fields are filled from incoming, longer description wins
//   - a known platform beats Other
//   - crowd and capacity take the maximum, price the first non-zero
//   - categories are unioned
func mergeEvent(base, incoming models.Event) models.Event {
	if base.ID == "" {
		base.ID = incoming.ID
	}
	if base.Time == "" {
		base.Time = incoming.Time
	}
	if base.Venue == "" {
		base.Venue = incoming.Venue
	}
	if len(incoming.Description) > len(base.Description) {
		base.Description = incoming.Description
	}
	if base.Platform == "" || base.Platform == models.PlatformOther {
		base.Platform = incoming.Platform
	}
	base.Crowd = max(base.Crowd, incoming.Crowd)
	base.Capacity = max(base.Capacity, incoming.Capacity)
	if base.Price == 0 {
		base.Price = incoming.Price
	}
	if base.Enjoyment == 0 {
		base.Enjoyment = incoming.Enjoyment
	}
	for _, c := range incoming.Category {
		if !slices.Contains(base.Category, c) {
			base.Category = append(base.Category, c)
		}
	}
	return base
}
