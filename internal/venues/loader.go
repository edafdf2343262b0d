package venues

import (
	"context"
	"fmt"
	"log"
	"strings"

	"eventhub/internal/seed"
	"eventhub/pkg/models"
)

// Store is the remote half of the adapter. Repo implements it.
type Store interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// Snapshot is one load of the venue set. Events is the flattened,
// venue-annotated list the categorizer consumes.
type Snapshot struct {
	Venues []models.Venue `json:"venues"`
	Events []models.Event `json:"events"`
}

// Loader combines the bundled baseline with whatever the store returns.
type Loader struct {
	Store  Store
	Logger *log.Logger
}

func NewLoader(store Store, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{Store: store, Logger: logger}
}

// Load always returns a usable snapshot. A non-nil error only reports
// that the store could not be read and the baseline was used alone.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	all := seed.Venues()

	remote, err := l.fetchRemote(ctx)
	if err != nil {
		l.Logger.Printf("[store] fetch failed, using baseline venues only: %v", err)
		return Snapshot{Venues: all, Events: models.FlattenEvents(all)}, err
	}

	l.warnCollisions(all, remote)
	all = append(all, remote...)
	return Snapshot{Venues: all, Events: models.FlattenEvents(all)}, nil
}

// LoadEvents satisfies events.EventLoader.
func (l *Loader) LoadEvents(ctx context.Context) ([]models.Event, error) {
	snap, err := l.Load(ctx)
	return snap.Events, err
}

func (l *Loader) fetchRemote(ctx context.Context) ([]models.Venue, error) {
	if l.Store == nil {
		return nil, nil
	}

	vs, err := l.Store.ListVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("venues: %w", err)
	}
	evs, err := l.Store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	index := make(map[models.ID]int, len(vs))
	for i := range vs {
		vs[i].Events = []models.Event{}
		index[vs[i].ID] = i
	}
	orphans := 0
	for _, e := range evs {
		i, ok := index[e.VenueID]
		if !ok {
			orphans++
			continue
		}
		vs[i].Events = append(vs[i].Events, e)
	}
	if orphans > 0 {
		l.Logger.Printf("[store] skipped %d events with unknown venue", orphans)
	}
	return vs, nil
}

// Seed and store venues are concatenated as-is; a shared id or name is
// only reported.
func (l *Loader) warnCollisions(baseline, remote []models.Venue) {
	ids := make(map[models.ID]bool, len(baseline))
	names := make(map[string]bool, len(baseline))
	for _, v := range baseline {
		ids[v.ID] = true
		names[strings.ToLower(v.Name)] = true
	}
	for _, v := range remote {
		if ids[v.ID] || names[strings.ToLower(v.Name)] {
			l.Logger.Printf("[store] warning: venue %q (%s) collides with a baseline venue", v.Name, v.ID)
		}
	}
}

// FindVenue looks a venue up by id in a snapshot.
func (s Snapshot) FindVenue(id models.ID) (models.Venue, bool) {
	for _, v := range s.Venues {
		if v.ID == id {
			return v, true
		}
	}
	return models.Venue{}, false
}
