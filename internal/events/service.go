package events

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"eventhub/pkg/models"
)

// EventLoader yields the flat event list (baseline plus store).
type EventLoader interface {
	LoadEvents(ctx context.Context) ([]models.Event, error)
}

// Refresher fetches freshly scraped and categorized events.
type Refresher interface {
	Refresh(ctx context.Context) (models.CategorizedEvents, error)
}

// Broadcaster pushes a JSON message to live clients.
type Broadcaster interface {
	BroadcastJSON(v any)
}

// Update is pushed to websocket clients when the categorized set changes.
type Update struct {
	Type   string         `json:"type"`
	Added  int            `json:"added"`
	Counts map[string]int `json:"counts"`
	At     time.Time      `json:"at"`
}

// Service owns the discovery state. The categorized map is replaced
// wholesale on every change and never mutated after publication, so
// readers may hold on to what Categorized returns.
type Service struct {
	loader    EventLoader
	refresher Refresher
	hub       Broadcaster
	logger    *log.Logger

	mu        sync.RWMutex
	state     models.CategorizedEvents
	events    []models.Event
	updatedAt time.Time

	inflight singleflight.Group
}

func NewService(loader EventLoader, refresher Refresher, hub Broadcaster, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		loader:    loader,
		refresher: refresher,
		hub:       hub,
		logger:    logger,
		state:     Categorize(nil),
	}
}

// Reload rebuilds the categorized set from the store adapter. A degraded
// load (store down) still categorizes whatever came back.
func (s *Service) Reload(ctx context.Context) error {
	evs, err := s.loader.LoadEvents(ctx)
	if err != nil {
		s.logger.Printf("[discover] load degraded: %v", err)
	}
	next := Categorize(evs)

	s.mu.Lock()
	s.state = next
	s.events = evs
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()
	return err
}

func (s *Service) Categorized() models.CategorizedEvents {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events
}

func (s *Service) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// refreshTimeout bounds a shared refresh once it no longer follows any
// single caller's context.
const refreshTimeout = 2 * time.Minute

// Refresh pulls live data and merges it into the current set. On failure
// the current set is kept and the error returned. Concurrent callers
// share a single upstream call, which keeps running when the caller that
// started it goes away; each caller stops waiting when its own ctx ends.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	ch := s.inflight.DoChan("refresh", func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refresh(shared)
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

func (s *Service) refresh(ctx context.Context) (int, error) {
	incoming, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.logger.Printf("[discover] refresh failed, keeping current events: %v", err)
		return 0, err
	}
	if len(incoming) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	before := contentTotal(s.state)
	next := Merge(s.state, incoming)
	next[models.CategoryPopular] = TopPopular(popularPool(next), models.TopPopularLimit)
	s.state = next
	s.updatedAt = time.Now().UTC()
	s.mu.Unlock()

	added := contentTotal(next) - before
	if s.hub != nil {
		s.hub.BroadcastJSON(Update{
			Type:   "events.refreshed",
			Added:  added,
			Counts: counts(next),
			At:     time.Now().UTC(),
		})
	}
	return added, nil
}

// popularPool lists every distinct event of a categorized set, current
// popular events first so crowd ties keep their previous order.
func popularPool(c models.CategorizedEvents) []models.Event {
	names := []string{models.CategoryPopular}
	names = append(names, models.ContentCategoryNames()...)
	names = append(names, extraCategories(c)...)

	seen := make(map[string]struct{})
	var out []models.Event
	for _, name := range names {
		for _, e := range c[name] {
			key := string(e.ID)
			if key == "" {
				key = "|" + e.Name + "|" + e.Date
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

func contentTotal(c models.CategorizedEvents) int {
	return c.Total() - len(c[models.CategoryPopular])
}

func counts(c models.CategorizedEvents) map[string]int {
	out := make(map[string]int, len(c))
	for name, evs := range c {
		out[name] = len(evs)
	}
	return out
}
