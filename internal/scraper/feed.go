package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventhub/pkg/models"
)

// FeedItem is one entry of the JSON listings feed served by
// cmd/mirror-server. Numbers arrive as strings.
type FeedItem struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	Venue          string   `json:"venue"`
	StartsAt       string   `json:"starts_at"` // 2006-01-02T15:04
	Price          string   `json:"price"`
	TicketPlatform string   `json:"ticket_platform"`
	Summary        string   `json:"summary"`
	Going          string   `json:"going"`
	Capacity       string   `json:"capacity"`
	Tags           []string `json:"tags"`
}

// FeedSource reads {BaseURL}/events.
type FeedSource struct {
	BaseURL string
	Client  *http.Client
}

func NewFeedSource(baseURL string) *FeedSource {
	return &FeedSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) FetchAll(ctx context.Context) ([]models.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []FeedItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("feed: decode json: %w", err)
	}

	out := make([]models.Event, 0, len(raw))
	for _, r := range raw {
		if r.Slug == "" || strings.TrimSpace(r.Title) == "" {
			continue
		}
		date, clock := splitStartsAt(r.StartsAt)
		out = append(out, models.Event{
			ID:          models.ID("feed-" + r.Slug),
			Name:        strings.TrimSpace(r.Title),
			Date:        date,
			Time:        clock,
			Price:       parseFloatOrZero(r.Price),
			Description: r.Summary,
			Platform:    models.ParsePlatform(r.TicketPlatform),
			Crowd:       parseIntOrZero(r.Going),
			Capacity:    parseIntOrZero(r.Capacity),
			Venue:       strings.TrimSpace(r.Venue),
			Category:    r.Tags,
		})
	}
	return out, nil
}

// splitStartsAt turns "2025-08-02T20:00" into ("2025-08-02", "8:00 PM").
// Anything unparsable keeps the date prefix and drops the time.
func splitStartsAt(s string) (string, string) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), t.Format("3:04 PM")
		}
	}
	if len(s) >= len(time.DateOnly) {
		return s[:len(time.DateOnly)], ""
	}
	return s, ""
}

func parseIntOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloatOrZero(s string) float64 {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
