// Package refresh calls the backend functions that scrape a live listings
// source and categorize it with AI. Every failure comes back as an error
// value so callers can keep showing what they already have.
package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"eventhub/pkg/models"
)

var (
	ErrRefreshFailed   = errors.New("refresh failed")
	ErrRateLimited     = errors.New("refresh rate limited")
	ErrPaymentRequired = errors.New("refresh payment required")
)

type Client struct {
	BaseURL   string // e.g. http://localhost:8080/functions
	ScrapeURL string // optional; the backend picks a default per platform
	Platform  string
	HTTP      *http.Client
}

func NewClient(baseURL, scrapeURL, platform string) *Client {
	if platform == "" {
		platform = "dice"
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ScrapeURL: scrapeURL,
		Platform:  platform,
		// scraping plus two model calls can take a while
		HTTP: &http.Client{Timeout: 90 * time.Second},
	}
}

type scrapeRequest struct {
	URL      string `json:"url,omitempty"`
	Platform string `json:"platform"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		Data     *struct {
			Markdown string `json:"markdown"`
		} `json:"data"`
	} `json:"data"`
}

func (r scrapeResponse) markdown() string {
	if r.Data.Data != nil && r.Data.Data.Markdown != "" {
		return r.Data.Data.Markdown
	}
	return r.Data.Markdown
}

type categorizeRequest struct {
	ScrapedContent string `json:"scrapedContent"`
}

// CategorizeResponse is the categorize-events wire shape.
type CategorizeResponse struct {
	Success           bool                     `json:"success"`
	Error             string                   `json:"error,omitempty"`
	CategorizedEvents models.CategorizedEvents `json:"categorizedEvents"`
	TopPopular        []models.Event           `json:"topPopular,omitempty"`
	AllEvents         []models.Event           `json:"allEvents,omitempty"`
}

// Refresh scrapes, then categorizes. Only the content categories are
// returned; the popular bucket is recomputed by the caller after merging.
func (c *Client) Refresh(ctx context.Context) (models.CategorizedEvents, error) {
	var scraped scrapeResponse
	if err := c.post(ctx, "scrape-events", scrapeRequest{URL: c.ScrapeURL, Platform: c.Platform}, &scraped); err != nil {
		return nil, err
	}
	if !scraped.Success {
		return nil, fmt.Errorf("%w: scrape-events: %s", ErrRefreshFailed, scraped.Error)
	}

	var categorized CategorizeResponse
	if err := c.post(ctx, "categorize-events", categorizeRequest{ScrapedContent: scraped.markdown()}, &categorized); err != nil {
		return nil, err
	}
	if !categorized.Success {
		return nil, fmt.Errorf("%w: categorize-events: %s", ErrRefreshFailed, categorized.Error)
	}

	out := make(models.CategorizedEvents, len(categorized.CategorizedEvents))
	for name, evs := range categorized.CategorizedEvents {
		if name == models.CategoryPopular {
			continue
		}
		out[name] = evs
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, fn string, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %s: encode: %w", ErrRefreshFailed, fn, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/"+fn, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %s: build request: %w", ErrRefreshFailed, fn, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: request: %w", ErrRefreshFailed, fn, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read body: %w", ErrRefreshFailed, fn, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s: %s", ErrRateLimited, fn, errorText(raw))
	case resp.StatusCode == http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s: %s", ErrPaymentRequired, fn, errorText(raw))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s: status %d: %s", ErrRefreshFailed, fn, resp.StatusCode, errorText(raw))
	}

	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%w: %s: decode: %w", ErrRefreshFailed, fn, err)
	}
	return nil
}

// errorText pulls "error" out of a JSON error body, or returns the body.
func errorText(raw []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &e) == nil && e.Error != "" {
		return e.Error
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
