package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"eventhub/pkg/models"
)

// DefaultPages are the listing pages scraped when a request names only
// a platform.
var DefaultPages = map[models.Platform]string{
	models.PlatformDice:       "https://dice.fm/browse/new_york",
	models.PlatformEventbrite: "https://www.eventbrite.com/d/ny--new-york/nightlife/",
	models.PlatformPartiful:   "https://partiful.com/discover/nyc",
	models.PlatformPosh:       "https://posh.vip/explore",
}

// maxPageText caps what we hand to the extractor.
const maxPageText = 60_000

// Extractor turns page text into events. The AI pipeline implements it.
type Extractor interface {
	Extract(ctx context.Context, content string) ([]models.Event, error)
}

// PageSource fetches an HTML listings page and reduces it to text.
type PageSource struct {
	URL       string
	Platform  models.Platform
	Client    *http.Client
	Extractor Extractor
}

func NewPageSource(url string, platform models.Platform, ex Extractor) *PageSource {
	return &PageSource{
		URL:       url,
		Platform:  platform,
		Client:    &http.Client{Timeout: 12 * time.Second},
		Extractor: ex,
	}
}

// PageURL resolves the page to scrape: an explicit url wins, then the
// platform default, then Dice.
func PageURL(url, platform string) string {
	if u := strings.TrimSpace(url); u != "" {
		return u
	}
	if u, ok := DefaultPages[models.ParsePlatform(platform)]; ok {
		return u
	}
	return DefaultPages[models.PlatformDice]
}

func (s *PageSource) Name() string { return "page:" + string(s.Platform) }

// FetchText downloads the page and returns its visible text, one block
// per line.
func (s *PageSource) FetchText(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("page: build request: %w", err)
	}
	req.Header.Set("User-Agent", "eventhub-scraper/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("page: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("page: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text, err := HTMLToText(resp.Body)
	if err != nil {
		return "", fmt.Errorf("page: parse: %w", err)
	}
	return text, nil
}

func (s *PageSource) FetchAll(ctx context.Context) ([]models.Event, error) {
	if s.Extractor == nil {
		return nil, errors.New("page: no extractor configured")
	}
	text, err := s.FetchText(ctx)
	if err != nil {
		return nil, err
	}
	evs, err := s.Extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("page: extract: %w", err)
	}
	for i := range evs {
		if evs[i].Platform == "" || evs[i].Platform == models.PlatformOther {
			evs[i].Platform = s.Platform
		}
	}
	return evs, nil
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true, "head": true, "template": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true, "footer": true,
}

// HTMLToText walks the parsed document and keeps visible text. Block
// elements start a new line, whitespace runs collapse, blank lines drop.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var raw strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			raw.WriteString(n.Data)
			raw.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			raw.WriteByte('\n')
		}
	}
	walk(doc)

	var out strings.Builder
	for _, line := range strings.Split(raw.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if out.Len()+len(line) > maxPageText {
			break
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return strings.TrimSpace(out.String()), nil
}
