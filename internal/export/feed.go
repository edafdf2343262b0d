package export

import (
	"strconv"
	"strings"
	"time"

	"eventhub/internal/events"
	"eventhub/internal/scraper"
	"eventhub/pkg/models"
)

// FeedItems converts events into the feed format read by
// scraper.FeedSource. Slugs are unique within one call.
func FeedItems(evs []models.Event) []scraper.FeedItem {
	out := make([]scraper.FeedItem, 0, len(evs))
	seen := make(map[string]int, len(evs))
	for _, e := range evs {
		slug := Slugify(e.Name + " " + e.Date)
		if n := seen[slug]; n > 0 {
			seen[slug] = n + 1
			slug += "-" + strconv.Itoa(n+1)
		} else {
			seen[slug] = 1
		}

		out = append(out, scraper.FeedItem{
			Slug:           slug,
			Title:          e.Name,
			Venue:          e.Venue,
			StartsAt:       startsAt(e.Date, e.Time),
			Price:          strconv.FormatFloat(e.Price, 'f', -1, 64),
			TicketPlatform: string(e.Platform),
			Summary:        e.Description,
			Going:          strconv.Itoa(e.Crowd),
			Capacity:       strconv.Itoa(e.Capacity),
			Tags:           events.MatchingCategories(e),
		})
	}
	return out
}

// startsAt joins "2025-08-02" and "8:00 PM" as "2025-08-02T20:00". A
// time that does not parse leaves only the date.
func startsAt(date, clock string) string {
	t, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(clock)))
	if err != nil {
		return date
	}
	return date + "T" + t.Format("15:04")
}

func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "untitled"
	}
	return out
}
