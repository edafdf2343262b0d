package events

import (
	"slices"
	"strings"

	"eventhub/pkg/models"
)

// Keywords drive local categorization. Matching is a lowercase substring
// test, so "live" also matches "delivery"; that is accepted.
var Keywords = map[string][]string{
	models.CategoryQueer:   {"queer", "lgbtq", "drag", "pride", "gay", "lesbian", "trans", "dyke", "vixen"},
	models.CategoryMusic:   {"jazz", "live", "band", "concert", "music", "drums", "blues", "acoustic"},
	models.CategoryDance:   {"dance", "dj", "party", "club", "house", "throwback", "90s", "disco"},
	models.CategorySocial:  {"trivia", "comedy", "open mic", "karaoke", "bingo", "networking", "wine", "tasting"},
	models.CategoryCulture: {"afro", "caribbean", "haitian", "reggae", "hip hop", "r&b", "soul", "funk", "voodoo", "chunes"},
}

// Categorize buckets events by keyword. An event lands in every content
// category it matches (possibly none), and the popular bucket holds the
// top events by crowd. The input slice is not modified.
func Categorize(evs []models.Event) models.CategorizedEvents {
	out := make(models.CategorizedEvents, len(models.Categories))
	names := models.ContentCategoryNames()
	for _, name := range names {
		out[name] = []models.Event{}
	}

	for _, e := range evs {
		text := searchText(e)
		for _, name := range names {
			if matchesAny(text, Keywords[name]) {
				out[name] = append(out[name], e)
			}
		}
	}

	out[models.CategoryPopular] = TopPopular(evs, models.TopPopularLimit)
	return out
}

// TopPopular returns up to limit events ordered by crowd, highest first.
// Ties keep their input order.
func TopPopular(evs []models.Event, limit int) []models.Event {
	sorted := slices.Clone(evs)
	if sorted == nil {
		sorted = []models.Event{}
	}
	slices.SortStableFunc(sorted, func(a, b models.Event) int {
		return b.Crowd - a.Crowd
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// MatchingCategories lists the content categories an event falls into,
// in display order.
func MatchingCategories(e models.Event) []string {
	text := searchText(e)
	var out []string
	for _, name := range models.ContentCategoryNames() {
		if matchesAny(text, Keywords[name]) {
			out = append(out, name)
		}
	}
	return out
}

func searchText(e models.Event) string {
	return strings.ToLower(e.Name + " " + e.Description + " " + e.Venue)
}

func matchesAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
