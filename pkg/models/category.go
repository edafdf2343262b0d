package models

const (
	CategoryQueer   = "NYC Queer Nightlife"
	CategoryMusic   = "Live Music & Jazz"
	CategoryDance   = "Dance & DJ Events"
	CategorySocial  = "Community & Social"
	CategoryCulture = "Black & Brown"
	CategoryPopular = "Top 25 Most Popular"
)

// TopPopularLimit is how many events the popular bucket holds.
const TopPopularLimit = 25

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Categories lists every bucket in display order. The popular bucket is
// computed from crowd size, the rest are content categories.
var Categories = []Category{
	{ID: "queer", Name: CategoryQueer, Icon: "🏳️‍🌈", Description: "LGBTQ+ friendly events, drag shows, pride parties"},
	{ID: "music", Name: CategoryMusic, Icon: "🎵", Description: "Concerts, jazz nights, live performances"},
	{ID: "dance", Name: CategoryDance, Icon: "💃", Description: "Dance parties, DJ sets, club nights"},
	{ID: "social", Name: CategorySocial, Icon: "🤝", Description: "Trivia, comedy, networking, open mics"},
	{ID: "culture", Name: CategoryCulture, Icon: "✊🏾", Description: "Afrobeats, reggae, Caribbean, Latin culture"},
	{ID: "popular", Name: CategoryPopular, Icon: "🔥", Description: "Highest attendance events this month"},
}

// ContentCategoryNames are the keyword/AI driven buckets, without popular.
func ContentCategoryNames() []string {
	out := make([]string, 0, len(Categories)-1)
	for _, c := range Categories {
		if c.Name != CategoryPopular {
			out = append(out, c.Name)
		}
	}
	return out
}

func CategoryByID(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func IsCategoryName(name string) bool {
	for _, c := range Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// CategorizedEvents maps a category name to its events.
type CategorizedEvents map[string][]Event

// Total counts entries across buckets; an event in two buckets counts twice.
func (c CategorizedEvents) Total() int {
	n := 0
	for _, evs := range c {
		n += len(evs)
	}
	return n
}
