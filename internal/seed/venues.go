// Package seed holds the bundled baseline venues. They are always shown,
// even when the store is unreachable.
package seed

import "eventhub/pkg/models"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VenueCoordinates maps a venue name to its map position.
var VenueCoordinates = map[string]Coordinates{
	"The Bush Dyke Bar": {Lat: 40.6892, Lng: -73.9857},
	"Cafe Erzulie":      {Lat: 40.6812, Lng: -73.9663},
}

func ev(id, name, date, time string, price float64, desc string, p models.Platform, crowd, capacity int, enjoyment float64) models.Event {
	return models.Event{
		ID:          models.ID(id),
		Name:        name,
		Date:        date,
		Time:        time,
		Price:       price,
		Description: desc,
		Platform:    p,
		Crowd:       crowd,
		Capacity:    capacity,
		Enjoyment:   enjoyment,
	}
}

var venues = []models.Venue{
	{
		ID:          "1",
		Name:        "The Bush Dyke Bar",
		Location:    "Brooklyn, NY • LGBTQ+ Friendly Venue",
		Description: "A welcoming community space hosting diverse events and entertainment",
		Events: []models.Event{
			ev("1", "Queer Comedy Night", "2025-08-02", "8:00 PM", 15, "Stand-up comedy featuring LGBTQ+ comedians", models.PlatformEventbrite, 85, 120, 4.4),
			ev("2", "Drag Bingo Extravaganza", "2025-08-05", "7:30 PM", 20, "Bingo night hosted by Brooklyn's finest drag queens", models.PlatformPartiful, 140, 150, 4.8),
			ev("3", "Karaoke & Cocktails", "2025-08-08", "9:00 PM", 10, "Sing your heart out with signature cocktails", models.PlatformPosh, 60, 100, 4.1),
			ev("4", "Pride Dance Party", "2025-08-12", "10:00 PM", 25, "DJ spinning house, pop, and pride anthems", models.PlatformDice, 210, 200, 4.9),
			ev("5", "Trivia Tuesday", "2025-08-15", "7:00 PM", 8, "Weekly trivia night with prizes and drinks", models.PlatformEventbrite, 45, 80, 3.9),
			ev("6", "Live Jazz & Blues", "2025-08-18", "8:30 PM", 18, "Local jazz musicians performing original pieces", models.PlatformDice, 70, 90, 4.6),
			ev("7", "Open Mic Night", "2025-08-22", "8:00 PM", 5, "Share your talent - music, poetry, comedy welcome", models.PlatformOther, 55, 90, 4.0),
			ev("8", "90s Throwback Party", "2025-08-25", "9:30 PM", 22, "Dancing to the best hits from the 90s", models.PlatformPosh, 175, 200, 4.5),
			ev("9", "Wine Tasting Event", "2025-08-28", "6:30 PM", 35, "Curated wine selection with cheese pairings", models.PlatformEventbrite, 30, 40, 4.2),
			ev("10", "Costume Contest", "2025-08-30", "9:00 PM", 15, "Best costume wins cash prize and bragging rights", models.PlatformPartiful, 95, 150, 4.3),
		},
	},
	{
		ID:          "2",
		Name:        "Cafe Erzulie",
		Location:    "Brooklyn, NY • Caribbean-Inspired Venue",
		Description: "Haitian-inspired cafe by day, cocktail bar by night with enchanting rhythms",
		Events: []models.Event{
			ev("11", "Drums Unlimited w Brian Richburg Jr", "2025-07-30", "8:00 PM", 15, "Live drumming performance featuring Brian Richburg Jr", models.PlatformDice, 90, 120, 4.7),
			ev("12", "Bathe", "2025-07-31", "9:00 PM", 28, "An immersive musical experience", models.PlatformDice, 110, 120, 4.5),
			ev("13", "The Voodis Experience", "2025-08-01", "8:00 PM", 0, "Free spiritual and musical journey", models.PlatformOther, 130, 150, 4.2),
			ev("14", "Open Format", "2025-08-02", "10:00 PM", 0, "DJ set featuring multiple music genres", models.PlatformPartiful, 160, 150, 4.4),
			ev("15", "Phony Ppl Live", "2025-08-04", "8:00 PM", 36, "Live performance by Brooklyn-based band Phony Ppl", models.PlatformDice, 150, 150, 4.9),
			ev("16", "Phony Ppl Live", "2025-08-05", "8:00 PM", 36, "Live performance by Brooklyn-based band Phony Ppl", models.PlatformDice, 145, 150, 4.8),
			ev("17", "Drums Unlimited w Anwar Marshall", "2025-08-06", "8:00 PM", 15, "Live drumming session with Anwar Marshall", models.PlatformDice, 80, 120, 4.6),
			ev("18", "Summer Jazz w Freelance", "2025-08-07", "8:00 PM", 15, "Jazz evening featuring the band Freelance", models.PlatformDice, 75, 120, 4.3),
			ev("19", "Vixen", "2025-08-08", "9:00 PM", 0, "Free night of music and entertainment", models.PlatformPosh, 120, 150, 4.1),
			ev("20", "Bare Chunes", "2025-08-09", "9:00 PM", 0, "Musical showcase featuring various artists", models.PlatformOther, 100, 150, 4.0),
		},
	},
}

// Venues returns a deep copy of the baseline, so callers may annotate
// events without touching the bundled data.
func Venues() []models.Venue {
	out := make([]models.Venue, len(venues))
	for i, v := range venues {
		v.Events = append([]models.Event(nil), v.Events...)
		out[i] = v
	}
	return out
}

// Events is the flat baseline event list, each tagged with its venue.
func Events() []models.Event {
	return models.FlattenEvents(Venues())
}
