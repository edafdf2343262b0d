package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID identifies venues and events. Seed data and AI output use numbers,
// the store uses uuids, so the wire accepts both and we keep a string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Platform is the ticketing service an event is sold through.
type Platform string

const (
	PlatformEventbrite Platform = "Eventbrite"
	PlatformDice       Platform = "Dice"
	PlatformPartiful   Platform = "Partiful"
	PlatformPosh       Platform = "Posh"
	PlatformOther      Platform = "Other"
)

var Platforms = []Platform{PlatformEventbrite, PlatformDice, PlatformPartiful, PlatformPosh, PlatformOther}

// ParsePlatform matches case-insensitively; anything unknown is Other.
func ParsePlatform(s string) Platform {
	s = strings.TrimSpace(s)
	for _, p := range Platforms {
		if strings.EqualFold(s, string(p)) {
			return p
		}
	}
	return PlatformOther
}

type Event struct {
	ID          ID       `json:"id"`
	VenueID     ID       `json:"venue_id,omitempty"`
	UserID      string   `json:"user_id,omitempty"`
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Platform    Platform `json:"platform"`
	Crowd       int      `json:"crowd"`
	Capacity    int      `json:"capacity"`
	Enjoyment   float64  `json:"enjoyment"`
	Venue       string   `json:"venue,omitempty"`
	Category    []string `json:"category,omitempty"`
}

type Venue struct {
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	UserID      string   `json:"user_id,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	Events      []Event  `json:"events"`
}

// FlattenEvents concatenates every venue's events in order, each tagged
// with the venue it belongs to.
func FlattenEvents(venues []Venue) []Event {
	var out []Event
	for _, v := range venues {
		for _, e := range v.Events {
			e.Venue = v.Name
			if e.VenueID == "" {
				e.VenueID = v.ID
			}
			out = append(out, e)
		}
	}
	return out
}
