package ai

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"eventhub/pkg/models"
)

// UnwrapFences strips a ```json ... ``` wrapper that models like to add.
func UnwrapFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	if j := strings.LastIndex(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}

// number accepts 12, 12.5, "12.5", "$12", null, and anything else as 0.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = 0
	if len(b) == 0 || b[0] == 'n' {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		s = strings.TrimPrefix(strings.TrimSpace(s), "$")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = number(f)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = number(f)
	}
	return nil
}

// text accepts strings and numbers; anything else is empty.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			*t = text(strings.TrimSpace(s))
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*t = text(b)
	}
	return nil
}

// record is the loose shape a model hands back for one event.
type record struct {
	ID          models.ID `json:"id"`
	Name        text      `json:"name"`
	Date        text      `json:"date"`
	Time        text      `json:"time"`
	Price       number    `json:"price"`
	Description text      `json:"description"`
	Platform    text      `json:"platform"`
	Crowd       number    `json:"crowd"`
	Capacity    number    `json:"capacity"`
	Enjoyment   number    `json:"enjoyment"`
	Venue       text      `json:"venue"`
}

// toEvent applies the schema: no name means no event, negatives become
// zero, enjoyment is clamped to 0..5, unknown platforms become Other.
func (r record) toEvent() (models.Event, bool) {
	name := string(r.Name)
	if name == "" {
		return models.Event{}, false
	}
	return models.Event{
		ID:          r.ID,
		Name:        name,
		Date:        string(r.Date),
		Time:        string(r.Time),
		Price:       nonNegative(float64(r.Price)),
		Description: string(r.Description),
		Platform:    models.ParsePlatform(string(r.Platform)),
		Crowd:       count(float64(r.Crowd)),
		Capacity:    count(float64(r.Capacity)),
		Enjoyment:   math.Min(nonNegative(float64(r.Enjoyment)), 5),
		Venue:       string(r.Venue),
	}, true
}

func nonNegative(f float64) float64 {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// count converts a head count, capped at MaxInt32 so huge model
// answers cannot wrap negative.
func count(f float64) int {
	f = nonNegative(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ParseEvents decodes a JSON array of loose records. Elements that are
// not objects or have no name are dropped; a non-array yields nil.
func ParseEvents(raw []byte) []models.Event {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]models.Event, 0, len(items))
	for _, item := range items {
		var r record
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		if e, ok := r.toEvent(); ok {
			out = append(out, e)
		}
	}
	return out
}

// ValidateEvents runs caller-supplied events through the same schema as
// model output.
func ValidateEvents(evs []models.Event) []models.Event {
	out := make([]models.Event, 0, len(evs))
	for _, e := range evs {
		r := record{
			ID:          e.ID,
			Name:        text(strings.TrimSpace(e.Name)),
			Date:        text(strings.TrimSpace(e.Date)),
			Time:        text(strings.TrimSpace(e.Time)),
			Price:       number(e.Price),
			Description: text(strings.TrimSpace(e.Description)),
			Platform:    text(e.Platform),
			Crowd:       number(e.Crowd),
			Capacity:    number(e.Capacity),
			Enjoyment:   number(e.Enjoyment),
			Venue:       text(strings.TrimSpace(e.Venue)),
		}
		if v, ok := r.toEvent(); ok {
			v.VenueID = e.VenueID
			out = append(out, v)
		}
	}
	return out
}
