// Package export moves events in and out of the store as CSV files and
// as the JSON feed that cmd/mirror-server serves.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"eventhub/pkg/models"
)

// EventColumns is the CSV header written by WriteEventsCSV.
var EventColumns = []string{
	"id", "venue_id", "venue", "name", "date", "time", "price",
	"platform", "crowd", "capacity", "enjoyment", "description",
}

func WriteEventsCSV(w io.Writer, evs []models.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EventColumns); err != nil {
		return err
	}
	for _, e := range evs {
		if err := cw.Write([]string{
			e.ID.String(),
			e.VenueID.String(),
			e.Venue,
			e.Name,
			e.Date,
			e.Time,
			strconv.FormatFloat(e.Price, 'f', -1, 64),
			string(e.Platform),
			strconv.Itoa(e.Crowd),
			strconv.Itoa(e.Capacity),
			strconv.FormatFloat(e.Enjoyment, 'f', -1, 64),
			e.Description,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEventsCSV reads a file with a header row. Columns are matched by
// name so their order does not matter; "name" is the only required one.
// Numbers that do not parse become zero.
func ReadEventsCSV(r io.Reader) ([]models.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, errors.New("csv: missing name column")
	}

	var out []models.Event
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		if get("name") == "" {
			continue
		}
		out = append(out, models.Event{
			ID:          models.ID(get("id")),
			VenueID:     models.ID(get("venue_id")),
			Venue:       get("venue"),
			Name:        get("name"),
			Date:        get("date"),
			Time:        get("time"),
			Price:       parseFloatOrZero(get("price")),
			Platform:    models.ParsePlatform(get("platform")),
			Crowd:       parseIntOrZero(get("crowd")),
			Capacity:    parseIntOrZero(get("capacity")),
			Enjoyment:   parseFloatOrZero(get("enjoyment")),
			Description: get("description"),
		})
	}
	return out, nil
}

func parseIntOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
