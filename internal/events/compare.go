package events

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"eventhub/pkg/models"
)

type SortKey string

const (
	SortEnjoyment SortKey = "enjoyment"
	SortCrowd     SortKey = "crowd"
	SortCost      SortKey = "cost"
	SortRatio     SortKey = "ratio"
	SortDate      SortKey = "date"
	SortPrice     SortKey = "price"
)

// PlatformAll disables the platform filter.
const PlatformAll = "All"

// CostRatio is price per enjoyment point with one decimal. Unrated events
// have no ratio and render "N/A".
func CostRatio(price, enjoyment float64) string {
	r, ok := costRatio(price, enjoyment)
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(r, 'f', 1, 64)
}

func costRatio(price, enjoyment float64) (float64, bool) {
	if enjoyment <= 0 {
		return 0, false
	}
	r := price / enjoyment
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Round(r*10) / 10, true
}

// ComparisonRow is one line of the comparison table.
type ComparisonRow struct {
	models.Event
	CostRatio string `json:"cost_ratio"`
	Occupancy int    `json:"occupancy"`
	Full      bool   `json:"full"`
}

// Compare filters by platform and sorts for the comparison table. Unknown
// sort keys fall back to enjoyment. Sorting is stable.
func Compare(evs []models.Event, platform string, key SortKey) []ComparisonRow {
	platform = strings.TrimSpace(platform)
	rows := make([]ComparisonRow, 0, len(evs))
	for _, e := range evs {
		if platform != "" && !strings.EqualFold(platform, PlatformAll) && !strings.EqualFold(platform, string(e.Platform)) {
			continue
		}
		rows = append(rows, ComparisonRow{
			Event:     e,
			CostRatio: CostRatio(e.Price, e.Enjoyment),
			Occupancy: Occupancy(e),
			Full:      IsFull(e),
		})
	}

	slices.SortStableFunc(rows, func(a, b ComparisonRow) int {
		switch key {
		case SortCrowd:
			return b.Crowd - a.Crowd
		case SortCost:
			return cmpFloat(a.Price, b.Price)
		case SortRatio:
			ra, okA := costRatio(a.Price, a.Enjoyment)
			rb, okB := costRatio(b.Price, b.Enjoyment)
			switch {
			case okA && okB:
				return cmpFloat(ra, rb)
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		default:
			return cmpFloat(b.Enjoyment, a.Enjoyment)
		}
	})
	return rows
}

// SortVenueEvents orders a venue's events by date (default) or price,
// both ascending. Unparseable dates sort last.
func SortVenueEvents(evs []models.Event, key SortKey) []models.Event {
	out := slices.Clone(evs)
	slices.SortStableFunc(out, func(a, b models.Event) int {
		if key == SortPrice {
			return cmpFloat(a.Price, b.Price)
		}
		da, errA := time.Parse(time.DateOnly, a.Date)
		db, errB := time.Parse(time.DateOnly, b.Date)
		switch {
		case errA == nil && errB == nil:
			return da.Compare(db)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
		return 0
	})
	return out
}

// Occupancy is crowd as a percentage of capacity; 0 when capacity is unknown.
func Occupancy(e models.Event) int {
	if e.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(e.Crowd) / float64(e.Capacity) * 100))
}

// IsFull reports a sold-out event. Crowd may exceed capacity.
func IsFull(e models.Event) bool {
	return e.Capacity > 0 && e.Crowd >= e.Capacity
}

// Stats summarize a venue for the map overlay.
type Stats struct {
	TotalCrowd    int     `json:"total_crowd"`
	TotalCapacity int     `json:"total_capacity"`
	Occupancy     int     `json:"occupancy"`
	AvgEnjoyment  float64 `json:"avg_enjoyment"`
	AvgPrice      int     `json:"avg_price"`
}

func VenueStats(evs []models.Event) Stats {
	var s Stats
	if len(evs) == 0 {
		return s
	}
	var enjoyment, price float64
	for _, e := range evs {
		s.TotalCrowd += e.Crowd
		s.TotalCapacity += e.Capacity
		enjoyment += e.Enjoyment
		price += e.Price
	}
	if s.TotalCapacity > 0 {
		s.Occupancy = int(math.Round(float64(s.TotalCrowd) / float64(s.TotalCapacity) * 100))
	}
	n := float64(len(evs))
	s.AvgEnjoyment = math.Round(enjoyment/n*10) / 10
	s.AvgPrice = int(math.Round(price / n))
	return s
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
