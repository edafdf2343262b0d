package models

import "time"

type Rating struct {
	ID        int64     `json:"id"`
	EventID   ID        `json:"event_id"`
	UserID    string    `json:"user_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// RatingSummary feeds the guest analytics card. Breakdown is indexed by
// stars, highest first: Breakdown[0] counts 5-star ratings.
type RatingSummary struct {
	EventID   ID      `json:"event_id"`
	Count     int     `json:"count"`
	Average   float64 `json:"average"`
	Breakdown [5]int  `json:"breakdown"`
}
