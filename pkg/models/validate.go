package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation failed")

const (
	maxVenueName     = 100
	maxVenueLocation = 200
	maxEventName     = 150
	maxDescription   = 500
)

// Validate trims the venue in place and rejects missing or oversized fields.
func (v *Venue) Validate() error {
	v.Name = strings.TrimSpace(v.Name)
	v.Location = strings.TrimSpace(v.Location)
	v.Description = strings.TrimSpace(v.Description)

	if v.Name == "" || v.Location == "" {
		return fmt.Errorf("%w: name and location are required", ErrValidation)
	}
	if len(v.Name) > maxVenueName {
		return fmt.Errorf("%w: name must be at most %d chars", ErrValidation, maxVenueName)
	}
	if len(v.Location) > maxVenueLocation {
		return fmt.Errorf("%w: location must be at most %d chars", ErrValidation, maxVenueLocation)
	}
	if len(v.Description) > maxDescription {
		return fmt.Errorf("%w: description must be at most %d chars", ErrValidation, maxDescription)
	}
	if v.Lat != nil && (*v.Lat < -90 || *v.Lat > 90) {
		return fmt.Errorf("%w: lat out of range", ErrValidation)
	}
	if v.Lng != nil && (*v.Lng < -180 || *v.Lng > 180) {
		return fmt.Errorf("%w: lng out of range", ErrValidation)
	}
	return nil
}

// Validate checks a new event before it reaches the store. Enjoyment is
// owned by ratings and is not checked here.
func (e *Event) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	e.Date = strings.TrimSpace(e.Date)
	e.Time = strings.TrimSpace(e.Time)
	e.Description = strings.TrimSpace(e.Description)
	e.Platform = ParsePlatform(string(e.Platform))

	if e.Name == "" || e.Date == "" || e.Time == "" {
		return fmt.Errorf("%w: name, date, and time are required", ErrValidation)
	}
	if len(e.Name) > maxEventName {
		return fmt.Errorf("%w: name must be at most %d chars", ErrValidation, maxEventName)
	}
	if len(e.Description) > maxDescription {
		return fmt.Errorf("%w: description must be at most %d chars", ErrValidation, maxDescription)
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if e.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if e.Crowd < 0 || e.Capacity < 0 {
		return fmt.Errorf("%w: crowd and capacity must be >= 0", ErrValidation)
	}
	return nil
}
