package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"eventhub/internal/venues"
	"eventhub/pkg/database"
	"eventhub/pkg/models"
)

// UnlistedVenue holds scraped events that came without a venue name.
const UnlistedVenue = "Unlisted venue"

// SaveToDatabase upserts scraped events, creating venues by name as
// needed. Events without a usable date are skipped. Returns how many
// events were written.
func SaveToDatabase(ctx context.Context, db *database.DB, evs []models.Event) (int, error) {
	repo := venues.NewRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	venueIDs := make(map[string]models.ID)
	written := 0
	for _, e := range evs {
		if e.Time == "" {
			e.Time = "TBA"
		}
		if err := e.Validate(); err != nil {
			log.Printf("[scraper] skip %q: %v", e.Name, err)
			continue
		}

		name := strings.TrimSpace(e.Venue)
		if name == "" {
			name = UnlistedVenue
		}
		key := strings.ToLower(name)
		vid, ok := venueIDs[key]
		if !ok {
			vid, err = repo.EnsureVenue(ctx, tx, name, "New York, NY")
			if err != nil {
				return 0, err
			}
			venueIDs[key] = vid
		}

		e.VenueID = vid
		if e.ID == "" {
			e.ID = StableID(e)
		}
		if err := repo.UpsertEvent(ctx, tx, e); err != nil {
			return 0, err
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return written, nil
}

// StableID derives an id from name and date so re-scrapes upsert the
// same row.
func StableID(e models.Event) models.ID {
	return models.ID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("eventhub:"+canonicalKey(e))).String())
}
