package venues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"eventhub/pkg/database"
	"eventhub/pkg/models"
)

// Repo is the sql-backed event store.
type Repo struct {
	DB *database.DB
}

func NewRepo(db *database.DB) *Repo {
	return &Repo{DB: db}
}

const venueColumns = `id, name, location, description, lat, lng, user_id`

const eventColumns = `id, venue_id, user_id, name, date, time, price, description, platform, crowd, capacity, enjoyment`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (models.Venue, error) {
	var (
		v           models.Venue
		id          string
		description sql.NullString
		lat, lng    sql.NullFloat64
		userID      sql.NullString
	)
	if err := row.Scan(&id, &v.Name, &v.Location, &description, &lat, &lng, &userID); err != nil {
		return v, err
	}
	v.ID = models.ID(id)
	v.Description = description.String
	v.UserID = userID.String
	if lat.Valid && lng.Valid {
		v.Lat, v.Lng = &lat.Float64, &lng.Float64
	}
	v.Events = []models.Event{}
	return v, nil
}

// scanEvent reads numeric columns as text: postgres NUMERIC and some
// legacy rows come back as strings or null.
func scanEvent(row rowScanner) (models.Event, error) {
	var (
		e                models.Event
		id, venueID      string
		userID           sql.NullString
		price, enjoyment sql.NullString
		description      sql.NullString
		platform         sql.NullString
		crowd, capacity  sql.NullString
	)
	if err := row.Scan(
		&id, &venueID, &userID, &e.Name, &e.Date, &e.Time,
		&price, &description, &platform, &crowd, &capacity, &enjoyment,
	); err != nil {
		return e, err
	}
	e.ID = models.ID(id)
	e.VenueID = models.ID(venueID)
	e.UserID = userID.String
	e.Price = parseFloatOrZero(price)
	e.Description = description.String
	e.Platform = models.ParsePlatform(platform.String)
	e.Crowd = parseIntOrZero(crowd)
	e.Capacity = parseIntOrZero(capacity)
	e.Enjoyment = parseFloatOrZero(enjoyment)
	return e, nil
}

func parseFloatOrZero(ns sql.NullString) float64 {
	if !ns.Valid {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(ns.String), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseIntOrZero caps at MaxInt32 so oversized values cannot wrap negative.
func parseIntOrZero(ns sql.NullString) int {
	f := parseFloatOrZero(ns)
	switch {
	case f < 0:
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	}
	return int(f)
}

func (r *Repo) ListVenues(ctx context.Context) ([]models.Venue, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var out []models.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetVenue returns nil, nil when the venue is not in the store.
func (r *Repo) GetVenue(ctx context.Context, id string) (*models.Venue, error) {
	row := r.DB.QueryRowContext(ctx, r.DB.Rebind(`SELECT `+venueColumns+` FROM venues WHERE id = ?`), id)
	v, err := scanVenue(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return &v, nil
}

func (r *Repo) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	row := r.DB.QueryRowContext(ctx, r.DB.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// CreateVenue validates v, assigns an id when missing and inserts it.
func (r *Repo) CreateVenue(ctx context.Context, v *models.Venue) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if v.ID == "" {
		v.ID = models.ID(uuid.NewString())
	}
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO venues (id, name, location, description, lat, lng, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), string(v.ID), v.Name, v.Location, v.Description, nullFloat(v.Lat), nullFloat(v.Lng), nullString(v.UserID))
	if err != nil {
		return fmt.Errorf("insert venue: %w", err)
	}
	if v.Events == nil {
		v.Events = []models.Event{}
	}
	return nil
}

// CreateEvent validates e and inserts it under e.VenueID.
func (r *Repo) CreateEvent(ctx context.Context, e *models.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.VenueID == "" {
		return fmt.Errorf("%w: venue_id required", models.ErrValidation)
	}
	if e.ID == "" {
		e.ID = models.ID(uuid.NewString())
	}
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO events (id, venue_id, user_id, name, date, time, price, description, platform, crowd, capacity, enjoyment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), string(e.ID), string(e.VenueID), nullString(e.UserID), e.Name, e.Date, e.Time,
		e.Price, e.Description, string(e.Platform), e.Crowd, e.Capacity, e.Enjoyment)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// UpsertEvent writes a scraped event, replacing the listing fields of an
// existing row with the same id. Enjoyment belongs to ratings and is
// only set on insert.
func (r *Repo) UpsertEvent(ctx context.Context, tx *sql.Tx, e models.Event) error {
	_, err := tx.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO events (id, venue_id, name, date, time, price, description, platform, crowd, capacity, enjoyment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			date = excluded.date,
			time = excluded.time,
			price = excluded.price,
			description = excluded.description,
			platform = excluded.platform,
			crowd = excluded.crowd,
			capacity = excluded.capacity
	`), string(e.ID), string(e.VenueID), e.Name, e.Date, e.Time,
		e.Price, e.Description, string(e.Platform), e.Crowd, e.Capacity, e.Enjoyment)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, err)
	}
	return nil
}

// EnsureVenue returns the id of the venue with the given name, creating
// it when missing.
func (r *Repo) EnsureVenue(ctx context.Context, tx *sql.Tx, name, location string) (models.ID, error) {
	var id string
	err := tx.QueryRowContext(ctx, r.DB.Rebind(`SELECT id FROM venues WHERE LOWER(name) = LOWER(?) LIMIT 1`), name).Scan(&id)
	switch {
	case err == nil:
		return models.ID(id), nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("lookup venue %q: %w", name, err)
	}

	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO venues (id, name, location, description)
		VALUES (?, ?, ?, '')
	`), id, name, location); err != nil {
		return "", fmt.Errorf("insert venue %q: %w", name, err)
	}
	return models.ID(id), nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
