package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"eventhub/pkg/database"
	"eventhub/pkg/models"
)

var ErrEventNotFound = errors.New("event not found")

type Repo struct {
	DB *database.DB
}

func NewRepo(db *database.DB) *Repo {
	return &Repo{DB: db}
}

// Rate records the user's score for an event, replacing an earlier one,
// and refreshes the event's enjoyment to the new average.
func (r *Repo) Rate(ctx context.Context, eventID, userID string, score int) (rating *models.Rating, err error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("%w: score must be between 1 and 5", models.ErrValidation)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rate: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx, r.DB.Rebind(`SELECT 1 FROM events WHERE id = ?`), eventID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup event: %w", err)
	}

	if _, err = tx.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO ratings (event_id, user_id, score)
		VALUES (?, ?, ?)
		ON CONFLICT(event_id, user_id) DO UPDATE SET score = excluded.score
	`), eventID, userID, score); err != nil {
		return nil, fmt.Errorf("upsert rating: %w", err)
	}

	if _, err = tx.ExecContext(ctx, r.DB.Rebind(`
		UPDATE events
		SET enjoyment = (SELECT ROUND(AVG(score), 1) FROM ratings WHERE event_id = ?)
		WHERE id = ?
	`), eventID, eventID); err != nil {
		return nil, fmt.Errorf("update enjoyment: %w", err)
	}

	rating, err = scanRating(tx.QueryRowContext(ctx, r.DB.Rebind(`
		SELECT id, event_id, user_id, score, created_at
		FROM ratings
		WHERE event_id = ? AND user_id = ?
	`), eventID, userID))
	if err != nil {
		return nil, fmt.Errorf("read rating: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rate: %w", err)
	}
	return rating, nil
}

func scanRating(row interface{ Scan(...any) error }) (*models.Rating, error) {
	var (
		rt      models.Rating
		eventID string
		ts      time.Time
	)
	if err := row.Scan(&rt.ID, &eventID, &rt.UserID, &rt.Score, &ts); err != nil {
		return nil, err
	}
	rt.EventID = models.ID(eventID)
	rt.CreatedAt = ts
	return &rt, nil
}

func (r *Repo) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]models.Rating, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(`
		SELECT id, event_id, user_id, score, created_at
		FROM ratings
		WHERE event_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), eventID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Rating, 0, limit)
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		out = append(out, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Summary aggregates an event's ratings. An event without ratings gets a
// zero summary, not an error.
func (r *Repo) Summary(ctx context.Context, eventID string) (models.RatingSummary, error) {
	sum := models.RatingSummary{EventID: models.ID(eventID)}

	rows, err := r.DB.QueryContext(ctx, r.DB.Rebind(`
		SELECT score, COUNT(*)
		FROM ratings
		WHERE event_id = ?
		GROUP BY score
	`), eventID)
	if err != nil {
		return sum, fmt.Errorf("summary query: %w", err)
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var score, n int
		if err := rows.Scan(&score, &n); err != nil {
			return sum, fmt.Errorf("summary scan: %w", err)
		}
		if score < 1 || score > 5 {
			continue
		}
		sum.Breakdown[5-score] = n
		sum.Count += n
		total += score * n
	}
	if err := rows.Err(); err != nil {
		return sum, fmt.Errorf("rows err: %w", err)
	}
	if sum.Count > 0 {
		sum.Average = math.Round(float64(total)/float64(sum.Count)*10) / 10
	}
	return sum, nil
}

// Delete removes a rating owned by userID and recomputes enjoyment.
func (r *Repo) Delete(ctx context.Context, id int64, userID string) (ok bool, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete rating: %w", err)
	}
	defer func() {
		if err != nil || !ok {
			_ = tx.Rollback()
		}
	}()

	var eventID string
	err = tx.QueryRowContext(ctx, r.DB.Rebind(`
		SELECT event_id FROM ratings WHERE id = ? AND user_id = ?
	`), id, userID).Scan(&eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup rating: %w", err)
	}

	if _, err = tx.ExecContext(ctx, r.DB.Rebind(`DELETE FROM ratings WHERE id = ?`), id); err != nil {
		return false, fmt.Errorf("delete rating: %w", err)
	}
	if _, err = tx.ExecContext(ctx, r.DB.Rebind(`
		UPDATE events
		SET enjoyment = COALESCE((SELECT ROUND(AVG(score), 1) FROM ratings WHERE event_id = ?), 0)
		WHERE id = ?
	`), eventID, eventID); err != nil {
		return false, fmt.Errorf("update enjoyment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete rating: %w", err)
	}
	return true, nil
}
