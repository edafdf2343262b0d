package ratings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/auth"
	"eventhub/pkg/database"
	"eventhub/pkg/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "ratings.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	_, err = db.Exec(`INSERT INTO venues (id, name, location) VALUES ('v1', 'Elsewhere', 'Brooklyn')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO events (id, venue_id, name, date, time) VALUES ('e1', 'v1', 'Rooftop', '2025-08-03', '6 PM')`)
	require.NoError(t, err)
	return db
}

func enjoyment(t *testing.T, db *database.DB) float64 {
	t.Helper()
	var v float64
	require.NoError(t, db.QueryRow(`SELECT enjoyment FROM events WHERE id = 'e1'`).Scan(&v))
	return v
}

func TestRateUpdatesEnjoyment(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepo(db)

	_, err := repo.Rate(ctx, "e1", "u1", 5)
	require.NoError(t, err)
	_, err = repo.Rate(ctx, "e1", "u2", 4)
	require.NoError(t, err)
	_, err = repo.Rate(ctx, "e1", "u3", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.3, enjoyment(t, db))

	// re-rating replaces the earlier score
	rt, err := repo.Rate(ctx, "e1", "u3", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Score)
	assert.Equal(t, models.ID("e1"), rt.EventID)
	assert.Equal(t, 3.7, enjoyment(t, db))

	sum, err := repo.Summary(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 3.7, sum.Average)
	assert.Equal(t, [5]int{1, 1, 0, 1, 0}, sum.Breakdown)
}

func TestRateValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(openTestDB(t))

	_, err := repo.Rate(ctx, "e1", "u1", 6)
	require.ErrorIs(t, err, models.ErrValidation)

	_, err = repo.Rate(ctx, "missing", "u1", 3)
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestSummaryWithoutRatings(t *testing.T) {
	sum, err := NewRepo(openTestDB(t)).Summary(context.Background(), "e1")
	require.NoError(t, err)
	assert.Zero(t, sum.Count)
	assert.Zero(t, sum.Average)
}

func TestDeleteRecomputesEnjoyment(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRepo(db)

	rt, err := repo.Rate(ctx, "e1", "u1", 5)
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, rt.ID, "someone-else")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, rt.ID, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, enjoyment(t, db))
}

type hubSpy struct{ msgs []any }

func (h *hubSpy) BroadcastJSON(v any) { h.msgs = append(h.msgs, v) }

func TestRateEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	tokens := auth.TokenService{Secret: []byte("test"), Issuer: "eventhub", Duration: time.Hour}
	token, _, err := tokens.Sign(&auth.User{ID: "u1"})
	require.NoError(t, err)

	hub := &hubSpy{}
	h := NewHandler(NewRepo(db), nil, hub)
	r := gin.New()
	h.RegisterPublicRoutes(r.Group(""))
	h.RegisterProtectedRoutes(r.Group("", auth.AuthMiddleware(tokens, nil)))

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, post("/events/e1/ratings", `{"score":0}`).Code)
	assert.Equal(t, http.StatusNotFound, post("/events/nope/ratings", `{"score":3}`).Code)
	require.Equal(t, http.StatusCreated, post("/events/e1/ratings", `{"score":4}`).Code)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/e1/ratings/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sum models.RatingSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 1, sum.Count)
	assert.Equal(t, 4.0, sum.Average)

	require.Len(t, hub.msgs, 1)
	assert.Equal(t, "rating.created", hub.msgs[0].(RatingChange).Type)
}
