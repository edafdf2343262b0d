package venues

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/auth"
	"eventhub/pkg/models"
)

type countingReloader struct{ n int }

func (r *countingReloader) Reload(ctx context.Context) error {
	r.n++
	return nil
}

type recordingHub struct{ msgs []any }

func (h *recordingHub) BroadcastJSON(v any) { h.msgs = append(h.msgs, v) }

type fixture struct {
	router *gin.Engine
	repo   *Repo
	reload *countingReloader
	hub    *recordingHub
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	users := auth.NewRepo(db)
	require.NoError(t, users.CreateUser(context.Background(), auth.User{ID: "u1", Email: "host@example.com", PasswordHash: "x"}))
	tokens := auth.TokenService{Secret: []byte("test"), Issuer: "eventhub", Duration: time.Hour}
	token, _, err := tokens.Sign(&auth.User{ID: "u1", Email: "host@example.com"})
	require.NoError(t, err)

	repo := NewRepo(db)
	f := &fixture{
		repo:   repo,
		reload: &countingReloader{},
		hub:    &recordingHub{},
		token:  token,
	}
	h := NewHandler(repo, NewLoader(repo, nil), f.reload, f.hub)

	r := gin.New()
	h.RegisterPublicRoutes(r.Group(""))
	h.RegisterProtectedRoutes(r.Group("", auth.AuthMiddleware(tokens, users)))
	f.router = r
	return f
}

func (f *fixture) do(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListVenuesIncludesBaseline(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/venues", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Degraded bool           `json:"degraded"`
		Total    int            `json:"total"`
		Items    []models.Venue `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Degraded)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "The Bush Dyke Bar", body.Items[0].Name)
}

func TestVenueEventsSortedByPrice(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/venues/2/events?sort=price", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []models.Event `json:"items"`
		Stats struct {
			TotalCrowd int `json:"total_crowd"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Items)
	for i := 1; i < len(body.Items); i++ {
		assert.LessOrEqual(t, body.Items[i-1].Price, body.Items[i].Price)
	}
	assert.Positive(t, body.Stats.TotalCrowd)

	rec = f.do(http.MethodGet, "/venues/nope/events", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMapUsesStaticCoordinates(t *testing.T) {
	f := newFixture(t)
	// no coordinates and no table entry: left off the map
	require.NoError(t, f.repo.CreateVenue(context.Background(), &models.Venue{Name: "Unmapped", Location: "Queens"}))

	rec := f.do(http.MethodGet, "/map", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []MapVenue `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.InDelta(t, 40.6812, body.Items[1].Lat, 1e-9)
}

func TestCreateVenueAndEvent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/venues", map[string]any{"name": "Nowadays", "location": "Ridgewood, NY", "lat": 40.7, "lng": -73.9}, false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/venues", map[string]any{"name": "Nowadays", "location": "Ridgewood, NY", "lat": 40.7, "lng": -73.9}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var v models.Venue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "u1", v.UserID)

	rec = f.do(http.MethodPost, "/venues/"+string(v.ID)+"/events", map[string]any{
		"name": "Sunday Dance", "date": "2025-08-10", "time": "4:00 PM", "price": 25, "platform": "Dice",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/venues/"+string(v.ID)+"/events", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sunday Dance")

	assert.Equal(t, 2, f.reload.n)
	require.Len(t, f.hub.msgs, 2)
	assert.Equal(t, "event.created", f.hub.msgs[1].(StoreChange).Type)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/venues", map[string]any{"name": "No Location"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// baseline venues live outside the store
	rec = f.do(http.MethodPost, "/venues/1/events", map[string]any{"name": "x", "date": "2025-08-10", "time": "9 PM"}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	v := models.Venue{Name: "Elsewhere", Location: "Brooklyn"}
	require.NoError(t, f.repo.CreateVenue(context.Background(), &v))
	rec = f.do(http.MethodPost, "/venues/"+string(v.ID)+"/events", map[string]any{"name": "Bad Date", "date": "08/10/2025", "time": "9 PM"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, f.reload.n)
	assert.Empty(t, f.hub.msgs)
}
