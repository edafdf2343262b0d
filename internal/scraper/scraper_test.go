package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/venues"
	"eventhub/pkg/database"
	"eventhub/pkg/models"
)

type staticSource struct {
	name string
	evs  []models.Event
	err  error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) FetchAll(ctx context.Context) ([]models.Event, error) {
	return s.evs, s.err
}

func TestAggregatorMergesAcrossSources(t *testing.T) {
	a := staticSource{name: "a", evs: []models.Event{
		{ID: "a1", Name: "Drag Bingo!", Date: "2025-08-05", Platform: models.PlatformOther, Crowd: 100, Category: []string{"queer"}},
		{ID: "a2", Name: "Jazz Night", Date: "2025-08-06"},
	}}
	broken := staticSource{name: "broken", err: errors.New("boom")}
	b := staticSource{name: "b", evs: []models.Event{
		{ID: "b1", Name: "drag  bingo", Date: "2025-08-05", Platform: models.PlatformPartiful, Crowd: 140, Capacity: 150,
			Description: "longer description", Venue: "The Bush Dyke Bar", Category: []string{"queer", "social"}},
		{ID: "b2", Name: "Drag Bingo", Date: "2025-09-01"},
	}}

	got, err := NewAggregator(a, broken, b).FetchAndMerge(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, models.ID("a1"), first.ID)
	assert.Equal(t, "Drag Bingo!", first.Name)
	assert.Equal(t, models.PlatformPartiful, first.Platform)
	assert.Equal(t, 140, first.Crowd)
	assert.Equal(t, 150, first.Capacity)
	assert.Equal(t, "longer description", first.Description)
	assert.Equal(t, "The Bush Dyke Bar", first.Venue)
	assert.Equal(t, []string{"queer", "social"}, first.Category)

	assert.Equal(t, models.ID("a2"), got[1].ID)
	assert.Equal(t, models.ID("b2"), got[2].ID)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "r b night 90s", normalizeKey("  R&B Night -- 90s! "))
	assert.Equal(t, "", normalizeKey("!!!"))
}

func TestHTMLToText(t *testing.T) {
	page := `<html><head><title>x</title><style>.a{}</style></head><body>
		<h1>Brooklyn   this week</h1>
		<script>var x = 1;</script>
		<ul><li><a href="/e/1">Pride Dance Party</a> <span>Aug 12</span></li><li>Trivia Tuesday</li></ul>
		<p>Tickets from <b>$8</b></p>
	</body></html>`

	text, err := HTMLToText(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Brooklyn this week\nPride Dance Party Aug 12\nTrivia Tuesday\nTickets from $8", text)
}

type fakeExtractor struct{ got string }

func (f *fakeExtractor) Extract(ctx context.Context, content string) ([]models.Event, error) {
	f.got = content
	return []models.Event{{Name: "Bathe", Date: "2025-07-31"}, {Name: "Posh Party", Platform: models.PlatformPosh}}, nil
}

func TestPageSourceFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<div>Bathe</div><div>Jul 31</div>`))
	}))
	defer srv.Close()

	ex := &fakeExtractor{}
	src := NewPageSource(srv.URL, models.PlatformDice, ex)
	evs, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bathe\nJul 31", ex.got)
	require.Len(t, evs, 2)
	assert.Equal(t, models.PlatformDice, evs[0].Platform)
	assert.Equal(t, models.PlatformPosh, evs[1].Platform)
}

func TestPageSourceErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewPageSource(srv.URL, models.PlatformDice, &fakeExtractor{}).FetchAll(context.Background())
	assert.ErrorContains(t, err, "status 403")

	_, err = NewPageSource(srv.URL, models.PlatformDice, nil).FetchAll(context.Background())
	assert.ErrorContains(t, err, "no extractor")
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://x.test/p", PageURL(" https://x.test/p ", "dice"))
	assert.Equal(t, DefaultPages[models.PlatformPosh], PageURL("", "POSH"))
	assert.Equal(t, DefaultPages[models.PlatformDice], PageURL("", "myspace"))
}

func TestFeedSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"slug":"bathe","title":"Bathe","venue":"Cafe Erzulie","starts_at":"2025-07-31T21:00","price":"$28","ticket_platform":"dice","going":"110","capacity":"120"},
			{"slug":"","title":"no slug"},
			{"slug":"odd","title":"Odd Numbers","starts_at":"2025-08-01","price":"free","going":"-3","capacity":"lots"}
		]`))
	}))
	defer srv.Close()

	evs, err := NewFeedSource(srv.URL + "/").FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, evs, 2)

	assert.Equal(t, models.Event{
		ID: "feed-bathe", Name: "Bathe", Date: "2025-07-31", Time: "9:00 PM", Price: 28,
		Platform: models.PlatformDice, Crowd: 110, Capacity: 120, Venue: "Cafe Erzulie",
	}, evs[0])

	assert.Equal(t, "2025-08-01", evs[1].Date)
	assert.Equal(t, "", evs[1].Time)
	assert.Zero(t, evs[1].Price)
	assert.Zero(t, evs[1].Crowd)
	assert.Zero(t, evs[1].Capacity)
	assert.Equal(t, models.PlatformOther, evs[1].Platform)
}

func TestSaveToDatabaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "scrape.db")})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db))

	evs := []models.Event{
		{Name: "Bathe", Date: "2025-07-31", Time: "9:00 PM", Venue: "Cafe Erzulie", Price: 28},
		{Name: "Rooftop", Date: "2025-08-03", Venue: "cafe erzulie"},
		{Name: "Mystery", Date: "2025-08-04", Time: "8 PM"},
		{Name: "Bad Date", Date: "Aug 5"},
	}

	n, err := SaveToDatabase(ctx, db, evs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	evs[0].Price = 30
	n, err = SaveToDatabase(ctx, db, evs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	repo := venues.NewRepo(db)
	vs, err := repo.ListVenues(ctx)
	require.NoError(t, err)
	names := []string{}
	for _, v := range vs {
		names = append(names, v.Name)
	}
	assert.ElementsMatch(t, []string{"Cafe Erzulie", UnlistedVenue}, names)

	stored, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	bathe, err := repo.GetEvent(ctx, string(StableID(evs[0])))
	require.NoError(t, err)
	require.NotNil(t, bathe)
	assert.Equal(t, 30.0, bathe.Price)
}
