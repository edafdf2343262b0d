package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/ai"
	"eventhub/internal/refresh"
	"eventhub/pkg/models"
)

// stubAI answers extraction with one fixed event list and categorization
// with one fixed bucket map.
type stubAI struct {
	err error
}

func (s stubAI) Complete(ctx context.Context, system, user string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if bytes.Contains([]byte(user), []byte("Extract all events")) {
		return `[{"name":"Afrobeats Night","date":"2025-08-20","platform":"Dice","crowd":180},{"name":"Open Mic","date":"2025-08-21"}]`, nil
	}
	return "```json\n" + `{"Black & Brown":[{"name":"Afrobeats Night","date":"2025-08-20"}],"Community & Social":[{"name":"Open Mic","date":"2025-08-21"}]}` + "\n```", nil
}

func newServer(t *testing.T, completer ai.Completer, fetch PageFetcher) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(fetch, ai.NewPipeline(completer, rand.New(rand.NewPCG(7, 7)))).RegisterRoutes(r.Group("/functions"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func fakeFetch(gotURL *string) PageFetcher {
	return func(ctx context.Context, url string, platform models.Platform) (string, error) {
		*gotURL = url
		return "Afrobeats Night Aug 20\nOpen Mic Aug 21", nil
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	var gotURL string
	srv := newServer(t, stubAI{}, fakeFetch(&gotURL))

	client := refresh.NewClient(srv.URL+"/functions", "", "posh")
	cats, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://posh.vip/explore", gotURL)

	culture := cats[models.CategoryCulture]
	require.Len(t, culture, 1)
	assert.Equal(t, models.ID("1"), culture[0].ID)
	assert.Equal(t, 180, culture[0].Crowd)
	assert.Equal(t, models.PlatformDice, culture[0].Platform)

	social := cats[models.CategorySocial]
	require.Len(t, social, 1)
	assert.Equal(t, models.ID("2"), social[0].ID)
	assert.Positive(t, social[0].Enjoyment)

	require.Len(t, cats[models.CategoryPopular], 2)
}

func TestCategorizeStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ai.ErrRateLimited, http.StatusTooManyRequests},
		{ai.ErrPaymentRequired, http.StatusPaymentRequired},
		{ai.ErrNotConfigured, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var gotURL string
			srv := newServer(t, stubAI{err: tt.err}, fakeFetch(&gotURL))

			resp, err := http.Post(srv.URL+"/functions/categorize-events", "application/json",
				bytes.NewBufferString(`{"events":[{"name":"x"}]}`))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRefreshClientSurfacesRateLimit(t *testing.T) {
	var gotURL string
	srv := newServer(t, stubAI{err: ai.ErrRateLimited}, fakeFetch(&gotURL))

	_, err := refresh.NewClient(srv.URL+"/functions", "", "dice").Refresh(context.Background())
	assert.ErrorIs(t, err, refresh.ErrRateLimited)
}

func TestCategorizeEmpty(t *testing.T) {
	var gotURL string
	srv := newServer(t, stubAI{}, fakeFetch(&gotURL))

	resp, err := http.Post(srv.URL+"/functions/categorize-events", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body refresh.CategorizeResponse
	require.NoError(t, decode(resp, &body))
	assert.True(t, body.Success)
	assert.Empty(t, body.CategorizedEvents)
	assert.Nil(t, body.TopPopular)
}

func TestScrapeFailure(t *testing.T) {
	failing := func(ctx context.Context, url string, platform models.Platform) (string, error) {
		return "", errors.New("403")
	}
	srv := newServer(t, stubAI{}, failing)

	_, err := refresh.NewClient(srv.URL+"/functions", "https://example.test/list", "dice").Refresh(context.Background())
	require.ErrorIs(t, err, refresh.ErrRefreshFailed)
	assert.Contains(t, err.Error(), "https://example.test/list")
}

func decode(resp *http.Response, v any) error {
	return json.NewDecoder(resp.Body).Decode(v)
}
