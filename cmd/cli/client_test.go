package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`{"added":3}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"Could not fetch live data, showing cached events"}`))
		}
	}))
	defer srv.Close()

	var out struct {
		Added int `json:"added"`
	}
	err := doJSON(context.Background(), srv.Client(), http.MethodPost, srv.URL+"/ok", "tok", map[string]string{}, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Added)

	err = doJSON(context.Background(), srv.Client(), http.MethodPost, srv.URL+"/fail", "", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(502): Could not fetch live data")
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")

	require.Error(t, saveToken(path, ""))
	require.NoError(t, saveToken(path, "abc"))

	got, err := readToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, clearToken(path))
	require.NoError(t, clearToken(path))
	_, err = readToken(path)
	require.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://events.example.com/api/", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://events.example.com/api/ws", u)

	u, err = websocketURL("http://localhost:8080", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", u)
}
