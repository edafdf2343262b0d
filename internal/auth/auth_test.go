package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/pkg/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "auth.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "eventhub-test", Duration: time.Hour}
}

func newRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewRepo(openTestDB(t)), testTokens())
	r := gin.New()
	h.RegisterRoutes(r.Group("/auth"))
	h.RegisterUserRoutes(r.Group("/users"))
	return r, h
}

func send(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type tokenResp struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func decodeToken(t *testing.T, rec *httptest.ResponseRecorder) tokenResp {
	t.Helper()
	var out tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out
}

func TestRegisterLoginMe(t *testing.T) {
	r, _ := newRouter(t)
	creds := map[string]string{"email": " Host@Example.com ", "password": "correct horse"}

	rec := send(r, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decodeToken(t, rec)
	assert.Equal(t, "host@example.com", reg.User.Email)

	rec = send(r, http.MethodPost, "/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(r, http.MethodPost, "/auth/login", "", map[string]string{"email": "HOST@example.com", "password": "correct horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeToken(t, rec)

	rec = send(r, http.MethodGet, "/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), reg.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	r, _ := newRouter(t)

	rec := send(r, http.MethodPost, "/auth/register", "", map[string]string{"email": "nope", "password": "longenough"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(r, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@b.co", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newRouter(t)
	send(r, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@b.co", "password": "password123"})

	rec := send(r, http.MethodPost, "/auth/login", "", map[string]string{"email": "a@b.co", "password": "password124"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	r, _ := newRouter(t)
	rec := send(r, http.MethodPost, "/auth/register", "", map[string]string{"email": "a@b.co", "password": "password123"})
	tok := decodeToken(t, rec).Token

	rec = send(r, http.MethodPost, "/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(r, http.MethodGet, "/users/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsMissingAndForeignTokens(t *testing.T) {
	r, _ := newRouter(t)

	rec := send(r, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := TokenService{Secret: []byte("other"), Issuer: "eventhub-test", Duration: time.Hour}
	forged, _, err := other.Sign(&User{ID: "x", Email: "x@y.z"})
	require.NoError(t, err)
	rec = send(r, http.MethodGet, "/users/me", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenServiceRoundTrip(t *testing.T) {
	ts := testTokens()
	tok, exp, err := ts.Sign(&User{ID: "u1", Email: "u@e.co", TokenVersion: 3})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ts.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, 3, claims.TokenVersion)

	expired := TokenService{Secret: ts.Secret, Issuer: ts.Issuer, Duration: -time.Minute}
	old, _, err := expired.Sign(&User{ID: "u1"})
	require.NoError(t, err)
	_, err = ts.Parse(old)
	assert.Error(t, err)

	wrongIssuer := TokenService{Secret: ts.Secret, Issuer: "someone-else", Duration: time.Hour}
	tok, _, err = wrongIssuer.Sign(&User{ID: "u1"})
	require.NoError(t, err)
	_, err = ts.Parse(tok)
	assert.Error(t, err)
}
