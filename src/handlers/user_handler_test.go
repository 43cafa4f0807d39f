package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/moneydash/backend/src/config"
	"github.com/username/moneydash/backend/src/database"
	"github.com/username/moneydash/backend/src/security"
)

func newAuthFixture(t *testing.T) *UserHandler {
	t.Helper()
	config.Cfg = &config.AppConfig{
		JWTSecret:         strings.Repeat("k", 32),
		AccessTokenExpiry: time.Hour,
	}
	database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	db := database.DB
	t.Cleanup(func() { db.Close() })
	return NewUserHandler(security.NewAuthService(config.Cfg.JWTSecret))
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	h := newAuthFixture(t)

	rec := postJSON(t, h.RegisterUserHandler, "/api/auth/register",
		`{"username":"alice","password":"correct-horse","email":"alice@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct-horse", "password hash must not leak")

	// Duplicate username is rejected.
	rec = postJSON(t, h.RegisterUserHandler, "/api/auth/register",
		`{"username":"alice","password":"another-pass","email":"alice2@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(t, h.LoginUserHandler, "/api/auth/login",
		`{"username":"alice","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.NotEmpty(t, login.AccessToken)

	rec = postJSON(t, h.LoginUserHandler, "/api/auth/login",
		`{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	h := newAuthFixture(t)

	rec := postJSON(t, h.RegisterUserHandler, "/api/auth/register", `{"username":"","password":"longenough"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.RegisterUserHandler, "/api/auth/register", `{"username":"bob","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.RegisterUserHandler, "/api/auth/register", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	h := newAuthFixture(t)

	rec := postJSON(t, h.RegisterUserHandler, "/api/auth/register",
		`{"username":"alice","password":"correct-horse","email":"alice@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = postJSON(t, h.LoginUserHandler, "/api/auth/login",
		`{"username":"alice","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	var gotUserID int64
	protected := h.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	}))

	// Valid bearer token passes and carries the user ID.
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Positive(t, gotUserID)

	// Missing and garbage tokens are rejected.
	req = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
