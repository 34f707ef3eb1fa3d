package handler_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/snippets-library/internal/auth"
	"github.com/sakif/snippets-library/internal/handler"
	"github.com/sakif/snippets-library/internal/service"
)

func newAuthHandler(t *testing.T, env *testEnv) *handler.AuthHandler {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	auths := service.NewAuthService(env.db, tokens, auth.NewPasswordService(), logger)
	github := auth.NewGitHubProvider("client-id", "client-secret", "http://localhost/auth/github/callback")
	return handler.NewAuthHandler(github, auths, logger)
}

func TestHandleGitHubLogin_SetsStateAndRedirects(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/login", nil)
	rr := httptest.NewRecorder()
	h.HandleGitHubLogin(rr, req)

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	var state string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	require.NotEmpty(t, state, "state cookie must be issued")

	// The redirect must carry the same state GitHub will echo back.
	location := rr.Header().Get("Location")
	assert.Contains(t, location, "state="+state)
	assert.Contains(t, location, "client_id=client-id")
}

func TestHandleGitHubCallback_StateMismatch(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=forged&code=abc", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "issued"})
	rr := httptest.NewRecorder()
	h.HandleGitHubCallback(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleGitHubCallback_MissingStateCookie(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=whatever&code=abc", nil)
	rr := httptest.NewRecorder()
	h.HandleGitHubCallback(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.HandleLogout(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "token" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "token cookie must be expired")
}

func TestHandleMe(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)
	userID := env.createUser(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rr := httptest.NewRecorder()
	h.HandleMe(rr, asUser(req, userID))

	require.Equal(t, http.StatusOK, rr.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, "alice", profile["login"])
}

func TestHandleMe_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rr := httptest.NewRecorder()
	h.HandleMe(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
