package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/lunchvote/api/internal/core/domain"
)

func TestSignupLoginFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := app.doJSON(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "alice@example.com",
		"name":     "Alice",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := decode[domain.User](t, resp)
	assert.Equal(t, domain.RoleStudent, user.Role)
	assert.Empty(t, user.PasswordHash)

	// The hash never hits the table in cleartext.
	var stored string
	require.NoError(t, app.DB.QueryRow("SELECT password_hash FROM users WHERE email = $1", "alice@example.com").Scan(&stored))
	assert.NotEmpty(t, stored)
	assert.NotEqual(t, "correct horse", stored)

	// Duplicate email is rejected.
	resp = app.doJSON(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":    "alice@example.com",
		"name":     "Alice Again",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Wrong password.
	resp = app.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "wrong horse",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Login sets the access token cookie.
	resp = app.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" {
			token = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, token)

	// The cookie authenticates /users/me.
	resp = app.doJSON(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[domain.User](t, resp)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, user.ID, me.ID)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	for _, path := range []string{"/api/users/me", "/api/restaurants", "/api/votes/current", "/api/votes/history"} {
		resp := app.doJSON(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}
