package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/outfit-advisor/internal/outfit"
)

func TestProfileLifecycle(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, _ := env.do(t, http.MethodGet, "/api/v1/profile", nil, testToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, body := env.do(t, http.MethodPost, "/api/v1/profile", nil, testToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, map[string]any{"created": true}, body.Data)

	rr, body = env.do(t, http.MethodPost, "/api/v1/profile", nil, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"created": false}, body.Data)

	env.store.profile = &outfit.Profile{UserID: "u-1", Username: "jane"}
	rr, body = env.do(t, http.MethodGet, "/api/v1/profile", nil, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var profile outfit.Profile
	decodeData(t, body, &profile)
	assert.Equal(t, "jane", profile.Username)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, body := env.do(t, http.MethodPatch, "/api/v1/profile", map[string]string{"username": "jd"}, testToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"updated": true}, body.Data)
	assert.Equal(t, "jd", env.store.lastUsername)

	rr, body = env.do(t, http.MethodPatch, "/api/v1/profile", map[string]string{"avatar_url": "not a url"}, testToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, map[string]any{"avatar_url": "must be a valid http(s) url"}, body.Details)
}

func TestSignOut(t *testing.T) {
	env := setupTestServer(t, Config{})

	rr, _ := env.do(t, http.MethodPost, "/api/v1/auth/signout", nil, testToken)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.True(t, env.store.signedOut)
}
