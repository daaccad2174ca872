// Package supabase is a thin client for the hosted backend: PostgREST tables,
// object storage and the auth service.
package supabase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	restPath    = "/rest/v1"
	storagePath = "/storage/v1"
	authPath    = "/auth/v1"
	userAgent   = "spigell/outfit-advisor"
)

type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	URL        string

	Storage *Storage
	Auth    *Auth
}

type accessTokenKey struct{}

// New creates a client for the project at url authenticated with the anon (or service) key.
func New(logger *zap.Logger, url, apiKey string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		apiKey: apiKey,
		URL:    strings.TrimRight(url, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
	c.Storage = &Storage{client: c}
	c.Auth = &Auth{client: c}

	return c
}

// WithAccessToken returns a context whose requests run on behalf of the user owning token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, strings.TrimSpace(token))
}

// AccessToken returns the user access token carried by ctx, if any.
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}
