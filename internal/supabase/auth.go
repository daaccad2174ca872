package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const serviceAuth = "auth"

// Auth talks to the hosted auth service. Sign-in and sign-up stay with the
// hosted UI; the server only resolves and ends sessions.
type Auth struct {
	client *Client
}

// User is the authenticated user as reported by the auth service.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// AvatarURL returns the avatar_url user metadata entry.
func (u *User) AvatarURL() string {
	if u == nil || u.UserMetadata == nil {
		return ""
	}
	return valueAsString(u.UserMetadata["avatar_url"])
}

// Username derives the default username: the local part of the email.
func (u *User) Username() string {
	if u == nil {
		return ""
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// GetUser resolves the user owning the access token in ctx.
func (a *Auth) GetUser(ctx context.Context) (*User, error) {
	if AccessToken(ctx) == "" {
		return nil, ErrNoSession
	}

	req, err := a.client.newRequest(ctx, http.MethodGet, a.client.URL+authPath+"/user", nil)
	if err != nil {
		return nil, err
	}

	data, err := a.client.do(serviceAuth, req)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("parse user: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("get user: empty user id")
	}

	return &user, nil
}

// SignOut revokes the session owning the access token in ctx.
func (a *Auth) SignOut(ctx context.Context) error {
	if AccessToken(ctx) == "" {
		return ErrNoSession
	}

	req, err := a.client.newRequest(ctx, http.MethodPost, a.client.URL+authPath+"/logout", nil)
	if err != nil {
		return err
	}

	if _, err := a.client.do(serviceAuth, req); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	return nil
}
