package lostfound

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Login authenticates with email and password and returns the issued token
// pair with the user profile. Persisting the session is the caller's job.
func (c *Client) Login(ctx context.Context, creds LoginCredentials) (*AuthSession, error) {
	env, err := c.call(ctx, http.MethodPost, "/auth/login", func(req *resty.Request) {
		req.SetBody(creds)
	})
	if err != nil {
		return nil, err
	}
	return decodeAuthSession(env)
}

// Register creates an account and returns the issued session, same shape as
// Login.
func (c *Client) Register(ctx context.Context, creds RegisterCredentials) (*AuthSession, error) {
	env, err := c.call(ctx, http.MethodPost, "/auth/register", func(req *resty.Request) {
		req.SetBody(creds)
	})
	if err != nil {
		return nil, err
	}
	return decodeAuthSession(env)
}

// Logout invalidates the session server-side. The response body is ignored
// beyond success/failure.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodPost, "/auth/logout", nil)
	return err
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	env, err := c.call(ctx, http.MethodGet, "/auth/profile", nil)
	if err != nil {
		return nil, err
	}
	return decodeUser(env)
}

// UpdateProfile sends partial profile fields and returns the server's full
// updated representation.
func (c *Client) UpdateProfile(ctx context.Context, data UpdateProfileData) (*User, error) {
	env, err := c.call(ctx, http.MethodPut, "/auth/profile", func(req *resty.Request) {
		req.SetBody(data)
	})
	if err != nil {
		return nil, err
	}
	return decodeUser(env)
}

func decodeAuthSession(env *Envelope) (*AuthSession, error) {
	var session AuthSession
	if err := json.Unmarshal(env.Data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}
	if session.User == nil || session.AccessToken == "" {
		return nil, fmt.Errorf("auth response missing user or access token")
	}
	return &session, nil
}

func decodeUser(env *Envelope) (*User, error) {
	var user User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}
