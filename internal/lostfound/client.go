package lostfound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ApiBaseUrl = "http://localhost:3001/api"

	defaultTimeout = 10 * time.Second
)

// TokenSource provides the current token pair and accepts replacements.
// Clear wipes the whole session (tokens and cached user), which happens
// when a token refresh is rejected.
type TokenSource interface {
	Token() string
	RefreshToken() string
	SetTokens(access, refresh string) error
	Clear()
}

// APIError is a failed backend response. Message carries the
// backend-provided error text when the envelope had one.
type APIError struct {
	Status  int
	Method  string
	URL     string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed: %s %s (status: %d): %s", e.Method, e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("request failed: %s %s (status: %d)", e.Method, e.URL, e.Status)
}

// ErrorMessage returns the backend-provided message for err, or fallback if
// the error carries none (network failure, malformed response).
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

type ClientOpts struct {
	BaseURL string
	Tokens  TokenSource
	Timeout time.Duration

	// OnSessionExpired is called after an unrecoverable refresh failure, once
	// the session has been cleared. The UI layer uses it to redirect to login.
	OnSessionExpired func()
}

// Client is the lost-and-found backend API client. Every request carries the
// current access token and transparently retries once after a token refresh
// on the first authorization failure.
type Client struct {
	httpClient       *resty.Client
	baseURL          string
	tokens           TokenSource
	onSessionExpired func()
	installationID   string
}

func NewClient(opts ClientOpts) *Client {
	c := Client{
		baseURL:          ApiBaseUrl,
		tokens:           opts.Tokens,
		onSessionExpired: opts.OnSessionExpired,
		installationID:   uuid.New().String(),
	}
	if opts.BaseURL != "" {
		c.baseURL = opts.BaseURL
	}
	timeout := defaultTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	c.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(c.baseURL).
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"Accept":            "application/json",
			"X-Installation-Id": c.installationID,
		})

	return &c
}

// sendFunc executes one attempt of a request with the given access token.
type sendFunc func(token string) (*resty.Response, error)

// refreshFunc exchanges the stored refresh token for a new access token.
type refreshFunc func(ctx context.Context) (string, error)

// doWithRefresh runs send with the current access token. On the first
// authorization failure it performs one token refresh and re-sends the
// original request with the new token. A request is never retried more than
// once, so recurring 401s cannot loop. If the refresh itself fails, the
// session is cleared, onExpired fires, and the original 401 response is
// returned for the caller to convert into an error.
func doWithRefresh(ctx context.Context, tokens TokenSource, send sendFunc, refresh refreshFunc, onExpired func()) (*resty.Response, error) {
	res, err := send(tokens.Token())
	if err != nil || res.StatusCode() != http.StatusUnauthorized {
		return res, err
	}

	if tokens.RefreshToken() == "" {
		return res, nil
	}

	newToken, refreshErr := refresh(ctx)
	if refreshErr != nil {
		log.Warn().Err(refreshErr).Msg("token refresh failed, clearing session")
		tokens.Clear()
		if onExpired != nil {
			onExpired()
		}
		return res, nil
	}

	return send(newToken)
}

// call sends one API request through the refresh pipeline and returns the
// decoded response envelope. cfg customizes the request (body, query params,
// files) and runs once per attempt so retries carry the original payload.
func (c *Client) call(ctx context.Context, method, path string, cfg func(*resty.Request)) (*Envelope, error) {
	send := func(token string) (*resty.Response, error) {
		req := c.httpClient.NewRequest().
			SetContext(ctx).
			SetResult(&Envelope{}).
			SetError(&Envelope{})
		if cfg != nil {
			cfg(req)
		}
		if token != "" {
			req.SetHeader("Authorization", "Bearer "+token)
		}
		return req.Execute(method, path)
	}

	res, err := handleError(doWithRefresh(ctx, c.tokens, send, c.refreshAccessToken, c.onSessionExpired))
	if err != nil {
		return nil, err
	}

	env, ok := res.Result().(*Envelope)
	if !ok || env == nil {
		return nil, fmt.Errorf("unexpected response for %s %s", method, path)
	}
	if !env.Success {
		return nil, &APIError{
			Status:  res.StatusCode(),
			Method:  method,
			URL:     res.Request.URL,
			Message: envelopeMessage(env),
		}
	}

	return env, nil
}

// refreshAccessToken calls POST /auth/refresh directly, bypassing the refresh
// pipeline so a rejected refresh cannot recurse. On success the new token
// pair is persisted; a missing refresh token in the response keeps the old one.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	current := c.tokens.RefreshToken()

	res, err := handleError(c.httpClient.NewRequest().
		SetContext(ctx).
		SetBody(map[string]string{"refreshToken": current}).
		SetResult(&Envelope{}).
		SetError(&Envelope{}).
		Post("/auth/refresh"))
	if err != nil {
		return "", err
	}

	env, ok := res.Result().(*Envelope)
	if !ok || env == nil || !env.Success {
		return "", fmt.Errorf("token refresh rejected")
	}

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}

	newRefresh := data.RefreshToken
	if newRefresh == "" {
		newRefresh = current
	}
	if err := c.tokens.SetTokens(data.AccessToken, newRefresh); err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	log.Debug().Msg("access token refreshed")
	return data.AccessToken, nil
}

// handleError is a generic error handler for failing responses (>399 status
// code). Without this, failing responses would have nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		apiErr := &APIError{
			Status: res.StatusCode(),
			Method: res.Request.Method,
			URL:    res.Request.URL,
		}
		if env, ok := res.Error().(*Envelope); ok && env != nil {
			apiErr.Message = envelopeMessage(env)
		}
		return res, apiErr
	}

	return res, nil
}

func envelopeMessage(env *Envelope) string {
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}
