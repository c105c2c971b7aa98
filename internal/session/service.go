package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ErrDecodeToken means the token string is not a parseable JWT: wrong number
// of segments or a payload that isn't valid JSON. Callers must treat this as
// "invalid token", never as "expired token".
var ErrDecodeToken = errors.New("invalid token")

// Service evaluates token validity and owns composite session save/clear.
// It touches storage only, never the network; refreshing an expired token is
// the HTTP client's job.
type Service struct {
	tokens *TokenStore
	now    func() time.Time
}

func NewService(tokens *TokenStore) *Service {
	return &Service{tokens: tokens, now: time.Now}
}

// DecodeToken extracts the claims from the payload segment of a JWT without
// verifying the signature. Expiry checks only need the exp claim; signature
// verification happens server-side.
func (s *Service) DecodeToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeToken, err)
	}
	return claims, nil
}

// IsTokenValid reports whether the token decodes and its expiry lies
// strictly in the future. Any decode failure fails closed.
func (s *Service) IsTokenValid(token string) bool {
	claims, err := s.DecodeToken(token)
	if err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.After(s.now())
}

// IsTokenExpired reports whether the token can no longer be used: expiry has
// passed, or the token doesn't decode at all. The asymmetry with
// IsTokenValid is deliberate: an unparseable token is both invalid and
// expired, converging on "cannot be used".
func (s *Service) IsTokenExpired(token string) bool {
	claims, err := s.DecodeToken(token)
	if err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !exp.Time.After(s.now())
}

// SaveSession persists the token pair and user profile as one logical unit.
func (s *Service) SaveSession(access, refresh string, user *lostfound.User) error {
	if err := s.tokens.SetTokens(access, refresh); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	if err := s.tokens.SetUser(user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// SetUser replaces only the cached profile, leaving tokens untouched.
func (s *Service) SetUser(user *lostfound.User) error {
	return s.tokens.SetUser(user)
}

// ClearSession removes tokens and cached user.
func (s *Service) ClearSession() {
	s.tokens.Clear()
}

// InitializeAuth returns the cached user if a currently valid access token
// exists. An expired access token alongside a refresh token clears the
// session outright; refreshing mid-request is handled by the HTTP client,
// not here. In every other case it returns nil without side effects.
func (s *Service) InitializeAuth() *lostfound.User {
	token := s.tokens.Token()
	user := s.tokens.User()

	if token != "" && user != nil && s.IsTokenValid(token) {
		return user
	}

	if s.tokens.RefreshToken() != "" && s.IsTokenExpired(token) {
		log.Debug().Msg("stored access token expired, clearing session")
		s.ClearSession()
	}

	return nil
}
