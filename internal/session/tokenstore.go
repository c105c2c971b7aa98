package session

import (
	"encoding/json"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/Michaelanand123singh/lostfound-client/internal/storage"
	"github.com/rs/zerolog/log"
)

// Storage keys for the persisted session. All three are cleared together on
// logout and on irrecoverable refresh failure.
const (
	keyAccessToken  = "auth_token"
	keyRefreshToken = "refresh_token"
	keyUserData     = "user_data"
)

// TokenStore persists the token pair and cached user profile through the
// storage port. Reads never fail: a missing or unreadable value comes back
// as a zero value. It satisfies lostfound.TokenSource.
type TokenStore struct {
	store storage.Storage
}

func NewTokenStore(store storage.Storage) *TokenStore {
	return &TokenStore{store: store}
}

// SetTokens writes both tokens, overwriting any existing values.
func (t *TokenStore) SetTokens(access, refresh string) error {
	if err := t.store.Set(keyAccessToken, access); err != nil {
		return err
	}
	return t.store.Set(keyRefreshToken, refresh)
}

// Token returns the stored access token, or "" if unset.
func (t *TokenStore) Token() string {
	v, _ := t.store.Get(keyAccessToken)
	return v
}

// RefreshToken returns the stored refresh token, or "" if unset.
func (t *TokenStore) RefreshToken() string {
	v, _ := t.store.Get(keyRefreshToken)
	return v
}

// ClearTokens removes both tokens. Clearing absent keys is fine.
func (t *TokenStore) ClearTokens() {
	if err := t.store.Delete(keyAccessToken); err != nil {
		log.Warn().Err(err).Msg("failed to clear access token")
	}
	if err := t.store.Delete(keyRefreshToken); err != nil {
		log.Warn().Err(err).Msg("failed to clear refresh token")
	}
}

// SetUser caches the user profile as JSON.
func (t *TokenStore) SetUser(user *lostfound.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return t.store.Set(keyUserData, string(data))
}

// User returns the cached profile, or nil if absent or unparseable.
func (t *TokenStore) User() *lostfound.User {
	data, ok := t.store.Get(keyUserData)
	if !ok {
		return nil
	}

	var user lostfound.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		log.Warn().Err(err).Msg("failed to parse cached user data")
		return nil
	}
	return &user
}

// ClearUser removes the cached profile.
func (t *TokenStore) ClearUser() {
	if err := t.store.Delete(keyUserData); err != nil {
		log.Warn().Err(err).Msg("failed to clear user data")
	}
}

// Clear wipes the whole session: tokens and cached user. This is what the
// HTTP client calls after an unrecoverable refresh failure.
func (t *TokenStore) Clear() {
	t.ClearTokens()
	t.ClearUser()
}
