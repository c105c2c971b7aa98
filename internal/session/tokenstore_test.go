package session

import (
	"testing"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/Michaelanand123singh/lostfound-client/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	tokens := NewTokenStore(storage.NewMemoryStore())

	assert.Empty(t, tokens.Token())
	assert.Empty(t, tokens.RefreshToken())

	require.NoError(t, tokens.SetTokens("access", "refresh"))
	assert.Equal(t, "access", tokens.Token())
	assert.Equal(t, "refresh", tokens.RefreshToken())

	// Overwrites replace wholesale.
	require.NoError(t, tokens.SetTokens("access2", "refresh2"))
	assert.Equal(t, "access2", tokens.Token())
	assert.Equal(t, "refresh2", tokens.RefreshToken())

	tokens.ClearTokens()
	assert.Empty(t, tokens.Token())
	assert.Empty(t, tokens.RefreshToken())

	// Clearing again is idempotent.
	tokens.ClearTokens()
}

func TestTokenStoreUserRoundTrip(t *testing.T) {
	tokens := NewTokenStore(storage.NewMemoryStore())

	assert.Nil(t, tokens.User())

	user := &lostfound.User{ID: "u1", Username: "alice", Email: "a@b.com", Bio: "hello"}
	require.NoError(t, tokens.SetUser(user))

	got := tokens.User()
	require.NotNil(t, got)
	assert.Equal(t, *user, *got)

	tokens.ClearUser()
	assert.Nil(t, tokens.User())
}

func TestTokenStoreCorruptUserDataReturnsNil(t *testing.T) {
	store := storage.NewMemoryStore()
	tokens := NewTokenStore(store)

	require.NoError(t, store.Set("user_data", "{not json"))
	assert.Nil(t, tokens.User())
}

func TestTokenStoreClearWipesWholeSession(t *testing.T) {
	store := storage.NewMemoryStore()
	tokens := NewTokenStore(store)

	require.NoError(t, tokens.SetTokens("a", "r"))
	require.NoError(t, tokens.SetUser(&lostfound.User{ID: "u1"}))

	tokens.Clear()

	for _, key := range []string{"auth_token", "refresh_token", "user_data"} {
		_, ok := store.Get(key)
		assert.False(t, ok, "key %s should be absent", key)
	}
}
