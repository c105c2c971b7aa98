package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	require.NoError(t, store.Set("k", "v"))
	v, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, store.Set("k", "v2"))
	v, _ = store.Get("k")
	assert.Equal(t, "v2", v)

	require.NoError(t, store.Delete("k"))
	_, ok = store.Get("k")
	assert.False(t, ok)

	// Deleting again is not an error.
	require.NoError(t, store.Delete("k"))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	key, err := DeriveKey("test-passphrase")
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Get("auth_token")
	assert.False(t, ok)

	require.NoError(t, store.Set("auth_token", "secret-token"))
	v, ok := store.Get("auth_token")
	assert.True(t, ok)
	assert.Equal(t, "secret-token", v)

	require.NoError(t, store.Set("auth_token", "replaced"))
	v, _ = store.Get("auth_token")
	assert.Equal(t, "replaced", v)

	require.NoError(t, store.Delete("auth_token"))
	_, ok = store.Get("auth_token")
	assert.False(t, ok)
}

func TestSQLiteStoreValuesEncryptedAtRest(t *testing.T) {
	key, err := DeriveKey("test-passphrase")
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)

	require.NoError(t, store.Set("auth_token", "super-secret-bearer-token"))
	require.NoError(t, store.Close())

	raw, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "super-secret-bearer-token"))
}

func TestSQLiteStoreWrongKeyFailsSoft(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	key1, err := DeriveKey("passphrase-one")
	require.NoError(t, err)
	store, err := NewSQLiteStore(dbPath, key1)
	require.NoError(t, err)
	require.NoError(t, store.Set("auth_token", "value"))
	require.NoError(t, store.Close())

	key2, err := DeriveKey("passphrase-two")
	require.NoError(t, err)
	store, err = NewSQLiteStore(dbPath, key2)
	require.NoError(t, err)
	defer store.Close()

	// Undecryptable value reads as absent, not as an error.
	_, ok := store.Get("auth_token")
	assert.False(t, ok)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key, err := DeriveKey("passphrase")
	require.NoError(t, err)

	ciphertext, err := Encrypt([]byte("hello"), key)
	require.NoError(t, err)
	assert.NotEqual(t, "hello", ciphertext)

	plaintext, err := Decrypt(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plaintext))
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	key, err := DeriveKey("passphrase")
	require.NoError(t, err)

	ciphertext, err := Encrypt([]byte("hello"), key)
	require.NoError(t, err)

	_, err = Decrypt("AAAA"+ciphertext[4:], key)
	assert.Error(t, err)
}
