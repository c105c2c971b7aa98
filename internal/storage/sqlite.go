package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Storage using SQLite with encrypted values.
// Tokens are bearer credentials, so they never touch disk in plaintext.
type SQLiteStore struct {
	db            *sql.DB
	encryptionKey []byte
	mu            sync.RWMutex
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
// The encryptionKey is used to encrypt/decrypt stored values.
func NewSQLiteStore(dbPath string, encryptionKey []byte) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:            db,
		encryptionKey: encryptionKey,
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// The file exists after init. Tokens live in it, keep it private.
	if err := os.Chmod(dbPath, 0600); err != nil {
		log.Warn().Err(err).Str("path", dbPath).Msg("failed to restrict database permissions")
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		encrypted_value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}
	return nil
}

// Get retrieves a value by key. Returns ok=false if the key doesn't exist
// or the stored value cannot be read; lookups never fail hard.
func (s *SQLiteStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var encrypted string
	err := s.db.QueryRow(
		"SELECT encrypted_value FROM kv WHERE key = ?", key,
	).Scan(&encrypted)

	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to query value")
		return "", false
	}

	plaintext, err := Decrypt(encrypted, s.encryptionKey)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to decrypt value")
		return "", false
	}

	return string(plaintext), true
}

// Set stores or overwrites a value.
func (s *SQLiteStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encrypted, err := Encrypt([]byte(value), s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO kv (key, encrypted_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			encrypted_value = excluded.encrypted_value,
			updated_at = excluded.updated_at
	`, key, encrypted)

	if err != nil {
		return fmt.Errorf("failed to save value: %w", err)
	}

	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
