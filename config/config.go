package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	AppName     = "lostfound-client"
	EnvFileName = "config.env"
)

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// APIBaseURL returns the backend base URL, overridable via LOSTFOUND_API_URL.
func APIBaseURL() string {
	if url := os.Getenv("LOSTFOUND_API_URL"); url != "" {
		return url
	}
	return ""
}

// DBPath returns the session database path, defaulting next to the binary.
func DBPath() string {
	if path := os.Getenv("LOSTFOUND_DB_PATH"); path != "" {
		return path
	}
	return "lostfound.db"
}

// TokenKey returns the passphrase protecting tokens at rest.
func TokenKey() string {
	return os.Getenv("LOSTFOUND_TOKEN_KEY")
}
