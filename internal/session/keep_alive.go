package session

import (
	"context"
	"time"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/rs/zerolog/log"
)

// KeepAlive periodically fetches the profile so an expiring access token
// gets rotated by the refresh pipeline while the process is running. It
// blocks until the context is cancelled.
func KeepAlive(ctx context.Context, client *lostfound.Client, interval time.Duration) error {
	refresh := func() {
		if _, err := client.Profile(ctx); err != nil {
			log.Info().Err(err).Msg("could not fetch profile to keep session alive")
		}
	}

	// Run immediately on startup
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping session keep-alive")
			return ctx.Err()
		case <-ticker.C:
			refresh()
		}
	}
}
