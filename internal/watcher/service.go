package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/Michaelanand123singh/lostfound-client/internal/session"
	"github.com/Michaelanand123singh/lostfound-client/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	// PollInterval is the time between polling cycles.
	PollInterval = 10 * time.Minute

	// MaxResultsPerSearch is the maximum number of results to fetch per poll.
	MaxResultsPerSearch = 20

	// seenKeyPrefix namespaces the persisted seen-post sets per query.
	seenKeyPrefix = "watch_seen:"
)

// Service polls the post search endpoint for a saved query and notifies
// about posts it hasn't seen before. Seen IDs persist across restarts
// through the storage port.
type Service struct {
	client   *lostfound.Client
	store    storage.Storage
	notifier session.Notifier
	query    string
	interval time.Duration
}

func NewService(client *lostfound.Client, store storage.Storage, notifier session.Notifier, query string, interval time.Duration) *Service {
	if interval <= 0 {
		interval = PollInterval
	}
	return &Service{
		client:   client,
		store:    store,
		notifier: notifier,
		query:    query,
		interval: interval,
	}
}

// Run starts the polling loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	log.Info().Str("query", s.query).Dur("interval", s.interval).Msg("starting search watcher")

	s.poll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("search watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Service) poll(ctx context.Context) {
	page, err := s.client.SearchPosts(ctx, s.query, 1, MaxResultsPerSearch)
	if err != nil {
		log.Warn().Err(err).Str("query", s.query).Msg("watch poll failed")
		return
	}

	seen, primed := s.loadSeen()

	var fresh []lostfound.Post
	for _, post := range page.Posts {
		if _, ok := seen[post.ID]; ok {
			continue
		}
		seen[post.ID] = struct{}{}
		fresh = append(fresh, post)
	}

	// Persist on the priming poll even when it returned nothing, so an
	// empty first result set still marks the watch as primed.
	if len(fresh) > 0 || !primed {
		s.saveSeen(seen)
	}

	// The first poll only primes the seen set; everything would be "new".
	if !primed {
		log.Info().Int("count", len(fresh)).Str("query", s.query).Msg("primed watch with existing results")
		return
	}

	for _, post := range fresh {
		s.notifier.Success(fmt.Sprintf("New match for %q: [%s] %s", s.query, post.Status, post.Title))
	}
}

func (s *Service) seenKey() string {
	return seenKeyPrefix + s.query
}

// loadSeen returns the persisted seen set and whether one existed at all.
func (s *Service) loadSeen() (map[string]struct{}, bool) {
	seen := make(map[string]struct{})

	data, ok := s.store.Get(s.seenKey())
	if !ok {
		return seen, false
	}

	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		log.Warn().Err(err).Msg("failed to parse seen post ids")
		return seen, false
	}
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, true
}

func (s *Service) saveSeen(seen map[string]struct{}) {
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal seen post ids")
		return
	}
	if err := s.store.Set(s.seenKey(), string(data)); err != nil {
		log.Warn().Err(err).Msg("failed to persist seen post ids")
	}
}
