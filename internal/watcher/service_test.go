package watcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/Michaelanand123singh/lostfound-client/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct{}

func (fakeTokens) Token() string               { return "t1" }
func (fakeTokens) RefreshToken() string        { return "" }
func (fakeTokens) SetTokens(_, _ string) error { return nil }
func (fakeTokens) Clear()                      {}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(string) {}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

func newTestService(t *testing.T, handler http.Handler, store storage.Storage) (*Service, *recordingNotifier) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client := lostfound.NewClient(lostfound.ClientOpts{BaseURL: ts.URL, Tokens: fakeTokens{}})
	notifier := &recordingNotifier{}
	return NewService(client, store, notifier, "wallet", time.Minute), notifier
}

func searchResponse(posts string) string {
	return `{"success":true,"data":{"data":[` + posts + `],"total":1,"page":1,"limit":20,"hasNext":false}}`
}

func TestFirstPollPrimesWithoutNotifying(t *testing.T) {
	svc, notifier := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse(`{"id":"p1","title":"Found wallet","status":"FOUND","_count":{}}`)))
	}), storage.NewMemoryStore())

	svc.poll(context.Background())

	assert.Empty(t, notifier.all())
}

func TestSecondPollNotifiesOnlyUnseenPosts(t *testing.T) {
	var calls int
	svc, notifier := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.Write([]byte(searchResponse(`{"id":"p1","title":"Found wallet","status":"FOUND","_count":{}}`)))
			return
		}
		w.Write([]byte(searchResponse(`{"id":"p1","title":"Found wallet","status":"FOUND","_count":{}},{"id":"p2","title":"Found brown wallet","status":"FOUND","_count":{}}`)))
	}), storage.NewMemoryStore())

	svc.poll(context.Background())
	svc.poll(context.Background())

	msgs := notifier.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Found brown wallet")
}

func TestEmptyFirstPollStillPrimes(t *testing.T) {
	var calls int
	svc, notifier := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.Write([]byte(`{"success":true,"data":{"data":[],"total":0,"page":1,"limit":20,"hasNext":false}}`))
			return
		}
		w.Write([]byte(searchResponse(`{"id":"p1","title":"Found wallet","status":"FOUND","_count":{}}`)))
	}), storage.NewMemoryStore())

	svc.poll(context.Background())
	require.Empty(t, notifier.all())

	svc.poll(context.Background())
	assert.Len(t, notifier.all(), 1)
}

func TestSeenSetSurvivesRestart(t *testing.T) {
	store := storage.NewMemoryStore()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchResponse(`{"id":"p1","title":"Found wallet","status":"FOUND","_count":{}}`)))
	})

	svc, _ := newTestService(t, handler, store)
	svc.poll(context.Background())

	// A new service over the same store inherits the seen set.
	svc2, notifier2 := newTestService(t, handler, store)
	svc2.poll(context.Background())

	assert.Empty(t, notifier2.all())
}

func TestPollFailureIsNonFatal(t *testing.T) {
	svc, notifier := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), storage.NewMemoryStore())

	svc.poll(context.Background())

	assert.Empty(t, notifier.all())
}
