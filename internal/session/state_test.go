package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/Michaelanand123singh/lostfound-client/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures toasts for assertions.
type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *TokenStore, *recordingNotifier) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	tokens := NewTokenStore(storage.NewMemoryStore())
	client := lostfound.NewClient(lostfound.ClientOpts{BaseURL: ts.URL, Tokens: tokens})
	notifier := &recordingNotifier{}
	return NewManager(client, NewService(tokens), notifier), tokens, notifier
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestLoginPopulatesStateAndStorage(t *testing.T) {
	m, tokens, notifier := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		writeJSON(w, 200, `{"success":true,"data":{"user":{"id":"u1","username":"alice"},"accessToken":"t1","refreshToken":"r1"}}`)
	}))

	m.Login(context.Background(), lostfound.LoginCredentials{Email: "a@b.com", Password: "secret123"})

	state := m.Snapshot()
	require.NotNil(t, state.User)
	assert.Equal(t, "alice", state.User.Username)
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Err)

	assert.Equal(t, "t1", tokens.Token())
	assert.Equal(t, "r1", tokens.RefreshToken())
	assert.Equal(t, []string{"Welcome back!"}, notifier.successes)
}

func TestLoginFailureSurfacesBackendMessage(t *testing.T) {
	m, tokens, notifier := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, `{"success":false,"message":"Invalid credentials"}`)
	}))

	m.Login(context.Background(), lostfound.LoginCredentials{Email: "a@b.com", Password: "wrong"})

	state := m.Snapshot()
	assert.Nil(t, state.User)
	assert.False(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Equal(t, "Invalid credentials", state.Err)
	assert.Empty(t, tokens.Token())
	assert.Equal(t, []string{"Invalid credentials"}, notifier.errors)
}

func TestLoginNetworkFailureUsesGenericMessage(t *testing.T) {
	tokens := NewTokenStore(storage.NewMemoryStore())
	client := lostfound.NewClient(lostfound.ClientOpts{
		BaseURL: "http://127.0.0.1:1", // nothing listens here
		Tokens:  tokens,
		Timeout: 100 * time.Millisecond,
	})
	m := NewManager(client, NewService(tokens), nil)

	m.Login(context.Background(), lostfound.LoginCredentials{Email: "a@b.com", Password: "x"})

	state := m.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, "Login failed", state.Err)
}

func TestRegisterPopulatesState(t *testing.T) {
	m, tokens, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		writeJSON(w, 200, `{"success":true,"data":{"user":{"id":"u2","username":"bob"},"accessToken":"t9","refreshToken":"r9"}}`)
	}))

	m.Register(context.Background(), lostfound.RegisterCredentials{Email: "b@b.com", Username: "bob", Password: "pw", ConfirmPassword: "pw"})

	state := m.Snapshot()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "bob", state.User.Username)
	assert.Equal(t, "t9", tokens.Token())
}

func TestLogoutClearsStateEvenWhenServerFails(t *testing.T) {
	m, tokens, notifier := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			writeJSON(w, 200, `{"success":true,"data":{"user":{"id":"u1","username":"alice"},"accessToken":"t1","refreshToken":"r1"}}`)
			return
		}
		writeJSON(w, 500, `{"success":false,"message":"boom"}`)
	}))

	m.Login(context.Background(), lostfound.LoginCredentials{Email: "a@b.com", Password: "x"})
	require.True(t, m.Snapshot().IsAuthenticated)

	m.Logout(context.Background())

	state := m.Snapshot()
	assert.Nil(t, state.User)
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, state.Err)
	assert.Empty(t, tokens.Token())
	assert.Empty(t, tokens.RefreshToken())
	assert.Nil(t, tokens.User())
	assert.Contains(t, notifier.successes, "Logged out successfully")
}

func TestUpdateProfileReplacesUserWholesale(t *testing.T) {
	m, tokens, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			writeJSON(w, 200, `{"success":true,"data":{"user":{"id":"u1","username":"alice","email":"a@b.com"},"accessToken":"t1","refreshToken":"r1"}}`)
			return
		}
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/auth/profile", r.URL.Path)
		// Server response omits email: no client-side merging may resurrect it.
		writeJSON(w, 200, `{"success":true,"data":{"id":"u1","username":"alice","bio":"hello"}}`)
	}))

	m.Login(context.Background(), lostfound.LoginCredentials{Email: "a@b.com", Password: "x"})

	bio := "hello"
	m.UpdateProfile(context.Background(), lostfound.UpdateProfileData{Bio: &bio})

	state := m.Snapshot()
	require.NotNil(t, state.User)
	assert.Equal(t, "hello", state.User.Bio)
	assert.Empty(t, state.User.Email)

	cached := tokens.User()
	require.NotNil(t, cached)
	assert.Empty(t, cached.Email)
}

func TestInitializeRestoresValidSession(t *testing.T) {
	m, tokens, notifier := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("initialize must not hit the network")
	}))

	token := makeToken(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, tokens.SetTokens(token, "r1"))
	require.NoError(t, tokens.SetUser(&lostfound.User{ID: "u1", Username: "alice"}))

	m.Initialize()

	state := m.Snapshot()
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "alice", state.User.Username)
	assert.False(t, state.IsLoading)
	assert.Empty(t, state.Err)
	assert.Empty(t, notifier.errors)
}

func TestInitializeWithExpiredTokenStaysSilent(t *testing.T) {
	m, tokens, notifier := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("initialize must not hit the network")
	}))

	token := makeToken(t, map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, tokens.SetTokens(token, "r1"))
	require.NoError(t, tokens.SetUser(&lostfound.User{ID: "u1"}))

	m.Initialize()

	state := m.Snapshot()
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)
	assert.Empty(t, state.Err)
	assert.Empty(t, notifier.errors)
	assert.Empty(t, tokens.Token())
}

func TestClearError(t *testing.T) {
	m, _, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 400, `{"success":false,"message":"Invalid credentials"}`)
	}))

	m.Login(context.Background(), lostfound.LoginCredentials{})
	require.NotEmpty(t, m.Snapshot().Err)

	m.ClearError()
	assert.Empty(t, m.Snapshot().Err)
}

func TestSubscribeObservesStateChanges(t *testing.T) {
	m, _, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"success":true,"data":{"user":{"id":"u1","username":"alice"},"accessToken":"t1","refreshToken":"r1"}}`)
	}))

	var snapshots []State
	m.Subscribe(func(s State) { snapshots = append(snapshots, s) })

	m.Login(context.Background(), lostfound.LoginCredentials{Email: "a@b.com", Password: "x"})

	// First snapshot is the loading transition, last is the final state.
	require.GreaterOrEqual(t, len(snapshots), 2)
	assert.True(t, snapshots[0].IsLoading)
	last := snapshots[len(snapshots)-1]
	assert.True(t, last.IsAuthenticated)
	assert.False(t, last.IsLoading)
}
