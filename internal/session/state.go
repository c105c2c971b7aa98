package session

import (
	"context"
	"sync"

	"github.com/Michaelanand123singh/lostfound-client/internal/lostfound"
	"github.com/rs/zerolog/log"
)

// State is a snapshot of the session visible to UI surfaces.
// IsAuthenticated is true iff User is non-nil and the stored access token was
// still valid at the time of the last check.
type State struct {
	User            *lostfound.User
	IsAuthenticated bool
	IsLoading       bool
	Err             string
}

// Notifier receives transient user-facing notifications, the toast layer of
// whatever UI consumes the container.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// Manager is the session state container: one shared snapshot plus the named
// actions UI surfaces call. Every action is a terminal error boundary; a
// failure ends up in State.Err and a notification, never in a panic or a
// returned error. Construct exactly one per process and share it.
type Manager struct {
	client   *lostfound.Client
	service  *Service
	notifier Notifier

	mu        sync.Mutex
	state     State
	listeners []func(State)
}

func NewManager(client *lostfound.Client, service *Service, notifier Notifier) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		client:   client,
		service:  service,
		notifier: notifier,
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers a listener invoked with a snapshot after every state
// change. Listeners run synchronously on the mutating goroutine.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) setState(mutate func(*State)) {
	m.mu.Lock()
	mutate(&m.state)
	snapshot := m.state
	listeners := m.listeners
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (m *Manager) begin() {
	m.setState(func(s *State) {
		s.IsLoading = true
		s.Err = ""
	})
}

func (m *Manager) fail(err error, fallback string) {
	msg := lostfound.ErrorMessage(err, fallback)
	m.setState(func(s *State) {
		s.IsLoading = false
		s.Err = msg
	})
	m.notifier.Error(msg)
}

// Login authenticates, persists the session, and flips the state to
// authenticated. Failures land in State.Err with the backend's message when
// it provided one.
func (m *Manager) Login(ctx context.Context, creds lostfound.LoginCredentials) {
	m.begin()

	auth, err := m.client.Login(ctx, creds)
	if err != nil {
		m.fail(err, "Login failed")
		return
	}

	if err := m.service.SaveSession(auth.AccessToken, auth.RefreshToken, auth.User); err != nil {
		log.Warn().Err(err).Msg("failed to persist session")
	}

	m.setState(func(s *State) {
		s.User = auth.User
		s.IsAuthenticated = true
		s.IsLoading = false
		s.Err = ""
	})
	m.notifier.Success("Welcome back!")
}

// Register creates an account; same contract as Login.
func (m *Manager) Register(ctx context.Context, creds lostfound.RegisterCredentials) {
	m.begin()

	auth, err := m.client.Register(ctx, creds)
	if err != nil {
		m.fail(err, "Registration failed")
		return
	}

	if err := m.service.SaveSession(auth.AccessToken, auth.RefreshToken, auth.User); err != nil {
		log.Warn().Err(err).Msg("failed to persist session")
	}

	m.setState(func(s *State) {
		s.User = auth.User
		s.IsAuthenticated = true
		s.IsLoading = false
		s.Err = ""
	})
	m.notifier.Success("Account created successfully!")
}

// Logout tells the backend best-effort, then unconditionally clears local
// state and storage. A failing server call is logged, not surfaced.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("logout request failed")
	}

	m.service.ClearSession()
	m.setState(func(s *State) {
		*s = State{}
	})
	m.notifier.Success("Logged out successfully")
}

// UpdateProfile sends partial fields and replaces the user wholesale with
// the server's returned representation. No client-side merging.
func (m *Manager) UpdateProfile(ctx context.Context, data lostfound.UpdateProfileData) {
	m.begin()

	user, err := m.client.UpdateProfile(ctx, data)
	if err != nil {
		m.fail(err, "Profile update failed")
		return
	}

	if err := m.service.SetUser(user); err != nil {
		log.Warn().Err(err).Msg("failed to persist updated user")
	}

	m.setState(func(s *State) {
		s.User = user
		s.IsLoading = false
		s.Err = ""
	})
	m.notifier.Success("Profile updated successfully!")
}

// Initialize restores the session from storage at application start.
// Auth-check failures are silent: the resulting state is simply "not
// authenticated", with no error or notification.
func (m *Manager) Initialize() {
	m.setState(func(s *State) {
		s.IsLoading = true
	})

	user := m.service.InitializeAuth()
	m.setState(func(s *State) {
		s.User = user
		s.IsAuthenticated = user != nil
		s.IsLoading = false
		s.Err = ""
	})
}

// ClearError resets State.Err with no other side effects.
func (m *Manager) ClearError() {
	m.setState(func(s *State) {
		s.Err = ""
	})
}
