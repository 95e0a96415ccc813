// Package session owns the authentication token lifecycle and the cached
// current-user record. It is the single writer of the pipeline's bearer token
// and keeps it in agreement with the credential store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
	"github.com/dmitrijs2005/cidadefoco/internal/client/credstore"
	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
	"github.com/dmitrijs2005/cidadefoco/internal/logging"
)

// State is the session lifecycle state. Anonymous is both the initial state
// and re-enterable after logout; there is no terminal state.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateSessionExpired State = "session_expired"
)

// Manager drives the session state machine over the request pipeline and the
// credential store. It registers itself as the pipeline's unauthorized hook,
// so any request that ends in a 401 tears the session down automatically.
type Manager struct {
	api   *api.Client
	store credstore.Store
	log   logging.Logger

	mu    sync.Mutex
	state State
	user  *models.User
}

func NewManager(apiClient *api.Client, store credstore.Store, log logging.Logger) *Manager {
	m := &Manager{
		api:   apiClient,
		store: store,
		log:   log,
		state: StateAnonymous,
	}
	apiClient.OnUnauthorized(m.expire)
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CachedUser returns the locally cached user record, or nil. It may be stale;
// CurrentUser refreshes it from the backend.
func (m *Manager) CachedUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

// Restore loads a previously persisted session at process start. A missing
// token leaves the session anonymous; a JWT whose exp claim already passed is
// purged instead of restored.
func (m *Manager) Restore(ctx context.Context) error {
	token, err := m.store.Get(ctx, credstore.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read stored token: %w", err)
	}
	if token == "" {
		return nil
	}

	if tokenExpired(token) {
		m.log.Info(ctx, "stored token already expired, discarding")
		return m.store.Clear(ctx)
	}

	m.api.SetToken(token)

	m.mu.Lock()
	m.state = StateAuthenticated
	m.mu.Unlock()

	if raw, err := m.store.Get(ctx, credstore.KeyUser); err == nil && raw != "" {
		var u models.User
		if json.Unmarshal([]byte(raw), &u) == nil {
			m.mu.Lock()
			m.user = &u
			m.mu.Unlock()
		}
	}

	m.log.Info(ctx, "session restored")
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the backend. On success the token and user
// record are persisted atomically, the pipeline token is installed, and the
// session becomes Authenticated. On any failure the session returns to
// Anonymous and nothing is persisted. Input validation (non-empty fields) is
// the caller's responsibility.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	m.setState(StateAuthenticating)

	var resp models.AuthResponse
	err := m.api.PostJSON(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		m.setState(StateAnonymous)
		return nil, api.DefaultMessage(err, "could not log in")
	}
	if resp.Token == "" {
		m.setState(StateAnonymous)
		return nil, &api.APIError{Status: 0, Message: "login response carried no token"}
	}

	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		m.setState(StateAnonymous)
		return nil, err
	}
	err = m.store.SetAll(ctx, map[string]string{
		credstore.KeyToken: resp.Token,
		credstore.KeyUser:  string(userJSON),
	})
	if err != nil {
		m.setState(StateAnonymous)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.api.SetToken(resp.Token)

	m.mu.Lock()
	m.state = StateAuthenticated
	u := resp.User
	m.user = &u
	m.mu.Unlock()

	m.log.Info(ctx, "logged in", "email", resp.User.Email)
	return &resp, nil
}

// CurrentUser fetches the account record from /user/me, refreshing the local
// cache. It fails fast with ErrNotAuthenticated, without touching the
// network, when no token is installed. A 401 response has already torn the
// session down by the time the error is returned.
func (m *Manager) CurrentUser(ctx context.Context) (*models.User, error) {
	if m.api.Token() == "" {
		return nil, ErrNotAuthenticated
	}

	var u models.User
	if err := m.api.GetJSON(ctx, "/user/me", &u); err != nil {
		return nil, api.DefaultMessage(err, "could not fetch user")
	}

	m.cacheUser(ctx, &u)
	return &u, nil
}

// UpdateProfile sends a partial profile update. Password changes are
// validated locally first: a new password requires the current one, and must
// match its confirmation. Validation failures never reach the network.
func (m *Manager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	if upd.NewPassword != "" {
		if upd.CurrentPassword == "" {
			return nil, ErrCurrentPasswordRequired
		}
		if upd.ConfirmPassword != upd.NewPassword {
			return nil, ErrPasswordConfirmation
		}
	}
	if m.api.Token() == "" {
		return nil, ErrNotAuthenticated
	}

	var u models.User
	if err := m.api.PutJSON(ctx, "/user/profile", upd, &u); err != nil {
		return nil, api.DefaultMessage(err, "could not update profile")
	}

	m.cacheUser(ctx, &u)
	return &u, nil
}

type profileImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

// UpdateProfileImage points the profile picture at an already-uploaded asset.
func (m *Manager) UpdateProfileImage(ctx context.Context, imageURL string) (*models.User, error) {
	if m.api.Token() == "" {
		return nil, ErrNotAuthenticated
	}

	var u models.User
	if err := m.api.PutJSON(ctx, "/user/profile-image", profileImageRequest{ImageURL: imageURL}, &u); err != nil {
		return nil, api.DefaultMessage(err, "could not update profile image")
	}

	m.cacheUser(ctx, &u)
	return &u, nil
}

// Logout purges all session state. It is idempotent: logging out while
// already logged out succeeds.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to purge credentials: %w", err)
	}
	m.api.ClearToken()

	m.mu.Lock()
	m.state = StateAnonymous
	m.user = nil
	m.mu.Unlock()

	m.log.Info(ctx, "logged out")
	return nil
}

// expire is the pipeline's unauthorized hook: purge credentials, drop the
// token, and park the session in SessionExpired until the next login/logout.
func (m *Manager) expire(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error(ctx, "failed to purge credentials", "error", err)
	}
	m.api.ClearToken()

	m.mu.Lock()
	m.state = StateSessionExpired
	m.user = nil
	m.mu.Unlock()

	m.log.Warn(ctx, "session expired, credentials purged")
}

// cacheUser refreshes the in-memory and persisted copies of the user record
// after a confirmed backend round trip. Persistence is best effort.
func (m *Manager) cacheUser(ctx context.Context, u *models.User) {
	m.mu.Lock()
	copied := *u
	m.user = &copied
	m.mu.Unlock()

	if raw, err := json.Marshal(u); err == nil {
		if err := m.store.Set(ctx, credstore.KeyUser, string(raw)); err != nil {
			m.log.Warn(ctx, "failed to cache user record", "error", err)
		}
	}
}
