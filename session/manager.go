// Package session owns the client-side authentication lifecycle: login,
// logout, refresh, hydration from persisted credentials and the periodic
// liveness check. It is the only component that classifies auth errors;
// consumers read Snapshot and render.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/eduhub/go-edu-client/authapi"
	"github.com/eduhub/go-edu-client/internal/apiutil"
	"github.com/eduhub/go-edu-client/token"
	"github.com/eduhub/go-edu-client/token/credstore"
	"github.com/eduhub/go-edu-client/users"
)

// DefaultLivenessInterval is how often an authenticated session re-checks
// that its persisted access token is still present and structurally valid.
// Another client of the same profile may have logged out underneath us.
const DefaultLivenessInterval = 30 * time.Second

// AuthAPI is the slice of the auth endpoint client the manager depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authapi.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*authapi.RefreshResponse, error)
	Register(ctx context.Context, req authapi.RegisterRequest) error
	Logout(ctx context.Context, refreshToken string) error
}

// Manager is the session state machine. One Manager is owned by the
// application root and handed to consumers explicitly; there is no
// package-level instance.
type Manager struct {
	api              AuthAPI
	store            credstore.Store
	verifier         *token.Verifier
	log              zerolog.Logger
	livenessInterval time.Duration

	mu           sync.Mutex
	state        State
	user         *users.User
	accessToken  string
	refreshToken string
	initialized  bool
	// epoch is bumped on every local clear. A refresh outcome observed
	// under an older epoch is discarded: logout wins over an in-flight
	// refresh.
	epoch uint64

	refreshGroup singleflight.Group

	stop     chan struct{}
	stopOnce sync.Once
}

// Option modifies a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithLivenessInterval overrides the periodic credential check interval.
func WithLivenessInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.livenessInterval = d
		}
	}
}

// NewManager creates a session manager. The liveness watcher starts
// immediately but only acts while the session is authenticated; call
// Close to stop it.
func NewManager(api AuthAPI, store credstore.Store, verifier *token.Verifier, options ...Option) (*Manager, error) {
	if api == nil {
		return nil, fmt.Errorf("[NewManager] auth API is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[NewManager] credential store is required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("[NewManager] token verifier is required")
	}

	m := &Manager{
		api:              api,
		store:            store,
		verifier:         verifier,
		log:              zerolog.Nop(),
		livenessInterval: DefaultLivenessInterval,
		state:            StateUnauthenticated,
		stop:             make(chan struct{}),
	}
	for _, opt := range options {
		opt(m)
	}

	go m.watchCredentials()
	return m, nil
}

// Close stops the liveness watcher. It does not clear the session.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Initialize hydrates the session from persisted credentials. A missing,
// corrupt or unverifiable persisted token leaves the session
// unauthenticated and clears the offending entry; neither case is an
// error. Initialize is idempotent: repeated calls settle on the same
// state.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return nil
	}
	m.state = StateInitializing
	m.mu.Unlock()

	creds, err := m.store.Load()
	if err != nil {
		m.discard("unreadable persisted credentials", err)
		return nil
	}
	if creds.Empty() {
		m.settle(StateUnauthenticated)
		return nil
	}

	claims, err := m.verifier.VerifyAccess(creds.AccessToken)
	if err != nil {
		m.discard("persisted access token failed verification", err)
		return nil
	}

	user := creds.User
	if user == nil {
		user = &users.User{
			ID:    claims.UserID,
			Name:  claims.Name,
			Email: claims.Email,
			Role:  claims.Role,
		}
	}
	if !user.SameIdentity(claims.UserID, claims.Email) {
		m.discard("cached user record disagrees with token claims", ClaimsMismatchErr)
		return nil
	}

	m.mu.Lock()
	m.user = user
	m.accessToken = creds.AccessToken
	m.refreshToken = creds.RefreshToken
	m.state = StateAuthenticated
	m.initialized = true
	m.mu.Unlock()
	m.log.Info().Str("user", user.Email).Msg("session restored")
	return nil
}

// Login authenticates against the backend. The returned token is verified
// and cross-checked against the returned user record before any state is
// trusted; a 200 with an inconsistent payload is a failed login.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return m.classifyLogin(err)
	}

	claims, err := m.verifier.VerifyAccess(resp.AccessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", TokenVerificationErr, err)
	}
	if !resp.User.SameIdentity(claims.UserID, claims.Email) {
		return fmt.Errorf("%w: token subject %s/%s, user record %s/%s",
			ClaimsMismatchErr, claims.UserID, claims.Email, resp.User.ID, resp.User.Email)
	}

	user := resp.User
	if err := m.store.Save(resp.AccessToken, resp.RefreshToken, &user); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	m.mu.Lock()
	m.user = &user
	m.accessToken = resp.AccessToken
	m.refreshToken = resp.RefreshToken
	m.state = StateAuthenticated
	m.initialized = true
	m.mu.Unlock()
	m.log.Info().Str("user", user.Email).Str("role", string(user.Role)).Msg("logged in")
	return nil
}

// Register creates a new account. It deliberately does not establish a
// session; the user logs in explicitly afterwards.
func (m *Manager) Register(ctx context.Context, name, email, password string, role users.RoleType) error {
	err := m.api.Register(ctx, authapi.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		if apiutil.IsTransient(err) {
			return fmt.Errorf("%w: %v", ServerUnreachableErr, err)
		}
		return err
	}
	return nil
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers share a single in-flight refresh. Any failure is terminal for
// the session: local state is cleared and the server is informed
// best-effort.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	refreshToken := m.refreshToken
	startEpoch := m.epoch
	if refreshToken == "" {
		m.mu.Unlock()
		return SessionExpiredErr
	}
	if m.state == StateAuthenticated {
		m.state = StateRefreshing
	}
	m.mu.Unlock()

	res, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		return m.doRefresh(ctx, refreshToken)
	})

	m.mu.Lock()
	if m.epoch != startEpoch {
		// Logged out while the refresh was in flight; discard the outcome.
		m.mu.Unlock()
		return SessionExpiredErr
	}
	if err != nil {
		m.mu.Unlock()
		m.forceLogout(context.WithoutCancel(ctx))
		return err
	}

	resp := res.(*authapi.RefreshResponse)
	user := resp.User
	m.accessToken = resp.AccessToken
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	if err := m.store.Save(resp.AccessToken, refreshToken, &user); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist refreshed credentials")
	}
	return nil
}

func (m *Manager) doRefresh(ctx context.Context, refreshToken string) (*authapi.RefreshResponse, error) {
	resp, err := m.api.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", SessionExpiredErr, err)
	}

	claims, err := m.verifier.VerifyAccess(resp.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", TokenVerificationErr, err)
	}
	if !resp.User.SameIdentity(claims.UserID, claims.Email) {
		return nil, ClaimsMismatchErr
	}
	return resp, nil
}

// Logout clears the session. The server is informed best-effort; local
// state is cleared regardless of whether the server was reachable.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	refreshToken := m.refreshToken
	m.state = StateLoggingOut
	m.mu.Unlock()

	if refreshToken != "" {
		if err := m.api.Logout(ctx, refreshToken); err != nil {
			m.log.Debug().Err(err).Msg("server logout failed, clearing local state anyway")
		}
	}

	m.mu.Lock()
	m.clearLocked()
	m.mu.Unlock()
	return m.store.Clear()
}

// UpdateUser merges a partial profile update into the cached user record
// and persists it alongside the current tokens.
func (m *Manager) UpdateUser(update users.User) error {
	m.mu.Lock()
	if m.state != StateAuthenticated || m.user == nil {
		m.mu.Unlock()
		return NotAuthenticatedErr
	}
	merged := *m.user
	if update.Name != "" {
		merged.Name = update.Name
	}
	if update.Email != "" {
		merged.Email = update.Email
	}
	if update.Avatar != "" {
		merged.Avatar = update.Avatar
	}
	m.user = &merged
	accessToken, refreshToken := m.accessToken, m.refreshToken
	m.mu.Unlock()

	return m.store.Save(accessToken, refreshToken, &merged)
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:           m.state,
		IsAuthenticated: m.state == StateAuthenticated && m.user != nil && m.accessToken != "",
		IsRefreshing:    m.state == StateRefreshing,
	}
	if m.user != nil {
		user := *m.user
		snap.User = &user
	}
	return snap
}

// AccessToken returns the current access token, if one is held.
func (m *Manager) AccessToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken, m.accessToken != ""
}

// HasRefreshToken reports whether a refresh token is held.
func (m *Manager) HasRefreshToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshToken != ""
}

func (m *Manager) classifyLogin(err error) error {
	if apiutil.IsStatus(err, http.StatusUnauthorized) {
		return fmt.Errorf("%w: %v", InvalidCredentialsErr, err)
	}
	if apiutil.IsTransient(err) {
		return fmt.Errorf("%w: %v", ServerUnreachableErr, err)
	}
	return err
}

// clearLocked wipes the in-memory session. Callers hold m.mu.
func (m *Manager) clearLocked() {
	m.user = nil
	m.accessToken = ""
	m.refreshToken = ""
	m.state = StateUnauthenticated
	m.epoch++
}

// forceLogout clears local state first, then informs the server
// best-effort. Used when the session is already known to be unusable.
func (m *Manager) forceLogout(ctx context.Context) {
	m.mu.Lock()
	refreshToken := m.refreshToken
	m.clearLocked()
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("failed to clear persisted credentials")
	}
	if refreshToken != "" {
		if err := m.api.Logout(ctx, refreshToken); err != nil {
			m.log.Debug().Err(err).Msg("best-effort server logout failed")
		}
	}
}

// discard clears everything after a failed hydration and settles the
// session as unauthenticated and initialized.
func (m *Manager) discard(reason string, err error) {
	m.log.Warn().Err(err).Msg(reason)
	if clearErr := m.store.Clear(); clearErr != nil {
		m.log.Warn().Err(clearErr).Msg("failed to clear persisted credentials")
	}
	m.settle(StateUnauthenticated)
}

func (m *Manager) settle(state State) {
	m.mu.Lock()
	m.state = state
	m.initialized = true
	m.mu.Unlock()
}

// watchCredentials is the periodic liveness check: while authenticated,
// confirm the persisted access token is still present and structurally
// valid. If another client of the same profile cleared or rotated it,
// re-converge local state.
func (m *Manager) watchCredentials() {
	ticker := time.NewTicker(m.livenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.checkCredentials()
		}
	}
}

func (m *Manager) checkCredentials() {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return
	}
	current := m.accessToken
	m.mu.Unlock()

	creds, err := m.store.Load()
	if err != nil || creds.AccessToken == "" || token.CheckStructure(creds.AccessToken) != nil {
		m.log.Warn().Msg("persisted access token vanished or corrupt, forcing logout")
		m.forceLogout(context.Background())
		return
	}
	if creds.AccessToken == current {
		return
	}

	// Another client rotated the tokens; adopt them if they verify.
	claims, err := m.verifier.VerifyAccess(creds.AccessToken)
	if err != nil {
		m.forceLogout(context.Background())
		return
	}
	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.accessToken = creds.AccessToken
		if creds.RefreshToken != "" {
			m.refreshToken = creds.RefreshToken
		}
		if creds.User != nil && creds.User.SameIdentity(claims.UserID, claims.Email) {
			user := *creds.User
			m.user = &user
		}
	}
	m.mu.Unlock()
}
