// Package session owns the authenticated user, their stores and the active
// store selection.
//
// Auth operations (CheckLoginStatus, Login, RefreshProfile) are
// single-flight: one runs at a time and later calls wait their turn. Logout
// never waits. It bumps the session generation, and any in-flight result
// issued under an older generation is discarded.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/api"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/domain"
	apperrors "github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/errors"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/httputil"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/logging"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/metrics"
)

// AuthAPI is the subset of the backend the manager talks to.
type AuthAPI interface {
	Login(ctx context.Context, phone, password string) (*api.AuthResponse, error)
	Profile(ctx context.Context) (*domain.User, error)
	Register(ctx context.Context, phone string) (*httputil.Response, error)
	VerifyOTP(ctx context.Context, phone, otp string) (*api.AuthResponse, error)
	SendResetOTP(ctx context.Context, phone string) (*httputil.Response, error)
	VerifyResetOTP(ctx context.Context, phone, otp string) (*httputil.Response, error)
	ResetPassword(ctx context.Context, phone, otp, newPassword string) (*httputil.Response, error)
	SetPassword(ctx context.Context, data api.PasswordSet) (*httputil.Response, error)
	CompleteOwnerProfile(ctx context.Context, data api.ProfileUpdate) (*httputil.Response, error)
}

// TokenStore persists the token and active store id. Reads fail open.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Read(ctx context.Context) string
	Clear(ctx context.Context) error
	SaveActiveStore(ctx context.Context, storeID string) error
	ReadActiveStore(ctx context.Context) string
	ClearActiveStore(ctx context.Context) error
}

// Config wires a Manager.
type Config struct {
	API    AuthAPI
	Tokens TokenStore
	Logger *logging.Logger
	// Now is used for token expiry checks; defaults to time.Now.
	Now func() time.Time
}

// Manager is the session state owner. Build one per application root and
// pass it by reference.
type Manager struct {
	api    AuthAPI
	tokens TokenStore
	logger *logging.Logger
	now    func() time.Time

	// flight admits one auth operation at a time.
	flight chan struct{}

	mu          sync.RWMutex
	state       domain.State
	user        *domain.User
	token       string
	credential  string
	loading     bool
	activeStore *domain.Store
	generation  uint64

	subMu       sync.Mutex
	subscribers []subscriber
	nextSubID   int
}

type subscriber struct {
	id int
	fn func(domain.Session)
}

// New creates a Manager in the Unknown state.
func New(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		api:    cfg.API,
		tokens: cfg.Tokens,
		logger: logger,
		now:    now,
		flight: make(chan struct{}, 1),
		state:  domain.StateUnknown,
	}
}

// =============================================================================
// Readers
// =============================================================================

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() domain.Session {
	s := domain.Session{
		User:            m.user.Clone(),
		Token:           m.token,
		IsLoading:       m.loading,
		IsAuthenticated: m.state == domain.StateAuthenticated,
		State:           m.state,
	}
	if m.activeStore != nil {
		s.ActiveStoreID = m.activeStore.ID
	}
	return s
}

// ActiveStore returns the active store, if one is selected.
func (m *Manager) ActiveStore() (domain.Store, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.activeStore == nil {
		return domain.Store{}, false
	}
	return m.activeStore.Clone(), true
}

// ActiveStoreID returns the active store id, or "".
func (m *Manager) ActiveStoreID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.activeStore == nil {
		return ""
	}
	return m.activeStore.ID
}

// BearerToken is the HTTP client's token source. While a persisted token is
// being validated it returns that token, before the session is marked
// authenticated.
func (m *Manager) BearerToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential
}

// Generation returns the current session generation.
func (m *Manager) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously on the goroutine that made the change and must not
// call back into blocking Manager operations.
func (m *Manager) Subscribe(fn func(domain.Session)) (unsubscribe func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers = append(m.subscribers, subscriber{id: id, fn: fn})

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		for i, s := range m.subscribers {
			if s.id == id {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) notify() {
	snapshot := m.Snapshot()
	m.subMu.Lock()
	subs := make([]subscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	m.subMu.Unlock()

	for _, s := range subs {
		s.fn(snapshot)
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// CheckLoginStatus validates the persisted token once at startup. It never
// returns an error: every failure ends in the Unauthenticated state. The
// session leaves IsLoading set to false when it returns.
func (m *Manager) CheckLoginStatus(ctx context.Context) domain.Session {
	release, err := m.acquire(ctx)
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).Warn("login status check abandoned")
		return m.Snapshot()
	}
	defer release()

	gen := m.beginLoading()
	defer m.endLoading()

	token := m.tokens.Read(ctx)
	if token == "" {
		m.settleUnauthenticated(gen)
		return m.Snapshot()
	}

	if tokenExpired(token, m.now()) {
		m.logger.LogSecurityEvent(ctx, "token_expired", nil)
		m.clearPersistedToken(ctx)
		m.settleUnauthenticated(gen)
		return m.Snapshot()
	}

	if !m.setCredential(gen, token) {
		return m.Snapshot()
	}

	user, err := m.api.Profile(ctx)
	if err != nil {
		if m.isCurrent(gen) {
			m.logger.WithContext(ctx).WithError(err).Info("persisted token rejected; logging out")
			m.clearPersistedToken(ctx)
			m.settleUnauthenticated(gen)
		}
		return m.Snapshot()
	}

	persistedStore := m.tokens.ReadActiveStore(ctx)
	if !m.commitAuthenticated(ctx, gen, token, user, persistedStore) {
		m.discardStale(ctx, "check_login_status")
	}
	return m.Snapshot()
}

// Login exchanges credentials for a session. A backend rejection is not an
// error: the server's AuthResponse is returned and the session stays as it
// was. Transport and decoding failures return the generic error shape.
func (m *Manager) Login(ctx context.Context, phone, password string) (*api.AuthResponse, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	defer release()

	m.mu.RLock()
	state, gen := m.state, m.generation
	m.mu.RUnlock()
	if state == domain.StateAuthenticated {
		return nil, apperrors.ErrAlreadyLoggedIn
	}

	resp, err := m.api.Login(ctx, phone, password)
	if rejected(resp) {
		m.logger.LogSecurityEvent(ctx, "login_rejected", map[string]interface{}{
			"status":  resp.StatusCode,
			"message": resp.Message,
		})
		return resp, nil
	}
	if err != nil {
		return nil, apperrors.Normalize(err)
	}

	user := resp.User
	if user == nil {
		if !m.setCredential(gen, resp.Token) {
			m.discardStale(ctx, "login")
			return nil, apperrors.ErrStaleSession
		}
		user, err = m.api.Profile(ctx)
		if err != nil {
			m.clearCredential(gen)
			return nil, apperrors.Normalize(err)
		}
	}

	if !m.isCurrent(gen) {
		m.discardStale(ctx, "login")
		return nil, apperrors.ErrStaleSession
	}

	// A write failure is logged by the store; the in-memory session stands.
	_ = m.tokens.Save(ctx, resp.Token)

	persistedStore := m.tokens.ReadActiveStore(ctx)
	if !m.commitAuthenticated(ctx, gen, resp.Token, user, persistedStore) {
		m.clearPersistedToken(ctx)
		m.discardStale(ctx, "login")
		return nil, apperrors.ErrStaleSession
	}

	m.logger.LogSecurityEvent(ctx, "login", map[string]interface{}{"user_id": user.ID})
	resp.User = user.Clone()
	return resp, nil
}

// Logout clears persisted state and resets the session. It is idempotent
// and does not wait for in-flight auth operations, whose results are then
// discarded.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	m.state = domain.StateUnauthenticated
	m.user = nil
	m.token = ""
	m.credential = ""
	m.loading = false
	m.activeStore = nil
	gen := m.generation
	m.mu.Unlock()

	m.clearPersistedToken(ctx)
	_ = m.tokens.ClearActiveStore(ctx)

	metrics.RecordTransition(domain.StateUnauthenticated.String())
	m.logger.LogSecurityEvent(ctx, "logout", map[string]interface{}{"generation": gen})
	m.notify()
}

// RefreshProfile re-fetches the user and replaces it whole. The active
// store is re-validated against the new store list.
func (m *Manager) RefreshProfile(ctx context.Context) error {
	release, err := m.acquire(ctx)
	if err != nil {
		return apperrors.Network(err)
	}
	defer release()

	m.mu.RLock()
	state, gen, token := m.state, m.generation, m.token
	activeID := ""
	if m.activeStore != nil {
		activeID = m.activeStore.ID
	}
	m.mu.RUnlock()
	if state != domain.StateAuthenticated {
		return apperrors.ErrNotAuthenticated
	}

	user, err := m.api.Profile(ctx)
	if err != nil {
		return apperrors.Normalize(err)
	}
	if !m.commitAuthenticated(ctx, gen, token, user, activeID) {
		m.discardStale(ctx, "refresh_profile")
		return apperrors.ErrStaleSession
	}
	return nil
}

// =============================================================================
// Internal state transitions
// =============================================================================

func (m *Manager) acquire(ctx context.Context) (func(), error) {
	select {
	case m.flight <- struct{}{}:
		return func() { <-m.flight }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) beginLoading() uint64 {
	m.mu.Lock()
	m.loading = true
	gen := m.generation
	m.mu.Unlock()
	m.notify()
	return gen
}

func (m *Manager) endLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) isCurrent(gen uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation == gen
}

func (m *Manager) setCredential(gen uint64, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return false
	}
	m.credential = token
	return true
}

func (m *Manager) clearCredential(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation == gen && m.state != domain.StateAuthenticated {
		m.credential = ""
	}
}

// settleUnauthenticated moves to Unauthenticated unless the generation has
// moved on.
func (m *Manager) settleUnauthenticated(gen uint64) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	m.state = domain.StateUnauthenticated
	m.user = nil
	m.token = ""
	m.credential = ""
	m.activeStore = nil
	m.mu.Unlock()
	metrics.RecordTransition(domain.StateUnauthenticated.String())
}

// rejected reports a reply the backend answered without issuing a token:
// a non-2xx status, or a 2xx carrying only a message.
func rejected(resp *api.AuthResponse) bool {
	if resp == nil || resp.Raw == nil {
		return false
	}
	return !resp.Raw.OK() || (resp.Token == "" && resp.Message != "")
}

// commitAuthenticated installs user and token and re-selects the active
// store: preferredStoreID when it still resolves, otherwise the primary
// store. It returns false when gen is stale.
func (m *Manager) commitAuthenticated(ctx context.Context, gen uint64, token string, user *domain.User, preferredStoreID string) bool {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return false
	}
	m.state = domain.StateAuthenticated
	m.user = user.Clone()
	m.token = token
	m.credential = token

	var selected *domain.Store
	if s, ok := domain.FindStore(m.user.Stores, preferredStoreID); ok {
		selected = &s
	} else if s, ok := domain.PrimaryStore(m.user.Stores); ok {
		selected = &s
	}
	m.activeStore = selected
	m.mu.Unlock()

	metrics.RecordTransition(domain.StateAuthenticated.String())

	if selected != nil && selected.ID != preferredStoreID {
		if preferredStoreID != "" {
			m.logger.WithContext(ctx).WithField("store_id", preferredStoreID).Info("persisted store no longer available; using primary store")
		}
		_ = m.tokens.SaveActiveStore(ctx, selected.ID)
	}
	m.notify()
	return true
}

func (m *Manager) clearPersistedToken(ctx context.Context) {
	_ = m.tokens.Clear(ctx)
}

func (m *Manager) discardStale(ctx context.Context, op string) {
	metrics.RecordStaleResponse()
	m.logger.WithContext(ctx).WithField("operation", op).Info("discarding response from a previous session")
}
