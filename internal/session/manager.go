package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
)

// ScopePolicy selects which of the user's departments scope folder and
// document queries
type ScopePolicy string

const (
	// ScopeAll uses every department of the user
	ScopeAll ScopePolicy = "all"
	// ScopePrimary uses only the first department
	ScopePrimary ScopePolicy = "primary"
)

// ParseScopePolicy parses a policy name; empty means ScopeAll
func ParseScopePolicy(s string) (ScopePolicy, error) {
	switch ScopePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopePrimary:
		return ScopePrimary, nil
	}
	return "", fmt.Errorf("unknown department scope %q (want all or primary)", s)
}

// logoutTimeout bounds the best-effort backend logout
const logoutTimeout = 5 * time.Second

// Manager is the session state container. It is safe for concurrent use and
// serves as the token source for the API transport.
type Manager struct {
	mu        sync.RWMutex
	store     Store
	auth      repositories.AuthRepository
	policy    ScopePolicy
	logger    *slog.Logger
	session   *models.Session
	lastError string
	onLogout  []func()
	now       func() time.Time
}

// NewManager creates a session manager
func NewManager(store Store, auth repositories.AuthRepository, policy ScopePolicy, logger *slog.Logger) *Manager {
	if policy == "" {
		policy = ScopeAll
	}
	return &Manager{
		store:  store,
		auth:   auth,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Restore loads a previously persisted session into memory
func (m *Manager) Restore(ctx context.Context) error {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()
	return nil
}

// OnLogout registers fn to run after the local session is cleared.
// State containers use it to reset themselves.
func (m *Manager) OnLogout(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// Login validates the credentials, authenticates against the backend and
// persists the new session. On any failure the previous state is left
// untouched, false is returned and the reason is kept in LastError.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	creds := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validateCredentials(&creds); err != nil {
		m.fail("login rejected before request", err, err.Error())
		return false
	}

	res, err := m.auth.Login(ctx, creds)
	if err != nil {
		m.fail("login failed", err, domain.UserMessage(err, "Login failed"))
		return false
	}

	sess := &models.Session{
		Token:   res.Token,
		User:    res.User.Sanitized(),
		SavedAt: m.now().UTC(),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		m.fail("session not persisted", err, "Could not save the session")
		return false
	}

	m.mu.Lock()
	m.session = sess
	m.lastError = ""
	m.mu.Unlock()

	m.logger.Info("logged in",
		"user_id", sess.User.ID,
		"role", sess.User.Role,
		"departments", sess.User.DepartmentNames(),
	)
	return true
}

func (m *Manager) fail(msg string, err error, userMsg string) {
	m.logger.Warn(msg, "error", err)
	m.mu.Lock()
	m.lastError = userMsg
	m.mu.Unlock()
}

func validateCredentials(creds *models.Credentials) error {
	err := validation.ValidateStruct(creds,
		validation.Field(&creds.Email, validation.Required.Error("email is required"), is.Email.Error("email is not valid")),
		validation.Field(&creds.Password, validation.Required.Error("password is required")),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// LastError returns the user-facing reason of the last failed login
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// Logout tells the backend to invalidate the token and clears the local
// session. Local clearing always happens, even when the backend call fails
// or times out; the backend error is returned for display only.
func (m *Manager) Logout(ctx context.Context) (err error) {
	m.mu.RLock()
	var token string
	if m.session != nil {
		token = m.session.Token
	}
	m.mu.RUnlock()

	defer func() {
		if clearErr := m.clear(ctx); clearErr != nil {
			err = errors.Join(err, clearErr)
		}
	}()

	if token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()
	if err := m.auth.Logout(ctx, token); err != nil {
		m.logger.Warn("backend logout failed, clearing local session anyway", "error", err)
		return err
	}
	return nil
}

func (m *Manager) clear(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.lastError = ""
	hooks := append([]func(){}, m.onLogout...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	// The caller's context may be the one that just timed out
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockTimeout)
	defer cancel()
	if err := m.store.Clear(storeCtx); err != nil {
		m.logger.Error("failed to clear persisted session", "error", err)
		return err
	}
	m.logger.Info("logged out")
	return nil
}

// UpdateCurrentUser overwrites the persisted and in-memory user
func (m *Manager) UpdateCurrentUser(ctx context.Context, user models.User) error {
	m.mu.RLock()
	if m.session == nil {
		m.mu.RUnlock()
		return domain.ErrNoSession
	}
	updated := *m.session
	m.mu.RUnlock()

	updated.User = user.Sanitized()
	updated.SavedAt = m.now().UTC()
	if err := m.store.Save(ctx, &updated); err != nil {
		return fmt.Errorf("update current user: %w", err)
	}

	m.mu.Lock()
	m.session = &updated
	m.mu.Unlock()
	return nil
}

// Current returns a copy of the logged-in user
func (m *Manager) Current() (*models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, false
	}
	user := m.session.User.Sanitized()
	return &user, true
}

// Token returns the bearer token, or "" when logged out
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.Token
}

// IsAdmin reports whether the logged-in user has the Admin role
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil && m.session.User.IsAdmin()
}

// Policy returns the configured scope policy
func (m *Manager) Policy() ScopePolicy {
	return m.policy
}

// Scope returns the departments that scope folder and document queries
// under the configured policy. It is empty when logged out.
func (m *Manager) Scope() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil
	}

	if m.policy == ScopePrimary {
		if primary := m.session.User.PrimaryDepartment(); primary != "" {
			return []string{primary}
		}
		return nil
	}
	return m.session.User.DepartmentNames()
}

// TokenInfo decodes the stored token's claims for display
func (m *Manager) TokenInfo() (*models.TokenInfo, error) {
	token := m.Token()
	if token == "" {
		return nil, domain.ErrNoSession
	}
	return ParseToken(token)
}
