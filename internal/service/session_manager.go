// Package service contains the engine services: the session manager and
// the cart synchronizer, constructed once at startup and passed by
// handle to consumers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tableside/tableside/internal/adapter/outbound/credstore"
	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
	"github.com/tableside/tableside/internal/apperrors"
	"github.com/tableside/tableside/internal/domain/session"
)

// AuthGateway is the remote auth API surface the session manager needs.
// Implemented by *gateway.Client; tests substitute fakes.
type AuthGateway interface {
	Login(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error)
	Register(ctx context.Context, req gateway.RegisterRequest) (*session.User, error)
	Profile(ctx context.Context) (*session.User, error)
	UpdateProfile(ctx context.Context, req gateway.UpdateProfileRequest) (*session.User, error)
	ChangePassword(ctx context.Context, req gateway.ChangePasswordRequest) error
	Logout(ctx context.Context) error
}

// CredentialStore persists the token and cached user together.
type CredentialStore interface {
	Load() (credstore.Credentials, error)
	Save(creds credstore.Credentials) error
	Clear() error
}

// SessionManager owns the session lifecycle: hydration at startup,
// expiry detection, silent profile refresh, login/logout, and forced
// invalidation from the transport's 401 policy.
//
// Invariant: token and user are set and cleared together under one
// mutex. IsAuthenticated is true exactly when a user is held.
type SessionManager struct {
	gw       AuthGateway
	store    CredentialStore
	logger   *slog.Logger
	validate *validator.Validate

	mu    sync.RWMutex
	state session.State
	token string
	user  *session.User

	// onRefresh observes completion of the hydration profile refresh.
	onRefresh func(error)
	wg        sync.WaitGroup
}

// ManagerOption configures a SessionManager.
type ManagerOption func(*SessionManager)

// WithRefreshHook registers a hook called when the background profile
// refresh finishes, with its error (nil on success). Used by tests and
// by UIs that want to re-render after the silent refresh.
func WithRefreshHook(hook func(error)) ManagerOption {
	return func(m *SessionManager) {
		m.onRefresh = hook
	}
}

// NewSessionManager creates the session manager. One instance per
// running client; consumers receive it by reference.
func NewSessionManager(gw AuthGateway, store CredentialStore, logger *slog.Logger, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		gw:       gw,
		store:    store,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		state:    session.StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Hydrate restores the session from the credential store at startup.
//
// A valid, non-expired cached pair authenticates immediately from cache
// so the caller sees no network latency, then a background profile
// refresh replaces the cached user with the fresh record. A refresh
// failure keeps the cached user: a transient network error must never
// deauthenticate a user who held a valid token. Only an explicit
// unauthorized response (via ForceInvalidate) ends the session.
func (m *SessionManager) Hydrate(ctx context.Context) {
	creds, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to load credentials, starting anonymous", "error", err)
		m.setAnonymous()
		return
	}
	if creds.IsZero() {
		m.setAnonymous()
		return
	}
	if creds.Token == "" || creds.User == nil {
		// Half-written credentials violate the pairing invariant.
		m.logger.Warn("incomplete cached credentials, clearing")
		m.clearStore()
		m.setAnonymous()
		return
	}
	if session.TokenExpired(creds.Token, time.Now()) {
		m.logger.Info("cached token expired, clearing")
		m.clearStore()
		m.setAnonymous()
		return
	}

	m.mu.Lock()
	m.token = creds.Token
	m.user = creds.User
	m.state = session.StateAuthenticated
	m.mu.Unlock()

	m.wg.Add(1)
	go m.refreshProfile(ctx, creds.Token)
}

// refreshProfile replaces the cached user with the fresh record. On any
// error the cached user stays; the session was already valid.
func (m *SessionManager) refreshProfile(ctx context.Context, token string) {
	defer m.wg.Done()

	fresh, err := m.gw.Profile(ctx)
	if err == nil {
		m.mu.Lock()
		// The session may have been invalidated or replaced while the
		// refresh was in flight; never resurrect it.
		if m.state == session.StateAuthenticated && m.token == token {
			m.user = fresh
			if saveErr := m.store.Save(credstore.Credentials{Token: token, User: fresh}); saveErr != nil {
				m.logger.Warn("failed to persist refreshed profile", "error", saveErr)
			}
		}
		m.mu.Unlock()
	} else {
		m.logger.Warn("profile refresh failed, keeping cached user", "error", err)
	}

	if m.onRefresh != nil {
		m.onRefresh(err)
	}
}

// WaitForRefresh blocks until any outstanding background refresh has
// finished. Intended for tests and orderly shutdown.
func (m *SessionManager) WaitForRefresh() {
	m.wg.Wait()
}

// Login authenticates against the gateway and stores the credentials.
// State is unchanged on failure.
func (m *SessionManager) Login(ctx context.Context, req gateway.LoginRequest) (*session.User, error) {
	if err := m.validateStruct(req); err != nil {
		return nil, err
	}

	resp, err := m.gw.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, fmt.Errorf("gateway returned incomplete login response")
	}

	if err := m.store.Save(credstore.Credentials{Token: resp.AccessToken, User: resp.User}); err != nil {
		m.logger.Warn("failed to persist credentials", "error", err)
	}

	m.mu.Lock()
	m.token = resp.AccessToken
	m.user = resp.User
	m.state = session.StateAuthenticated
	m.mu.Unlock()

	m.logger.Info("session authenticated", "user_id", resp.User.ID, "role", resp.User.Role)
	return resp.User, nil
}

// Register creates an account. It never authenticates the session.
func (m *SessionManager) Register(ctx context.Context, req gateway.RegisterRequest) (*session.User, error) {
	if err := m.validateStruct(req); err != nil {
		return nil, err
	}
	return m.gw.Register(ctx, req)
}

// Logout ends the session. The gateway call is best effort: network
// failures are logged and swallowed, local invalidation never depends
// on the server. Always succeeds from the caller's perspective.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.gw.Logout(ctx); err != nil {
		m.logger.Warn("logout notification failed", "error", err)
	}
	m.clearStore()
	m.setAnonymous()
	m.logger.Info("session ended")
}

// ForceInvalidate ends the session without notifying the gateway. Called
// by the transport's 401 policy when a non-exempt request is rejected.
func (m *SessionManager) ForceInvalidate() {
	m.clearStore()
	m.setAnonymous()
	m.logger.Info("session force-invalidated")
}

// UpdateProfile updates the profile and refreshes the cached user.
func (m *SessionManager) UpdateProfile(ctx context.Context, req gateway.UpdateProfileRequest) (*session.User, error) {
	if !m.IsAuthenticated() {
		return nil, apperrors.ErrNotPermitted
	}
	if err := m.validateStruct(req); err != nil {
		return nil, err
	}

	fresh, err := m.gw.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.state == session.StateAuthenticated {
		m.user = fresh
		if saveErr := m.store.Save(credstore.Credentials{Token: m.token, User: fresh}); saveErr != nil {
			m.logger.Warn("failed to persist updated profile", "error", saveErr)
		}
	}
	m.mu.Unlock()

	return fresh, nil
}

// ChangePassword rotates the password. Session state is untouched here:
// the security policy is that a successful rotation is followed by an
// explicit Logout by the caller, never a silently kept session.
func (m *SessionManager) ChangePassword(ctx context.Context, req gateway.ChangePasswordRequest) error {
	if !m.IsAuthenticated() {
		return apperrors.ErrNotPermitted
	}
	if err := m.validateStruct(req); err != nil {
		return err
	}
	return m.gw.ChangePassword(ctx, req)
}

// State returns the lifecycle state.
func (m *SessionManager) State() session.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a user is held. Always equal to
// User() != nil.
func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// User returns a copy of the current user record, or nil when anonymous.
func (m *SessionManager) User() *session.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the current bearer token, or "" when anonymous. The
// transport policy reads it to stamp outgoing requests.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *SessionManager) setAnonymous() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.state = session.StateAnonymous
	m.mu.Unlock()
}

func (m *SessionManager) clearStore() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear credential store", "error", err)
	}
}

// validateStruct runs client-side payload validation and translates
// failures into the shared validation error type. No network call is
// made for a payload that cannot pass.
func (m *SessionManager) validateStruct(s any) error {
	err := m.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		return &apperrors.ValidationError{
			Message: "Проверьте правильность заполнения полей",
			Fields:  fields,
		}
	}
	return err
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "email":
		return "некорректный email"
	case "min":
		return "слишком короткое значение (минимум " + fe.Param() + ")"
	case "max":
		return "слишком длинное значение (максимум " + fe.Param() + ")"
	case "e164":
		return "некорректный номер телефона"
	default:
		return "некорректное значение"
	}
}
