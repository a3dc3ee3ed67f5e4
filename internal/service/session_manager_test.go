package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tableside/tableside/internal/adapter/outbound/credstore"
	"github.com/tableside/tableside/internal/adapter/outbound/gateway"
	"github.com/tableside/tableside/internal/apperrors"
	"github.com/tableside/tableside/internal/domain/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// assertAtomic checks the session pairing invariant at an observation
// point: a token exists exactly when a user does.
func assertAtomic(t *testing.T, m *SessionManager) {
	t.Helper()
	hasToken := m.Token() != ""
	hasUser := m.User() != nil
	if hasToken != hasUser {
		t.Fatalf("atomicity violated: token=%v user=%v", hasToken, hasUser)
	}
	if m.IsAuthenticated() != hasUser {
		t.Fatalf("IsAuthenticated() = %v but user present = %v", m.IsAuthenticated(), hasUser)
	}
}

func TestHydrateEmptyStore(t *testing.T) {
	t.Parallel()

	m := NewSessionManager(&fakeAuthGateway{}, &fakeCredStore{}, discardLogger())
	m.Hydrate(context.Background())

	if m.State() != session.StateAnonymous {
		t.Errorf("State = %s, want anonymous", m.State())
	}
	assertAtomic(t, m)
}

func TestHydrateExpiredTokenClearsStore(t *testing.T) {
	t.Parallel()

	store := &fakeCredStore{creds: credstore.Credentials{
		Token: testToken(t, time.Now().Add(-time.Hour)),
		User:  &session.User{ID: 1, Username: "chef", Role: session.RoleUser},
	}}
	m := NewSessionManager(&fakeAuthGateway{}, store, discardLogger())
	m.Hydrate(context.Background())

	if m.State() != session.StateAnonymous {
		t.Errorf("State = %s, want anonymous", m.State())
	}
	if store.clears != 1 {
		t.Errorf("store clears = %d, want 1", store.clears)
	}
	assertAtomic(t, m)
}

func TestHydrateValidTokenAuthenticatesFromCache(t *testing.T) {
	t.Parallel()

	cached := &session.User{ID: 1, Username: "chef", FirstName: "Old", Role: session.RoleUser}
	fresh := &session.User{ID: 1, Username: "chef", FirstName: "New", Role: session.RoleUser}

	profileStarted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	gw := &fakeAuthGateway{
		profileFn: func(ctx context.Context) (*session.User, error) {
			close(profileStarted)
			<-release
			return fresh, nil
		},
	}
	store := &fakeCredStore{creds: credstore.Credentials{
		Token: testToken(t, time.Now().Add(time.Hour)),
		User:  cached,
	}}
	m := NewSessionManager(gw, store, discardLogger(),
		WithRefreshHook(func(err error) { done <- err }))

	m.Hydrate(context.Background())

	// The cached user is visible immediately, before the refresh lands.
	<-profileStarted
	if u := m.User(); u == nil || u.FirstName != "Old" {
		t.Fatalf("User = %+v, want cached record before refresh", u)
	}
	if m.State() != session.StateAuthenticated {
		t.Fatalf("State = %s, want authenticated", m.State())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	m.WaitForRefresh()

	if u := m.User(); u == nil || u.FirstName != "New" {
		t.Errorf("User = %+v, want fresh record after refresh", u)
	}
	if store.current().User.FirstName != "New" {
		t.Error("refreshed user not persisted to store")
	}
	assertAtomic(t, m)
}

func TestHydrateRefreshFailureKeepsCachedUser(t *testing.T) {
	t.Parallel()

	cached := &session.User{ID: 1, Username: "chef", Role: session.RoleUser}
	done := make(chan error, 1)

	gw := &fakeAuthGateway{
		profileFn: func(ctx context.Context) (*session.User, error) {
			return nil, &apperrors.NetworkError{Cause: errors.New("connection refused")}
		},
	}
	store := &fakeCredStore{creds: credstore.Credentials{
		Token: testToken(t, time.Now().Add(time.Hour)),
		User:  cached,
	}}
	m := NewSessionManager(gw, store, discardLogger(),
		WithRefreshHook(func(err error) { done <- err }))

	m.Hydrate(context.Background())
	if err := <-done; !errors.Is(err, apperrors.ErrNetwork) {
		t.Fatalf("refresh err = %v, want network error", err)
	}
	m.WaitForRefresh()

	// A transient network failure never deauthenticates a valid session.
	if m.State() != session.StateAuthenticated {
		t.Errorf("State = %s, want authenticated after failed refresh", m.State())
	}
	if u := m.User(); u == nil || u.Username != "chef" {
		t.Errorf("User = %+v, want cached user kept", u)
	}
	assertAtomic(t, m)
}

func TestHydrateRefreshDoesNotResurrectInvalidatedSession(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	done := make(chan error, 1)
	gw := &fakeAuthGateway{
		profileFn: func(ctx context.Context) (*session.User, error) {
			<-release
			return &session.User{ID: 1, Username: "chef", Role: session.RoleUser}, nil
		},
	}
	store := &fakeCredStore{creds: credstore.Credentials{
		Token: testToken(t, time.Now().Add(time.Hour)),
		User:  &session.User{ID: 1, Username: "chef", Role: session.RoleUser},
	}}
	m := NewSessionManager(gw, store, discardLogger(),
		WithRefreshHook(func(err error) { done <- err }))

	m.Hydrate(context.Background())
	m.ForceInvalidate()
	close(release)
	<-done
	m.WaitForRefresh()

	if m.IsAuthenticated() {
		t.Error("refresh response resurrected an invalidated session")
	}
	assertAtomic(t, m)
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	user := &session.User{ID: 7, Username: "chef", Role: session.RoleUser}
	gw := &fakeAuthGateway{
		loginFn: func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
			return &gateway.LoginResponse{AccessToken: "a.b.c", User: user}, nil
		},
	}
	store := &fakeCredStore{}
	m := NewSessionManager(gw, store, discardLogger())

	got, err := m.Login(context.Background(), gateway.LoginRequest{UsernameOrEmail: "chef", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if got.ID != 7 {
		t.Errorf("user ID = %d, want 7", got.ID)
	}
	if m.State() != session.StateAuthenticated {
		t.Errorf("State = %s", m.State())
	}
	if store.current().Token != "a.b.c" {
		t.Error("credentials not persisted")
	}
	assertAtomic(t, m)
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	gw := &fakeAuthGateway{
		loginFn: func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
			return nil, &apperrors.AuthenticationError{Message: "Неверный логин или пароль"}
		},
	}
	m := NewSessionManager(gw, &fakeCredStore{}, discardLogger())
	m.Hydrate(context.Background())

	_, err := m.Login(context.Background(), gateway.LoginRequest{UsernameOrEmail: "chef", Password: "wrong"})
	if !errors.Is(err, apperrors.ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}

	var authErr *apperrors.AuthenticationError
	if !errors.As(err, &authErr) || authErr.Message != "Неверный логин или пароль" {
		t.Errorf("message = %v", err)
	}
	if m.State() != session.StateAnonymous {
		t.Errorf("State = %s, want anonymous unchanged", m.State())
	}
	assertAtomic(t, m)
}

func TestLoginValidationShortCircuits(t *testing.T) {
	t.Parallel()

	gw := &fakeAuthGateway{}
	m := NewSessionManager(gw, &fakeCredStore{}, discardLogger())

	_, err := m.Login(context.Background(), gateway.LoginRequest{UsernameOrEmail: "chef"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if gw.loginCalls != 0 {
		t.Errorf("gateway called %d times for an invalid payload", gw.loginCalls)
	}
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	t.Parallel()

	user := &session.User{ID: 7, Username: "chef", Role: session.RoleUser}
	gw := &fakeAuthGateway{
		loginFn: func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
			return &gateway.LoginResponse{AccessToken: "a.b.c", User: user}, nil
		},
		logoutFn: func(ctx context.Context) error {
			return &apperrors.NetworkError{Cause: errors.New("connection refused")}
		},
	}
	store := &fakeCredStore{}
	m := NewSessionManager(gw, store, discardLogger())
	if _, err := m.Login(context.Background(), gateway.LoginRequest{UsernameOrEmail: "chef", Password: "secret123"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	m.Logout(context.Background())

	if m.IsAuthenticated() {
		t.Error("still authenticated after logout")
	}
	if !store.current().IsZero() {
		t.Error("credentials not cleared despite gateway failure")
	}
	assertAtomic(t, m)
}

func TestForceInvalidate(t *testing.T) {
	t.Parallel()

	store := &fakeCredStore{creds: credstore.Credentials{
		Token: testToken(t, time.Now().Add(time.Hour)),
		User:  &session.User{ID: 1, Username: "chef", Role: session.RoleUser},
	}}
	gw := &fakeAuthGateway{
		profileFn: func(ctx context.Context) (*session.User, error) {
			return &session.User{ID: 1, Username: "chef", Role: session.RoleUser}, nil
		},
	}
	done := make(chan error, 1)
	m := NewSessionManager(gw, store, discardLogger(), WithRefreshHook(func(err error) { done <- err }))
	m.Hydrate(context.Background())
	<-done
	m.WaitForRefresh()

	m.ForceInvalidate()

	if m.State() != session.StateAnonymous {
		t.Errorf("State = %s, want anonymous", m.State())
	}
	if !store.current().IsZero() {
		t.Error("credentials not cleared")
	}
	assertAtomic(t, m)
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	t.Parallel()

	gw := &fakeAuthGateway{
		registerFn: func(ctx context.Context, req gateway.RegisterRequest) (*session.User, error) {
			return &session.User{ID: 9, Username: req.Username, Role: session.RoleUser}, nil
		},
	}
	m := NewSessionManager(gw, &fakeCredStore{}, discardLogger())
	m.Hydrate(context.Background())

	u, err := m.Register(context.Background(), gateway.RegisterRequest{
		Username:  "newbie",
		Email:     "new@example.com",
		Password:  "longenough",
		FirstName: "New",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if u.ID != 9 {
		t.Errorf("user ID = %d", u.ID)
	}
	if m.IsAuthenticated() {
		t.Error("register must not authenticate the session")
	}
}

func TestUpdateProfileRefreshesCache(t *testing.T) {
	t.Parallel()

	user := &session.User{ID: 7, Username: "chef", FirstName: "Old", Role: session.RoleUser}
	gw := &fakeAuthGateway{
		loginFn: func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
			return &gateway.LoginResponse{AccessToken: "a.b.c", User: user}, nil
		},
		updateProfileFn: func(ctx context.Context, req gateway.UpdateProfileRequest) (*session.User, error) {
			u := *user
			u.FirstName = req.FirstName
			return &u, nil
		},
	}
	store := &fakeCredStore{}
	m := NewSessionManager(gw, store, discardLogger())
	if _, err := m.Login(context.Background(), gateway.LoginRequest{UsernameOrEmail: "chef", Password: "secret123"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	got, err := m.UpdateProfile(context.Background(), gateway.UpdateProfileRequest{FirstName: "Fresh"})
	if err != nil {
		t.Fatalf("UpdateProfile() error: %v", err)
	}
	if got.FirstName != "Fresh" {
		t.Errorf("FirstName = %q", got.FirstName)
	}
	if m.User().FirstName != "Fresh" {
		t.Error("in-memory user not updated")
	}
	if store.current().User.FirstName != "Fresh" {
		t.Error("cached user not persisted")
	}
	if store.current().Token != "a.b.c" {
		t.Error("token lost while persisting profile update")
	}
}

func TestUpdateProfileRequiresAuthentication(t *testing.T) {
	t.Parallel()

	m := NewSessionManager(&fakeAuthGateway{}, &fakeCredStore{}, discardLogger())
	m.Hydrate(context.Background())

	if _, err := m.UpdateProfile(context.Background(), gateway.UpdateProfileRequest{}); !errors.Is(err, apperrors.ErrNotPermitted) {
		t.Errorf("err = %v, want ErrNotPermitted", err)
	}
}

func TestChangePasswordPassThrough(t *testing.T) {
	t.Parallel()

	var got gateway.ChangePasswordRequest
	gw := &fakeAuthGateway{
		loginFn: func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
			return &gateway.LoginResponse{
				AccessToken: "a.b.c",
				User:        &session.User{ID: 7, Username: "chef", Role: session.RoleUser},
			}, nil
		},
		changePasswordFn: func(ctx context.Context, req gateway.ChangePasswordRequest) error {
			got = req
			return nil
		},
	}
	m := NewSessionManager(gw, &fakeCredStore{}, discardLogger())
	if _, err := m.Login(context.Background(), gateway.LoginRequest{UsernameOrEmail: "chef", Password: "secret123"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	err := m.ChangePassword(context.Background(), gateway.ChangePasswordRequest{
		CurrentPassword: "secret123",
		NewPassword:     "evenmoresecret",
	})
	if err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}
	if got.NewPassword != "evenmoresecret" {
		t.Errorf("request not passed through: %+v", got)
	}
	// Rotation does not end the session here; callers follow up with Logout.
	if !m.IsAuthenticated() {
		t.Error("session ended by ChangePassword itself")
	}
}
