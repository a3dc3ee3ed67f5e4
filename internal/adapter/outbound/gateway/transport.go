package gateway

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Endpoints where a 401 is a semantic result (wrong credentials, wrong
// current password) rather than session invalidity. A 401 here must not
// deauthenticate the user.
var defaultExemptPaths = map[string]struct{}{
	"/auth/login":            {},
	"/auth/profile/password": {},
}

// AuthTransport is the request interceptor policy as an explicit
// http.RoundTripper. It stamps outgoing requests with the bearer token
// and a request ID, and invokes the injected invalidate callback when a
// non-exempt request comes back 401.
//
// Both dependencies are injected at construction so the policy is
// visible and testable instead of living in ambient package state.
type AuthTransport struct {
	// Base is the underlying round tripper. Defaults to http.DefaultTransport.
	Base http.RoundTripper

	// Token returns the current bearer token, or "" when anonymous.
	Token func() string

	// OnUnauthorized is called when a non-exempt request receives 401.
	OnUnauthorized func()

	// ExemptPaths overrides the default exemption set when non-nil.
	ExemptPaths map[string]struct{}

	Logger *slog.Logger
}

// NewAuthTransport builds the policy with the default exemption set.
func NewAuthTransport(token func() string, onUnauthorized func()) *AuthTransport {
	return &AuthTransport{
		Token:          token,
		OnUnauthorized: onUnauthorized,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per RoundTripper contract the request must not be mutated.
	clone := req.Clone(req.Context())
	if t.Token != nil {
		if token := t.Token(); token != "" {
			clone.Header.Set("Authorization", "Bearer "+token)
		}
	}
	clone.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := t.base().RoundTrip(clone)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !t.exempt(req.URL.Path) {
		if t.Logger != nil {
			t.Logger.Info("session invalidated by unauthorized response", "path", req.URL.Path)
		}
		if t.OnUnauthorized != nil {
			t.OnUnauthorized()
		}
	}

	return resp, nil
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *AuthTransport) exempt(path string) bool {
	paths := t.ExemptPaths
	if paths == nil {
		paths = defaultExemptPaths
	}
	_, ok := paths[path]
	return ok
}
