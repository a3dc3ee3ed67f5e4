package gateway

import (
	"context"
	"net/http"

	"github.com/tableside/tableside/internal/domain/session"
)

// LoginRequest is the credentials payload for POST /auth/login.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token and the user record.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	User        *session.User `json:"user"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// UpdateProfileRequest is the payload for PUT /auth/profile.
type UpdateProfileRequest struct {
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
}

// ChangePasswordRequest is the payload for POST /auth/profile/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Login exchanges credentials for a token and user record.
// A 401 here is a semantic "wrong credentials" result; the auth
// transport's exemption set keeps it from invalidating the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account. It never authenticates the session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*session.User, error) {
	var user session.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile fetches the fresh profile for the current token.
func (c *Client) Profile(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the profile and returns the fresh record.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*session.User, error) {
	var user session.User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword rotates the password. Callers are expected to follow a
// success with an explicit logout.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/profile/password", req, nil)
}

// Logout notifies the server. Best effort only; the session manager
// clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
