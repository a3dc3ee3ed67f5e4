// Package session contains the domain types for the client-side
// authentication session: the cached user record, roles, and the
// bearer-token expiry check.
package session

// Role represents a user role returned by the auth gateway.
type Role string

const (
	// RoleUser is a regular customer. Only this role may hold a cart.
	RoleUser Role = "user"
	// RoleManager is restaurant staff managing reservations.
	RoleManager Role = "manager"
	// RoleAdmin has full access to the admin surface.
	RoleAdmin Role = "admin"
)

// IsValid returns true if the role is a known valid role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	default:
		return false
	}
}

// CartEligible returns true if sessions with this role may hold a cart.
// Staff roles browse and manage reservations but never see a cart.
func (r Role) CartEligible() bool {
	return r == RoleUser
}

// User is the profile record cached alongside the bearer token.
// Field names mirror the auth gateway's JSON contract.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// State is the session lifecycle state.
type State string

const (
	// StateUninitialized means Hydrate has not run yet.
	StateUninitialized State = "uninitialized"
	// StateAnonymous means no valid credentials are held.
	StateAnonymous State = "anonymous"
	// StateAuthenticated means a token and user are held together.
	StateAuthenticated State = "authenticated"
)
