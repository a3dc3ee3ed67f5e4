package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether the bearer token's embedded expiry has
// passed at the given instant.
//
// The token is JWT-shaped; only the exp claim is read, with no signature
// verification. Cryptographic verification is the server's responsibility,
// this result is a UX hint so the client can skip a round trip it knows
// will fail. Fail-safe: any token that cannot be decoded, or that carries
// no exp claim, is treated as expired.
func TokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return !now.Before(exp.Time)
}
