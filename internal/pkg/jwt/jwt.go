// Package jwt inspects the session bearer token on the client side. The
// portal signs and verifies tokens; this core only needs the subject (which
// user channel to join) and the expiry (whether the credential is still
// live), so claims are read without signature verification.
package jwt

import (
	"errors"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed bearer token")

type Identity struct {
	UserID    string
	ExpiresAt time.Time // zero when the token carries no expiry
}

// Live reports whether the credential can still be presented at time now.
func (id Identity) Live(now time.Time) bool {
	return id.UserID != "" && (id.ExpiresAt.IsZero() || now.Before(id.ExpiresAt))
}

type claims struct {
	UserID int64 `json:"user_id"`
	jwtlib.RegisteredClaims
}

// Inspect extracts the identity carried by a bearer token.
func Inspect(tokenStr string) (Identity, error) {
	var c claims
	if _, _, err := jwtlib.NewParser().ParseUnverified(tokenStr, &c); err != nil {
		return Identity{}, ErrMalformedToken
	}

	userID := c.Subject
	if userID == "" && c.UserID != 0 {
		userID = strconv.FormatInt(c.UserID, 10)
	}
	if userID == "" {
		return Identity{}, ErrMalformedToken
	}

	id := Identity{UserID: userID}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id, nil
}
