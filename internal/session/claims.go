package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/veterimap/veterimap/pkg/domain"
)

// ErrMalformedToken is returned when a token cannot be decoded into an identity.
var ErrMalformedToken = errors.New("malformed session token")

// Claims is the payload the API signs into session tokens.
type Claims struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	AccessLevel int    `json:"access_level,omitempty"`
	Email       string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// DecodeToken reads the claims of tok without verifying its signature.
// The API is the only party that can verify it; the client only needs the
// subject and role to render something before /me answers.
func DecodeToken(tok string, now time.Time) (*Claims, error) {
	if tok == "" {
		return nil, ErrMalformedToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: no subject", ErrMalformedToken)
	}
	if _, ok := domain.ParseRole(claims.Role); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", ErrMalformedToken, claims.Role)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", ErrMalformedToken)
	}
	return &claims, nil
}

// Identity is the resolved view of the logged-in user.
type Identity struct {
	UserID      string
	Role        domain.Role
	AccessLevel int
	HasProfile  bool
	Email       string
	Name        string
}

// HasRole reports whether the identity holds one of roles.
func (id *Identity) HasRole(roles ...domain.Role) bool {
	if id == nil {
		return false
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

func identityFromClaims(c *Claims) *Identity {
	role, _ := domain.ParseRole(c.Role)
	return &Identity{
		UserID:      c.UserID,
		Role:        role,
		AccessLevel: c.AccessLevel,
		Email:       c.Email,
	}
}
