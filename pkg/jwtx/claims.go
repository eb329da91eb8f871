package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL is the lifetime of an access token.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the lifetime of an opaque refresh token.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the access-token claims. TokenVersion is compared against the
// user's stored counter on every request so a bump revokes every token
// minted before it.
type Claims struct {
	jwt.RegisteredClaims

	// TokenVersion is the user's token_version at issuance.
	TokenVersion int64 `json:"ver"`

	// Email of the subject at issuance, informational only.
	Email string `json:"email,omitempty"`
}

// NewAccessClaims builds claims for subject valid for ttl from now.
func NewAccessClaims(subject, email string, version int64, issuer string, ttl time.Duration, now time.Time) Claims {
	now = now.UTC()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenVersion: version,
		Email:        email,
	}
}
