package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kvisli/glyptodon/domain"
)

// UnknownClaim is the sentinel used when no identity alias matches.
const UnknownClaim = "unknown"

// Claim field aliases accepted for the identity, in priority order.
// Backends differ in how they name these, so decoding is best-effort.
var (
	idAliases       = []string{"id", "_id", "userId", "sub"}
	usernameAliases = []string{"username", "user", "name"}
)

// Claims is what the client consumes from a bearer token.
type Claims struct {
	Identity  domain.Identity
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// DecodeClaims extracts identity and expiry from a bearer token without
// verifying the signature; the client holds no signing secret, the server
// remains the authority. A token without exp is rejected.
func DecodeClaims(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("malformed exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token has no exp claim")
	}

	return &Claims{
		Identity: domain.Identity{
			Id:       firstClaim(claims, idAliases),
			Username: firstClaim(claims, usernameAliases),
		},
		ExpiresAt: exp.Time,
	}, nil
}

// firstClaim returns the first non-empty string value among keys,
// falling back to the UnknownClaim sentinel.
func firstClaim(claims jwt.MapClaims, keys []string) string {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v
		}
	}
	return UnknownClaim
}
