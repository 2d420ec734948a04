package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openfleet/fleettenant/pkg/domain"
)

// DefaultTokenTTL is the default lifetime of an issued session token.
const DefaultTokenTTL = 24 * time.Hour

// TokenConfig holds session token configuration.
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// SessionClaims are the claims carried in a session token. The subject is the
// principal id; tenant id and role bind the token to the shard that verified
// the credential.
type SessionClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// TokenIssuer mints and verifies HS256 session tokens for the web layer.
type TokenIssuer struct {
	config TokenConfig
}

// NewTokenIssuer creates a token issuer.
func NewTokenIssuer(config TokenConfig) *TokenIssuer {
	if config.TTL == 0 {
		config.TTL = DefaultTokenTTL
	}
	return &TokenIssuer{config: config}
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.config.TTL
}

// Issue creates a signed session token for an authenticated session.
func (i *TokenIssuer) Issue(session *domain.Session) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.PrincipalID,
			Issuer:    i.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.TTL)),
		},
		TenantID: session.TenantID,
		Role:     string(session.Role),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.config.Secret)
}

// Verify parses and validates a session token, returning its claims.
func (i *TokenIssuer) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.config.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
