// Package auth holds the security-critical credential routing path and the
// tenant provisioning service built on top of the catalog.
package auth

import (
	"context"

	"github.com/openfleet/fleettenant/pkg/catalog"
	"github.com/openfleet/fleettenant/pkg/domain"
	"github.com/openfleet/fleettenant/pkg/identifier"
	"github.com/openfleet/fleettenant/pkg/shard"
)

// Router resolves a principal id to the tenant shard that owns it and
// verifies the credential inside that shard. Stateless per call; it holds no
// sessions and performs no retries.
type Router struct {
	catalog *catalog.Catalog
}

// NewRouter creates an authentication router over a catalog.
func NewRouter(c *catalog.Catalog) *Router {
	return &Router{catalog: c}
}

// Authenticate verifies a principal id and secret and returns a session bound
// to the owning tenant.
//
// The tenant code inside a principal id is a routing hint, not proof of
// identity: several tenants may share one code. Every code-matching shard is
// a candidate, and the credential succeeds only where the principal actually
// exists with a matching secret. All failure paths, from a malformed id to a
// wrong secret, collapse into the single ErrAuthenticationFailed so callers
// learn nothing about which step failed.
func (r *Router) Authenticate(ctx context.Context, principalID, secret string) (*domain.Session, error) {
	parsed, err := identifier.ParsePrincipalID(principalID)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}

	candidates, err := r.catalog.LocateByCode(ctx, parsed.TenantCode)
	if err != nil {
		return nil, domain.ErrAuthenticationFailed
	}

	for _, candidate := range candidates {
		principal, err := verifyInShard(ctx, candidate.Path, principalID, secret)
		if err != nil {
			// Not present in this candidate, or present with a different
			// secret. Either way the remaining candidates must still be
			// tried: a code match alone proves nothing.
			continue
		}
		return &domain.Session{
			PrincipalID: principal.ID,
			Role:        principal.Role,
			TenantID:    candidate.Tenant.ID,
		}, nil
	}

	return nil, domain.ErrAuthenticationFailed
}

func verifyInShard(ctx context.Context, path, principalID, secret string) (*domain.Principal, error) {
	st, err := shard.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.VerifySecret(ctx, principalID, secret)
}
