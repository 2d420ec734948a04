package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openfleet/fleettenant/pkg/catalog"
	"github.com/openfleet/fleettenant/pkg/domain"
	"github.com/openfleet/fleettenant/pkg/identifier"
	"github.com/openfleet/fleettenant/pkg/secrets"
	"github.com/openfleet/fleettenant/pkg/shard"
)

// Contact carries the owner's contact details captured at registration.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// RegisterResult is the outcome of a successful tenant registration.
type RegisterResult struct {
	Tenant           *domain.Tenant
	OwnerPrincipalID string
}

// Provisioner orchestrates tenant registration and principal enrollment.
type Provisioner struct {
	catalog *catalog.Catalog
}

// NewProvisioner creates a provisioning service over a catalog.
func NewProvisioner(c *catalog.Catalog) *Provisioner {
	return &Provisioner{catalog: c}
}

// RegisterTenant provisions a new tenant and seeds its owner principal with
// sequence 1. The owner is written into the staged shard before it is
// published, so registration is atomic: a failure at any step leaves no trace.
func (p *Provisioner) RegisterTenant(ctx context.Context, displayName, ownerName, ownerSecret string, contact Contact) (*RegisterResult, error) {
	if strings.TrimSpace(ownerSecret) == "" {
		return nil, fmt.Errorf("%w: owner secret is required", domain.ErrProvisioningFailed)
	}

	secretHash, err := secrets.HashSecret(ownerSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: hash owner secret: %v", domain.ErrProvisioningFailed, err)
	}

	var ownerID string
	tenant, err := p.catalog.Create(ctx, domain.Tenant{
		DisplayName: strings.TrimSpace(displayName),
		OwnerName:   strings.TrimSpace(ownerName),
	}, func(ctx context.Context, st *shard.Store, t *domain.Tenant) error {
		seq, err := st.NextSequence(ctx, domain.RoleOwner)
		if err != nil {
			return err
		}
		ownerID = identifier.FormatPrincipalID(domain.RoleOwner, t.Code, seq)
		return st.InsertPrincipal(ctx, &domain.Principal{
			ID:          ownerID,
			DisplayName: t.OwnerName,
			Email:       contact.Email,
			Phone:       contact.Phone,
			SecretHash:  secretHash,
			Role:        domain.RoleOwner,
			Seq:         seq,
			CreatedAt:   time.Now().UTC(),
			Status:      domain.PrincipalStatusActive,
		})
	})
	if err != nil {
		return nil, err
	}

	return &RegisterResult{Tenant: tenant, OwnerPrincipalID: ownerID}, nil
}

// AddEmployee enrolls a new employee principal in a tenant. tenantRef may be
// a tenant id or an exact display name. The sequence number comes from the
// shard's durable counter, so it is strictly increasing and never reused
// within the tenant, independent of every other tenant.
func (p *Provisioner) AddEmployee(ctx context.Context, tenantRef string, data domain.EmployeeData) (*domain.Principal, error) {
	if strings.TrimSpace(data.Name) == "" {
		return nil, fmt.Errorf("%w: employee name is required", domain.ErrProvisioningFailed)
	}
	if strings.TrimSpace(data.Secret) == "" {
		return nil, fmt.Errorf("%w: employee secret is required", domain.ErrProvisioningFailed)
	}

	entry, err := p.resolve(ctx, tenantRef)
	if err != nil {
		return nil, err
	}

	secretHash, err := secrets.HashSecret(data.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: hash employee secret: %v", domain.ErrProvisioningFailed, err)
	}

	// Writers of one shard serialize; other tenants' shards are untouched.
	lock := p.catalog.WriteLock(entry.Tenant.ID)
	lock.Lock()
	defer lock.Unlock()

	st, err := shard.Open(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open shard: %v", domain.ErrProvisioningFailed, err)
	}
	defer st.Close()

	seq, err := st.NextSequence(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProvisioningFailed, err)
	}

	principal := &domain.Principal{
		ID:          identifier.FormatPrincipalID(domain.RoleEmployee, entry.Tenant.Code, seq),
		DisplayName: data.Name,
		Phone:       data.Phone,
		SecretHash:  secretHash,
		Role:        domain.RoleEmployee,
		Seq:         seq,
		CreatedAt:   time.Now().UTC(),
		Status:      domain.PrincipalStatusActive,
	}
	if err := st.InsertPrincipal(ctx, principal); err != nil {
		return nil, fmt.Errorf("%w: insert principal: %v", domain.ErrProvisioningFailed, err)
	}
	if err := st.InsertEmployee(ctx, principal.ID, data); err != nil {
		return nil, fmt.Errorf("%w: insert employee: %v", domain.ErrProvisioningFailed, err)
	}
	return principal, nil
}

// ListTenants enumerates all provisioned tenants.
func (p *Provisioner) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	return p.catalog.List(ctx)
}

// TenantStats returns the aggregate counts for a tenant.
func (p *Provisioner) TenantStats(ctx context.Context, tenantID string) (domain.TenantStats, error) {
	entry, err := p.catalog.Locate(ctx, tenantID)
	if err != nil {
		return domain.TenantStats{}, err
	}

	st, err := shard.Open(entry.Path)
	if err != nil {
		return domain.TenantStats{}, fmt.Errorf("open shard: %w", err)
	}
	defer st.Close()
	return st.Stats(ctx)
}

// DeleteTenant removes a tenant's shard and routing knowledge of it.
func (p *Provisioner) DeleteTenant(ctx context.Context, tenantID string) error {
	return p.catalog.Delete(ctx, tenantID)
}

// resolve accepts either a tenant id or an exact display name.
func (p *Provisioner) resolve(ctx context.Context, tenantRef string) (catalog.Entry, error) {
	if identifier.ValidateTenantID(tenantRef) == nil {
		return p.catalog.Locate(ctx, tenantRef)
	}

	tenants, err := p.catalog.List(ctx)
	if err != nil {
		return catalog.Entry{}, err
	}
	for _, t := range tenants {
		if t.DisplayName == tenantRef {
			return p.catalog.Locate(ctx, t.ID)
		}
	}
	return catalog.Entry{}, domain.ErrTenantNotFound
}
