// Package catalog is the directory of all tenant shards: it creates, lists,
// locates, and deletes them, and is the only place that knows the mapping from
// a tenant id to a physical store path.
//
// The directory of shard files is the durable source of truth. The filename of
// every shard embeds the tenant id, so the catalog rebuilds its view purely by
// re-scanning storage after a restart; the in-memory index is only a cache and
// falls back to a scan on miss.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openfleet/fleettenant/pkg/domain"
	"github.com/openfleet/fleettenant/pkg/identifier"
	"github.com/openfleet/fleettenant/pkg/shard"
)

const (
	shardSuffix   = ".db"
	stagingSuffix = ".staging"

	// Fresh ids are random; a collision is astronomically unlikely but is
	// detected and retried rather than assumed impossible.
	maxIDAttempts = 5
)

var filenameSafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Entry pairs a tenant's identity with its shard location. Entries stay
// inside the core; the shard path is never handed to external callers.
type Entry struct {
	Tenant domain.Tenant
	Path   string
}

// SeedFunc populates a freshly created shard before it is published. It runs
// against the staged store, so a failure leaves no visible tenant.
type SeedFunc func(ctx context.Context, st *shard.Store, tenant *domain.Tenant) error

// Catalog is the directory of all tenant shards under one data directory.
type Catalog struct {
	dir string

	mu       sync.RWMutex
	index    map[string]Entry    // tenant id -> entry, cache over the directory scan
	reserved map[string]struct{} // tenant ids mid-provisioning

	locks sync.Map // tenant id -> *sync.Mutex, per-shard writer serialization
}

// Open opens a catalog over dir, creating the directory if needed and
// rebuilding the index from a full scan.
func Open(dir string) (*Catalog, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("catalog directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	c := &Catalog{
		dir:      dir,
		index:    make(map[string]Entry),
		reserved: make(map[string]struct{}),
	}
	if _, err := c.rescan(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Create provisions a new tenant: it allocates a fresh tenant id, builds the
// shard with its schema and metadata row under a staged name, runs seed, and
// only then publishes the shard into the directory with a single atomic
// rename. A failure at any step removes the staged file and leaves no
// partially-visible tenant.
func (c *Catalog) Create(ctx context.Context, tenant domain.Tenant, seed SeedFunc) (*domain.Tenant, error) {
	if strings.TrimSpace(tenant.DisplayName) == "" || strings.TrimSpace(tenant.OwnerName) == "" {
		return nil, fmt.Errorf("%w: display name and owner name are required", domain.ErrProvisioningFailed)
	}

	tenantID, err := c.allocateID(ctx)
	if err != nil {
		return nil, err
	}
	defer c.release(tenantID)

	tenant.ID = tenantID
	tenant.Code = identifier.TenantCode(tenant.DisplayName)
	tenant.Status = domain.TenantStatusActive
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now().UTC()
	}

	finalPath := filepath.Join(c.dir, shardFilename(tenantID, tenant.DisplayName))
	stagingPath := finalPath + stagingSuffix

	// A crashed earlier attempt may have left a staged file behind.
	removeShardFiles(stagingPath)

	st, err := shard.Create(ctx, stagingPath, &tenant)
	if err != nil {
		removeShardFiles(stagingPath)
		return nil, fmt.Errorf("%w: %v", domain.ErrProvisioningFailed, err)
	}

	if seed != nil {
		if err := seed(ctx, st, &tenant); err != nil {
			_ = st.Close()
			removeShardFiles(stagingPath)
			return nil, fmt.Errorf("%w: seed shard: %v", domain.ErrProvisioningFailed, err)
		}
	}

	if err := st.Close(); err != nil {
		removeShardFiles(stagingPath)
		return nil, fmt.Errorf("%w: close staged shard: %v", domain.ErrProvisioningFailed, err)
	}

	// The publish step: before this rename the tenant is invisible to List.
	if err := os.Rename(stagingPath, finalPath); err != nil {
		removeShardFiles(stagingPath)
		return nil, fmt.Errorf("%w: publish shard: %v", domain.ErrProvisioningFailed, err)
	}

	c.mu.Lock()
	c.index[tenant.ID] = Entry{Tenant: tenant, Path: finalPath}
	c.mu.Unlock()

	return &tenant, nil
}

// List enumerates all provisioned tenants by scanning the directory and
// reading each shard's metadata row. The scan is the source of truth; it also
// refreshes the index cache.
func (c *Catalog) List(ctx context.Context) ([]domain.Tenant, error) {
	entries, err := c.rescan(ctx)
	if err != nil {
		return nil, err
	}

	tenants := make([]domain.Tenant, 0, len(entries))
	for _, e := range entries {
		tenants = append(tenants, e.Tenant)
	}
	sort.Slice(tenants, func(i, j int) bool {
		if !tenants[i].CreatedAt.Equal(tenants[j].CreatedAt) {
			return tenants[i].CreatedAt.Before(tenants[j].CreatedAt)
		}
		return tenants[i].ID < tenants[j].ID
	})
	return tenants, nil
}

// Locate resolves a tenant id to its catalog entry. Unknown and malformed ids
// both report ErrTenantNotFound; a malformed id is rejected before any store
// lookup.
func (c *Catalog) Locate(ctx context.Context, tenantID string) (Entry, error) {
	if err := identifier.ValidateTenantID(tenantID); err != nil {
		return Entry{}, domain.ErrTenantNotFound
	}

	c.mu.RLock()
	entry, ok := c.index[tenantID]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	// Cache miss: the scan is authoritative.
	entries, err := c.rescan(ctx)
	if err != nil {
		return Entry{}, err
	}
	if entry, ok := entries[tenantID]; ok {
		return entry, nil
	}
	return Entry{}, domain.ErrTenantNotFound
}

// LocateByCode returns every tenant whose routing code matches. The code is a
// hint, not a key: multiple tenants may share one, and the caller must verify
// the principal inside each candidate shard.
func (c *Catalog) LocateByCode(ctx context.Context, code string) ([]Entry, error) {
	c.mu.RLock()
	matches := matchCode(c.index, code)
	c.mu.RUnlock()
	if len(matches) > 0 {
		return matches, nil
	}

	entries, err := c.rescan(ctx)
	if err != nil {
		return nil, err
	}
	return matchCode(entries, code), nil
}

// Delete removes a tenant's shard and all routing knowledge of it. A second
// delete of the same tenant reports ErrTenantNotFound.
func (c *Catalog) Delete(ctx context.Context, tenantID string) error {
	lock := c.WriteLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	entry, err := c.Locate(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := os.Remove(entry.Path); err != nil {
		if os.IsNotExist(err) {
			c.forget(tenantID)
			return domain.ErrTenantNotFound
		}
		return fmt.Errorf("remove shard: %w", err)
	}
	removeShardFiles(entry.Path)
	c.forget(tenantID)
	return nil
}

// WriteLock returns the mutex serializing writers of one tenant's shard.
// Locks are per tenant; writers of different shards never contend.
func (c *Catalog) WriteLock(tenantID string) *sync.Mutex {
	lock, _ := c.locks.LoadOrStore(tenantID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// allocateID picks a fresh tenant id, detecting collisions against published
// shards and in-flight provisioning. Collisions are retried locally and never
// surface to the caller.
func (c *Catalog) allocateID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := identifier.NewTenantID()

		c.mu.Lock()
		_, inIndex := c.index[id]
		_, inFlight := c.reserved[id]
		if !inIndex && !inFlight && !c.shardFileExists(id) {
			c.reserved[id] = struct{}{}
			c.mu.Unlock()
			return id, nil
		}
		c.mu.Unlock()
	}
	return "", fmt.Errorf("%w: could not allocate a unique tenant id", domain.ErrProvisioningFailed)
}

func (c *Catalog) release(tenantID string) {
	c.mu.Lock()
	delete(c.reserved, tenantID)
	c.mu.Unlock()
}

func (c *Catalog) forget(tenantID string) {
	c.mu.Lock()
	delete(c.index, tenantID)
	c.mu.Unlock()
}

// shardFileExists checks the directory for any shard published under id.
// Callers hold c.mu.
func (c *Catalog) shardFileExists(tenantID string) bool {
	matches, err := filepath.Glob(filepath.Join(c.dir, tenantID+"_*"+shardSuffix))
	return err == nil && len(matches) > 0
}

// rescan walks the data directory and reads each shard's metadata row,
// replacing the index cache with the result. Staged files and files that do
// not carry a well-formed tenant id are skipped; a shard whose metadata
// contradicts its filename is skipped rather than trusted.
func (c *Catalog) rescan(ctx context.Context) (map[string]Entry, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("scan catalog directory: %w", err)
	}

	entries := make(map[string]Entry)
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, shardSuffix) {
			continue
		}
		id, ok := tenantIDFromFilename(name)
		if !ok {
			continue
		}

		path := filepath.Join(c.dir, name)
		tenant, err := readShardTenant(ctx, path)
		if err != nil || tenant.ID != id {
			continue
		}
		entries[id] = Entry{Tenant: *tenant, Path: path}
	}

	c.mu.Lock()
	c.index = entries
	snapshot := make(map[string]Entry, len(entries))
	for k, v := range entries {
		snapshot[k] = v
	}
	c.mu.Unlock()

	return snapshot, nil
}

func readShardTenant(ctx context.Context, path string) (*domain.Tenant, error) {
	st, err := shard.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Tenant(ctx)
}

func matchCode(entries map[string]Entry, code string) []Entry {
	var matches []Entry
	for _, e := range entries {
		if e.Tenant.Code == code {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Tenant.ID < matches[j].Tenant.ID })
	return matches
}

func shardFilename(tenantID, displayName string) string {
	name := filenameSafe.ReplaceAllString(strings.ReplaceAll(displayName, " ", "_"), "")
	if name == "" {
		name = "tenant"
	}
	return tenantID + "_" + name + shardSuffix
}

func tenantIDFromFilename(name string) (string, bool) {
	base := strings.TrimSuffix(name, shardSuffix)
	id, _, ok := strings.Cut(base, "_")
	if !ok || identifier.ValidateTenantID(id) != nil {
		return "", false
	}
	return id, true
}

// removeShardFiles removes a shard file plus any SQLite side files.
func removeShardFiles(path string) {
	_ = os.Remove(path)
	_ = os.Remove(path + "-wal")
	_ = os.Remove(path + "-shm")
}
