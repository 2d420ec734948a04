// Package shard implements one tenant's isolated storage unit. A Store is a
// single SQLite file holding the tenant metadata row, principals, and the
// fleet business tables. A Store has no knowledge that other shards exist; no
// cross-shard operation is expressed at this layer.
package shard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/openfleet/fleettenant/pkg/domain"
	"github.com/openfleet/fleettenant/pkg/secrets"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tenant_info (
	tenant_id    TEXT PRIMARY KEY,
	tenant_code  TEXT NOT NULL,
	display_name TEXT NOT NULL,
	owner_name   TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	status       TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS principals (
	principal_id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	email        TEXT,
	phone        TEXT,
	secret_hash  TEXT NOT NULL,
	role         TEXT NOT NULL,
	seq          INTEGER NOT NULL,
	created_at   INTEGER NOT NULL,
	status       TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS sequence_counters (
	role     TEXT PRIMARY KEY,
	next_seq INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS employees (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	principal_id   TEXT NOT NULL,
	name           TEXT NOT NULL,
	phone          TEXT,
	license_number TEXT,
	address        TEXT,
	hired_at       INTEGER NOT NULL,
	status         TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS customers (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT NOT NULL,
	address    TEXT,
	created_at INTEGER NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS vehicles (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	vehicle_number TEXT UNIQUE NOT NULL,
	driver_name    TEXT,
	status         TEXT NOT NULL DEFAULT 'available',
	lat            REAL,
	lng            REAL,
	fuel_capacity  REAL,
	load_capacity  REAL
);

CREATE TABLE IF NOT EXISTS trips (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	employee_id    INTEGER,
	vehicle_id     INTEGER,
	start_location TEXT,
	end_location   TEXT,
	started_at     INTEGER NOT NULL,
	ended_at       INTEGER,
	distance_km    REAL,
	fuel_consumed  REAL,
	status         TEXT NOT NULL DEFAULT 'planned',
	FOREIGN KEY (employee_id) REFERENCES employees (id),
	FOREIGN KEY (vehicle_id) REFERENCES vehicles (id)
);

CREATE TABLE IF NOT EXISTS analytics (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	day              TEXT NOT NULL,
	total_trips      INTEGER NOT NULL DEFAULT 0,
	total_distance   REAL NOT NULL DEFAULT 0,
	total_fuel       REAL NOT NULL DEFAULT 0,
	efficiency_score REAL NOT NULL DEFAULT 0,
	created_at       INTEGER NOT NULL
);
`

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is one tenant's isolated SQLite store.
type Store struct {
	sqlDB *sql.DB
	path  string
}

func open(path string) (*Store, error) {
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &Store{sqlDB: sqlDB, path: cleanPath}, nil
}

// Create creates a new shard file at path with the fixed schema and writes the
// tenant metadata row. The file at path must not already contain a shard.
func Create(ctx context.Context, path string, tenant *domain.Tenant) (*Store, error) {
	s, err := open(path)
	if err != nil {
		return nil, err
	}

	if _, err := s.sqlDB.ExecContext(ctx, schema); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO tenant_info (tenant_id, tenant_code, display_name, owner_name, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, tenant.ID, tenant.Code, tenant.DisplayName, tenant.OwnerName, toMillis(tenant.CreatedAt), string(tenant.Status))
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("write tenant metadata: %w", err)
	}

	return s, nil
}

// Open opens an existing shard file.
func Open(path string) (*Store, error) {
	return open(path)
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Path returns the shard's file path.
func (s *Store) Path() string {
	return s.path
}

// Tenant reads the shard's metadata row. A shard without exactly one valid
// metadata row is rejected rather than trusted.
func (s *Store) Tenant(ctx context.Context) (*domain.Tenant, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT tenant_id, tenant_code, display_name, owner_name, created_at, status
		FROM tenant_info
		LIMIT 1
	`)

	var t domain.Tenant
	var createdAt int64
	var status string
	err := row.Scan(&t.ID, &t.Code, &t.DisplayName, &t.OwnerName, &createdAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shard has no tenant metadata row")
	}
	if err != nil {
		return nil, err
	}
	if t.ID == "" || t.Code == "" {
		return nil, fmt.Errorf("shard metadata row is incomplete")
	}

	t.CreatedAt = fromMillis(createdAt)
	t.Status = domain.TenantStatus(status)
	return &t, nil
}

// InsertPrincipal persists a principal record.
func (s *Store) InsertPrincipal(ctx context.Context, p *domain.Principal) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO principals (principal_id, display_name, email, phone, secret_hash, role, seq, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.DisplayName, p.Email, p.Phone, p.SecretHash, string(p.Role), p.Seq, toMillis(p.CreatedAt), string(p.Status))
	return err
}

// FindPrincipal retrieves a principal by its exact id.
func (s *Store) FindPrincipal(ctx context.Context, principalID string) (*domain.Principal, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT principal_id, display_name, email, phone, secret_hash, role, seq, created_at, status
		FROM principals
		WHERE principal_id = ?
	`, principalID)

	var p domain.Principal
	var email, phone sql.NullString
	var createdAt int64
	var role, status string
	err := row.Scan(&p.ID, &p.DisplayName, &email, &phone, &p.SecretHash, &role, &p.Seq, &createdAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Email = email.String
	p.Phone = phone.String
	p.Role = domain.Role(role)
	p.CreatedAt = fromMillis(createdAt)
	p.Status = domain.PrincipalStatus(status)
	return &p, nil
}

// VerifySecret checks a secret against the stored hash of the principal with
// the given id. Returns the principal on success, ErrPrincipalNotFound when no
// such principal exists in this shard, and ErrCredentialMismatch when the
// secret does not match or the principal is not active.
func (s *Store) VerifySecret(ctx context.Context, principalID, secret string) (*domain.Principal, error) {
	p, err := s.FindPrincipal(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PrincipalStatusActive {
		return nil, domain.ErrCredentialMismatch
	}
	if !secrets.VerifySecret(secret, p.SecretHash) {
		return nil, domain.ErrCredentialMismatch
	}
	return p, nil
}

// NextSequence allocates the next principal sequence number for a role from a
// durable counter. Counters only move forward, so a sequence is never handed
// out twice even after principals are removed.
func (s *Store) NextSequence(ctx context.Context, role domain.Role) (int, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
		INSERT INTO sequence_counters (role, next_seq) VALUES (?, 1)
		ON CONFLICT (role) DO UPDATE SET next_seq = next_seq + 1
		RETURNING next_seq
	`, string(role))

	var seq int
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("allocate sequence: %w", err)
	}
	return seq, nil
}

// InsertEmployee persists an employee roster row alongside the employee's
// principal record.
func (s *Store) InsertEmployee(ctx context.Context, principalID string, data domain.EmployeeData) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO employees (principal_id, name, phone, license_number, address, hired_at, status)
		VALUES (?, ?, ?, ?, ?, ?, 'active')
	`, principalID, data.Name, data.Phone, data.License, data.Address, toMillis(time.Now()))
	return err
}

// AddCustomer records a customer.
func (s *Store) AddCustomer(ctx context.Context, name, email, phone, address string) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO customers (name, email, phone, address, created_at, status)
		VALUES (?, ?, ?, ?, ?, 'active')
	`, name, email, phone, address, toMillis(time.Now()))
	return err
}

// AddVehicle records a vehicle.
func (s *Store) AddVehicle(ctx context.Context, vehicleNumber, driverName string, fuelCapacity, loadCapacity float64) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO vehicles (vehicle_number, driver_name, fuel_capacity, load_capacity)
		VALUES (?, ?, ?, ?)
	`, vehicleNumber, driverName, fuelCapacity, loadCapacity)
	return err
}

// RecordTrip records a trip between two locations.
func (s *Store) RecordTrip(ctx context.Context, employeeID, vehicleID int64, startLocation, endLocation string, distanceKM float64) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO trips (employee_id, vehicle_id, start_location, end_location, started_at, distance_km, status)
		VALUES (?, ?, ?, ?, ?, ?, 'planned')
	`, employeeID, vehicleID, startLocation, endLocation, toMillis(time.Now()), distanceKM)
	return err
}

// Stats returns the aggregate counts for this shard.
func (s *Store) Stats(ctx context.Context) (domain.TenantStats, error) {
	var stats domain.TenantStats

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM employees WHERE status = 'active'`, &stats.Employees},
		{`SELECT COUNT(*) FROM customers WHERE status = 'active'`, &stats.Customers},
		{`SELECT COUNT(*) FROM vehicles`, &stats.Vehicles},
		{`SELECT COUNT(*) FROM trips`, &stats.Trips},
	}
	for _, c := range counts {
		if err := s.sqlDB.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return domain.TenantStats{}, err
		}
	}
	return stats, nil
}
