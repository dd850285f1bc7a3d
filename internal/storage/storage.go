// Package storage persists tenant data in SQLite and exposes it through
// tenant-scoped handles.
//
// Isolation is structural: Store has no query methods of its own. The only
// way to read or write rows is TenantStore, obtained via Store.Tenant, and
// every statement it issues carries a tenant_id equality predicate. A query
// without a tenant cannot be expressed.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/tenant"
)

// ErrNotFound is returned by exact-key lookups with no matching row.
var ErrNotFound = errors.New("record not found")

// Store owns the SQLite handle. All data access goes through Tenant().
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent readers and writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger.Named("storage")}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens a private in-memory database, used by tests and the
// seed command's dry-run mode.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	return Open(":memory:", logger)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Tenant returns the scoped handle for id. Empty ids are rejected before any
// statement can be built - fail closed.
func (s *Store) Tenant(id tenant.ID) (*TenantStore, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &TenantStore{store: s, tenantID: id}, nil
}

// TenantStore is a data accessor bound to a single tenant. Every statement it
// issues includes tenant_id = ? with the bound identifier.
type TenantStore struct {
	store    *Store
	tenantID tenant.ID
}

// TenantID returns the bound tenant identifier.
func (t *TenantStore) TenantID() tenant.ID {
	return t.tenantID
}

func (t *TenantStore) db() *sql.DB {
	return t.store.db
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			sku TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			stock_quantity INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_tenant_active
			ON products(tenant_id, is_active)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			customer_identifier TEXT NOT NULL DEFAULT '',
			customer_message TEXT NOT NULL,
			ai_response TEXT NOT NULL,
			message_count INTEGER NOT NULL DEFAULT 1,
			products_referenced TEXT NOT NULL DEFAULT '[]',
			intent_detected TEXT NOT NULL DEFAULT '',
			sentiment_score REAL,
			response_time_ms INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_tenant_created
			ON conversations(tenant_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			code TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_name TEXT NOT NULL DEFAULT '',
			customer_phone TEXT NOT NULL DEFAULT '',
			items TEXT NOT NULL DEFAULT '[]',
			subtotal TEXT NOT NULL,
			tax TEXT NOT NULL,
			shipping TEXT NOT NULL,
			total TEXT NOT NULL,
			status TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			shipping_address TEXT,
			billing_address TEXT,
			estimated_delivery TEXT,
			actual_delivery TEXT,
			tracking_number TEXT NOT NULL DEFAULT '',
			tracking_url TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(tenant_id, code)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_tenant_created
			ON orders(tenant_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS analytics_events (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data TEXT NOT NULL DEFAULT '{}',
			session_id TEXT NOT NULL DEFAULT '',
			customer_identifier TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_tenant_created
			ON analytics_events(tenant_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_tenant_type_created
			ON analytics_events(tenant_id, event_type, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Timestamps are stored as RFC3339 UTC strings. Second precision keeps them
// lexicographically comparable, which the window predicates rely on.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func decodeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func encodeNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := decodeTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}
