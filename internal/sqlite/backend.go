// Package sqlite implements the Craft Compass storage layer on an embedded
// SQLite database: schema lifecycle, typed CRUD tables, tag and metadata
// associations, and scoped transactions.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/Novaotic/craft-compass/internal/logging"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// Compile-time interface check.
var _ types.Inventory = (*Backend)(nil)

// Backend is the storage context. It owns the database handle for its
// whole attached lifetime; every table obtained from it runs statements
// against that handle or against the transaction of a WithTx block.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	path     string
	log      *logging.Logger

	root *scope
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used by the backend and its tables.
func WithLogger(l *logging.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBackend creates a detached backend. Call Attach to open the database.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: logging.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	b.root = &scope{backend: b}
	return b
}

// Attach opens (or creates) the database file and initializes the schema.
// Initialization is idempotent: attaching to an existing file keeps its data.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(config.DataDir, config.DBFile)
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return fmt.Errorf("initializing schema: %w", err)
	}

	b.db = db
	b.path = path
	b.config = config
	b.attached = true

	b.log.Debug("inventory attached", "path", path, "supplier_delete_policy", config.SupplierDeletePolicy)
	return nil
}

// Detach closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	b.db = nil
	b.attached = false

	b.log.Debug("inventory detached", "path", b.path)
	return nil
}

// Reset drops every table and recreates an empty schema.
func (b *Backend) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if err := dropSchema(b.db); err != nil {
		return fmt.Errorf("dropping schema: %w", err)
	}
	if err := initSchema(b.db); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	b.log.Info("inventory reset", "path", b.path)
	return nil
}

// Path returns the database file path, empty while detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// Config returns the effective configuration of the attached backend.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

func (b *Backend) Suppliers() types.SupplierTable { return b.root.Suppliers() }
func (b *Backend) Items() types.ItemTable         { return b.root.Items() }
func (b *Backend) Projects() types.ProjectTable   { return b.root.Projects() }
func (b *Backend) Materials() types.MaterialTable { return b.root.Materials() }
func (b *Backend) Tags() types.TagTable           { return b.root.Tags() }
func (b *Backend) Metadata() types.MetadataTable  { return b.root.Metadata() }

// WithTx runs fn in one transaction; see types.Store.
func (b *Backend) WithTx(fn func(tx types.Store) error) error {
	return b.root.WithTx(fn)
}

// handle returns the open database, or ErrDetached.
func (b *Backend) handle() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.db, nil
}

func (b *Backend) deletePolicy() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.SupplierDeletePolicy
}

// dsn enables foreign keys on every pooled connection.
func dsn(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
