package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// querier is the statement surface shared by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// scope binds tables to where their statements run: the backend's pool, or
// the transaction of an enclosing WithTx block.
type scope struct {
	backend *Backend
	tx      *sql.Tx
}

var _ types.Store = (*scope)(nil)

func (s *scope) Suppliers() types.SupplierTable { return &suppliersTable{s: s} }
func (s *scope) Items() types.ItemTable         { return &itemsTable{s: s} }
func (s *scope) Projects() types.ProjectTable   { return &projectsTable{s: s} }
func (s *scope) Materials() types.MaterialTable { return &materialsTable{s: s} }
func (s *scope) Tags() types.TagTable           { return &tagsTable{s: s} }
func (s *scope) Metadata() types.MetadataTable  { return &metadataTable{s: s} }

// conn returns the querier for single-statement reads.
func (s *scope) conn() (querier, error) {
	if s.tx != nil {
		return s.tx, nil
	}
	return s.backend.handle()
}

// atomically runs fn in a transaction. Inside a WithTx block it joins the
// open transaction instead of starting a new one.
func (s *scope) atomically(fn func(q querier) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.WithTx(func(tx types.Store) error {
		return fn(tx.(*scope).tx)
	})
}

// WithTx runs fn in one transaction and commits when it returns nil. The
// transaction is rolled back on error and on panic.
func (s *scope) WithTx(fn func(tx types.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	db, err := s.backend.handle()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(&scope{backend: s.backend, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	committed = true
	return nil
}
