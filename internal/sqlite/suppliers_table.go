package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

var _ types.SupplierTable = (*suppliersTable)(nil)

type suppliersTable struct {
	s *scope
}

const supplierColumns = "id, name, contact_info, website, notes"

func scanSupplier(r rowScanner) (*types.Supplier, error) {
	var sp types.Supplier
	var website, notes sql.NullString
	if err := r.Scan(&sp.ID, &sp.Name, &sp.ContactInfo, &website, &notes); err != nil {
		return nil, err
	}
	sp.Website = website.String
	sp.Notes = notes.String
	return &sp, nil
}

// Create validates and inserts a supplier, writing the new ID back to sp.
func (st *suppliersTable) Create(sp *types.Supplier) (int64, error) {
	if sp == nil {
		return 0, types.Invalid("", "supplier is nil")
	}
	if err := sp.Validate(); err != nil {
		return 0, err
	}

	q, err := st.s.conn()
	if err != nil {
		return 0, err
	}
	res, err := q.Exec(
		"INSERT INTO suppliers (name, contact_info, website, notes) VALUES (?, ?, ?, ?)",
		sp.Name, sp.ContactInfo, nullable(sp.Website), nullable(sp.Notes),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting supplier: %w", translate(err, types.EntitySupplier, sp.Name))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading supplier id: %w", err)
	}
	sp.ID = id
	return id, nil
}

// Get retrieves a supplier by ID.
func (st *suppliersTable) Get(id int64) (*types.Supplier, error) {
	q, err := st.s.conn()
	if err != nil {
		return nil, err
	}
	return getSupplier(q, id)
}

func getSupplier(q querier, id int64) (*types.Supplier, error) {
	sp, err := scanSupplier(q.QueryRow("SELECT "+supplierColumns+" FROM suppliers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound(types.EntitySupplier, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting supplier %d: %w", id, err)
	}
	return sp, nil
}

// FindByName returns the oldest supplier with exactly this name.
func (st *suppliersTable) FindByName(name string) (*types.Supplier, error) {
	q, err := st.s.conn()
	if err != nil {
		return nil, err
	}
	sp, err := scanSupplier(q.QueryRow(
		"SELECT "+supplierColumns+" FROM suppliers WHERE name = ? ORDER BY id LIMIT 1", name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFoundKey(types.EntitySupplier, 0, name)
	}
	if err != nil {
		return nil, fmt.Errorf("finding supplier %q: %w", name, err)
	}
	return sp, nil
}

// FindAllByName returns every supplier with exactly this name, oldest
// first.
func (st *suppliersTable) FindAllByName(name string) ([]*types.Supplier, error) {
	q, err := st.s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query("SELECT "+supplierColumns+" FROM suppliers WHERE name = ? ORDER BY id", name)
	if err != nil {
		return nil, fmt.Errorf("finding suppliers %q: %w", name, err)
	}
	result, err := collect(rows, scanSupplier)
	if err != nil {
		return nil, fmt.Errorf("scanning suppliers: %w", err)
	}
	return result, nil
}

// List returns suppliers matching the filter in insertion order, or by name
// when the filter asks for it.
func (st *suppliersTable) List(filter types.SupplierFilter) ([]*types.Supplier, error) {
	q, err := st.s.conn()
	if err != nil {
		return nil, err
	}
	query, args := supplierQuery(filter)
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	result, err := collect(rows, scanSupplier)
	if err != nil {
		return nil, fmt.Errorf("scanning suppliers: %w", err)
	}
	return result, nil
}

// Update applies the set fields of u to the supplier.
func (st *suppliersTable) Update(id int64, u types.SupplierUpdate) error {
	return st.s.atomically(func(q querier) error {
		sp, err := getSupplier(q, id)
		if err != nil {
			return err
		}
		u.Apply(sp)
		if err := sp.Validate(); err != nil {
			return err
		}
		_, err = q.Exec(
			"UPDATE suppliers SET name = ?, contact_info = ?, website = ?, notes = ? WHERE id = ?",
			sp.Name, sp.ContactInfo, nullable(sp.Website), nullable(sp.Notes), id,
		)
		if err != nil {
			return fmt.Errorf("updating supplier %d: %w", id, translate(err, types.EntitySupplier, sp.Name))
		}
		return nil
	})
}

// Delete removes a supplier. Items that still reference it are handled by
// the configured policy: block returns an IntegrityError, nullify clears
// their supplier_id first.
func (st *suppliersTable) Delete(id int64) error {
	policy := st.s.backend.deletePolicy()

	return st.s.atomically(func(q querier) error {
		ok, err := exists(q, "SELECT 1 FROM suppliers WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("checking supplier existence: %w", err)
		}
		if !ok {
			return types.NotFound(types.EntitySupplier, id)
		}

		refs, err := count(q, "SELECT COUNT(*) FROM items WHERE supplier_id = ?", id)
		if err != nil {
			return fmt.Errorf("counting supplier references: %w", err)
		}
		if refs > 0 {
			if policy != types.DeletePolicyNullify {
				return &types.IntegrityError{
					Entity: types.EntitySupplier,
					ID:     id,
					Reason: fmt.Sprintf("referenced by %d item(s)", refs),
				}
			}
			if _, err := q.Exec("UPDATE items SET supplier_id = NULL WHERE supplier_id = ?", id); err != nil {
				return fmt.Errorf("clearing supplier references: %w", err)
			}
			st.s.backend.log.Info("cleared supplier from items", "supplier_id", id, "items", refs)
		}

		if _, err := q.Exec("DELETE FROM suppliers WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting supplier: %w", translate(err, types.EntitySupplier, ""))
		}
		return nil
	})
}
