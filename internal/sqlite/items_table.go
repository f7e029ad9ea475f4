package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

var _ types.ItemTable = (*itemsTable)(nil)

type itemsTable struct {
	s *scope
}

const (
	itemColumns        = "id, name, category, quantity, unit, supplier_id, purchase_date, photo_path"
	itemColumnsAliased = "i.id, i.name, i.category, i.quantity, i.unit, i.supplier_id, i.purchase_date, i.photo_path"
)

func scanItem(r rowScanner) (*types.Item, error) {
	var it types.Item
	var category, unit, purchaseDate, photoPath sql.NullString
	var supplierID sql.NullInt64
	if err := r.Scan(&it.ID, &it.Name, &category, &it.Quantity, &unit, &supplierID, &purchaseDate, &photoPath); err != nil {
		return nil, err
	}
	it.Category = category.String
	it.Unit = unit.String
	it.SupplierID = idPtr(supplierID)
	it.PurchaseDate = purchaseDate.String
	it.PhotoPath = photoPath.String
	return &it, nil
}

// checkSupplier returns NotFoundError when id is set and unknown.
func checkSupplier(q querier, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := exists(q, "SELECT 1 FROM suppliers WHERE id = ?", *id)
	if err != nil {
		return fmt.Errorf("checking supplier existence: %w", err)
	}
	if !ok {
		return types.NotFound(types.EntitySupplier, *id)
	}
	return nil
}

// Create validates and inserts an item, writing the new ID back to it.
func (t *itemsTable) Create(it *types.Item) (int64, error) {
	if it == nil {
		return 0, types.Invalid("", "item is nil")
	}
	if err := it.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := t.s.atomically(func(q querier) error {
		if err := checkSupplier(q, it.SupplierID); err != nil {
			return err
		}
		res, err := q.Exec(
			"INSERT INTO items (name, category, quantity, unit, supplier_id, purchase_date, photo_path) VALUES (?, ?, ?, ?, ?, ?, ?)",
			it.Name, nullable(it.Category), it.Quantity, nullable(it.Unit),
			nullableID(it.SupplierID), nullable(it.PurchaseDate), nullable(it.PhotoPath),
		)
		if err != nil {
			return fmt.Errorf("inserting item: %w", translate(err, types.EntityItem, it.Name))
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading item id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	it.ID = id
	return id, nil
}

// Get retrieves an item by ID.
func (t *itemsTable) Get(id int64) (*types.Item, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	return getItem(q, id)
}

func getItem(q querier, id int64) (*types.Item, error) {
	it, err := scanItem(q.QueryRow("SELECT "+itemColumns+" FROM items WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound(types.EntityItem, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	return it, nil
}

// FindByNaturalKey returns the oldest item with this name and supplier.
func (t *itemsTable) FindByNaturalKey(name string, supplierID *int64) (*types.Item, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	it, err := scanItem(q.QueryRow(
		"SELECT "+itemColumns+" FROM items WHERE name = ? AND supplier_id IS ? ORDER BY id LIMIT 1",
		name, nullableID(supplierID),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFoundKey(types.EntityItem, 0, name)
	}
	if err != nil {
		return nil, fmt.Errorf("finding item %q: %w", name, err)
	}
	return it, nil
}

// FindAllByNaturalKey returns every item with this name and supplier,
// oldest first.
func (t *itemsTable) FindAllByNaturalKey(name string, supplierID *int64) ([]*types.Item, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(
		"SELECT "+itemColumns+" FROM items WHERE name = ? AND supplier_id IS ? ORDER BY id",
		name, nullableID(supplierID),
	)
	if err != nil {
		return nil, fmt.Errorf("finding items %q: %w", name, err)
	}
	result, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scanning items: %w", err)
	}
	return result, nil
}

// List returns items matching every set field of the filter.
func (t *itemsTable) List(filter types.ItemFilter) ([]*types.Item, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	query, args := itemQuery(filter)
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	result, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scanning items: %w", err)
	}
	return result, nil
}

// Update applies the set fields of u to the item.
func (t *itemsTable) Update(id int64, u types.ItemUpdate) error {
	return t.s.atomically(func(q querier) error {
		it, err := getItem(q, id)
		if err != nil {
			return err
		}
		u.Apply(it)
		if err := it.Validate(); err != nil {
			return err
		}
		if u.SupplierID != nil && !u.ClearSupplier {
			if err := checkSupplier(q, it.SupplierID); err != nil {
				return err
			}
		}
		_, err = q.Exec(
			`UPDATE items SET name = ?, category = ?, quantity = ?, unit = ?, supplier_id = ?,
                purchase_date = ?, photo_path = ? WHERE id = ?`,
			it.Name, nullable(it.Category), it.Quantity, nullable(it.Unit),
			nullableID(it.SupplierID), nullable(it.PurchaseDate), nullable(it.PhotoPath), id,
		)
		if err != nil {
			return fmt.Errorf("updating item %d: %w", id, translate(err, types.EntityItem, it.Name))
		}
		return nil
	})
}

// Delete removes the item with its tag associations and metadata. Items
// consumed by a project cannot be deleted.
func (t *itemsTable) Delete(id int64) error {
	return t.s.atomically(func(q querier) error {
		ok, err := exists(q, "SELECT 1 FROM items WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("checking item existence: %w", err)
		}
		if !ok {
			return types.NotFound(types.EntityItem, id)
		}

		refs, err := count(q, "SELECT COUNT(*) FROM project_materials WHERE item_id = ?", id)
		if err != nil {
			return fmt.Errorf("counting material references: %w", err)
		}
		if refs > 0 {
			return &types.IntegrityError{
				Entity: types.EntityItem,
				ID:     id,
				Reason: fmt.Sprintf("used by %d project material(s)", refs),
			}
		}

		// The schema cascades these too; deleting explicitly keeps the
		// cleanup independent of the foreign_keys pragma.
		if _, err := q.Exec("DELETE FROM item_tags WHERE item_id = ?", id); err != nil {
			return fmt.Errorf("deleting item tags: %w", err)
		}
		if _, err := q.Exec("DELETE FROM item_metadata WHERE item_id = ?", id); err != nil {
			return fmt.Errorf("deleting item metadata: %w", err)
		}
		if _, err := q.Exec("DELETE FROM items WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting item: %w", translate(err, types.EntityItem, ""))
		}
		return nil
	})
}
