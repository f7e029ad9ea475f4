package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

var _ types.MaterialTable = (*materialsTable)(nil)

type materialsTable struct {
	s *scope
}

const materialColumns = "id, project_id, item_id, quantity_used"

func scanMaterial(r rowScanner) (*types.ProjectMaterial, error) {
	var m types.ProjectMaterial
	if err := r.Scan(&m.ID, &m.ProjectID, &m.ItemID, &m.QuantityUsed); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanUsage(r rowScanner) (*types.MaterialUsage, error) {
	var u types.MaterialUsage
	var category, unit sql.NullString
	if err := r.Scan(&u.ID, &u.ProjectID, &u.ItemID, &u.QuantityUsed, &u.ItemName, &category, &unit); err != nil {
		return nil, err
	}
	u.Category = category.String
	u.Unit = unit.String
	return &u, nil
}

// checkConsumption verifies the project and item exist and that the item
// holds at least qty.
func checkConsumption(q querier, projectID, itemID int64, qty float64) error {
	ok, err := exists(q, "SELECT 1 FROM projects WHERE id = ?", projectID)
	if err != nil {
		return fmt.Errorf("checking project existence: %w", err)
	}
	if !ok {
		return types.NotFound(types.EntityProject, projectID)
	}
	it, err := getItem(q, itemID)
	if err != nil {
		return err
	}
	if qty > it.Quantity {
		return types.Invalid("quantity_used",
			fmt.Sprintf("%g exceeds the %g available for item %d", qty, it.Quantity, itemID))
	}
	return nil
}

// Create records that a project consumed an item.
func (t *materialsTable) Create(m *types.ProjectMaterial) (int64, error) {
	if m == nil {
		return 0, types.Invalid("", "project material is nil")
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := t.s.atomically(func(q querier) error {
		if err := checkConsumption(q, m.ProjectID, m.ItemID, m.QuantityUsed); err != nil {
			return err
		}
		res, err := q.Exec(
			"INSERT INTO project_materials (project_id, item_id, quantity_used) VALUES (?, ?, ?)",
			m.ProjectID, m.ItemID, m.QuantityUsed,
		)
		if err != nil {
			return fmt.Errorf("inserting project material: %w", translate(err, types.EntityMaterial, ""))
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading project material id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

// Get retrieves a material row by ID.
func (t *materialsTable) Get(id int64) (*types.ProjectMaterial, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	return getMaterial(q, id)
}

func getMaterial(q querier, id int64) (*types.ProjectMaterial, error) {
	m, err := scanMaterial(q.QueryRow("SELECT "+materialColumns+" FROM project_materials WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound(types.EntityMaterial, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project material %d: %w", id, err)
	}
	return m, nil
}

// Find returns the oldest material row linking the project and item.
func (t *materialsTable) Find(projectID, itemID int64) (*types.ProjectMaterial, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	m, err := scanMaterial(q.QueryRow(
		"SELECT "+materialColumns+" FROM project_materials WHERE project_id = ? AND item_id = ? ORDER BY id LIMIT 1",
		projectID, itemID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFoundKey(types.EntityMaterial, projectID, fmt.Sprintf("item %d", itemID))
	}
	if err != nil {
		return nil, fmt.Errorf("finding project material: %w", err)
	}
	return m, nil
}

// FindAll returns every row consuming itemID in projectID, oldest first.
func (t *materialsTable) FindAll(projectID, itemID int64) ([]*types.ProjectMaterial, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(
		"SELECT "+materialColumns+" FROM project_materials WHERE project_id = ? AND item_id = ? ORDER BY id",
		projectID, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding project materials: %w", err)
	}
	result, err := collect(rows, scanMaterial)
	if err != nil {
		return nil, fmt.Errorf("scanning project materials: %w", err)
	}
	return result, nil
}

// Update changes the consumed item or amount, re-checking availability.
func (t *materialsTable) Update(id int64, u types.MaterialUpdate) error {
	return t.s.atomically(func(q querier) error {
		m, err := getMaterial(q, id)
		if err != nil {
			return err
		}
		if u.ItemID != nil {
			m.ItemID = *u.ItemID
		}
		if u.QuantityUsed != nil {
			m.QuantityUsed = *u.QuantityUsed
		}
		if err := m.Validate(); err != nil {
			return err
		}
		if err := checkConsumption(q, m.ProjectID, m.ItemID, m.QuantityUsed); err != nil {
			return err
		}
		_, err = q.Exec(
			"UPDATE project_materials SET item_id = ?, quantity_used = ? WHERE id = ?",
			m.ItemID, m.QuantityUsed, id,
		)
		if err != nil {
			return fmt.Errorf("updating project material %d: %w", id, translate(err, types.EntityMaterial, ""))
		}
		return nil
	})
}

// Delete removes a material row.
func (t *materialsTable) Delete(id int64) error {
	q, err := t.s.conn()
	if err != nil {
		return err
	}
	res, err := q.Exec("DELETE FROM project_materials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project material: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return types.NotFound(types.EntityMaterial, id)
	}
	return nil
}

// ForProject lists the project's materials with item name, category and
// unit, in assignment order.
func (t *materialsTable) ForProject(projectID int64) ([]*types.MaterialUsage, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	ok, err := exists(q, "SELECT 1 FROM projects WHERE id = ?", projectID)
	if err != nil {
		return nil, fmt.Errorf("checking project existence: %w", err)
	}
	if !ok {
		return nil, types.NotFound(types.EntityProject, projectID)
	}

	rows, err := q.Query(`SELECT pm.id, pm.project_id, pm.item_id, pm.quantity_used, i.name, i.category, i.unit
        FROM project_materials pm JOIN items i ON i.id = pm.item_id
        WHERE pm.project_id = ? ORDER BY pm.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project materials: %w", err)
	}
	result, err := collect(rows, scanUsage)
	if err != nil {
		return nil, fmt.Errorf("scanning project materials: %w", err)
	}
	return result, nil
}

// ForItem lists every material row consuming the item.
func (t *materialsTable) ForItem(itemID int64) ([]*types.ProjectMaterial, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(
		"SELECT "+materialColumns+" FROM project_materials WHERE item_id = ? ORDER BY id", itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item materials: %w", err)
	}
	result, err := collect(rows, scanMaterial)
	if err != nil {
		return nil, fmt.Errorf("scanning item materials: %w", err)
	}
	return result, nil
}
