package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

var _ types.TagTable = (*tagsTable)(nil)

type tagsTable struct {
	s *scope
}

const tagColumns = "id, name, color"

func scanTag(r rowScanner) (*types.Tag, error) {
	var tg types.Tag
	var color sql.NullString
	if err := r.Scan(&tg.ID, &tg.Name, &color); err != nil {
		return nil, err
	}
	tg.Color = color.String
	return &tg, nil
}

// checkTagName returns DuplicateNameError when another tag owns name.
func checkTagName(q querier, name string, self int64) error {
	taken, err := exists(q, "SELECT 1 FROM tags WHERE name = ? AND id != ?", name, self)
	if err != nil {
		return fmt.Errorf("checking tag name: %w", err)
	}
	if taken {
		return &types.DuplicateNameError{Entity: types.EntityTag, Name: name}
	}
	return nil
}

// Create inserts a tag. Names are unique.
func (t *tagsTable) Create(tg *types.Tag) (int64, error) {
	if tg == nil {
		return 0, types.Invalid("", "tag is nil")
	}
	if err := tg.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := t.s.atomically(func(q querier) error {
		if err := checkTagName(q, tg.Name, 0); err != nil {
			return err
		}
		res, err := q.Exec("INSERT INTO tags (name, color) VALUES (?, ?)", tg.Name, nullable(tg.Color))
		if err != nil {
			return fmt.Errorf("inserting tag: %w", translate(err, types.EntityTag, tg.Name))
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading tag id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	tg.ID = id
	return id, nil
}

// Get retrieves a tag by ID.
func (t *tagsTable) Get(id int64) (*types.Tag, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	return getTag(q, id)
}

func getTag(q querier, id int64) (*types.Tag, error) {
	tg, err := scanTag(q.QueryRow("SELECT "+tagColumns+" FROM tags WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound(types.EntityTag, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag %d: %w", id, err)
	}
	return tg, nil
}

// GetByName retrieves a tag by its exact name.
func (t *tagsTable) GetByName(name string) (*types.Tag, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	tg, err := scanTag(q.QueryRow("SELECT "+tagColumns+" FROM tags WHERE name = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFoundKey(types.EntityTag, 0, name)
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag %q: %w", name, err)
	}
	return tg, nil
}

// List returns all tags in insertion order, or by name when the filter
// asks for it.
func (t *tagsTable) List(filter types.TagFilter) ([]*types.Tag, error) {
	order := "id"
	if filter.SortByName {
		order = "name, id"
	}
	return t.query("listing tags", "SELECT "+tagColumns+" FROM tags ORDER BY "+order)
}

// Update renames or recolors a tag.
func (t *tagsTable) Update(id int64, u types.TagUpdate) error {
	return t.s.atomically(func(q querier) error {
		tg, err := getTag(q, id)
		if err != nil {
			return err
		}
		if u.Name != nil {
			tg.Name = *u.Name
		}
		if u.Color != nil {
			tg.Color = *u.Color
		}
		if err := tg.Validate(); err != nil {
			return err
		}
		if err := checkTagName(q, tg.Name, id); err != nil {
			return err
		}
		if _, err := q.Exec("UPDATE tags SET name = ?, color = ? WHERE id = ?", tg.Name, nullable(tg.Color), id); err != nil {
			return fmt.Errorf("updating tag %d: %w", id, translate(err, types.EntityTag, tg.Name))
		}
		return nil
	})
}

// Delete removes a tag and every association that uses it.
func (t *tagsTable) Delete(id int64) error {
	return t.s.atomically(func(q querier) error {
		ok, err := exists(q, "SELECT 1 FROM tags WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("checking tag existence: %w", err)
		}
		if !ok {
			return types.NotFound(types.EntityTag, id)
		}
		if _, err := q.Exec("DELETE FROM item_tags WHERE tag_id = ?", id); err != nil {
			return fmt.Errorf("deleting item tags: %w", err)
		}
		if _, err := q.Exec("DELETE FROM project_tags WHERE tag_id = ?", id); err != nil {
			return fmt.Errorf("deleting project tags: %w", err)
		}
		if _, err := q.Exec("DELETE FROM tags WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting tag: %w", err)
		}
		return nil
	})
}

// association describes one of the tag join tables.
type association struct {
	table  string // join table
	column string // owner column in the join table
	owners string // owner table
	entity string
}

var (
	itemTags    = association{table: "item_tags", column: "item_id", owners: "items", entity: types.EntityItem}
	projectTags = association{table: "project_tags", column: "project_id", owners: "projects", entity: types.EntityProject}
)

// requireOwner returns NotFoundError when the owning entity is missing.
func (a association) requireOwner(q querier, ownerID int64) error {
	ok, err := exists(q, "SELECT 1 FROM "+a.owners+" WHERE id = ?", ownerID)
	if err != nil {
		return fmt.Errorf("checking %s existence: %w", a.entity, err)
	}
	if !ok {
		return types.NotFound(a.entity, ownerID)
	}
	return nil
}

func (t *tagsTable) add(a association, ownerID, tagID int64) error {
	return t.s.atomically(func(q querier) error {
		if err := a.requireOwner(q, ownerID); err != nil {
			return err
		}
		if _, err := getTag(q, tagID); err != nil {
			return err
		}
		_, err := q.Exec(
			"INSERT INTO "+a.table+" ("+a.column+", tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			ownerID, tagID,
		)
		if err != nil {
			return fmt.Errorf("tagging %s %d: %w", a.entity, ownerID, translate(err, types.EntityTag, ""))
		}
		return nil
	})
}

func (t *tagsTable) remove(a association, ownerID, tagID int64) error {
	return t.s.atomically(func(q querier) error {
		if err := a.requireOwner(q, ownerID); err != nil {
			return err
		}
		if _, err := getTag(q, tagID); err != nil {
			return err
		}
		if _, err := q.Exec("DELETE FROM "+a.table+" WHERE "+a.column+" = ? AND tag_id = ?", ownerID, tagID); err != nil {
			return fmt.Errorf("untagging %s %d: %w", a.entity, ownerID, err)
		}
		return nil
	})
}

func (t *tagsTable) forOwner(a association, ownerID int64) ([]*types.Tag, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	if err := a.requireOwner(q, ownerID); err != nil {
		return nil, err
	}
	return t.query("listing "+a.entity+" tags",
		"SELECT t.id, t.name, t.color FROM tags t JOIN "+a.table+" j ON j.tag_id = t.id WHERE j."+a.column+" = ? ORDER BY t.name",
		ownerID)
}

func (t *tagsTable) query(what, query string, args ...any) ([]*types.Tag, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	result, err := collect(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return result, nil
}

// AddToItem tags an item. Tagging twice is a no-op.
func (t *tagsTable) AddToItem(itemID, tagID int64) error { return t.add(itemTags, itemID, tagID) }

// RemoveFromItem untags an item. Removing an absent tag is a no-op.
func (t *tagsTable) RemoveFromItem(itemID, tagID int64) error {
	return t.remove(itemTags, itemID, tagID)
}

// ForItem lists an item's tags ordered by name.
func (t *tagsTable) ForItem(itemID int64) ([]*types.Tag, error) { return t.forOwner(itemTags, itemID) }

// AddToProject tags a project. Tagging twice is a no-op.
func (t *tagsTable) AddToProject(projectID, tagID int64) error {
	return t.add(projectTags, projectID, tagID)
}

// RemoveFromProject untags a project. Removing an absent tag is a no-op.
func (t *tagsTable) RemoveFromProject(projectID, tagID int64) error {
	return t.remove(projectTags, projectID, tagID)
}

// ForProject lists a project's tags ordered by name.
func (t *tagsTable) ForProject(projectID int64) ([]*types.Tag, error) {
	return t.forOwner(projectTags, projectID)
}

// ItemsWithTag lists the items carrying a tag in insertion order.
func (t *tagsTable) ItemsWithTag(tagID int64) ([]*types.Item, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	if _, err := getTag(q, tagID); err != nil {
		return nil, err
	}
	rows, err := q.Query(
		"SELECT "+itemColumnsAliased+" FROM items i JOIN item_tags j ON j.item_id = i.id WHERE j.tag_id = ? ORDER BY i.id",
		tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tagged items: %w", err)
	}
	result, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scanning tagged items: %w", err)
	}
	return result, nil
}

// ProjectsWithTag lists the projects carrying a tag in insertion order.
func (t *tagsTable) ProjectsWithTag(tagID int64) ([]*types.Project, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	if _, err := getTag(q, tagID); err != nil {
		return nil, err
	}
	rows, err := q.Query(
		"SELECT "+projectColumnsAliased+" FROM projects p JOIN project_tags j ON j.project_id = p.id WHERE j.tag_id = ? ORDER BY p.id",
		tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tagged projects: %w", err)
	}
	result, err := collect(rows, scanProject)
	if err != nil {
		return nil, fmt.Errorf("scanning tagged projects: %w", err)
	}
	return result, nil
}
