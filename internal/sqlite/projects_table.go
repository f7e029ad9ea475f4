package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

var _ types.ProjectTable = (*projectsTable)(nil)

type projectsTable struct {
	s *scope
}

const (
	projectColumns        = "id, name, description, date_created"
	projectColumnsAliased = "p.id, p.name, p.description, p.date_created"
)

func scanProject(r rowScanner) (*types.Project, error) {
	var p types.Project
	var description, dateCreated sql.NullString
	if err := r.Scan(&p.ID, &p.Name, &description, &dateCreated); err != nil {
		return nil, err
	}
	p.Description = description.String
	p.DateCreated = dateCreated.String
	return &p, nil
}

// Create validates and inserts a project. An empty DateCreated becomes
// today's date.
func (t *projectsTable) Create(p *types.Project) (int64, error) {
	if p == nil {
		return 0, types.Invalid("", "project is nil")
	}
	if p.DateCreated == "" {
		p.DateCreated = types.Today()
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	q, err := t.s.conn()
	if err != nil {
		return 0, err
	}
	res, err := q.Exec(
		"INSERT INTO projects (name, description, date_created) VALUES (?, ?, ?)",
		p.Name, nullable(p.Description), p.DateCreated,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting project: %w", translate(err, types.EntityProject, p.Name))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading project id: %w", err)
	}
	p.ID = id
	return id, nil
}

// Get retrieves a project by ID.
func (t *projectsTable) Get(id int64) (*types.Project, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	return getProject(q, id)
}

func getProject(q querier, id int64) (*types.Project, error) {
	p, err := scanProject(q.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFound(types.EntityProject, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %d: %w", id, err)
	}
	return p, nil
}

// FindByName returns the oldest project with exactly this name.
func (t *projectsTable) FindByName(name string) (*types.Project, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	p, err := scanProject(q.QueryRow(
		"SELECT "+projectColumns+" FROM projects WHERE name = ? ORDER BY id LIMIT 1", name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NotFoundKey(types.EntityProject, 0, name)
	}
	if err != nil {
		return nil, fmt.Errorf("finding project %q: %w", name, err)
	}
	return p, nil
}

// FindAllByName returns every project with exactly this name, oldest first.
func (t *projectsTable) FindAllByName(name string) ([]*types.Project, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query("SELECT "+projectColumns+" FROM projects WHERE name = ? ORDER BY id", name)
	if err != nil {
		return nil, fmt.Errorf("finding projects %q: %w", name, err)
	}
	result, err := collect(rows, scanProject)
	if err != nil {
		return nil, fmt.Errorf("scanning projects: %w", err)
	}
	return result, nil
}

// List returns projects matching every set field of the filter.
func (t *projectsTable) List(filter types.ProjectFilter) ([]*types.Project, error) {
	q, err := t.s.conn()
	if err != nil {
		return nil, err
	}
	query, args := projectQuery(filter)
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	result, err := collect(rows, scanProject)
	if err != nil {
		return nil, fmt.Errorf("scanning projects: %w", err)
	}
	return result, nil
}

// Update applies the set fields of u to the project.
func (t *projectsTable) Update(id int64, u types.ProjectUpdate) error {
	return t.s.atomically(func(q querier) error {
		p, err := getProject(q, id)
		if err != nil {
			return err
		}
		u.Apply(p)
		if err := p.Validate(); err != nil {
			return err
		}
		_, err = q.Exec(
			"UPDATE projects SET name = ?, description = ?, date_created = ? WHERE id = ?",
			p.Name, nullable(p.Description), nullable(p.DateCreated), id,
		)
		if err != nil {
			return fmt.Errorf("updating project %d: %w", id, translate(err, types.EntityProject, p.Name))
		}
		return nil
	})
}

// Delete removes the project, its material rows and its tag associations.
func (t *projectsTable) Delete(id int64) error {
	return t.s.atomically(func(q querier) error {
		ok, err := exists(q, "SELECT 1 FROM projects WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("checking project existence: %w", err)
		}
		if !ok {
			return types.NotFound(types.EntityProject, id)
		}

		if _, err := q.Exec("DELETE FROM project_materials WHERE project_id = ?", id); err != nil {
			return fmt.Errorf("deleting project materials: %w", err)
		}
		if _, err := q.Exec("DELETE FROM project_tags WHERE project_id = ?", id); err != nil {
			return fmt.Errorf("deleting project tags: %w", err)
		}
		if _, err := q.Exec("DELETE FROM projects WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting project: %w", translate(err, types.EntityProject, ""))
		}
		return nil
	})
}
