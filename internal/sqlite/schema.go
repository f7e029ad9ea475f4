package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// Schema DDL. Every statement is idempotent so initSchema can run on every
// Attach.
//
// Join tables and item_metadata cascade from their parents. items.supplier_id
// and project_materials.item_id carry a plain foreign key: storage refuses a
// dangling delete and the tables apply the delete policy first.
const (
	createSuppliers = `CREATE TABLE IF NOT EXISTS suppliers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    contact_info TEXT NOT NULL,
    website TEXT,
    notes TEXT
);`

	createItems = `CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    category TEXT,
    quantity REAL NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit TEXT,
    supplier_id INTEGER REFERENCES suppliers(id),
    purchase_date TEXT,
    photo_path TEXT
);`

	createProjects = `CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT,
    date_created TEXT
);`

	createProjectMaterials = `CREATE TABLE IF NOT EXISTS project_materials (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    item_id INTEGER NOT NULL REFERENCES items(id),
    quantity_used REAL NOT NULL CHECK (quantity_used >= 0)
);`

	createTags = `CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    color TEXT
);`

	createItemTags = `CREATE TABLE IF NOT EXISTS item_tags (
    item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (item_id, tag_id)
);`

	createProjectTags = `CREATE TABLE IF NOT EXISTS project_tags (
    project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (project_id, tag_id)
);`

	createItemMetadata = `CREATE TABLE IF NOT EXISTS item_metadata (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    key TEXT NOT NULL,
    value TEXT NOT NULL DEFAULT '',
    UNIQUE (item_id, key)
);`
)

// Index DDL for common lookups.
const (
	idxItemsSupplier    = `CREATE INDEX IF NOT EXISTS idx_items_supplier ON items(supplier_id);`
	idxItemsCategory    = `CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);`
	idxItemsName        = `CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);`
	idxMaterialsProject = `CREATE INDEX IF NOT EXISTS idx_materials_project ON project_materials(project_id);`
	idxMaterialsItem    = `CREATE INDEX IF NOT EXISTS idx_materials_item ON project_materials(item_id);`
	idxItemTagsTag      = `CREATE INDEX IF NOT EXISTS idx_item_tags_tag ON item_tags(tag_id);`
	idxProjectTagsTag   = `CREATE INDEX IF NOT EXISTS idx_project_tags_tag ON project_tags(tag_id);`
	idxItemMetadataItem = `CREATE INDEX IF NOT EXISTS idx_item_metadata_item ON item_metadata(item_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createSuppliers,
	createItems,
	createProjects,
	createProjectMaterials,
	createTags,
	createItemTags,
	createProjectTags,
	createItemMetadata,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxItemsSupplier,
	idxItemsCategory,
	idxItemsName,
	idxMaterialsProject,
	idxMaterialsItem,
	idxItemTagsTag,
	idxProjectTagsTag,
	idxItemMetadataItem,
}

// initSchema creates missing tables and indexes in one transaction.
func initSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaDDL {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	for _, stmt := range indexDDL {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func dropSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning drop transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first.
	for i := len(types.StandardTableNames) - 1; i >= 0; i-- {
		table := types.StandardTableNames[i]
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}
	return tx.Commit()
}
