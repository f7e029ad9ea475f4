package types

// Entity names used in errors, logs, and export file names.
const (
	EntitySupplier = "supplier"
	EntityItem     = "item"
	EntityProject  = "project"
	EntityMaterial = "project_material"
	EntityTag      = "tag"
	EntityMetadata = "item_metadata"
)

// Table names in the SQLite schema.
const (
	TableSuppliers        = "suppliers"
	TableItems            = "items"
	TableProjects         = "projects"
	TableProjectMaterials = "project_materials"
	TableTags             = "tags"
	TableItemTags         = "item_tags"
	TableProjectTags      = "project_tags"
	TableItemMetadata     = "item_metadata"
)

// StandardTableNames lists every table in dependency order.
var StandardTableNames = []string{
	TableSuppliers,
	TableItems,
	TableProjects,
	TableProjectMaterials,
	TableTags,
	TableItemTags,
	TableProjectTags,
	TableItemMetadata,
}
