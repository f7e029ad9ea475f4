package types

// Store gives access to the entity tables. Every method on a table is
// atomic on its own; WithTx groups several calls into one transaction.
type Store interface {
	Suppliers() SupplierTable
	Items() ItemTable
	Projects() ProjectTable
	Materials() MaterialTable
	Tags() TagTable
	Metadata() MetadataTable

	// WithTx runs fn inside a single transaction. The Store passed to fn
	// shares that transaction; it commits when fn returns nil and rolls back
	// when fn returns an error or panics. Calling WithTx on a Store that is
	// already inside a transaction reuses it.
	WithTx(fn func(tx Store) error) error
}

// Inventory is a Store with an explicit open/close lifecycle.
type Inventory interface {
	Store

	// Attach opens the database described by config, creating the data
	// directory and the schema when missing. Returns ErrAlreadyAttached when
	// called twice.
	Attach(config Config) error

	// Detach closes the database. Idempotent. After Detach every table
	// operation returns ErrDetached.
	Detach() error
}

// SupplierTable manages suppliers.
type SupplierTable interface {
	Create(s *Supplier) (int64, error)
	Get(id int64) (*Supplier, error)
	List(filter SupplierFilter) ([]*Supplier, error)
	Update(id int64, u SupplierUpdate) error

	// Delete applies the configured supplier delete policy to items that
	// still reference the supplier.
	Delete(id int64) error

	// FindByName returns the first supplier with exactly this name.
	FindByName(name string) (*Supplier, error)
	// FindAllByName returns every supplier with this name, oldest first.
	FindAllByName(name string) ([]*Supplier, error)
}

// ItemTable manages stock items.
type ItemTable interface {
	Create(i *Item) (int64, error)
	Get(id int64) (*Item, error)
	List(filter ItemFilter) ([]*Item, error)
	Update(id int64, u ItemUpdate) error

	// Delete removes the item together with its tag associations and
	// metadata. Returns an IntegrityError while a project material still
	// references it.
	Delete(id int64) error

	// FindByNaturalKey returns the first item with this name and supplier
	// (nil supplierID matches items without a supplier).
	FindByNaturalKey(name string, supplierID *int64) (*Item, error)
	FindAllByNaturalKey(name string, supplierID *int64) ([]*Item, error)
}

// ProjectTable manages projects.
type ProjectTable interface {
	// Create stores the project. An empty DateCreated is set to today.
	Create(p *Project) (int64, error)
	Get(id int64) (*Project, error)
	List(filter ProjectFilter) ([]*Project, error)
	Update(id int64, u ProjectUpdate) error

	// Delete removes the project with its materials and tag associations.
	Delete(id int64) error

	FindByName(name string) (*Project, error)
	FindAllByName(name string) ([]*Project, error)
}

// MaterialTable manages project material consumption rows.
type MaterialTable interface {
	// Create records consumption. QuantityUsed may not exceed the item's
	// quantity at the time of assignment.
	Create(m *ProjectMaterial) (int64, error)
	Get(id int64) (*ProjectMaterial, error)
	Update(id int64, u MaterialUpdate) error
	Delete(id int64) error

	// ForProject lists a project's materials joined with item details.
	ForProject(projectID int64) ([]*MaterialUsage, error)

	// ForItem lists every material row that consumes the item.
	ForItem(itemID int64) ([]*ProjectMaterial, error)

	// Find returns the material row for a (project, item) pair.
	Find(projectID, itemID int64) (*ProjectMaterial, error)
	// FindAll returns every material row for the pair, oldest first.
	FindAll(projectID, itemID int64) ([]*ProjectMaterial, error)
}

// TagTable manages tags and their item/project associations.
type TagTable interface {
	// Create returns a DuplicateNameError when the name is taken.
	Create(t *Tag) (int64, error)
	Get(id int64) (*Tag, error)
	GetByName(name string) (*Tag, error)
	List(filter TagFilter) ([]*Tag, error)
	Update(id int64, u TagUpdate) error
	Delete(id int64) error

	// AddToItem is idempotent; RemoveFromItem is a no-op when absent.
	AddToItem(itemID, tagID int64) error
	RemoveFromItem(itemID, tagID int64) error
	ForItem(itemID int64) ([]*Tag, error)
	ItemsWithTag(tagID int64) ([]*Item, error)

	// AddToProject is idempotent; RemoveFromProject is a no-op when absent.
	AddToProject(projectID, tagID int64) error
	RemoveFromProject(projectID, tagID int64) error
	ForProject(projectID int64) ([]*Tag, error)
	ProjectsWithTag(tagID int64) ([]*Project, error)
}

// MetadataTable manages free-form key/value pairs per item.
type MetadataTable interface {
	// Set creates the pair or overwrites its value.
	Set(itemID int64, key, value string) error
	Get(itemID int64, key string) (*Metadata, error)
	ForItem(itemID int64) ([]*Metadata, error)

	// Delete removes the pair; a missing key is not an error.
	Delete(itemID int64, key string) error
	DeleteAll(itemID int64) error
}
