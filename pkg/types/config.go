package types

import "errors"

// Config holds the storage parameters passed to Inventory.Attach.
type Config struct {
	// DataDir is the directory holding the database file. Created on Attach.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// DBFile is the database file name inside DataDir.
	DBFile string `json:"db_file" yaml:"db_file" mapstructure:"db_file"`

	// SupplierDeletePolicy decides what happens to items that still
	// reference a supplier being deleted.
	SupplierDeletePolicy string `json:"supplier_delete_policy" yaml:"supplier_delete_policy" mapstructure:"supplier_delete_policy"`
}

// Default configuration values.
const (
	DefaultDBFile = "craft_compass.db"
)

// Supplier delete policies.
const (
	// DeletePolicyBlock rejects the delete with an IntegrityError while any
	// item references the supplier.
	DeletePolicyBlock = "block"

	// DeletePolicyNullify clears items.supplier_id in the same transaction
	// and then deletes the supplier.
	DeletePolicyNullify = "nullify"
)

// Config validation errors.
var (
	ErrDBFileEmpty         = errors.New("db file name must not be empty")
	ErrDeletePolicyUnknown = errors.New("unknown supplier delete policy")
)

var knownDeletePolicies = map[string]bool{
	DeletePolicyBlock:   true,
	DeletePolicyNullify: true,
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c Config) WithDefaults() Config {
	if c.DBFile == "" {
		c.DBFile = DefaultDBFile
	}
	if c.SupplierDeletePolicy == "" {
		c.SupplierDeletePolicy = DeletePolicyBlock
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	return c
}

// Validate checks that the Config is well-formed. Call WithDefaults first if
// empty fields should be accepted.
func (c Config) Validate() error {
	if c.DBFile == "" {
		return ErrDBFileEmpty
	}
	if !knownDeletePolicies[c.SupplierDeletePolicy] {
		return ErrDeletePolicyUnknown
	}
	return nil
}
