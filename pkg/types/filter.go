package types

// ItemFilter selects items. Zero-valued fields impose no constraint and all
// set fields are combined with AND.
type ItemFilter struct {
	// NameContains is a case-insensitive substring match on the name.
	NameContains string

	// Text is a case-insensitive substring match on name, category or the
	// supplier's name.
	Text string

	Category    string // exact match
	SupplierID  *int64 // exact match
	DateFrom    string // purchase_date >= DateFrom, inclusive
	DateTo      string // purchase_date <= DateTo, inclusive
	QuantityMin *float64
	QuantityMax *float64

	// Tags requires every listed tag name to be attached to the item.
	Tags []string

	SortByName bool
}

// ProjectFilter selects projects. Zero-valued fields impose no constraint.
type ProjectFilter struct {
	NameContains string // matches name or description, case-insensitive
	DateFrom     string
	DateTo       string
	MinMaterials int // projects with at least this many material rows
	Tag          string
	SortByName   bool
}

// SupplierFilter selects suppliers. Zero-valued fields impose no constraint.
type SupplierFilter struct {
	// Text is a case-insensitive substring match on name, contact info,
	// website or notes.
	Text       string
	SortByName bool
}

// TagFilter orders tag listings.
type TagFilter struct {
	SortByName bool
}
