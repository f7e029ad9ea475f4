package types

import "math"

// Item is a stock entry: a craft material with a quantity on hand.
type Item struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Quantity float64 `json:"quantity"`

	// Unit is free text such as grams, meters or skeins.
	Unit string `json:"unit,omitempty"`

	// SupplierID is nil when no supplier is recorded.
	SupplierID *int64 `json:"supplier_id,omitempty"`

	// PurchaseDate is YYYY-MM-DD or empty.
	PurchaseDate string `json:"purchase_date,omitempty"`

	// PhotoPath is a relative file path. Image bytes are never read here.
	PhotoPath string `json:"photo_path,omitempty"`
}

// Validate checks required fields and numeric ranges.
func (i *Item) Validate() error {
	if blank(i.Name) {
		return Invalid("name", "is required")
	}
	if err := validateAmount("quantity", i.Quantity); err != nil {
		return err
	}
	if i.SupplierID != nil && *i.SupplierID <= 0 {
		return Invalid("supplier_id", "must be a positive ID")
	}
	return ValidateDate("purchase_date", i.PurchaseDate)
}

func validateAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(field, "must be a finite number")
	}
	if v < 0 {
		return Invalid(field, "must not be negative")
	}
	return nil
}

// ItemUpdate carries the fields to change. Nil fields keep their value.
// ClearSupplier removes the supplier reference and wins over SupplierID.
type ItemUpdate struct {
	Name          *string
	Category      *string
	Quantity      *float64
	Unit          *string
	SupplierID    *int64
	ClearSupplier bool
	PurchaseDate  *string
	PhotoPath     *string
}

// Apply copies the set fields onto i.
func (u ItemUpdate) Apply(i *Item) {
	if u.Name != nil {
		i.Name = *u.Name
	}
	if u.Category != nil {
		i.Category = *u.Category
	}
	if u.Quantity != nil {
		i.Quantity = *u.Quantity
	}
	if u.Unit != nil {
		i.Unit = *u.Unit
	}
	if u.SupplierID != nil {
		id := *u.SupplierID
		i.SupplierID = &id
	}
	if u.ClearSupplier {
		i.SupplierID = nil
	}
	if u.PurchaseDate != nil {
		i.PurchaseDate = *u.PurchaseDate
	}
	if u.PhotoPath != nil {
		i.PhotoPath = *u.PhotoPath
	}
}
