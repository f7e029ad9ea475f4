package types

// Supplier is a shop or person materials are bought from.
type Supplier struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
	Website     string `json:"website,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Validate checks the required fields.
func (s *Supplier) Validate() error {
	if blank(s.Name) {
		return Invalid("name", "is required")
	}
	if blank(s.ContactInfo) {
		return Invalid("contact_info", "is required")
	}
	return nil
}

// SupplierUpdate carries the fields to change. Nil fields keep their value.
type SupplierUpdate struct {
	Name        *string
	ContactInfo *string
	Website     *string
	Notes       *string
}

// Apply copies the set fields onto s.
func (u SupplierUpdate) Apply(s *Supplier) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.ContactInfo != nil {
		s.ContactInfo = *u.ContactInfo
	}
	if u.Website != nil {
		s.Website = *u.Website
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
}
