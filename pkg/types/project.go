package types

// Project is a piece of work that consumes items.
type Project struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DateCreated string `json:"date_created,omitempty"`
}

// Validate checks the required fields and the date format.
func (p *Project) Validate() error {
	if blank(p.Name) {
		return Invalid("name", "is required")
	}
	return ValidateDate("date_created", p.DateCreated)
}

// ProjectUpdate carries the fields to change. Nil fields keep their value.
type ProjectUpdate struct {
	Name        *string
	Description *string
	DateCreated *string
}

// Apply copies the set fields onto p.
func (u ProjectUpdate) Apply(p *Project) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.DateCreated != nil {
		p.DateCreated = *u.DateCreated
	}
}

// ProjectMaterial records how much of an item a project used.
type ProjectMaterial struct {
	ID           int64   `json:"id"`
	ProjectID    int64   `json:"project_id"`
	ItemID       int64   `json:"item_id"`
	QuantityUsed float64 `json:"quantity_used"`
}

// Validate checks references and the consumed amount.
func (m *ProjectMaterial) Validate() error {
	if m.ProjectID <= 0 {
		return Invalid("project_id", "is required")
	}
	if m.ItemID <= 0 {
		return Invalid("item_id", "is required")
	}
	return validateAmount("quantity_used", m.QuantityUsed)
}

// MaterialUsage is a ProjectMaterial joined with the item it refers to.
type MaterialUsage struct {
	ProjectMaterial
	ItemName string `json:"item_name"`
	Category string `json:"category,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// MaterialUpdate carries the fields to change. Nil fields keep their value.
type MaterialUpdate struct {
	ItemID       *int64
	QuantityUsed *float64
}
