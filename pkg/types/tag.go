package types

// Tag is a label shared by items and projects. Names are unique and
// compared case-sensitively.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Validate checks the required fields.
func (t *Tag) Validate() error {
	if blank(t.Name) {
		return Invalid("name", "is required")
	}
	return nil
}

// TagUpdate carries the fields to change. Nil fields keep their value.
type TagUpdate struct {
	Name  *string
	Color *string
}

// Metadata is one free-form key/value pair attached to an item.
type Metadata struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}
