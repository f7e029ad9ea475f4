package exchange

import (
	"fmt"
	"time"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// FormatVersion is written to every JSON document.
const FormatVersion = "1.0"

// Document is the JSON interchange form of the whole inventory. References
// between records use natural keys (names), so a document imports cleanly
// into a database with different IDs. Records also carry their exported
// IDs; a reference that names one of them resolves to the record imported
// from it, which keeps records with repeated names apart.
type Document struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	ExportID   string           `json:"export_id"`
	Suppliers  []SupplierRecord `json:"suppliers"`
	Tags       []TagRecord      `json:"tags"`
	Items      []ItemRecord     `json:"items"`
	Projects   []ProjectRecord  `json:"projects"`
}

type SupplierRecord struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
	Website     string `json:"website,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type TagRecord struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// ItemRecord embeds the item's tag names and metadata. Supplier is the
// supplier's name and SupplierID its exported ID.
type ItemRecord struct {
	ID           int64             `json:"id,omitempty"`
	Name         string            `json:"name"`
	Category     string            `json:"category,omitempty"`
	Quantity     float64           `json:"quantity"`
	Unit         string            `json:"unit,omitempty"`
	Supplier     string            `json:"supplier,omitempty"`
	SupplierID   int64             `json:"supplier_id,omitempty"`
	PurchaseDate string            `json:"purchase_date,omitempty"`
	PhotoPath    string            `json:"photo_path,omitempty"`
	Tags         []string          `json:"tags"`
	Metadata     map[string]string `json:"metadata"`
}

// ProjectRecord embeds the project's tag names and materials.
type ProjectRecord struct {
	ID          int64            `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	DateCreated string           `json:"date_created,omitempty"`
	Tags        []string         `json:"tags"`
	Materials   []MaterialRecord `json:"materials"`
}

// MaterialRecord names its item by name and supplier name, and by the
// item's exported ID. Project and ProjectID are only set in the flat CSV
// form; inside a ProjectRecord they are implied.
type MaterialRecord struct {
	ID           int64   `json:"id,omitempty"`
	ProjectID    int64   `json:"project_id,omitempty"`
	Project      string  `json:"project,omitempty"`
	ItemID       int64   `json:"item_id,omitempty"`
	Item         string  `json:"item"`
	ItemSupplier string  `json:"item_supplier,omitempty"`
	QuantityUsed float64 `json:"quantity_used"`
}

// Snapshot reads the whole inventory into a Document. Records keep
// insertion order.
func Snapshot(store types.Store) (*Document, error) {
	suppliers, err := store.Suppliers().List(types.SupplierFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	tags, err := store.Tags().List(types.TagFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	items, err := store.Items().List(types.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	projects, err := store.Projects().List(types.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	doc := &Document{
		Version:   FormatVersion,
		Suppliers: make([]SupplierRecord, 0, len(suppliers)),
		Tags:      make([]TagRecord, 0, len(tags)),
		Items:     make([]ItemRecord, 0, len(items)),
		Projects:  make([]ProjectRecord, 0, len(projects)),
	}

	supplierNames := make(map[int64]string, len(suppliers))
	for _, s := range suppliers {
		supplierNames[s.ID] = s.Name
		doc.Suppliers = append(doc.Suppliers, SupplierRecord{
			ID:          s.ID,
			Name:        s.Name,
			ContactInfo: s.ContactInfo,
			Website:     s.Website,
			Notes:       s.Notes,
		})
	}

	for _, t := range tags {
		doc.Tags = append(doc.Tags, TagRecord{ID: t.ID, Name: t.Name, Color: t.Color})
	}

	for _, it := range items {
		rec := ItemRecord{
			ID:           it.ID,
			Name:         it.Name,
			Category:     it.Category,
			Quantity:     it.Quantity,
			Unit:         it.Unit,
			PurchaseDate: it.PurchaseDate,
			PhotoPath:    it.PhotoPath,
			Tags:         []string{},
			Metadata:     map[string]string{},
		}
		if it.SupplierID != nil {
			rec.Supplier = supplierNames[*it.SupplierID]
			rec.SupplierID = *it.SupplierID
		}
		itemTags, err := store.Tags().ForItem(it.ID)
		if err != nil {
			return nil, fmt.Errorf("listing tags of item %d: %w", it.ID, err)
		}
		for _, t := range itemTags {
			rec.Tags = append(rec.Tags, t.Name)
		}
		pairs, err := store.Metadata().ForItem(it.ID)
		if err != nil {
			return nil, fmt.Errorf("listing metadata of item %d: %w", it.ID, err)
		}
		for _, m := range pairs {
			rec.Metadata[m.Key] = m.Value
		}
		doc.Items = append(doc.Items, rec)
	}

	itemSuppliers := make(map[int64]string, len(items))
	for _, it := range items {
		if it.SupplierID != nil {
			itemSuppliers[it.ID] = supplierNames[*it.SupplierID]
		}
	}

	for _, p := range projects {
		rec := ProjectRecord{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			DateCreated: p.DateCreated,
			Tags:        []string{},
			Materials:   []MaterialRecord{},
		}
		projectTags, err := store.Tags().ForProject(p.ID)
		if err != nil {
			return nil, fmt.Errorf("listing tags of project %d: %w", p.ID, err)
		}
		for _, t := range projectTags {
			rec.Tags = append(rec.Tags, t.Name)
		}
		usage, err := store.Materials().ForProject(p.ID)
		if err != nil {
			return nil, fmt.Errorf("listing materials of project %d: %w", p.ID, err)
		}
		for _, u := range usage {
			rec.Materials = append(rec.Materials, MaterialRecord{
				ID:           u.ID,
				ItemID:       u.ItemID,
				Item:         u.ItemName,
				ItemSupplier: itemSuppliers[u.ItemID],
				QuantityUsed: u.QuantityUsed,
			})
		}
		doc.Projects = append(doc.Projects, rec)
	}

	return doc, nil
}

// materials flattens the project materials, filling in the project.
func (d *Document) materials() []MaterialRecord {
	var out []MaterialRecord
	for _, p := range d.Projects {
		for _, m := range p.Materials {
			m.Project, m.ProjectID = p.Name, p.ID
			out = append(out, m)
		}
	}
	return out
}
