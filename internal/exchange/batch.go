package exchange

import (
	"errors"
	"fmt"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// itemKey is an item's natural key; supplier 0 means no supplier.
type itemKey struct {
	name     string
	supplier int64
}

// batch resolves natural keys during one import. Records written by the
// batch win over older records with the same key, so that under
// PolicyDuplicate an item follows the supplier created next to it.
//
// Names need not be unique, so under skip and overwrite the n-th record
// with a given key matches the n-th stored record with that key, oldest
// first. The refs maps send exported IDs to the records imported from
// them.
type batch struct {
	*Importer
	suppliers map[string]int64
	items     map[itemKey]int64
	projects  map[string]int64
	seen      map[string]int

	supplierRefs map[int64]int64
	itemRefs     map[int64]int64
	projectRefs  map[int64]int64
}

func newBatch(im *Importer) *batch {
	return &batch{
		Importer:     im,
		suppliers:    map[string]int64{},
		items:        map[itemKey]int64{},
		projects:     map[string]int64{},
		seen:         map[string]int{},
		supplierRefs: map[int64]int64{},
		itemRefs:     map[int64]int64{},
		projectRefs:  map[int64]int64{},
	}
}

func (b *batch) supplier(tx types.Store, rec SupplierRecord) (Outcome, int64, error) {
	sp := &types.Supplier{
		Name:        rec.Name,
		ContactInfo: rec.ContactInfo,
		Website:     rec.Website,
		Notes:       rec.Notes,
	}
	if err := sp.Validate(); err != nil {
		return Failed, 0, err
	}

	existing, err := b.existing("supplier:"+rec.Name, func() ([]int64, error) {
		found, err := tx.Suppliers().FindAllByName(rec.Name)
		return ids(found, func(s *types.Supplier) int64 { return s.ID }), err
	})
	if err != nil {
		return Failed, 0, err
	}

	var outcome Outcome
	var id int64
	switch {
	case existing != 0 && b.policy == PolicySkip:
		id, outcome = existing, Skipped
	case existing != 0:
		id, outcome = existing, Overwritten
		err = tx.Suppliers().Update(id, types.SupplierUpdate{
			Name:        &sp.Name,
			ContactInfo: &sp.ContactInfo,
			Website:     &sp.Website,
			Notes:       &sp.Notes,
		})
	default:
		outcome = Imported
		id, err = tx.Suppliers().Create(sp)
	}
	if err != nil {
		return Failed, 0, err
	}
	b.suppliers[rec.Name] = id
	b.ref(b.supplierRefs, rec.ID, id)
	return outcome, id, nil
}

func (b *batch) tag(tx types.Store, rec TagRecord) (Outcome, int64, error) {
	tg := &types.Tag{Name: rec.Name, Color: rec.Color}
	if err := tg.Validate(); err != nil {
		return Failed, 0, err
	}

	existing, err := tx.Tags().GetByName(rec.Name)
	switch {
	case errors.Is(err, types.ErrNotFound):
		id, err := tx.Tags().Create(tg)
		if err != nil {
			return Failed, 0, err
		}
		return Imported, id, nil
	case err != nil:
		return Failed, 0, err
	case b.policy == PolicyOverwrite:
		if err := tx.Tags().Update(existing.ID, types.TagUpdate{Color: &tg.Color}); err != nil {
			return Failed, 0, err
		}
		return Overwritten, existing.ID, nil
	default:
		// Tag names are unique, so duplicate reuses the existing tag.
		return Skipped, existing.ID, nil
	}
}

func (b *batch) item(tx types.Store, rec ItemRecord) (Outcome, int64, error) {
	supplierID, err := b.resolveSupplier(tx, rec.SupplierID, rec.Supplier)
	if err != nil {
		return Failed, 0, err
	}
	it := &types.Item{
		Name:         rec.Name,
		Category:     rec.Category,
		Quantity:     rec.Quantity,
		Unit:         rec.Unit,
		SupplierID:   supplierID,
		PurchaseDate: rec.PurchaseDate,
		PhotoPath:    rec.PhotoPath,
	}
	if err := it.Validate(); err != nil {
		return Failed, 0, err
	}
	key := itemKey{name: rec.Name}
	if supplierID != nil {
		key.supplier = *supplierID
	}

	existing, err := b.existing(fmt.Sprintf("item:%d:%s", key.supplier, rec.Name), func() ([]int64, error) {
		found, err := tx.Items().FindAllByNaturalKey(rec.Name, supplierID)
		return ids(found, func(it *types.Item) int64 { return it.ID }), err
	})
	if err != nil {
		return Failed, 0, err
	}

	var outcome Outcome
	var id int64
	switch {
	case existing != 0 && b.policy == PolicySkip:
		b.items[key] = existing
		b.ref(b.itemRefs, rec.ID, existing)
		return Skipped, existing, nil
	case existing != 0:
		id, outcome = existing, Overwritten
		err = tx.Items().Update(id, types.ItemUpdate{
			Name:          &it.Name,
			Category:      &it.Category,
			Quantity:      &it.Quantity,
			Unit:          &it.Unit,
			SupplierID:    it.SupplierID,
			ClearSupplier: it.SupplierID == nil,
			PurchaseDate:  &it.PurchaseDate,
			PhotoPath:     &it.PhotoPath,
		})
		if err == nil {
			err = tx.Metadata().DeleteAll(id)
		}
	default:
		outcome = Imported
		id, err = tx.Items().Create(it)
	}
	if err != nil {
		return Failed, 0, err
	}

	if err := syncTags(tx, rec.Tags, itemTagger{tx.Tags(), id}); err != nil {
		return Failed, 0, err
	}
	for k, v := range rec.Metadata {
		if err := tx.Metadata().Set(id, k, v); err != nil {
			return Failed, 0, err
		}
	}
	b.items[key] = id
	b.ref(b.itemRefs, rec.ID, id)
	return outcome, id, nil
}

func (b *batch) project(tx types.Store, rec ProjectRecord) (Outcome, int64, error) {
	p := &types.Project{Name: rec.Name, Description: rec.Description, DateCreated: rec.DateCreated}
	if p.DateCreated == "" {
		p.DateCreated = types.Today()
	}
	if err := p.Validate(); err != nil {
		return Failed, 0, err
	}

	existing, err := b.existing("project:"+rec.Name, func() ([]int64, error) {
		found, err := tx.Projects().FindAllByName(rec.Name)
		return ids(found, func(p *types.Project) int64 { return p.ID }), err
	})
	if err != nil {
		return Failed, 0, err
	}

	var outcome Outcome
	var id int64
	switch {
	case existing != 0 && b.policy == PolicySkip:
		b.projects[rec.Name] = existing
		b.ref(b.projectRefs, rec.ID, existing)
		return Skipped, existing, nil
	case existing != 0:
		id, outcome = existing, Overwritten
		err = tx.Projects().Update(id, types.ProjectUpdate{
			Name:        &p.Name,
			Description: &p.Description,
			DateCreated: &p.DateCreated,
		})
	default:
		outcome = Imported
		id, err = tx.Projects().Create(p)
	}
	if err != nil {
		return Failed, 0, err
	}

	if err := syncTags(tx, rec.Tags, projectTagger{tx.Tags(), id}); err != nil {
		return Failed, 0, err
	}
	b.projects[rec.Name] = id
	b.ref(b.projectRefs, rec.ID, id)
	return outcome, id, nil
}

func (b *batch) material(tx types.Store, rec MaterialRecord) (Outcome, int64, error) {
	m := &types.ProjectMaterial{QuantityUsed: rec.QuantityUsed}

	projectID, ok := b.projectRefs[rec.ProjectID]
	if !ok {
		projectID, ok = b.projects[rec.Project]
	}
	if !ok {
		p, err := tx.Projects().FindByName(rec.Project)
		if err != nil {
			return Failed, 0, err
		}
		projectID = p.ID
	}
	itemID, ok := b.itemRefs[rec.ItemID]
	if !ok {
		supplierID, err := b.resolveSupplier(tx, 0, rec.ItemSupplier)
		if err != nil {
			return Failed, 0, err
		}
		key := itemKey{name: rec.Item}
		if supplierID != nil {
			key.supplier = *supplierID
		}
		if itemID, ok = b.items[key]; !ok {
			it, err := tx.Items().FindByNaturalKey(rec.Item, supplierID)
			if err != nil {
				return Failed, 0, err
			}
			itemID = it.ID
		}
	}
	m.ProjectID, m.ItemID = projectID, itemID

	existing, err := b.existing(fmt.Sprintf("material:%d:%d", projectID, itemID), func() ([]int64, error) {
		found, err := tx.Materials().FindAll(projectID, itemID)
		return ids(found, func(m *types.ProjectMaterial) int64 { return m.ID }), err
	})
	switch {
	case err != nil:
		return Failed, 0, err
	case existing != 0 && b.policy == PolicySkip:
		return Skipped, existing, nil
	case existing != 0:
		if err := tx.Materials().Update(existing, types.MaterialUpdate{QuantityUsed: &m.QuantityUsed}); err != nil {
			return Failed, 0, err
		}
		return Overwritten, existing, nil
	}

	id, err := tx.Materials().Create(m)
	if err != nil {
		return Failed, 0, err
	}
	return Imported, id, nil
}

// existing returns the ID of the stored record this one matches, or 0.
// find lists the stored records sharing key, oldest first; the n-th call
// for a key takes the n-th of them. Under PolicyDuplicate nothing ever
// matches.
func (b *batch) existing(key string, find func() ([]int64, error)) (int64, error) {
	if b.policy == PolicyDuplicate {
		return 0, nil
	}
	n := b.seen[key]
	b.seen[key] = n + 1
	found, err := find()
	if err != nil {
		return 0, err
	}
	if n < len(found) {
		return found[n], nil
	}
	return 0, nil
}

// ref records that the exported ID from was imported as to.
func (b *batch) ref(refs map[int64]int64, from, to int64) {
	if from != 0 {
		refs[from] = to
	}
}

func ids[T any](records []*T, id func(*T) int64) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, id(r))
	}
	return out
}

// resolveSupplier maps a supplier to its ID, by exported ID when the batch
// imported it and by name otherwise. An empty name is no supplier and an
// unknown name is NotFound.
func (b *batch) resolveSupplier(tx types.Store, ref int64, name string) (*int64, error) {
	if id, ok := b.supplierRefs[ref]; ok && ref != 0 {
		return &id, nil
	}
	if name == "" {
		return nil, nil
	}
	if id, ok := b.suppliers[name]; ok {
		return &id, nil
	}
	sp, err := tx.Suppliers().FindByName(name)
	if err != nil {
		return nil, err
	}
	return &sp.ID, nil
}

// tagger abstracts the item and project tag associations.
type tagger interface {
	current() ([]*types.Tag, error)
	add(tagID int64) error
	remove(tagID int64) error
}

type itemTagger struct {
	tags types.TagTable
	id   int64
}

func (t itemTagger) current() ([]*types.Tag, error) { return t.tags.ForItem(t.id) }
func (t itemTagger) add(tagID int64) error           { return t.tags.AddToItem(t.id, tagID) }
func (t itemTagger) remove(tagID int64) error        { return t.tags.RemoveFromItem(t.id, tagID) }

type projectTagger struct {
	tags types.TagTable
	id   int64
}

func (t projectTagger) current() ([]*types.Tag, error) { return t.tags.ForProject(t.id) }
func (t projectTagger) add(tagID int64) error           { return t.tags.AddToProject(t.id, tagID) }
func (t projectTagger) remove(tagID int64) error        { return t.tags.RemoveFromProject(t.id, tagID) }

// syncTags makes the owner's tags exactly names, creating unknown tags.
func syncTags(tx types.Store, names []string, owner tagger) error {
	want := make(map[int64]bool, len(names))
	for _, name := range names {
		tg, err := tx.Tags().GetByName(name)
		if errors.Is(err, types.ErrNotFound) {
			tg = &types.Tag{Name: name}
			_, err = tx.Tags().Create(tg)
		}
		if err != nil {
			return err
		}
		want[tg.ID] = true
		if err := owner.add(tg.ID); err != nil {
			return err
		}
	}

	have, err := owner.current()
	if err != nil {
		return err
	}
	for _, tg := range have {
		if !want[tg.ID] {
			if err := owner.remove(tg.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
