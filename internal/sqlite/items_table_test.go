package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Novaotic/craft-compass/pkg/types"
)

func createItem(t *testing.T, s types.Store, it types.Item) int64 {
	t.Helper()
	id, err := s.Items().Create(&it)
	require.NoError(t, err)
	return id
}

func itemNames(items []*types.Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}

func TestItemsTableCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "create then get round-trips every field",
			check: func(t *testing.T, b *Backend) {
				sid := createSupplier(t, b, "Acme")
				it := &types.Item{
					Name:         "Red Yarn",
					Category:     "Yarn",
					Quantity:     2.5,
					Unit:         "skeins",
					SupplierID:   &sid,
					PurchaseDate: "2024-03-01",
					PhotoPath:    "photos/red.jpg",
				}
				id, err := b.Items().Create(it)
				require.NoError(t, err)

				got, err := b.Items().Get(id)
				require.NoError(t, err)
				assert.Equal(t, it, got)
			},
		},
		{
			name: "negative quantity is a validation error",
			check: func(t *testing.T, b *Backend) {
				_, err := b.Items().Create(&types.Item{Name: "Red Yarn", Quantity: -1})
				var ve *types.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, "quantity", ve.Field)
			},
		},
		{
			name: "malformed purchase date is a validation error",
			check: func(t *testing.T, b *Backend) {
				_, err := b.Items().Create(&types.Item{Name: "Red Yarn", PurchaseDate: "03/01/2024"})
				assert.ErrorIs(t, err, types.ErrValidation)
			},
		},
		{
			name: "unknown supplier is not found",
			check: func(t *testing.T, b *Backend) {
				_, err := b.Items().Create(&types.Item{Name: "Red Yarn", SupplierID: ptr(int64(99))})
				var nf *types.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, types.EntitySupplier, nf.Entity)
			},
		},
		{
			name: "update sets and clears the supplier",
			check: func(t *testing.T, b *Backend) {
				sid := createSupplier(t, b, "Acme")
				id := createItem(t, b, types.Item{Name: "Red Yarn", Quantity: 1})

				require.NoError(t, b.Items().Update(id, types.ItemUpdate{SupplierID: &sid, Quantity: ptr(5.0)}))
				got, err := b.Items().Get(id)
				require.NoError(t, err)
				require.NotNil(t, got.SupplierID)
				assert.Equal(t, sid, *got.SupplierID)
				assert.Equal(t, 5.0, got.Quantity)

				require.NoError(t, b.Items().Update(id, types.ItemUpdate{ClearSupplier: true}))
				got, err = b.Items().Get(id)
				require.NoError(t, err)
				assert.Nil(t, got.SupplierID)
			},
		},
		{
			name: "update to an unknown supplier is not found",
			check: func(t *testing.T, b *Backend) {
				id := createItem(t, b, types.Item{Name: "Red Yarn"})
				err := b.Items().Update(id, types.ItemUpdate{SupplierID: ptr(int64(12))})
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
		{
			name: "delete removes tags and metadata",
			check: func(t *testing.T, b *Backend) {
				id := createItem(t, b, types.Item{Name: "Red Yarn"})
				tagID, err := b.Tags().Create(&types.Tag{Name: "wool"})
				require.NoError(t, err)
				require.NoError(t, b.Tags().AddToItem(id, tagID))
				require.NoError(t, b.Metadata().Set(id, "fiber", "merino"))

				require.NoError(t, b.Items().Delete(id))

				_, err = b.Items().Get(id)
				assert.ErrorIs(t, err, types.ErrNotFound)

				db, err := b.handle()
				require.NoError(t, err)
				n, err := count(db, "SELECT COUNT(*) FROM item_tags WHERE item_id = ?", id)
				require.NoError(t, err)
				assert.Zero(t, n)
				n, err = count(db, "SELECT COUNT(*) FROM item_metadata WHERE item_id = ?", id)
				require.NoError(t, err)
				assert.Zero(t, n)

				tagged, err := b.Tags().ItemsWithTag(tagID)
				require.NoError(t, err)
				assert.Empty(t, tagged)
			},
		},
		{
			name: "delete of an item used by a project is an integrity error",
			check: func(t *testing.T, b *Backend) {
				id := createItem(t, b, types.Item{Name: "Red Yarn", Quantity: 5})
				pid, err := b.Projects().Create(&types.Project{Name: "Scarf"})
				require.NoError(t, err)
				_, err = b.Materials().Create(&types.ProjectMaterial{ProjectID: pid, ItemID: id, QuantityUsed: 1})
				require.NoError(t, err)

				assert.ErrorIs(t, b.Items().Delete(id), types.ErrIntegrity)
				_, err = b.Items().Get(id)
				assert.NoError(t, err)
			},
		},
		{
			name: "find by natural key distinguishes suppliers",
			check: func(t *testing.T, b *Backend) {
				sid := createSupplier(t, b, "Acme")
				noSupplier := createItem(t, b, types.Item{Name: "Red Yarn"})
				withSupplier := createItem(t, b, types.Item{Name: "Red Yarn", SupplierID: &sid})

				got, err := b.Items().FindByNaturalKey("Red Yarn", nil)
				require.NoError(t, err)
				assert.Equal(t, noSupplier, got.ID)

				got, err = b.Items().FindByNaturalKey("Red Yarn", &sid)
				require.NoError(t, err)
				assert.Equal(t, withSupplier, got.ID)

				_, err = b.Items().FindByNaturalKey("Blue Yarn", nil)
				assert.ErrorIs(t, err, types.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBackend(t)
			tt.check(t, b)
		})
	}
}

func TestItemsTableList(t *testing.T) {
	b := setupBackend(t)

	acme := createSupplier(t, b, "Acme Fibers")
	other := createSupplier(t, b, "Beads R Us")
	createItem(t, b, types.Item{Name: "Red Yarn", Category: "Yarn", Quantity: 5, SupplierID: &acme, PurchaseDate: "2024-01-10"})
	createItem(t, b, types.Item{Name: "Blue Yarn", Category: "Yarn", Quantity: 12, SupplierID: &acme, PurchaseDate: "2024-02-10"})
	createItem(t, b, types.Item{Name: "Glass Beads", Category: "Beads", Quantity: 200, SupplierID: &other, PurchaseDate: "2024-03-10"})
	fiftyPct := createItem(t, b, types.Item{Name: "50%_cotton", Category: "Yarn", Quantity: 1})

	wool, err := b.Tags().Create(&types.Tag{Name: "wool"})
	require.NoError(t, err)
	soft, err := b.Tags().Create(&types.Tag{Name: "soft"})
	require.NoError(t, err)
	red, err := b.Items().FindByNaturalKey("Red Yarn", &acme)
	require.NoError(t, err)
	require.NoError(t, b.Tags().AddToItem(red.ID, wool))
	require.NoError(t, b.Tags().AddToItem(red.ID, soft))
	require.NoError(t, b.Tags().AddToItem(fiftyPct, soft))

	tests := []struct {
		name   string
		filter types.ItemFilter
		want   []string
	}{
		{"no filter keeps insertion order", types.ItemFilter{}, []string{"Red Yarn", "Blue Yarn", "Glass Beads", "50%_cotton"}},
		{"sorted by name", types.ItemFilter{SortByName: true}, []string{"50%_cotton", "Blue Yarn", "Glass Beads", "Red Yarn"}},
		{"name is case-insensitive", types.ItemFilter{NameContains: "YARN"}, []string{"Red Yarn", "Blue Yarn"}},
		{"percent is literal", types.ItemFilter{NameContains: "50%"}, []string{"50%_cotton"}},
		{"underscore is literal", types.ItemFilter{NameContains: "e_"}, []string{}},
		{"category and quantity range", types.ItemFilter{Category: "Yarn", QuantityMin: ptr(2.0), QuantityMax: ptr(10.0)}, []string{"Red Yarn"}},
		{"inclusive bounds", types.ItemFilter{QuantityMin: ptr(5.0), QuantityMax: ptr(12.0)}, []string{"Red Yarn", "Blue Yarn"}},
		{"supplier", types.ItemFilter{SupplierID: &other}, []string{"Glass Beads"}},
		{"date range excludes undated", types.ItemFilter{DateFrom: "2024-02-01", DateTo: "2024-03-10"}, []string{"Blue Yarn", "Glass Beads"}},
		{"text matches supplier name", types.ItemFilter{Text: "acme"}, []string{"Red Yarn", "Blue Yarn"}},
		{"text matches category", types.ItemFilter{Text: "bead"}, []string{"Glass Beads"}},
		{"all tags required", types.ItemFilter{Tags: []string{"wool", "soft"}}, []string{"Red Yarn"}},
		{"single tag", types.ItemFilter{Tags: []string{"soft"}}, []string{"Red Yarn", "50%_cotton"}},
		{"no match is empty", types.ItemFilter{Category: "Fabric"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Items().List(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, itemNames(got))
		})
	}
}
