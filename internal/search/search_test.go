package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Novaotic/craft-compass/internal/search"
	"github.com/Novaotic/craft-compass/internal/sqlite"
	"github.com/Novaotic/craft-compass/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func setupEngine(t *testing.T) (*search.Engine, *sqlite.Backend) {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return search.New(b), b
}

func names[T any](records []*T, name func(*T) string) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = name(r)
	}
	return out
}

func itemName(it *types.Item) string { return it.Name }

func TestItemQueryFilter_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query search.ItemQuery
		field string
	}{
		{"date range reversed", search.ItemQuery{DateFrom: "2024-05-01", DateTo: "2024-04-01"}, "purchase_date"},
		{"malformed date", search.ItemQuery{DateFrom: "May 1"}, "purchase_date"},
		{"quantity range reversed", search.ItemQuery{QuantityMin: ptr(10.0), QuantityMax: ptr(1.0)}, "quantity"},
		{"bad supplier id", search.ItemQuery{SupplierID: ptr(int64(0))}, "supplier_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Filter()
			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestItemQueryFilter_Normalizes(t *testing.T) {
	f, err := search.ItemQuery{
		Name:     "  yarn ",
		Category: " Yarn",
		Tags:     []string{" wool", "", "  "},
		DateFrom: "2024-01-01",
		DateTo:   "2024-01-01",
	}.Filter()
	require.NoError(t, err)
	assert.Equal(t, "yarn", f.NameContains)
	assert.Equal(t, "Yarn", f.Category)
	assert.Equal(t, []string{"wool"}, f.Tags)
}

func TestEngine_Items(t *testing.T) {
	e, b := setupEngine(t)

	for _, it := range []types.Item{
		{Name: "Red Yarn", Category: "Yarn", Quantity: 5, PurchaseDate: "2024-01-15"},
		{Name: "Blue Yarn", Category: "Yarn", Quantity: 15, PurchaseDate: "2024-02-15"},
		{Name: "Red Felt", Category: "Fabric", Quantity: 2, PurchaseDate: "2024-03-15"},
	} {
		_, err := b.Items().Create(&it)
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query search.ItemQuery
		want  []string
	}{
		{"empty query returns all", search.ItemQuery{}, []string{"Red Yarn", "Blue Yarn", "Red Felt"}},
		{"category and quantity range", search.ItemQuery{Category: "Yarn", QuantityMin: ptr(1.0), QuantityMax: ptr(10.0)}, []string{"Red Yarn"}},
		{"name and date", search.ItemQuery{Name: "red", DateFrom: "2024-03-01"}, []string{"Red Felt"}},
		{"nothing matches", search.ItemQuery{Name: "silk"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Items(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got, itemName))
		})
	}

	t.Run("invalid range never reaches storage", func(t *testing.T) {
		_, err := e.Items(search.ItemQuery{QuantityMin: ptr(3.0), QuantityMax: ptr(2.0)})
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestEngine_TextProjectsSuppliers(t *testing.T) {
	e, b := setupEngine(t)

	sid, err := b.Suppliers().Create(&types.Supplier{Name: "Wool Barn", ContactInfo: "barn@example.com"})
	require.NoError(t, err)
	_, err = b.Suppliers().Create(&types.Supplier{Name: "Bead Shop", ContactInfo: "shop@example.com", Website: "beads.example"})
	require.NoError(t, err)
	_, err = b.Items().Create(&types.Item{Name: "Merino", Category: "Fiber", SupplierID: &sid})
	require.NoError(t, err)
	_, err = b.Items().Create(&types.Item{Name: "Buttons", Category: "Notions"})
	require.NoError(t, err)
	_, err = b.Projects().Create(&types.Project{Name: "Cardigan", Description: "wool buttons", DateCreated: "2024-06-01"})
	require.NoError(t, err)

	items, err := e.Text("wool")
	require.NoError(t, err)
	assert.Equal(t, []string{"Merino"}, names(items, itemName))

	projects, err := e.Projects(search.ProjectQuery{Name: "BUTTONS"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Cardigan", projects[0].Name)

	_, err = e.Projects(search.ProjectQuery{MinMaterials: -1})
	assert.ErrorIs(t, err, types.ErrValidation)

	suppliers, err := e.Suppliers(search.SupplierQuery{Text: "beads.example"})
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Bead Shop", suppliers[0].Name)
}
