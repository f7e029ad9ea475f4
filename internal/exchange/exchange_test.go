package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Novaotic/craft-compass/internal/sqlite"
	"github.com/Novaotic/craft-compass/pkg/types"
)

func setupBackend(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// seed fills b with the inventory the golden files describe.
func seed(t *testing.T, b *sqlite.Backend) {
	t.Helper()
	acme, err := b.Suppliers().Create(&types.Supplier{
		Name:        "Acme Craft",
		ContactInfo: "acme@example.com",
		Website:     "https://acme.example",
	})
	require.NoError(t, err)
	barn, err := b.Suppliers().Create(&types.Supplier{
		Name:        "Bead Barn",
		ContactInfo: "555-0100",
		Notes:       "Cash only, no cards",
	})
	require.NoError(t, err)

	wool, err := b.Tags().Create(&types.Tag{Name: "wool", Color: "#cc0000"})
	require.NoError(t, err)
	gift, err := b.Tags().Create(&types.Tag{Name: "gift"})
	require.NoError(t, err)

	yarn, err := b.Items().Create(&types.Item{
		Name: "Red Yarn", Category: "Yarn", Quantity: 5, Unit: "skeins",
		SupplierID: &acme, PurchaseDate: "2024-03-01", PhotoPath: "photos/red.jpg",
	})
	require.NoError(t, err)
	beads, err := b.Items().Create(&types.Item{
		Name: "Glass Beads", Category: "Beads", Quantity: 250.5, Unit: "pcs", SupplierID: &barn,
	})
	require.NoError(t, err)
	_, err = b.Items().Create(&types.Item{Name: "Scissors", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, b.Tags().AddToItem(yarn, wool))
	require.NoError(t, b.Tags().AddToItem(yarn, gift))
	require.NoError(t, b.Metadata().Set(yarn, "weight", "dk"))
	require.NoError(t, b.Metadata().Set(yarn, "fiber", "merino"))
	require.NoError(t, b.Metadata().Set(beads, "color", "blue"))

	scarf, err := b.Projects().Create(&types.Project{Name: "Scarf", Description: "Winter scarf", DateCreated: "2024-04-01"})
	require.NoError(t, err)
	require.NoError(t, b.Tags().AddToProject(scarf, gift))
	_, err = b.Materials().Create(&types.ProjectMaterial{ProjectID: scarf, ItemID: yarn, QuantityUsed: 2})
	require.NoError(t, err)
}

type counts struct {
	suppliers, items, projects, tags, materials, metadata int
}

func countAll(t *testing.T, b *sqlite.Backend) counts {
	t.Helper()
	doc, err := Snapshot(b)
	require.NoError(t, err)
	c := counts{
		suppliers: len(doc.Suppliers),
		items:     len(doc.Items),
		projects:  len(doc.Projects),
		tags:      len(doc.Tags),
		materials: len(doc.materials()),
	}
	for _, it := range doc.Items {
		c.metadata += len(it.Metadata)
	}
	return c
}

// withoutIDs clears storage IDs and export stamps so documents from
// different databases compare by content.
func withoutIDs(doc *Document) *Document {
	out := *doc
	out.ExportID, out.ExportedAt = "", time.Time{}
	out.Suppliers = append([]SupplierRecord{}, doc.Suppliers...)
	out.Tags = append([]TagRecord{}, doc.Tags...)
	out.Items = append([]ItemRecord{}, doc.Items...)
	out.Projects = append([]ProjectRecord{}, doc.Projects...)
	for i := range out.Suppliers {
		out.Suppliers[i].ID = 0
	}
	for i := range out.Tags {
		out.Tags[i].ID = 0
	}
	for i := range out.Items {
		out.Items[i].ID, out.Items[i].SupplierID = 0, 0
	}
	for i := range out.Projects {
		out.Projects[i].ID = 0
		out.Projects[i].Materials = append([]MaterialRecord{}, doc.Projects[i].Materials...)
		for j := range out.Projects[i].Materials {
			m := &out.Projects[i].Materials[j]
			m.ID, m.ProjectID, m.ItemID = 0, 0, 0
		}
	}
	return &out
}

func TestWriteCSV_Golden(t *testing.T) {
	b := setupBackend(t)
	seed(t, b)

	doc, err := Snapshot(b)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, name := range CSVFiles {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, doc.WriteCSV(name, &buf))
			g.Assert(t, name, buf.Bytes())
		})
	}
}

func TestWriteCSV_EmptyHasHeader(t *testing.T) {
	b := setupBackend(t)
	doc, err := Snapshot(b)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteCSV(ItemsCSV, &buf))
	assert.Equal(t, "id,name,category,quantity,unit,supplier,supplier_id,purchase_date,photo_path,tags\n", buf.String())

	assert.Error(t, doc.WriteCSV("widgets.csv", &buf))
}

func TestExportJSON(t *testing.T) {
	b := setupBackend(t)
	seed(t, b)

	e := NewExporter(b, nil)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	fixed := uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057")
	e.newID = func() (uuid.UUID, error) { return fixed, nil }

	var buf bytes.Buffer
	require.NoError(t, e.ExportJSON(&buf))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, FormatVersion, doc.Version)
	assert.Equal(t, fixed.String(), doc.ExportID)
	assert.True(t, doc.ExportedAt.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)))

	require.Len(t, doc.Items, 3)
	assert.Equal(t, []string{"gift", "wool"}, doc.Items[0].Tags)
	assert.Equal(t, map[string]string{"fiber": "merino", "weight": "dk"}, doc.Items[0].Metadata)
	assert.Equal(t, "Acme Craft", doc.Items[0].Supplier)
	assert.Empty(t, doc.Items[2].Tags)
	assert.NotNil(t, doc.Items[2].Tags, "empty tag lists serialize as []")

	require.Len(t, doc.Projects, 1)
	assert.Equal(t, []MaterialRecord{{
		ID: 1, ItemID: 1, Item: "Red Yarn", ItemSupplier: "Acme Craft", QuantityUsed: 2,
	}}, doc.Projects[0].Materials)
	assert.Contains(t, buf.String(), `"photo_path": "photos/red.jpg"`)
}

func TestExportIsReadOnly(t *testing.T) {
	b := setupBackend(t)
	seed(t, b)
	before := countAll(t, b)

	e := NewExporter(b, nil)
	_, err := e.ExportCSV(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, e.ExportJSON(&bytes.Buffer{}))

	assert.Equal(t, before, countAll(t, b))
}

func TestBackup(t *testing.T) {
	b := setupBackend(t)
	seed(t, b)

	e := NewExporter(b, nil)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 9, 5, 7, 0, time.Local) }

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := e.Backup(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "craft_compass_backup_20240501_090507.json"), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")

	fresh := setupBackend(t)
	report, err := NewImporter(fresh, PolicySkip, nil).ImportJSONFile(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, report.Count(Failed))
	assert.Equal(t, countAll(t, b), countAll(t, fresh))
}

func TestImportJSON_SkipRoundTripChangesNothing(t *testing.T) {
	b := setupBackend(t)
	seed(t, b)
	before := countAll(t, b)

	var buf bytes.Buffer
	require.NoError(t, NewExporter(b, nil).ExportJSON(&buf))

	report, err := NewImporter(b, PolicySkip, nil).ImportJSON(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, before, countAll(t, b))
	assert.Equal(t, len(report.Results), report.Count(Skipped))
	assert.Zero(t, report.Count(Imported))
	_, err = uuid.Parse(report.BatchID)
	assert.NoError(t, err)
}

func TestImportJSON_IntoEmptyStoreReproducesContent(t *testing.T) {
	src := setupBackend(t)
	seed(t, src)
	var buf bytes.Buffer
	require.NoError(t, NewExporter(src, nil).ExportJSON(&buf))

	dst := setupBackend(t)
	report, err := NewImporter(dst, PolicySkip, nil).ImportJSON(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, report.Count(Failed), report.Errors())
	// 2 suppliers, 2 tags, 3 items, 1 project, 1 material.
	assert.Equal(t, 9, report.Count(Imported))

	want, err := Snapshot(src)
	require.NoError(t, err)
	got, err := Snapshot(dst)
	require.NoError(t, err)
	assert.Equal(t, withoutIDs(want), withoutIDs(got))
}

func TestImportCSV_RoundTrip(t *testing.T) {
	src := setupBackend(t)
	seed(t, src)
	dir := t.TempDir()
	paths, err := NewExporter(src, nil).ExportCSV(dir)
	require.NoError(t, err)
	require.Len(t, paths, len(CSVFiles))

	dst := setupBackend(t)
	report, err := NewImporter(dst, PolicySkip, nil).ImportCSV(context.Background(), dir)
	require.NoError(t, err)
	assert.Zero(t, report.Count(Failed), report.Errors())
	assert.Equal(t, "csv", report.Format)

	want, err := Snapshot(src)
	require.NoError(t, err)
	got, err := Snapshot(dst)
	require.NoError(t, err)
	assert.Equal(t, withoutIDs(want), withoutIDs(got))

	again, err := NewImporter(dst, PolicySkip, nil).ImportCSV(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, len(again.Results), again.Count(Skipped))
	assert.Equal(t, countAll(t, src), countAll(t, dst))
}

func TestImport_BadRecordDoesNotAbortBatch(t *testing.T) {
	b := setupBackend(t)
	input := `{
  "version": "1.0",
  "suppliers": [{"name": "Acme", "contact_info": "a@example.com"}],
  "items": [
    {"name": "", "quantity": 1},
    {"name": "Red Yarn", "quantity": -2},
    {"name": "Blue Yarn", "quantity": 3, "supplier": "Nobody"},
    {"name": "Green Yarn", "quantity": 4, "supplier": "Acme", "tags": ["wool"], "metadata": {"weight": "dk"}}
  ]
}`

	report, err := NewImporter(b, PolicySkip, nil).ImportJSON(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, report.Results, 5)
	assert.Equal(t, 2, report.Count(Imported))
	assert.Equal(t, 3, report.Count(Failed))

	missingName := report.Results[1]
	assert.Equal(t, Failed, missingName.Outcome)
	assert.Equal(t, 1, missingName.Index)
	assert.ErrorIs(t, missingName.Err, types.ErrImportRecord)
	assert.ErrorIs(t, missingName.Err, types.ErrValidation)

	var rerr *types.ImportRecordError
	require.ErrorAs(t, report.Results[3].Err, &rerr)
	assert.Equal(t, types.EntityItem, rerr.Entity)
	assert.Equal(t, 3, rerr.Index)
	assert.Equal(t, "Blue Yarn (Nobody)", rerr.Key)
	assert.ErrorIs(t, rerr, types.ErrNotFound)

	green := report.Results[4]
	assert.Equal(t, Imported, green.Outcome)
	tags, err := b.Tags().ForItem(green.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "wool", tags[0].Name)
	meta, err := b.Metadata().Get(green.ID, "weight")
	require.NoError(t, err)
	assert.Equal(t, "dk", meta.Value)

	assert.Len(t, report.Errors(), 3)
	assert.Equal(t, "2 imported, 0 skipped, 0 overwritten, 3 failed", report.Summary())
}

func TestImportCSV_BadQuantityReportsLine(t *testing.T) {
	b := setupBackend(t)
	dir := t.TempDir()
	items := "name,quantity\nRed Yarn,3\nBlue Yarn,lots\n\nGreen Yarn,1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ItemsCSV), []byte(items), 0o644))

	report, err := NewImporter(b, PolicySkip, nil).ImportCSV(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Results, 3)
	assert.Equal(t, Failed, report.Results[1].Outcome)
	assert.Equal(t, 3, report.Results[1].Index)
	assert.ErrorIs(t, report.Results[1].Err, types.ErrValidation)
	assert.Equal(t, 5, report.Results[2].Index)
	assert.Equal(t, Imported, report.Results[2].Outcome)
}

func TestImport_MalformedRecordFailsAlone(t *testing.T) {
	t.Run("json element", func(t *testing.T) {
		b := setupBackend(t)
		input := `{"items": [{"name": "Good", "quantity": 1}, {"quantity": "five"}, {"name": "Also good", "quantity": 3}]}`

		report, err := NewImporter(b, PolicySkip, nil).ImportJSON(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, report.Results, 3)
		assert.Equal(t, 2, report.Count(Imported))
		assert.Equal(t, 1, report.Count(Failed))

		bad := report.Results[1]
		assert.Equal(t, Failed, bad.Outcome)
		assert.Equal(t, 2, bad.Index)
		assert.ErrorIs(t, bad.Err, types.ErrValidation)
		assert.Equal(t, "Also good", report.Results[2].Key)
	})

	t.Run("csv row", func(t *testing.T) {
		b := setupBackend(t)
		dir := t.TempDir()
		items := "name,quantity\nGood,1\nBa\"d,2\nAlso good,3\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ItemsCSV), []byte(items), 0o644))

		report, err := NewImporter(b, PolicySkip, nil).ImportCSV(context.Background(), dir)
		require.NoError(t, err)
		require.Len(t, report.Results, 3)
		assert.Equal(t, 2, report.Count(Imported))

		bad := report.Results[1]
		assert.Equal(t, Failed, bad.Outcome)
		assert.Equal(t, 3, bad.Index)
		assert.ErrorIs(t, bad.Err, types.ErrValidation)
		assert.Equal(t, 4, report.Results[2].Index)
	})
}

func TestImport_SkipRoundTripWithRepeatedNames(t *testing.T) {
	seedRepeats := func(t *testing.T, b *sqlite.Backend) {
		t.Helper()
		first, err := b.Items().Create(&types.Item{Name: "Yarn", Quantity: 10})
		require.NoError(t, err)
		second, err := b.Items().Create(&types.Item{Name: "Yarn", Quantity: 20})
		require.NoError(t, err)
		_, err = b.Projects().Create(&types.Project{Name: "Scarf", DateCreated: "2024-01-01"})
		require.NoError(t, err)
		scarf, err := b.Projects().Create(&types.Project{Name: "Scarf", DateCreated: "2024-02-01"})
		require.NoError(t, err)
		_, err = b.Materials().Create(&types.ProjectMaterial{ProjectID: scarf, ItemID: second, QuantityUsed: 5})
		require.NoError(t, err)
		_, err = b.Materials().Create(&types.ProjectMaterial{ProjectID: scarf, ItemID: first, QuantityUsed: 1})
		require.NoError(t, err)
	}

	t.Run("json", func(t *testing.T) {
		b := setupBackend(t)
		seedRepeats(t, b)
		before := countAll(t, b)

		var buf bytes.Buffer
		require.NoError(t, NewExporter(b, nil).ExportJSON(&buf))
		report, err := NewImporter(b, PolicySkip, nil).ImportJSON(context.Background(), &buf)
		require.NoError(t, err)

		assert.Equal(t, len(report.Results), report.Count(Skipped), report.Errors())
		assert.Equal(t, before, countAll(t, b))
	})

	t.Run("csv", func(t *testing.T) {
		b := setupBackend(t)
		seedRepeats(t, b)
		before := countAll(t, b)

		dir := t.TempDir()
		_, err := NewExporter(b, nil).ExportCSV(dir)
		require.NoError(t, err)
		report, err := NewImporter(b, PolicySkip, nil).ImportCSV(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, len(report.Results), report.Count(Skipped), report.Errors())
		assert.Equal(t, before, countAll(t, b))
	})

	t.Run("into an empty store", func(t *testing.T) {
		src := setupBackend(t)
		seedRepeats(t, src)
		var buf bytes.Buffer
		require.NoError(t, NewExporter(src, nil).ExportJSON(&buf))

		dst := setupBackend(t)
		report, err := NewImporter(dst, PolicySkip, nil).ImportJSON(context.Background(), &buf)
		require.NoError(t, err)
		assert.Zero(t, report.Count(Failed), report.Errors())

		projects, err := dst.Projects().List(types.ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, projects, 2)
		used, err := dst.Materials().ForProject(projects[0].ID)
		require.NoError(t, err)
		assert.Empty(t, used, "materials stay on the second Scarf")
		used, err = dst.Materials().ForProject(projects[1].ID)
		require.NoError(t, err)
		assert.Len(t, used, 2)
	})
}

func TestImportPolicies(t *testing.T) {
	input := `{
  "suppliers": [{"name": "Acme", "contact_info": "new@example.com"}],
  "tags": [{"name": "wool", "color": "red"}],
  "items": [{"name": "Red Yarn", "quantity": 8, "supplier": "Acme", "tags": ["soft"], "metadata": {"weight": "worsted"}}],
  "projects": [{"name": "Scarf", "description": "updated",
    "materials": [{"item": "Red Yarn", "item_supplier": "Acme", "quantity_used": 6}]}]
}`

	setup := func(t *testing.T) *sqlite.Backend {
		b := setupBackend(t)
		acme, err := b.Suppliers().Create(&types.Supplier{Name: "Acme", ContactInfo: "old@example.com"})
		require.NoError(t, err)
		_, err = b.Tags().Create(&types.Tag{Name: "wool", Color: "grey"})
		require.NoError(t, err)
		yarn, err := b.Items().Create(&types.Item{Name: "Red Yarn", Quantity: 10, SupplierID: &acme})
		require.NoError(t, err)
		require.NoError(t, b.Metadata().Set(yarn, "weight", "dk"))
		require.NoError(t, b.Metadata().Set(yarn, "fiber", "merino"))
		scarf, err := b.Projects().Create(&types.Project{Name: "Scarf", Description: "old"})
		require.NoError(t, err)
		_, err = b.Materials().Create(&types.ProjectMaterial{ProjectID: scarf, ItemID: yarn, QuantityUsed: 1})
		require.NoError(t, err)
		return b
	}

	t.Run("overwrite updates matching records", func(t *testing.T) {
		b := setup(t)
		report, err := NewImporter(b, PolicyOverwrite, nil).ImportJSON(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 5, report.Count(Overwritten), report.Errors())

		sp, err := b.Suppliers().FindByName("Acme")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", sp.ContactInfo)

		tag, err := b.Tags().GetByName("wool")
		require.NoError(t, err)
		assert.Equal(t, "red", tag.Color)

		yarn, err := b.Items().FindByNaturalKey("Red Yarn", &sp.ID)
		require.NoError(t, err)
		assert.Equal(t, 8.0, yarn.Quantity)
		meta, err := b.Metadata().ForItem(yarn.ID)
		require.NoError(t, err)
		require.Len(t, meta, 1, "metadata is replaced, not merged")
		assert.Equal(t, "worsted", meta[0].Value)
		tags, err := b.Tags().ForItem(yarn.ID)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "soft", tags[0].Name)

		scarf, err := b.Projects().FindByName("Scarf")
		require.NoError(t, err)
		assert.Equal(t, "updated", scarf.Description)
		m, err := b.Materials().Find(scarf.ID, yarn.ID)
		require.NoError(t, err)
		assert.Equal(t, 6.0, m.QuantityUsed)
	})

	t.Run("duplicate inserts new rows but reuses tags", func(t *testing.T) {
		b := setup(t)
		report, err := NewImporter(b, PolicyDuplicate, nil).ImportJSON(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 4, report.Count(Imported), report.Errors())
		assert.Equal(t, 1, report.Count(Skipped))
		assert.Equal(t, types.EntityTag, report.Results[1].Entity)
		assert.Equal(t, Skipped, report.Results[1].Outcome)

		suppliers, err := b.Suppliers().List(types.SupplierFilter{})
		require.NoError(t, err)
		assert.Len(t, suppliers, 2)
		tags, err := b.Tags().List(types.TagFilter{})
		require.NoError(t, err)
		assert.Len(t, tags, 2, "wool plus the new soft tag")

		// The new item hangs off the new supplier and the new project uses it.
		newSupplier := suppliers[1].ID
		yarn, err := b.Items().FindByNaturalKey("Red Yarn", &newSupplier)
		require.NoError(t, err)
		projects, err := b.Projects().List(types.ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, projects, 2)
		used, err := b.Materials().ForProject(projects[1].ID)
		require.NoError(t, err)
		require.Len(t, used, 1)
		assert.Equal(t, yarn.ID, used[0].ItemID)
	})

	t.Run("skip leaves matching records untouched", func(t *testing.T) {
		b := setup(t)
		report, err := NewImporter(b, PolicySkip, nil).ImportJSON(context.Background(), strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 5, report.Count(Skipped))

		sp, err := b.Suppliers().FindByName("Acme")
		require.NoError(t, err)
		assert.Equal(t, "old@example.com", sp.ContactInfo)
	})
}

func TestImport_FileLevelErrors(t *testing.T) {
	b := setupBackend(t)
	im := NewImporter(b, PolicySkip, nil)

	report, err := im.ImportJSON(context.Background(), strings.NewReader("{not json"))
	assert.Error(t, err)
	assert.Nil(t, report)

	_, err = im.ImportCSV(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no CSV files")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SuppliersCSV), []byte("name,contact_info\n\"broken,x\n"), 0o644))
	_, err = im.ImportCSV(context.Background(), dir)
	assert.ErrorContains(t, err, SuppliersCSV)
}

func TestImport_CancelledContextStopsBetweenRecords(t *testing.T) {
	b := setupBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := `{"tags": [{"name": "a"}, {"name": "b"}]}`
	report, err := NewImporter(b, PolicySkip, nil).ImportJSON(ctx, strings.NewReader(input))
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, report)
	assert.Empty(t, report.Results)

	tags, err := b.Tags().List(types.TagFilter{})
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"skip": PolicySkip, " Overwrite ": PolicyOverwrite, "DUPLICATE": PolicyDuplicate} {
		got, err := ParsePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePolicy("rename")
	assert.Error(t, err)
}
