package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Novaotic/craft-compass/internal/exchange"
	"github.com/Novaotic/craft-compass/internal/report"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// cliEnv runs commands against one config and data directory.
type cliEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

type result struct {
	stdout string
	stderr string
	code   int
}

func (e *cliEnv) run(args ...string) result {
	e.t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(context.Background(), full, &out, &errOut)
	return result{stdout: out.String(), stderr: errOut.String(), code: code}
}

// ok runs a command that must succeed.
func (e *cliEnv) ok(args ...string) string {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.code, "args %v: stderr %s", args, r.stderr)
	return r.stdout
}

// okJSON runs a command in --json mode and decodes its output into v.
func (e *cliEnv) okJSON(v any, args ...string) {
	e.t.Helper()
	out := e.ok(append([]string{"--json"}, args...)...)
	require.NoError(e.t, json.Unmarshal([]byte(out), v), "output: %s", out)
}

func TestVersion(t *testing.T) {
	e := newCLIEnv(t)
	out := e.ok("version")
	assert.Contains(t, out, "craftcompass v")
	assert.Contains(t, out, modulePath)

	_, err := os.Stat(e.configDir)
	assert.True(t, os.IsNotExist(err), "version must not create the config dir")
}

func TestInit(t *testing.T) {
	e := newCLIEnv(t)
	out := e.ok("init")
	assert.Contains(t, out, "Craft Compass initialized successfully")

	assert.FileExists(t, filepath.Join(e.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(e.dataDir, types.DefaultDBFile))

	// Idempotent.
	e.ok("init")
}

func TestExitCodes(t *testing.T) {
	e := newCLIEnv(t)
	e.ok("supplier", "add", "--name", "Acme", "--contact", "acme@example.com")
	e.ok("item", "add", "--name", "Red Yarn", "--quantity", "5", "--supplier-id", "1")
	e.ok("project", "add", "--name", "Scarf")
	e.ok("project", "material", "add", "1", "1", "2")

	tests := []struct {
		name string
		args []string
		want int
		msg  string
	}{
		{name: "unknown command", args: []string{"frobnicate"}, want: exitUserError},
		{name: "missing argument", args: []string{"item", "get"}, want: exitUserError},
		{name: "unknown flag", args: []string{"item", "list", "--colour", "red"}, want: exitUserError},
		{name: "malformed ID", args: []string{"item", "get", "abc"}, want: exitUserError, msg: `invalid item ID "abc"`},
		{name: "not found", args: []string{"item", "get", "99"}, want: exitUserError, msg: "not found"},
		{name: "validation", args: []string{"supplier", "add", "--name", "NoContact"}, want: exitUserError, msg: "contact_info"},
		{name: "bad date", args: []string{"item", "list", "--from", "2024-13-01"}, want: exitUserError},
		{name: "over-consumption", args: []string{"project", "material", "update", "1", "6"}, want: exitUserError, msg: "quantity_used"},
		{name: "supplier still referenced", args: []string{"supplier", "delete", "1"}, want: exitUserError, msg: "referenced"},
		{name: "item still used", args: []string{"item", "delete", "1"}, want: exitUserError},
		{name: "duplicate tag", args: []string{"tag", "add", "--name", "wool"}, want: exitUserError},
		{name: "bad import policy", args: []string{"import", "json", "x.json", "--policy", "merge"}, want: exitUserError, msg: "unknown import policy"},
		{name: "missing import file", args: []string{"import", "json", "/nonexistent/export.json"}, want: exitSysError},
	}
	e.ok("tag", "add", "--name", "wool")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.run(tt.args...)
			assert.Equal(t, tt.want, r.code, "stderr: %s", r.stderr)
			if tt.msg != "" {
				assert.Contains(t, r.stderr, tt.msg)
			}
		})
	}
}

func TestSystemErrorExitCode(t *testing.T) {
	e := newCLIEnv(t)
	// A file where the config directory should be.
	blocker := filepath.Join(t.TempDir(), "config-file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	e.configDir = blocker

	r := e.run("item", "list")
	assert.Equal(t, exitSysError, r.code)
}

func TestInventoryWorkflow(t *testing.T) {
	e := newCLIEnv(t)

	var sp types.Supplier
	e.okJSON(&sp, "supplier", "add", "--name", "Acme Craft", "--contact", "acme@example.com", "--website", "https://acme.example")
	assert.Equal(t, int64(1), sp.ID)

	var it types.Item
	e.okJSON(&it, "item", "add", "--name", "Red Yarn", "--category", "Yarn", "--quantity", "5",
		"--unit", "skeins", "--supplier-id", "1", "--purchase-date", "2024-03-01")
	require.NotNil(t, it.SupplierID)
	assert.Equal(t, int64(1), *it.SupplierID)

	e.ok("item", "add", "--name", "Glass Beads", "--category", "Beads", "--quantity", "200")
	e.ok("item", "tag", "1", "wool", "gift")
	e.ok("item", "meta", "set", "1", "fiber", "merino")
	assert.Equal(t, "merino\n", e.ok("item", "meta", "get", "1", "fiber"))

	var detail struct {
		types.Item
		Tags     []types.Tag      `json:"tags"`
		Metadata []types.Metadata `json:"metadata"`
	}
	e.okJSON(&detail, "item", "get", "1")
	assert.Equal(t, "Red Yarn", detail.Name)
	require.Len(t, detail.Tags, 2)
	assert.Equal(t, "gift", detail.Tags[0].Name)
	require.Len(t, detail.Metadata, 1)
	assert.Equal(t, "merino", detail.Metadata[0].Value)

	t.Run("item filters", func(t *testing.T) {
		var items []types.Item
		e.okJSON(&items, "item", "list", "--tag", "wool")
		require.Len(t, items, 1)
		assert.Equal(t, "Red Yarn", items[0].Name)

		e.okJSON(&items, "item", "list", "--min", "100")
		require.Len(t, items, 1)
		assert.Equal(t, "Glass Beads", items[0].Name)

		e.okJSON(&items, "search", "items", "acme")
		require.Len(t, items, 1)
		assert.Equal(t, "Red Yarn", items[0].Name)
	})

	t.Run("update keeps unset fields", func(t *testing.T) {
		var updated types.Item
		e.okJSON(&updated, "item", "update", "1", "--quantity", "4")
		assert.Equal(t, 4.0, updated.Quantity)
		assert.Equal(t, "Yarn", updated.Category)
		require.NotNil(t, updated.SupplierID)

		updated = types.Item{}
		e.okJSON(&updated, "item", "update", "1", "--clear-supplier")
		assert.Nil(t, updated.SupplierID)
	})

	t.Run("projects and materials", func(t *testing.T) {
		var p types.Project
		e.okJSON(&p, "project", "add", "--name", "Scarf", "--description", "Winter scarf", "--date", "2024-04-01")
		assert.Equal(t, "2024-04-01", p.DateCreated)

		r := e.run("project", "material", "add", "1", "1", "10")
		assert.Equal(t, exitUserError, r.code)

		e.ok("project", "material", "add", "1", "1", "3")
		e.ok("project", "tag", "1", "gift")

		var usage []types.MaterialUsage
		e.okJSON(&usage, "project", "material", "list", "1")
		require.Len(t, usage, 1)
		assert.Equal(t, "Red Yarn", usage[0].ItemName)
		assert.Equal(t, 3.0, usage[0].QuantityUsed)

		var projects []types.Project
		e.okJSON(&projects, "project", "list", "--min-materials", "1", "--tag", "gift")
		require.Len(t, projects, 1)

		var tagged []types.Project
		e.okJSON(&tagged, "tag", "projects", "gift")
		require.Len(t, tagged, 1)

		e.ok("project", "material", "remove", "1")
		e.ok("project", "delete", "1")
		e.okJSON(&projects, "project", "list")
		assert.Empty(t, projects)
	})

	t.Run("report", func(t *testing.T) {
		var sum report.Summary
		e.okJSON(&sum, "report")
		assert.Equal(t, 1, sum.Suppliers)
		assert.Equal(t, 2, sum.Items)
		assert.Equal(t, 2, sum.Tags)
		require.Len(t, sum.Categories, 2)
		assert.Equal(t, "Beads", sum.Categories[0].Category)
	})

	t.Run("untag and delete", func(t *testing.T) {
		var tags []types.Tag
		e.okJSON(&tags, "item", "untag", "1", "gift")
		require.Len(t, tags, 1)
		assert.Equal(t, "wool", tags[0].Name)

		e.ok("item", "meta", "delete", "1", "fiber")
		e.ok("item", "delete", "1")
		r := e.run("item", "get", "1")
		assert.Equal(t, exitUserError, r.code)
	})
}

func TestSupplierDeletePolicyFromConfig(t *testing.T) {
	e := newCLIEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("supplier_delete_policy: nullify\n"), 0o644))

	e.ok("supplier", "add", "--name", "Acme", "--contact", "x")
	e.ok("item", "add", "--name", "Red Yarn", "--quantity", "1", "--supplier-id", "1")
	e.ok("supplier", "delete", "1")

	var it types.Item
	e.okJSON(&it, "item", "get", "1")
	assert.Nil(t, it.SupplierID)
}

func TestExportImportBackup(t *testing.T) {
	src := newCLIEnv(t)
	src.ok("supplier", "add", "--name", "Acme", "--contact", "x")
	src.ok("item", "add", "--name", "Red Yarn", "--quantity", "5", "--supplier-id", "1")
	src.ok("item", "tag", "1", "wool")
	src.ok("project", "add", "--name", "Scarf")
	src.ok("project", "material", "add", "1", "1", "2")

	out := t.TempDir()
	jsonFile := filepath.Join(out, "export.json")
	src.ok("export", "json", jsonFile)
	src.ok("export", "csv", filepath.Join(out, "csv"))

	var doc exchange.Document
	require.NoError(t, json.Unmarshal([]byte(src.ok("export", "json")), &doc))
	assert.Len(t, doc.Items, 1)

	t.Run("json into empty inventory", func(t *testing.T) {
		dst := newCLIEnv(t)
		var rep exchange.Report
		dst.okJSON(&rep, "import", "json", jsonFile)
		assert.Equal(t, 5, rep.Count(exchange.Imported))
		assert.Equal(t, exchange.PolicySkip, rep.Policy)

		dst.okJSON(&rep, "import", "json", jsonFile, "--policy", "duplicate")
		assert.Equal(t, exchange.PolicyDuplicate, rep.Policy)

		var items []types.Item
		dst.okJSON(&items, "item", "list")
		assert.Len(t, items, 2)
	})

	t.Run("csv into empty inventory", func(t *testing.T) {
		dst := newCLIEnv(t)
		summary := dst.ok("import", "csv", filepath.Join(out, "csv"))
		assert.Contains(t, summary, "5 imported, 0 skipped, 0 overwritten, 0 failed")
	})

	t.Run("backup", func(t *testing.T) {
		line := src.ok("backup")
		assert.Contains(t, line, filepath.Join(src.dataDir, "backups", exchange.BackupPrefix))

		entries, err := os.ReadDir(filepath.Join(src.dataDir, "backups"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasSuffix(entries[0].Name(), ".json"))

		custom := t.TempDir()
		var res map[string]string
		src.okJSON(&res, "backup", "--dir", custom)
		assert.Equal(t, custom, filepath.Dir(res["path"]))
	})
}

func TestReset(t *testing.T) {
	e := newCLIEnv(t)
	e.ok("supplier", "add", "--name", "Acme", "--contact", "x")
	e.ok("item", "add", "--name", "Red Yarn", "--quantity", "5")

	r := e.run("reset")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "--yes")

	var res resetResult
	e.okJSON(&res, "reset", "--yes")
	assert.FileExists(t, res.Backup)

	var sum report.Summary
	e.okJSON(&sum, "report")
	assert.Zero(t, sum.Items)
	assert.Zero(t, sum.Suppliers)

	// The backup restores what the reset removed.
	var rep exchange.Report
	e.okJSON(&rep, "import", "json", res.Backup)
	assert.Equal(t, 2, rep.Count(exchange.Imported))

	var bare resetResult
	e.okJSON(&bare, "reset", "--yes", "--no-backup")
	assert.Empty(t, bare.Backup)
}

func TestTagListOrder(t *testing.T) {
	e := newCLIEnv(t)
	e.ok("tag", "add", "--name", "wool")
	e.ok("tag", "add", "--name", "cotton")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"insertion order by default", []string{"tag", "list"}, []string{"wool", "cotton"}},
		{"sorted by name", []string{"tag", "list", "--sort-name"}, []string{"cotton", "wool"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags []types.Tag
			e.okJSON(&tags, tt.args...)
			names := make([]string, 0, len(tags))
			for _, tg := range tags {
				names = append(names, tg.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
