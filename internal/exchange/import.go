package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Novaotic/craft-compass/internal/logging"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// entry is one parsed input record. err is set when the record could not
// be parsed; it is then reported as failed without touching the store.
type entry[T any] struct {
	index int
	rec   T
	err   error
}

// plan is a parsed import in dependency order.
type plan struct {
	suppliers []entry[SupplierRecord]
	tags      []entry[TagRecord]
	items     []entry[ItemRecord]
	projects  []entry[ProjectRecord]
	materials []entry[MaterialRecord]
}

// Importer applies CSV or JSON input to a store under one conflict policy.
type Importer struct {
	store  types.Store
	policy Policy
	log    *logging.Logger
	newID  func() (uuid.UUID, error)
}

// NewImporter returns an Importer writing to store. A nil log discards log
// output.
func NewImporter(store types.Store, policy Policy, log *logging.Logger) *Importer {
	if log == nil {
		log = logging.Nop()
	}
	return &Importer{store: store, policy: policy, log: log, newID: uuid.NewV7}
}

// rawDocument is a Document whose records are decoded one at a time, so a
// malformed record fails alone.
type rawDocument struct {
	Suppliers []json.RawMessage `json:"suppliers"`
	Tags      []json.RawMessage `json:"tags"`
	Items     []json.RawMessage `json:"items"`
	Projects  []json.RawMessage `json:"projects"`
}

// decodeEntries decodes each raw record. Indexes are 1-based positions.
func decodeEntries[T any](raw []json.RawMessage) []entry[T] {
	out := make([]entry[T], 0, len(raw))
	for i, msg := range raw {
		e := entry[T]{index: i + 1}
		if err := json.Unmarshal(msg, &e.rec); err != nil {
			e.err = types.Invalid("record", err.Error())
		}
		out = append(out, e)
	}
	return out
}

// ImportJSON reads one JSON document from r and applies it. Record indexes
// in the report are 1-based positions within each entity list; materials
// are numbered across all projects. A record that does not decode is
// reported as failed; a document that is not a JSON object fails the
// import.
func (im *Importer) ImportJSON(ctx context.Context, r io.Reader) (*Report, error) {
	var raw rawDocument
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}

	p := plan{
		suppliers: decodeEntries[SupplierRecord](raw.Suppliers),
		tags:      decodeEntries[TagRecord](raw.Tags),
		items:     decodeEntries[ItemRecord](raw.Items),
		projects:  decodeEntries[ProjectRecord](raw.Projects),
	}
	n := 0
	for _, e := range p.projects {
		if e.err != nil {
			continue
		}
		for _, m := range e.rec.Materials {
			n++
			m.Project, m.ProjectID = e.rec.Name, e.rec.ID
			p.materials = append(p.materials, entry[MaterialRecord]{index: n, rec: m})
		}
	}
	return im.apply(ctx, p, "json")
}

// ImportJSONFile opens path and imports it with ImportJSON.
func (im *Importer) ImportJSONFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return im.ImportJSON(ctx, f)
}

// ImportCSV reads the CSV files of an export directory and applies them.
// Missing files are skipped, but at least one must exist. Record indexes in
// the report are CSV line numbers.
func (im *Importer) ImportCSV(ctx context.Context, dir string) (*Report, error) {
	var p plan
	var err error
	found := 0

	if p.suppliers, err = loadCSV(dir, SuppliersCSV, suppliersFromCSV, &found); err != nil {
		return nil, err
	}
	if p.tags, err = loadCSV(dir, TagsCSV, tagsFromCSV, &found); err != nil {
		return nil, err
	}
	if p.items, err = loadCSV(dir, ItemsCSV, itemsFromCSV, &found); err != nil {
		return nil, err
	}
	if p.projects, err = loadCSV(dir, ProjectsCSV, projectsFromCSV, &found); err != nil {
		return nil, err
	}
	if p.materials, err = loadCSV(dir, MaterialsCSV, materialsFromCSV, &found); err != nil {
		return nil, err
	}
	if found == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}
	return im.apply(ctx, p, "csv")
}

// loadCSV parses dir/name, counting it in found. A missing file yields no
// entries.
func loadCSV[T any](dir, name string, parse func(io.Reader) ([]entry[T], error), found *int) ([]entry[T], error) {
	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()
	*found++

	entries, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return entries, nil
}

// apply runs every record in dependency order. Cancelling ctx stops the
// import between records and returns the partial report with ctx's error.
func (im *Importer) apply(ctx context.Context, p plan, format string) (*Report, error) {
	id, err := im.newID()
	if err != nil {
		return nil, fmt.Errorf("generating batch id: %w", err)
	}
	report := &Report{BatchID: id.String(), Policy: im.policy, Format: format, Results: []Result{}}
	b := newBatch(im)

	im.log.Info("import started", "batch", report.BatchID, "format", format, "policy", im.policy)

	err = run(ctx, im, report, types.EntitySupplier, p.suppliers, supplierKey, b.supplier)
	if err == nil {
		err = run(ctx, im, report, types.EntityTag, p.tags, tagKey, b.tag)
	}
	if err == nil {
		err = run(ctx, im, report, types.EntityItem, p.items, itemRecordKey, b.item)
	}
	if err == nil {
		err = run(ctx, im, report, types.EntityProject, p.projects, projectKey, b.project)
	}
	if err == nil {
		err = run(ctx, im, report, types.EntityMaterial, p.materials, materialKey, b.material)
	}

	im.log.Info("import finished", "batch", report.BatchID, "summary", report.Summary())
	return report, err
}

// run applies each entry in its own transaction and appends its result.
func run[T any](
	ctx context.Context,
	im *Importer,
	report *Report,
	entity string,
	entries []entry[T],
	key func(T) string,
	apply func(tx types.Store, rec T) (Outcome, int64, error),
) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := Result{Entity: entity, Index: e.index, Key: key(e.rec)}
		err := e.err
		if err == nil {
			err = im.store.WithTx(func(tx types.Store) error {
				var err error
				res.Outcome, res.ID, err = apply(tx, e.rec)
				return err
			})
		}
		if err != nil {
			rerr := &types.ImportRecordError{Entity: entity, Index: e.index, Key: res.Key, Err: err}
			res.Outcome = Failed
			res.ID = 0
			res.Err = rerr
			res.Error = rerr.Error()
			im.log.Warn("import record failed", "batch", report.BatchID, "entity", entity,
				"index", e.index, "key", res.Key, "error", err)
		}
		report.Results = append(report.Results, res)
	}
	return nil
}

func supplierKey(r SupplierRecord) string { return r.Name }
func tagKey(r TagRecord) string           { return r.Name }
func projectKey(r ProjectRecord) string   { return r.Name }

func itemRecordKey(r ItemRecord) string {
	if r.Supplier == "" {
		return r.Name
	}
	return r.Name + " (" + r.Supplier + ")"
}

func materialKey(r MaterialRecord) string {
	return r.Project + " / " + itemRecordKey(ItemRecord{Name: r.Item, Supplier: r.ItemSupplier})
}
