package exchange

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Novaotic/craft-compass/internal/logging"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// BackupPrefix and BackupTimeLayout name backup files:
// craft_compass_backup_20240501_120000.json.
const (
	BackupPrefix     = "craft_compass_backup_"
	BackupTimeLayout = "20060102_150405"
)

// Exporter serializes the inventory. It never writes to the store.
type Exporter struct {
	store types.Store
	log   *logging.Logger
	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// NewExporter returns an Exporter reading from store. A nil log discards
// log output.
func NewExporter(store types.Store, log *logging.Logger) *Exporter {
	if log == nil {
		log = logging.Nop()
	}
	return &Exporter{store: store, log: log, now: time.Now, newID: uuid.NewV7}
}

// Snapshot reads the inventory inside one transaction so the document is
// consistent, and stamps it with the export time and a new export ID.
func (e *Exporter) Snapshot() (*Document, error) {
	var doc *Document
	err := e.store.WithTx(func(tx types.Store) error {
		var err error
		doc, err = Snapshot(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	id, err := e.newID()
	if err != nil {
		return nil, fmt.Errorf("generating export id: %w", err)
	}
	doc.ExportID = id.String()
	doc.ExportedAt = e.now().UTC().Truncate(time.Second)
	return doc, nil
}

// ExportJSON writes the whole inventory to w as one indented JSON document.
func (e *Exporter) ExportJSON(w io.Writer) error {
	doc, err := e.Snapshot()
	if err != nil {
		return err
	}
	return writeJSON(w, doc)
}

// ExportJSONFile writes the JSON document to path atomically.
func (e *Exporter) ExportJSONFile(path string) error {
	doc, err := e.Snapshot()
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, func(w io.Writer) error { return writeJSON(w, doc) }); err != nil {
		return err
	}
	e.log.Info("exported json", "path", path, "export_id", doc.ExportID,
		"suppliers", len(doc.Suppliers), "items", len(doc.Items), "projects", len(doc.Projects), "tags", len(doc.Tags))
	return nil
}

// ExportCSV writes one CSV file per entity type into dir and returns their
// paths in import order.
func (e *Exporter) ExportCSV(dir string) ([]string, error) {
	doc, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	paths := make([]string, 0, len(CSVFiles))
	for _, name := range CSVFiles {
		path := filepath.Join(dir, name)
		if err := writeFileAtomic(path, func(w io.Writer) error { return doc.WriteCSV(name, w) }); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	e.log.Info("exported csv", "dir", dir, "export_id", doc.ExportID, "files", len(paths))
	return paths, nil
}

// Backup writes a timestamped JSON export into dir and returns its path.
func (e *Exporter) Backup(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}
	path := filepath.Join(dir, BackupPrefix+e.now().Format(BackupTimeLayout)+".json")
	if err := e.ExportJSONFile(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// writeFileAtomic writes to a temp file in the target directory, syncs it,
// and renames it over path, so readers never see a partial file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
