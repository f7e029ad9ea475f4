package exchange

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// CSV file names, one per entity type.
const (
	SuppliersCSV = "suppliers.csv"
	TagsCSV      = "tags.csv"
	ItemsCSV     = "items.csv"
	ProjectsCSV  = "projects.csv"
	MaterialsCSV = "project_materials.csv"
)

// CSVFiles lists the CSV files in import order.
var CSVFiles = []string{SuppliersCSV, TagsCSV, ItemsCSV, ProjectsCSV, MaterialsCSV}

// MetaPrefix marks item CSV columns that hold metadata values.
const MetaPrefix = "meta:"

// tagSep joins tag names inside one CSV cell.
const tagSep = ","

var (
	supplierHeader = []string{"id", "name", "contact_info", "website", "notes"}
	tagHeader      = []string{"id", "name", "color"}
	itemHeader     = []string{"id", "name", "category", "quantity", "unit", "supplier", "supplier_id", "purchase_date", "photo_path", "tags"}
	projectHeader  = []string{"id", "name", "description", "date_created", "tags"}
	materialHeader = []string{"id", "project_id", "project", "item_id", "item", "item_supplier", "quantity_used"}
)

// WriteCSV writes the named CSV file of the document to w. Every file has
// a header row even when it holds no records.
func (d *Document) WriteCSV(file string, w io.Writer) error {
	cw := csv.NewWriter(w)
	var rows [][]string

	switch file {
	case SuppliersCSV:
		rows = append(rows, supplierHeader)
		for _, s := range d.Suppliers {
			rows = append(rows, []string{formatID(s.ID), s.Name, s.ContactInfo, s.Website, s.Notes})
		}
	case TagsCSV:
		rows = append(rows, tagHeader)
		for _, t := range d.Tags {
			rows = append(rows, []string{formatID(t.ID), t.Name, t.Color})
		}
	case ItemsCSV:
		keys := d.metadataKeys()
		header := append([]string{}, itemHeader...)
		for _, k := range keys {
			header = append(header, MetaPrefix+k)
		}
		rows = append(rows, header)
		for _, it := range d.Items {
			row := []string{
				formatID(it.ID), it.Name, it.Category, formatAmount(it.Quantity), it.Unit,
				it.Supplier, formatID(it.SupplierID), it.PurchaseDate, it.PhotoPath, strings.Join(it.Tags, tagSep),
			}
			for _, k := range keys {
				row = append(row, it.Metadata[k])
			}
			rows = append(rows, row)
		}
	case ProjectsCSV:
		rows = append(rows, projectHeader)
		for _, p := range d.Projects {
			rows = append(rows, []string{formatID(p.ID), p.Name, p.Description, p.DateCreated, strings.Join(p.Tags, tagSep)})
		}
	case MaterialsCSV:
		rows = append(rows, materialHeader)
		for _, m := range d.materials() {
			rows = append(rows, []string{
				formatID(m.ID), formatID(m.ProjectID), m.Project,
				formatID(m.ItemID), m.Item, m.ItemSupplier, formatAmount(m.QuantityUsed),
			})
		}
	default:
		return fmt.Errorf("unknown CSV file %q", file)
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}

// metadataKeys returns the sorted union of item metadata keys.
func (d *Document) metadataKeys() []string {
	seen := map[string]bool{}
	var keys []string
	for _, it := range d.Items {
		for k := range it.Metadata {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// csvRow is one data row addressed by header name. err is set when the
// row itself could not be parsed.
type csvRow struct {
	line   int
	fields map[string]string
	err    error
}

func (r csvRow) get(col string) string {
	return strings.TrimSpace(r.fields[col])
}

// readCSV reads a header row and the data rows below it. Short rows read
// missing columns as empty. A row with a quoting error comes back with err
// set and reading continues on the next line. An unreadable header, a read
// failure, or a quote left open up to the end of the file is an error for
// the whole file.
func readCSV(r io.Reader) ([]string, []csvRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	var rows []csvRow
	var last *csv.ParseError
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			if last != nil && errors.Is(last.Err, csv.ErrQuote) {
				return nil, nil, last
			}
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			last = perr
			rows = append(rows, csvRow{line: perr.StartLine, err: types.Invalid("row", perr.Err.Error())})
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		last = nil
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		row := csvRow{line: line, fields: make(map[string]string, len(header))}
		for i, col := range header {
			if i < len(rec) {
				row.fields[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseAmount(field, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, types.Invalid(field, fmt.Sprintf("%q is not a number", s))
	}
	return v, nil
}

// parseRef reads an optional exported ID column.
func parseRef(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, types.Invalid(field, fmt.Sprintf("%q is not an id", s))
	}
	return v, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, tagSep) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func suppliersFromCSV(r io.Reader) ([]entry[SupplierRecord], error) {
	_, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	out := make([]entry[SupplierRecord], 0, len(rows))
	for _, row := range rows {
		if row.err != nil {
			out = append(out, entry[SupplierRecord]{index: row.line, err: row.err})
			continue
		}
		id, err := parseRef("id", row.get("id"))
		out = append(out, entry[SupplierRecord]{index: row.line, err: err, rec: SupplierRecord{
			ID:          id,
			Name:        row.get("name"),
			ContactInfo: row.get("contact_info"),
			Website:     row.get("website"),
			Notes:       row.get("notes"),
		}})
	}
	return out, nil
}

func tagsFromCSV(r io.Reader) ([]entry[TagRecord], error) {
	_, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	out := make([]entry[TagRecord], 0, len(rows))
	for _, row := range rows {
		if row.err != nil {
			out = append(out, entry[TagRecord]{index: row.line, err: row.err})
			continue
		}
		out = append(out, entry[TagRecord]{index: row.line, rec: TagRecord{
			Name:  row.get("name"),
			Color: row.get("color"),
		}})
	}
	return out, nil
}

func itemsFromCSV(r io.Reader) ([]entry[ItemRecord], error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	out := make([]entry[ItemRecord], 0, len(rows))
	for _, row := range rows {
		if row.err != nil {
			out = append(out, entry[ItemRecord]{index: row.line, err: row.err})
			continue
		}
		rec := ItemRecord{
			Name:         row.get("name"),
			Category:     row.get("category"),
			Unit:         row.get("unit"),
			Supplier:     row.get("supplier"),
			PurchaseDate: row.get("purchase_date"),
			PhotoPath:    row.get("photo_path"),
			Tags:         splitTags(row.get("tags")),
			Metadata:     map[string]string{},
		}
		for _, col := range header {
			if key, ok := strings.CutPrefix(col, MetaPrefix); ok && key != "" {
				if v := row.fields[col]; v != "" {
					rec.Metadata[key] = v
				}
			}
		}
		var err error
		if rec.ID, err = parseRef("id", row.get("id")); err == nil {
			rec.SupplierID, err = parseRef("supplier_id", row.get("supplier_id"))
		}
		if err == nil {
			rec.Quantity, err = parseAmount("quantity", row.get("quantity"))
		}
		out = append(out, entry[ItemRecord]{index: row.line, rec: rec, err: err})
	}
	return out, nil
}

func projectsFromCSV(r io.Reader) ([]entry[ProjectRecord], error) {
	_, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	out := make([]entry[ProjectRecord], 0, len(rows))
	for _, row := range rows {
		if row.err != nil {
			out = append(out, entry[ProjectRecord]{index: row.line, err: row.err})
			continue
		}
		id, err := parseRef("id", row.get("id"))
		out = append(out, entry[ProjectRecord]{index: row.line, err: err, rec: ProjectRecord{
			ID:          id,
			Name:        row.get("name"),
			Description: row.get("description"),
			DateCreated: row.get("date_created"),
			Tags:        splitTags(row.get("tags")),
		}})
	}
	return out, nil
}

func materialsFromCSV(r io.Reader) ([]entry[MaterialRecord], error) {
	_, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	out := make([]entry[MaterialRecord], 0, len(rows))
	for _, row := range rows {
		if row.err != nil {
			out = append(out, entry[MaterialRecord]{index: row.line, err: row.err})
			continue
		}
		rec := MaterialRecord{
			Project:      row.get("project"),
			Item:         row.get("item"),
			ItemSupplier: row.get("item_supplier"),
		}
		var err error
		if rec.ProjectID, err = parseRef("project_id", row.get("project_id")); err == nil {
			rec.ItemID, err = parseRef("item_id", row.get("item_id"))
		}
		if err == nil {
			rec.QuantityUsed, err = parseAmount("quantity_used", row.get("quantity_used"))
		}
		out = append(out, entry[MaterialRecord]{index: row.line, err: err, rec: rec})
	}
	return out, nil
}
