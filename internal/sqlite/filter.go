package sqlite

import (
	"strings"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// selectBuilder accumulates WHERE conditions and their arguments.
type selectBuilder struct {
	conditions []string
	args       []any
}

func (b *selectBuilder) where(cond string, args ...any) {
	b.conditions = append(b.conditions, cond)
	b.args = append(b.args, args...)
}

func anyOf(conds ...string) string {
	return "(" + strings.Join(conds, " OR ") + ")"
}

func (b *selectBuilder) build(base, order string) (string, []any) {
	query := base
	if len(b.conditions) > 0 {
		query += " WHERE " + strings.Join(b.conditions, " AND ")
	}
	return query + " ORDER BY " + order, b.args
}

// itemQuery builds the SELECT for ItemFilter. Items are aliased i and the
// supplier is left-joined as s for the free-text match.
func itemQuery(f types.ItemFilter) (string, []any) {
	var b selectBuilder

	if f.NameContains != "" {
		b.where(foldedLike("i.name"), foldedPattern(f.NameContains))
	}
	if f.Text != "" {
		p := foldedPattern(f.Text)
		b.where(anyOf(foldedLike("i.name"), foldedLike("i.category"), foldedLike("s.name")), p, p, p)
	}
	if f.Category != "" {
		b.where("i.category = ?", f.Category)
	}
	if f.SupplierID != nil {
		b.where("i.supplier_id = ?", *f.SupplierID)
	}
	if f.DateFrom != "" {
		b.where("i.purchase_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		b.where("i.purchase_date <= ?", f.DateTo)
	}
	if f.QuantityMin != nil {
		b.where("i.quantity >= ?", *f.QuantityMin)
	}
	if f.QuantityMax != nil {
		b.where("i.quantity <= ?", *f.QuantityMax)
	}
	for _, tag := range f.Tags {
		b.where(`EXISTS (SELECT 1 FROM item_tags it JOIN tags t ON t.id = it.tag_id
            WHERE it.item_id = i.id AND t.name = ?)`, tag)
	}

	order := "i.id"
	if f.SortByName {
		order = "i.name COLLATE NOCASE, i.id"
	}
	return b.build("SELECT "+itemColumnsAliased+" FROM items i LEFT JOIN suppliers s ON s.id = i.supplier_id", order)
}

// projectQuery builds the SELECT for ProjectFilter. Projects are aliased p.
func projectQuery(f types.ProjectFilter) (string, []any) {
	var b selectBuilder

	if f.NameContains != "" {
		p := foldedPattern(f.NameContains)
		b.where(anyOf(foldedLike("p.name"), foldedLike("p.description")), p, p)
	}
	if f.DateFrom != "" {
		b.where("p.date_created >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		b.where("p.date_created <= ?", f.DateTo)
	}
	if f.MinMaterials > 0 {
		b.where("(SELECT COUNT(*) FROM project_materials pm WHERE pm.project_id = p.id) >= ?", f.MinMaterials)
	}
	if f.Tag != "" {
		b.where(`EXISTS (SELECT 1 FROM project_tags pt JOIN tags t ON t.id = pt.tag_id
            WHERE pt.project_id = p.id AND t.name = ?)`, f.Tag)
	}

	order := "p.id"
	if f.SortByName {
		order = "p.name COLLATE NOCASE, p.id"
	}
	return b.build("SELECT "+projectColumnsAliased+" FROM projects p", order)
}

// supplierQuery builds the SELECT for SupplierFilter.
func supplierQuery(f types.SupplierFilter) (string, []any) {
	var b selectBuilder

	if f.Text != "" {
		p := foldedPattern(f.Text)
		b.where(anyOf(foldedLike("name"), foldedLike("contact_info"), foldedLike("website"), foldedLike("notes")), p, p, p, p)
	}

	order := "id"
	if f.SortByName {
		order = "name COLLATE NOCASE, id"
	}
	return b.build("SELECT "+supplierColumns+" FROM suppliers", order)
}
