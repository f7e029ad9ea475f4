// Package search validates item, project and supplier queries and runs them
// as filters through the storage tables. It never writes.
package search

import (
	"fmt"
	"math"
	"strings"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// ItemQuery is a set of optional predicates over items, combined with AND.
type ItemQuery struct {
	Name        string   // substring, case-insensitive
	Category    string   // exact
	SupplierID  *int64   // exact
	DateFrom    string   // inclusive, YYYY-MM-DD
	DateTo      string   // inclusive, YYYY-MM-DD
	QuantityMin *float64 // inclusive
	QuantityMax *float64 // inclusive
	Tags        []string // every tag must be present
	SortByName  bool
}

// Filter validates the query and returns the equivalent storage filter.
func (q ItemQuery) Filter() (types.ItemFilter, error) {
	if err := dateRange("purchase_date", q.DateFrom, q.DateTo); err != nil {
		return types.ItemFilter{}, err
	}
	if err := quantityRange(q.QuantityMin, q.QuantityMax); err != nil {
		return types.ItemFilter{}, err
	}
	if q.SupplierID != nil && *q.SupplierID <= 0 {
		return types.ItemFilter{}, types.Invalid("supplier_id", "must be a positive ID")
	}

	var tags []string
	for _, tag := range q.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return types.ItemFilter{
		NameContains: strings.TrimSpace(q.Name),
		Category:     strings.TrimSpace(q.Category),
		SupplierID:   q.SupplierID,
		DateFrom:     q.DateFrom,
		DateTo:       q.DateTo,
		QuantityMin:  q.QuantityMin,
		QuantityMax:  q.QuantityMax,
		Tags:         tags,
		SortByName:   q.SortByName,
	}, nil
}

// ProjectQuery is a set of optional predicates over projects.
type ProjectQuery struct {
	Name         string // substring of name or description
	DateFrom     string
	DateTo       string
	MinMaterials int
	Tag          string
	SortByName   bool
}

// Filter validates the query and returns the equivalent storage filter.
func (q ProjectQuery) Filter() (types.ProjectFilter, error) {
	if err := dateRange("date_created", q.DateFrom, q.DateTo); err != nil {
		return types.ProjectFilter{}, err
	}
	if q.MinMaterials < 0 {
		return types.ProjectFilter{}, types.Invalid("min_materials", "must not be negative")
	}
	return types.ProjectFilter{
		NameContains: strings.TrimSpace(q.Name),
		DateFrom:     q.DateFrom,
		DateTo:       q.DateTo,
		MinMaterials: q.MinMaterials,
		Tag:          strings.TrimSpace(q.Tag),
		SortByName:   q.SortByName,
	}, nil
}

// SupplierQuery matches suppliers by a substring of any text field.
type SupplierQuery struct {
	Text       string
	SortByName bool
}

// Engine runs queries against a store.
type Engine struct {
	store types.Store
}

// New returns an Engine reading from store.
func New(store types.Store) *Engine {
	return &Engine{store: store}
}

// Items returns the items matching every set predicate of q.
func (e *Engine) Items(q ItemQuery) ([]*types.Item, error) {
	filter, err := q.Filter()
	if err != nil {
		return nil, err
	}
	items, err := e.store.Items().List(filter)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

// Text returns items whose name, category or supplier name contains text.
// An empty text matches every item.
func (e *Engine) Text(text string) ([]*types.Item, error) {
	items, err := e.store.Items().List(types.ItemFilter{Text: strings.TrimSpace(text)})
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

// Projects returns the projects matching every set predicate of q.
func (e *Engine) Projects(q ProjectQuery) ([]*types.Project, error) {
	filter, err := q.Filter()
	if err != nil {
		return nil, err
	}
	projects, err := e.store.Projects().List(filter)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	return projects, nil
}

// Suppliers returns the suppliers matching q.
func (e *Engine) Suppliers(q SupplierQuery) ([]*types.Supplier, error) {
	suppliers, err := e.store.Suppliers().List(types.SupplierFilter{
		Text:       strings.TrimSpace(q.Text),
		SortByName: q.SortByName,
	})
	if err != nil {
		return nil, fmt.Errorf("searching suppliers: %w", err)
	}
	return suppliers, nil
}

func dateRange(field, from, to string) error {
	if err := types.ValidateDate(field, from); err != nil {
		return err
	}
	if err := types.ValidateDate(field, to); err != nil {
		return err
	}
	// YYYY-MM-DD orders lexically.
	if from != "" && to != "" && from > to {
		return types.Invalid(field, fmt.Sprintf("range start %s is after end %s", from, to))
	}
	return nil
}

func quantityRange(lo, hi *float64) error {
	for _, v := range []*float64{lo, hi} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return types.Invalid("quantity", "range bounds must be finite")
		}
	}
	if lo != nil && hi != nil && *lo > *hi {
		return types.Invalid("quantity", fmt.Sprintf("range minimum %g exceeds maximum %g", *lo, *hi))
	}
	return nil
}
