// Package report builds inventory summaries from the storage tables.
package report

import (
	"fmt"
	"sort"

	"github.com/Novaotic/craft-compass/pkg/types"
)

// Uncategorized labels items without a category.
const Uncategorized = "Uncategorized"

// CategoryCount is the number of items and the summed quantity in one
// category.
type CategoryCount struct {
	Category string  `json:"category"`
	Items    int     `json:"items"`
	Quantity float64 `json:"quantity"`
}

// Summary holds inventory totals.
type Summary struct {
	Suppliers  int             `json:"suppliers"`
	Items      int             `json:"items"`
	Projects   int             `json:"projects"`
	Tags       int             `json:"tags"`
	Categories []CategoryCount `json:"categories"`
}

// Build reads every table once and returns the totals. Categories are
// sorted by name.
func Build(store types.Store) (*Summary, error) {
	suppliers, err := store.Suppliers().List(types.SupplierFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	items, err := store.Items().List(types.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	projects, err := store.Projects().List(types.ProjectFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	tags, err := store.Tags().List(types.TagFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}

	byCategory := map[string]*CategoryCount{}
	for _, it := range items {
		name := it.Category
		if name == "" {
			name = Uncategorized
		}
		c, ok := byCategory[name]
		if !ok {
			c = &CategoryCount{Category: name}
			byCategory[name] = c
		}
		c.Items++
		c.Quantity += it.Quantity
	}

	s := &Summary{
		Suppliers:  len(suppliers),
		Items:      len(items),
		Projects:   len(projects),
		Tags:       len(tags),
		Categories: make([]CategoryCount, 0, len(byCategory)),
	}
	for _, c := range byCategory {
		s.Categories = append(s.Categories, *c)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		return s.Categories[i].Category < s.Categories[j].Category
	})
	return s, nil
}
