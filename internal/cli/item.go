package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/search"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// itemDetail is an item with its tags and metadata.
type itemDetail struct {
	*types.Item
	Tags     []*types.Tag      `json:"tags"`
	Metadata []*types.Metadata `json:"metadata"`
}

func (a *app) newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage stock items",
	}
	cmd.AddCommand(
		a.newItemAddCmd(),
		a.newItemGetCmd(),
		a.newItemListCmd(),
		a.newItemUpdateCmd(),
		a.newItemDeleteCmd(),
		a.newItemTagCmd(),
		a.newItemUntagCmd(),
		a.newItemMetaCmd(),
	)
	return cmd
}

func printItems(w io.Writer, items []*types.Item) {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			strconv.FormatInt(it.ID, 10), it.Name, orDash(it.Category),
			formatAmount(it.Quantity), orDash(it.Unit), formatOptionalID(it.SupplierID),
		})
	}
	table(w, "ID\tNAME\tCATEGORY\tQUANTITY\tUNIT\tSUPPLIER", rows)
}

func printItem(w io.Writer, d itemDetail) {
	fmt.Fprintf(w, "ID:        %d\n", d.ID)
	fmt.Fprintf(w, "Name:      %s\n", d.Name)
	fmt.Fprintf(w, "Category:  %s\n", orDash(d.Category))
	fmt.Fprintf(w, "Quantity:  %s %s\n", formatAmount(d.Quantity), d.Unit)
	fmt.Fprintf(w, "Supplier:  %s\n", formatOptionalID(d.SupplierID))
	fmt.Fprintf(w, "Purchased: %s\n", orDash(d.PurchaseDate))
	fmt.Fprintf(w, "Photo:     %s\n", orDash(d.PhotoPath))
	fmt.Fprintf(w, "Tags:      %s\n", tagNames(d.Tags))
	for _, m := range d.Metadata {
		fmt.Fprintf(w, "  %s = %s\n", m.Key, m.Value)
	}
}

// itemFlags are the editable item fields shared by add and update.
type itemFlags struct {
	item       types.Item
	supplierID int64
}

func (f *itemFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.item.Name, "name", "", "item name")
	fs.StringVar(&f.item.Category, "category", "", "category, e.g. Yarn")
	fs.Float64Var(&f.item.Quantity, "quantity", 0, "quantity on hand")
	fs.StringVar(&f.item.Unit, "unit", "", "unit, e.g. skeins or grams")
	fs.Int64Var(&f.supplierID, "supplier-id", 0, "supplier ID")
	fs.StringVar(&f.item.PurchaseDate, "purchase-date", "", "purchase date (YYYY-MM-DD)")
	fs.StringVar(&f.item.PhotoPath, "photo", "", "path to a photo of the item")
}

func (a *app) newItemAddCmd() *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a stock item",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			it := f.item
			it.SupplierID = changed(cmd, "supplier-id", &f.supplierID)
			id, err := inv.Items().Create(&it)
			if err != nil {
				return err
			}
			it.ID = id
			return a.emit(cmd, &it, func(w io.Writer) {
				fmt.Fprintf(w, "Created item %d: %s\n", id, it.Name)
			})
		}),
	}
	f.register(cmd)
	return cmd
}

// itemDetails loads an item with its tags and metadata.
func itemDetails(store types.Store, id int64) (itemDetail, error) {
	it, err := store.Items().Get(id)
	if err != nil {
		return itemDetail{}, err
	}
	tags, err := store.Tags().ForItem(id)
	if err != nil {
		return itemDetail{}, err
	}
	meta, err := store.Metadata().ForItem(id)
	if err != nil {
		return itemDetail{}, err
	}
	return itemDetail{Item: it, Tags: tags, Metadata: meta}, nil
}

func (a *app) newItemGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an item with its tags and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			d, err := itemDetails(inv, id)
			if err != nil {
				return err
			}
			return a.emit(cmd, d, func(w io.Writer) { printItem(w, d) })
		}),
	}
}

func (a *app) newItemListCmd() *cobra.Command {
	var (
		q          search.ItemQuery
		supplierID int64
		minQty     float64
		maxQty     float64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered",
		Long: "List items. Every filter flag narrows the result; --tag may be\n" +
			"repeated and then requires all of the named tags.",
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			q.SupplierID = changed(cmd, "supplier-id", &supplierID)
			q.QuantityMin = changed(cmd, "min", &minQty)
			q.QuantityMax = changed(cmd, "max", &maxQty)
			items, err := search.New(inv).Items(q)
			if err != nil {
				return err
			}
			return a.emit(cmd, items, func(w io.Writer) { printItems(w, items) })
		}),
	}
	f := cmd.Flags()
	f.StringVar(&q.Name, "name", "", "name contains (case-insensitive)")
	f.StringVar(&q.Category, "category", "", "exact category")
	f.Int64Var(&supplierID, "supplier-id", 0, "supplier ID")
	f.StringVar(&q.DateFrom, "from", "", "purchased on or after (YYYY-MM-DD)")
	f.StringVar(&q.DateTo, "to", "", "purchased on or before (YYYY-MM-DD)")
	f.Float64Var(&minQty, "min", 0, "minimum quantity")
	f.Float64Var(&maxQty, "max", 0, "maximum quantity")
	f.StringArrayVar(&q.Tags, "tag", nil, "required tag name (repeatable)")
	f.BoolVar(&q.SortByName, "sort-name", false, "sort by name instead of insertion order")
	return cmd
}

func (a *app) newItemUpdateCmd() *cobra.Command {
	var (
		f             itemFlags
		clearSupplier bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change item fields; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			if clearSupplier && cmd.Flags().Changed("supplier-id") {
				return usageErrorf("--clear-supplier and --supplier-id are mutually exclusive")
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			err = inv.Items().Update(id, types.ItemUpdate{
				Name:          changed(cmd, "name", &f.item.Name),
				Category:      changed(cmd, "category", &f.item.Category),
				Quantity:      changed(cmd, "quantity", &f.item.Quantity),
				Unit:          changed(cmd, "unit", &f.item.Unit),
				SupplierID:    changed(cmd, "supplier-id", &f.supplierID),
				ClearSupplier: clearSupplier,
				PurchaseDate:  changed(cmd, "purchase-date", &f.item.PurchaseDate),
				PhotoPath:     changed(cmd, "photo", &f.item.PhotoPath),
			})
			if err != nil {
				return err
			}
			updated, err := inv.Items().Get(id)
			if err != nil {
				return err
			}
			return a.emit(cmd, updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated item %d\n", id)
			})
		}),
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&clearSupplier, "clear-supplier", false, "remove the supplier reference")
	return cmd
}

func (a *app) newItemDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item with its tags and metadata",
		Long: "Delete an item together with its tag associations and metadata.\n" +
			"An item still used as a project material cannot be deleted.",
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			if err := inv.Items().Delete(id); err != nil {
				return err
			}
			return a.emit(cmd, map[string]int64{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted item %d\n", id)
			})
		}),
	}
}

func (a *app) newItemTagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <item-id> <tag>...",
		Short: "Attach tags to an item, creating unknown tags",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			var d itemDetail
			err = inv.WithTx(func(tx types.Store) error {
				for _, name := range args[1:] {
					tagID, err := resolveTag(tx, name, true)
					if err != nil {
						return err
					}
					if err := tx.Tags().AddToItem(id, tagID); err != nil {
						return err
					}
				}
				var err error
				d, err = itemDetails(tx, id)
				return err
			})
			if err != nil {
				return err
			}
			return a.emit(cmd, d.Tags, func(w io.Writer) {
				fmt.Fprintf(w, "Item %d tags: %s\n", id, tagNames(d.Tags))
			})
		}),
	}
}

func (a *app) newItemUntagCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untag <item-id> <tag>...",
		Short: "Detach tags from an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			var tags []*types.Tag
			err = inv.WithTx(func(tx types.Store) error {
				for _, name := range args[1:] {
					tagID, err := resolveTag(tx, name, false)
					if err != nil {
						return err
					}
					if err := tx.Tags().RemoveFromItem(id, tagID); err != nil {
						return err
					}
				}
				var err error
				tags, err = tx.Tags().ForItem(id)
				return err
			})
			if err != nil {
				return err
			}
			return a.emit(cmd, tags, func(w io.Writer) {
				fmt.Fprintf(w, "Item %d tags: %s\n", id, tagNames(tags))
			})
		}),
	}
}

func (a *app) newItemMetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Manage free-form item metadata",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <item-id> <key> <value>",
			Short: "Set a metadata value, replacing any previous value",
			Args:  cobra.ExactArgs(3),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("item", args[0])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				if err := inv.Metadata().Set(id, args[1], args[2]); err != nil {
					return err
				}
				m, err := inv.Metadata().Get(id, args[1])
				if err != nil {
					return err
				}
				return a.emit(cmd, m, func(w io.Writer) {
					fmt.Fprintf(w, "Item %d: %s = %s\n", id, m.Key, m.Value)
				})
			}),
		},
		&cobra.Command{
			Use:   "get <item-id> <key>",
			Short: "Print a metadata value",
			Args:  cobra.ExactArgs(2),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("item", args[0])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				m, err := inv.Metadata().Get(id, args[1])
				if err != nil {
					return err
				}
				return a.emit(cmd, m, func(w io.Writer) { fmt.Fprintln(w, m.Value) })
			}),
		},
		&cobra.Command{
			Use:   "list <item-id>",
			Short: "List an item's metadata",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("item", args[0])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				meta, err := inv.Metadata().ForItem(id)
				if err != nil {
					return err
				}
				return a.emit(cmd, meta, func(w io.Writer) {
					rows := make([][]string, 0, len(meta))
					for _, m := range meta {
						rows = append(rows, []string{m.Key, m.Value})
					}
					table(w, "KEY\tVALUE", rows)
				})
			}),
		},
		&cobra.Command{
			Use:   "delete <item-id> <key>",
			Short: "Remove a metadata key",
			Args:  cobra.ExactArgs(2),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				id, err := parseID("item", args[0])
				if err != nil {
					return err
				}
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				if err := inv.Metadata().Delete(id, args[1]); err != nil {
					return err
				}
				return a.emit(cmd, map[string]any{"item_id": id, "deleted": args[1]}, func(w io.Writer) {
					fmt.Fprintf(w, "Item %d: removed %s\n", id, args[1])
				})
			}),
		},
	)
	return cmd
}
