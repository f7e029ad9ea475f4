package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/search"
	"github.com/Novaotic/craft-compass/pkg/types"
)

func (a *app) newSupplierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supplier",
		Short: "Manage suppliers",
	}
	cmd.AddCommand(
		a.newSupplierAddCmd(),
		a.newSupplierGetCmd(),
		a.newSupplierListCmd(),
		a.newSupplierUpdateCmd(),
		a.newSupplierDeleteCmd(),
	)
	return cmd
}

func printSuppliers(w io.Writer, suppliers []*types.Supplier) {
	rows := make([][]string, 0, len(suppliers))
	for _, s := range suppliers {
		rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name, s.ContactInfo, orDash(s.Website)})
	}
	table(w, "ID\tNAME\tCONTACT\tWEBSITE", rows)
}

func printSupplier(w io.Writer, s *types.Supplier) {
	fmt.Fprintf(w, "ID:       %d\n", s.ID)
	fmt.Fprintf(w, "Name:     %s\n", s.Name)
	fmt.Fprintf(w, "Contact:  %s\n", s.ContactInfo)
	fmt.Fprintf(w, "Website:  %s\n", orDash(s.Website))
	fmt.Fprintf(w, "Notes:    %s\n", orDash(s.Notes))
}

func (a *app) newSupplierAddCmd() *cobra.Command {
	var s types.Supplier
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a supplier",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			id, err := inv.Suppliers().Create(&s)
			if err != nil {
				return err
			}
			s.ID = id
			return a.emit(cmd, &s, func(w io.Writer) {
				fmt.Fprintf(w, "Created supplier %d: %s\n", id, s.Name)
			})
		}),
	}
	f := cmd.Flags()
	f.StringVar(&s.Name, "name", "", "supplier name (required)")
	f.StringVar(&s.ContactInfo, "contact", "", "contact information (required)")
	f.StringVar(&s.Website, "website", "", "website URL")
	f.StringVar(&s.Notes, "notes", "", "free-form notes")
	return cmd
}

func (a *app) newSupplierGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a supplier",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("supplier", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			s, err := inv.Suppliers().Get(id)
			if err != nil {
				return err
			}
			return a.emit(cmd, s, func(w io.Writer) { printSupplier(w, s) })
		}),
	}
}

func (a *app) newSupplierListCmd() *cobra.Command {
	var q search.SupplierQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suppliers",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			suppliers, err := search.New(inv).Suppliers(q)
			if err != nil {
				return err
			}
			return a.emit(cmd, suppliers, func(w io.Writer) { printSuppliers(w, suppliers) })
		}),
	}
	cmd.Flags().StringVar(&q.Text, "text", "", "match name, contact or notes")
	cmd.Flags().BoolVar(&q.SortByName, "sort-name", false, "sort by name instead of insertion order")
	return cmd
}

func (a *app) newSupplierUpdateCmd() *cobra.Command {
	var s types.Supplier
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change supplier fields; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("supplier", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			err = inv.Suppliers().Update(id, types.SupplierUpdate{
				Name:        changed(cmd, "name", &s.Name),
				ContactInfo: changed(cmd, "contact", &s.ContactInfo),
				Website:     changed(cmd, "website", &s.Website),
				Notes:       changed(cmd, "notes", &s.Notes),
			})
			if err != nil {
				return err
			}
			updated, err := inv.Suppliers().Get(id)
			if err != nil {
				return err
			}
			return a.emit(cmd, updated, func(w io.Writer) {
				fmt.Fprintf(w, "Updated supplier %d\n", id)
			})
		}),
	}
	f := cmd.Flags()
	f.StringVar(&s.Name, "name", "", "supplier name")
	f.StringVar(&s.ContactInfo, "contact", "", "contact information")
	f.StringVar(&s.Website, "website", "", "website URL")
	f.StringVar(&s.Notes, "notes", "", "free-form notes")
	return cmd
}

func (a *app) newSupplierDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a supplier",
		Long: "Delete a supplier. Items that still reference it block the delete\n" +
			"unless supplier_delete_policy is nullify, which clears their supplier.",
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID("supplier", args[0])
			if err != nil {
				return err
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			if err := inv.Suppliers().Delete(id); err != nil {
				return err
			}
			return a.emit(cmd, map[string]int64{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted supplier %d\n", id)
			})
		}),
	}
}
