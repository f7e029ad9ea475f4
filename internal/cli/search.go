package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/search"
)

func (a *app) newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Free-text search over items, projects or suppliers",
		Long: "Free-text search. Items match on name, category or supplier name;\n" +
			"projects on name or description; suppliers on any text field.\n" +
			"Use the list subcommands for structured filters.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "items [text]",
			Short: "Search items by name, category or supplier name",
			Args:  cobra.ArbitraryArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				items, err := search.New(inv).Text(strings.Join(args, " "))
				if err != nil {
					return err
				}
				return a.emit(cmd, items, func(w io.Writer) { printItems(w, items) })
			}),
		},
		&cobra.Command{
			Use:   "projects [text]",
			Short: "Search projects by name or description",
			Args:  cobra.ArbitraryArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				projects, err := search.New(inv).Projects(search.ProjectQuery{Name: strings.Join(args, " ")})
				if err != nil {
					return err
				}
				return a.emit(cmd, projects, func(w io.Writer) { printProjects(w, projects) })
			}),
		},
		&cobra.Command{
			Use:   "suppliers [text]",
			Short: "Search suppliers by any text field",
			Args:  cobra.ArbitraryArgs,
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				suppliers, err := search.New(inv).Suppliers(search.SupplierQuery{Text: strings.Join(args, " ")})
				if err != nil {
					return err
				}
				return a.emit(cmd, suppliers, func(w io.Writer) { printSuppliers(w, suppliers) })
			}),
		},
	)
	return cmd
}
