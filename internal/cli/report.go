package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/report"
)

func (a *app) newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Summarize the inventory",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			sum, err := report.Build(inv)
			if err != nil {
				return err
			}
			return a.emit(cmd, sum, func(w io.Writer) {
				fmt.Fprintf(w, "Suppliers: %d\n", sum.Suppliers)
				fmt.Fprintf(w, "Items:     %d\n", sum.Items)
				fmt.Fprintf(w, "Projects:  %d\n", sum.Projects)
				fmt.Fprintf(w, "Tags:      %d\n", sum.Tags)
				if len(sum.Categories) == 0 {
					return
				}
				fmt.Fprintln(w)
				rows := make([][]string, 0, len(sum.Categories))
				for _, c := range sum.Categories {
					rows = append(rows, []string{c.Category, strconv.Itoa(c.Items), formatAmount(c.Quantity)})
				}
				table(w, "CATEGORY\tITEMS\tQUANTITY", rows)
			})
		}),
	}
}
