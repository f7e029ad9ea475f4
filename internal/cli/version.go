package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/pkg/craftcompass"
)

const modulePath = "github.com/Novaotic/craft-compass"

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the craftcompass version",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			v := map[string]string{"version": craftcompass.Version, "module": modulePath}
			return a.emit(cmd, v, func(w io.Writer) {
				fmt.Fprintf(w, "craftcompass v%s\nmodule: %s\n", craftcompass.Version, modulePath)
			})
		}),
	}
}
