package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/exchange"
)

// resetter is implemented by inventories that can drop and recreate their
// schema.
type resetter interface {
	Reset() error
}

type resetResult struct {
	Backup string `json:"backup,omitempty"`
}

func (a *app) newResetCmd() *cobra.Command {
	var yes, noBackup bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record and recreate an empty database",
		Long: "Delete every record and recreate an empty database. A JSON backup is\n" +
			"written to the backup directory first unless --no-backup is given.",
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usageErrorf("reset deletes all data; pass --yes to confirm")
			}
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			r, ok := inv.(resetter)
			if !ok {
				return errors.New("inventory does not support reset")
			}
			var res resetResult
			if !noBackup {
				if res.Backup, err = exchange.NewExporter(inv, a.log).Backup(a.backupDir()); err != nil {
					return err
				}
			}
			if err := r.Reset(); err != nil {
				return err
			}
			return a.emit(cmd, res, func(w io.Writer) {
				if res.Backup != "" {
					fmt.Fprintf(w, "Backup written to %s\n", res.Backup)
				}
				fmt.Fprintln(w, "Inventory reset")
			})
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip the backup")
	return cmd
}
