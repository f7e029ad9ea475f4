package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/exchange"
)

func (a *app) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the whole inventory",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "json [file]",
			Short: "Write one JSON document to file, or stdout when omitted or -",
			Args:  cobra.MaximumNArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				e := exchange.NewExporter(inv, a.log)
				if len(args) == 0 || args[0] == "-" {
					return e.ExportJSON(cmd.OutOrStdout())
				}
				if err := e.ExportJSONFile(args[0]); err != nil {
					return err
				}
				return a.emit(cmd, map[string]string{"path": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Exported %s\n", args[0])
				})
			}),
		},
		&cobra.Command{
			Use:   "csv <dir>",
			Short: "Write one CSV file per entity type into dir",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				inv, err := a.inventory()
				if err != nil {
					return err
				}
				files, err := exchange.NewExporter(inv, a.log).ExportCSV(args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd, map[string][]string{"files": files}, func(w io.Writer) {
					for _, f := range files {
						fmt.Fprintf(w, "Exported %s\n", f)
					}
				})
			}),
		},
	)
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an inventory export",
		Long: "Import a JSON document or a directory of CSV files. Records that\n" +
			"match an existing one by natural key are handled by --policy:\n" +
			"skip leaves the existing record, overwrite updates it, duplicate\n" +
			"inserts a new record. A bad record is reported and never stops the\n" +
			"rest of the import.",
	}
	cmd.PersistentFlags().StringVar(&policy, "policy", string(exchange.PolicySkip), "conflict policy: skip, overwrite or duplicate")

	importer := func() (*exchange.Importer, error) {
		p, err := exchange.ParsePolicy(policy)
		if err != nil {
			return nil, usageErrorf("%v", err)
		}
		inv, err := a.inventory()
		if err != nil {
			return nil, err
		}
		return exchange.NewImporter(inv, p, a.log), nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "json <file>",
			Short: "Import a JSON document",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				im, err := importer()
				if err != nil {
					return err
				}
				rep, err := im.ImportJSONFile(cmd.Context(), args[0])
				return a.emitReport(cmd, rep, err)
			}),
		},
		&cobra.Command{
			Use:   "csv <dir>",
			Short: "Import the CSV files of an export directory",
			Args:  cobra.ExactArgs(1),
			RunE: a.run(func(cmd *cobra.Command, args []string) error {
				im, err := importer()
				if err != nil {
					return err
				}
				rep, err := im.ImportCSV(cmd.Context(), args[0])
				return a.emitReport(cmd, rep, err)
			}),
		},
	)
	return cmd
}

// emitReport prints an import report, including a partial one from an
// interrupted import, and then returns err.
func (a *app) emitReport(cmd *cobra.Command, rep *exchange.Report, err error) error {
	if rep == nil {
		return err
	}
	if eerr := a.emit(cmd, rep, func(w io.Writer) {
		for _, res := range rep.Results {
			if res.Outcome == exchange.Failed {
				fmt.Fprintf(w, "failed: %s\n", res.Error)
			}
		}
		fmt.Fprintf(w, "Import %s: %s\n", rep.BatchID, rep.Summary())
	}); eerr != nil && err == nil {
		err = eerr
	}
	return err
}

// backupDir is the configured backup_dir, or <data-dir>/backups.
func (a *app) backupDir() string {
	if a.settings.BackupDir != "" {
		return a.settings.BackupDir
	}
	return filepath.Join(a.settings.Store.DataDir, "backups")
}

func (a *app) newBackupCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped JSON backup",
		Long: "Write craft_compass_backup_YYYYMMDD_HHMMSS.json into --dir, the\n" +
			"configured backup_dir, or <data-dir>/backups.",
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			inv, err := a.inventory()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = a.backupDir()
			}
			path, err := exchange.NewExporter(inv, a.log).Backup(dir)
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"path": path}, func(w io.Writer) {
				fmt.Fprintf(w, "Backup written to %s\n", path)
			})
		}),
	}
	cmd.Flags().StringVar(&dir, "dir", "", "backup directory")
	return cmd
}
