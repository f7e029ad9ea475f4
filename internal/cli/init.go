package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/config"
)

type initResult struct {
	ConfigFile string `json:"config_file"`
	DataDir    string `json:"data_dir"`
	Database   string `json:"database"`
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize Craft Compass storage",
		Long: "Create the configuration directory with a default config.yaml, then\n" +
			"create the data directory and the database schema. Running init again\n" +
			"keeps existing configuration and data.",
		Args: cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if _, err := a.inventory(); err != nil {
				return err
			}
			res := initResult{
				ConfigFile: config.FilePath(a.configDir),
				DataDir:    a.settings.Store.DataDir,
				Database:   filepath.Join(a.settings.Store.DataDir, a.settings.Store.WithDefaults().DBFile),
			}
			return a.emit(cmd, res, func(w io.Writer) {
				fmt.Fprintln(w, "Craft Compass initialized successfully")
				fmt.Fprintln(w, "  config:  ", res.ConfigFile)
				fmt.Fprintln(w, "  data:    ", res.DataDir)
				fmt.Fprintln(w, "  database:", res.Database)
			})
		}),
	}
}
