// Package cli implements the craftcompass command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Novaotic/craft-compass/internal/config"
	"github.com/Novaotic/craft-compass/internal/logging"
	"github.com/Novaotic/craft-compass/internal/paths"
	"github.com/Novaotic/craft-compass/pkg/craftcompass"
	"github.com/Novaotic/craft-compass/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	global    bool
}

// app is the state of one CLI invocation. The inventory is opened on first
// use so that version and help never touch the disk.
type app struct {
	flags     rootFlags
	configDir string
	settings  *config.Settings
	log       *logging.Logger
	inv       types.Inventory

	// started is set once a command body runs; errors before that are
	// usage errors from cobra.
	started bool
}

// NewRootCmd creates the top-level "craftcompass" command with global
// flags and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "craftcompass",
		Short: "Craft Compass tracks craft supplies, suppliers and projects",
		Long: "Craft Compass is a local inventory for craft materials. It records\n" +
			"suppliers, stock items, projects and the materials they consume,\n" +
			"and exports or imports the whole inventory as CSV or JSON.",
		Version:       craftcompass.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.craft-compass)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.craft-compass-db)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVar(&a.flags.global, "global", false, "use the per-user config and data directories")

	root.AddCommand(
		a.newVersionCmd(),
		a.newInitCmd(),
		a.newSupplierCmd(),
		a.newItemCmd(),
		a.newProjectCmd(),
		a.newTagCmd(),
		a.newSearchCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newBackupCmd(),
		a.newResetCmd(),
		a.newReportCmd(),
	)
	return root
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return a.exitCode(err)
}

// exitCode maps err to 0 on success, 1 for usage and user errors
// (validation, not found, duplicate name, integrity), and 2 for everything
// else.
func (a *app) exitCode(err error) int {
	var uerr *usageError
	switch {
	case err == nil:
		return exitSuccess
	case !a.started, errors.As(err, &uerr), types.IsUserError(err):
		return exitUserError
	default:
		return exitSysError
	}
}

// run wraps a command body so exitCode can tell cobra's argument errors
// from failures inside the command.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a.started = true
		return fn(cmd, args)
	}
}

// load resolves the config directory, reads config.yaml, resolves the data
// directory against it and builds the logger.
func (a *app) load() error {
	if a.settings != nil {
		return nil
	}
	configDir, err := paths.ResolveConfigDir(a.flags.configDir, a.flags.global)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	s, err := config.Load(configDir)
	if err != nil {
		return err
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, s.Store.DataDir, a.flags.global)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	s.Store.DataDir = dataDir

	log, err := logging.New(s.LogMode, s.LogLevel)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	a.configDir, a.settings, a.log = configDir, s, log
	return nil
}

// inventory opens the inventory on first use.
func (a *app) inventory() (types.Inventory, error) {
	if a.inv != nil {
		return a.inv, nil
	}
	if err := a.load(); err != nil {
		return nil, err
	}
	inv, err := craftcompass.Open(a.settings.Store, craftcompass.WithLogger(a.log.SugaredLogger.Desugar()))
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	a.inv = inv
	return inv, nil
}

func (a *app) close() error {
	if a.log != nil {
		a.log.Sync()
	}
	if a.inv == nil {
		return nil
	}
	inv := a.inv
	a.inv = nil
	return inv.Detach()
}
