// Package cli implements the docket command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/logging"
	"github.com/mesh-intelligence/docket/internal/paths"
	"github.com/mesh-intelligence/docket/internal/persist"
	"github.com/mesh-intelligence/docket/internal/staging"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// userError marks failures the operator can fix: bad flags, bad config,
// an empty or invalid batch.
type userError struct{ err error }

func (e *userError) Error() string { return e.err.Error() }
func (e *userError) Unwrap() error { return e.err }

func userErrorf(format string, args ...any) error {
	return &userError{err: fmt.Errorf(format, args...)}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	var uerr *userError
	var verr *persist.ValidationError
	switch {
	case err == nil:
		return exitSuccess
	case errors.As(err, &uerr), errors.As(err, &verr), errors.Is(err, types.ErrEmptyBatch):
		return exitUserError
	}
	return exitSysError
}

// app holds the global flags and the state resolved before each command.
type app struct {
	configDir string
	dataDir   string
	jsonOut   bool

	cfg         types.Config
	configPath  string
	stagingPath string
	logger      *slog.Logger
}

// NewRootCmd creates the top-level "docket" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "docket",
		Short: "Scrape court case listings and commit them to a relational store",
		Long: "Docket walks a paginated case-results portal, stages every case it can read\n" +
			"in a local JSON file, and later commits the staged batch to MySQL or SQLite\n" +
			"in a single transaction.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (env "+paths.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory for the staging file (env "+paths.EnvDataDir+")")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output as JSON")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newScrapeCmd(a))
	root.AddCommand(newCommitCmd(a))
	root.AddCommand(newStageCmd(a))
	root.AddCommand(newDBCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "docket:", err)
	}
	stop()
	os.Exit(exitCode(err))
}

// setup resolves directories, loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(a.dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg, configPath, err := loadConfig(configDir)
	if err != nil {
		return &userError{err: err}
	}
	a.configPath = configPath

	a.stagingPath, err = paths.StagingFile(cfg.Staging.Path, dataDir, staging.DefaultFileName)
	if err != nil {
		return fmt.Errorf("resolve staging file: %w", err)
	}
	if cfg.Database.Driver == types.DriverSQLite {
		cfg.Database.Path, err = paths.SQLiteFile(cfg.Database.Path, dataDir)
		if err != nil {
			return fmt.Errorf("resolve database file: %w", err)
		}
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return &userError{err: err}
	}
	return nil
}

// buffer returns the durable staging buffer.
func (a *app) buffer() *staging.FileBuffer {
	return staging.NewFileBuffer(a.stagingPath, a.logger)
}

// out returns the command's stdout.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
