// Package cli implements the schemaflow command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/buildinfo"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/schema"
	"github.com/matzehuels/schemaflow/pkg/session"
	"github.com/matzehuels/schemaflow/pkg/store"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "schemaflow"

	// defaultAddr is the default listen address of the bridge server.
	defaultAddr = "127.0.0.1:7420"
)

// Process exit codes returned by ExitCode.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2 // bad arguments, path or schema
	ExitUnavailable = 3 // layout store unreachable
	ExitInterrupted = 130
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *theme.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the observability
// hooks log every build, store access and session event.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		installLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Schemaflow turns database schemas into interactive diagrams",
		Long:         `Schemaflow builds node/edge diagrams from parsed database schemas, lays out tables and notes automatically, and remembers where you dragged them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/schemaflow/config.toml)")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.dragCommand())
	root.AddCommand(c.groupDragCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tablesCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeSchemaInvalid:
		return ExitUsage
	case errors.ErrCodeStorageRead, errors.ErrCodeStorageWrite:
		return ExitUnavailable
	}
	return ExitFailure
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = theme.DefaultPath(); err != nil {
			c.Logger.Debug("no config directory, using defaults", "err", err)
			c.config = theme.Defaults()
			return nil
		}
	}
	cfg, err := theme.Load(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("config loaded", "path", path, "backend", cfg.Store.Backend)
	c.config = cfg
	return nil
}

// cfg returns the loaded configuration, or the defaults when no command
// hook ran (as in tests).
func (c *CLI) cfg() *theme.Config {
	if c.config == nil {
		return theme.Defaults()
	}
	return c.config
}

// =============================================================================
// Session Factory
// =============================================================================

// openSession reads the schema at path and opens a session backed by the
// configured layout store. The returned close function flushes pending
// writes and closes the store.
func (c *CLI) openSession(ctx context.Context, path string) (*session.Session, func() error, error) {
	model, err := schema.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, c.cfg().Store, c.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open layout store: %w", err)
	}
	sess, err := session.Open(ctx, path, model, session.Options{
		Config: c.cfg(),
		Store:  st,
		Logger: c.Logger,
	})
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	closeFn := func() error {
		err := sess.Close()
		if cerr := st.Close(); err == nil {
			err = cerr
		}
		return err
	}
	return sess, closeFn, nil
}
