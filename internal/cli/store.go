package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/store"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

// storeCommand creates the layout store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved diagram layouts",
	}

	cmd.AddCommand(c.storePathCommand())
	cmd.AddCommand(c.storeShowCommand())
	cmd.AddCommand(c.storeClearCommand())

	return cmd
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path [schema]",
		Short: "Print the layout directory, or the layout file of a schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := layoutDir(c.cfg().Store)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			}
			fb, err := store.NewFileBackend(dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fb.Path(store.Identity(args[0]).String()))
			return nil
		},
	}
}

// storeShowCommand creates the "store show" subcommand.
func (c *CLI) storeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <schema>",
		Short: "Print the saved positions of a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStoreShow(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

func (c *CLI) runStoreShow(ctx context.Context, stdout io.Writer, path string) error {
	st, err := store.Open(ctx, c.cfg().Store, c.Logger)
	if err != nil {
		return fmt.Errorf("open layout store: %w", err)
	}
	defer st.Close()

	rec := st.Load(ctx, store.Identity(path))
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [schema]",
		Short: "Delete the saved layout of one schema, or every saved layout",
		Long: `Clear deletes the saved layout of the given schema file. Without an
argument it deletes every saved layout; that form is only available for the
file backend.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return c.runStoreDelete(cmd.Context(), args[0])
			}
			return c.runStoreClear()
		},
	}
}

func (c *CLI) runStoreDelete(ctx context.Context, path string) error {
	st, err := store.Open(ctx, c.cfg().Store, c.Logger)
	if err != nil {
		return fmt.Errorf("open layout store: %w", err)
	}
	defer st.Close()

	if err := st.Delete(ctx, store.Identity(path)); err != nil {
		return err
	}
	printSuccess("Cleared saved layout for %s", path)
	return nil
}

func (c *CLI) runStoreClear() error {
	cfg := c.cfg().Store
	if cfg.Backend != "" && cfg.Backend != theme.BackendFile {
		return fmt.Errorf("clearing every layout is not supported for the %s backend; pass a schema file", cfg.Backend)
	}
	dir, err := layoutDir(cfg)
	if err != nil {
		return err
	}
	fb, err := store.NewFileBackend(dir)
	if err != nil {
		return err
	}

	spin := newSpinner(os.Stderr, "Clearing saved layouts...")
	spin.Start()
	if err := fb.Clear(); err != nil {
		spin.StopWithError("Could not clear %s", dir)
		return err
	}
	spin.StopWithSuccess("Cleared saved layouts")
	printDetail("Directory: %s", dir)
	return nil
}

// layoutDir returns the directory of the file backend.
func layoutDir(cfg theme.Store) (string, error) {
	if cfg.Dir != "" {
		return filepath.Clean(cfg.Dir), nil
	}
	dir, err := theme.StateDir()
	if err != nil {
		return "", fmt.Errorf("get state dir: %w", err)
	}
	return dir, nil
}
