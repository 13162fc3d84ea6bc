package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/schema"
	"github.com/matzehuels/schemaflow/pkg/session"
)

// watchCommand creates the watch command, which rebuilds on every schema change.
func (c *CLI) watchCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch <schema>",
		Short: "Rebuild the diagram whenever the schema file changes",
		Long: `Watch builds the diagram once, then rebuilds it every time the schema file
is written. Saved positions of removed tables and notes are pruned as the
schema changes. A schema that fails to parse produces an empty diagram until
the next successful write; saved positions are kept meanwhile. Without
--output each graph is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, rewritten on every change (default stdout)")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, stdout io.Writer, path, output string) (err error) {
	logger := loggerFromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	sess, closeFn, err := c.openSession(ctx, abs)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); err == nil {
			err = cerr
		}
	}()

	if err := writeGraph(sess.Graph(), stdout, output); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors often save by renaming a temp file over the original, which
	// drops a watch on the file itself; watch the directory instead.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching for changes", "file", abs)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isSchemaWrite(ev, abs) {
				continue
			}
			if err := c.rebuild(ctx, sess, stdout, abs, output); err != nil {
				return err
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", werr)
		}
	}
}

// rebuild re-reads the schema and pushes it into the session. An unreadable
// schema yields an empty diagram.
func (c *CLI) rebuild(ctx context.Context, sess *session.Session, stdout io.Writer, path, output string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	var g *diagram.Graph
	model, err := schema.ReadFile(path)
	if err != nil {
		g, err = sess.OnSchemaError(ctx, err)
	} else {
		g, err = sess.OnSchemaChange(ctx, model)
	}
	if err != nil {
		return err
	}
	if err := writeGraph(g, stdout, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rebuilt %d nodes, %d edges", len(g.Nodes), len(g.Edges)))
	return nil
}

func isSchemaWrite(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}
