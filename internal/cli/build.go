package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/diagram"
)

// buildCommand creates the build command for writing the diagram graph.
func (c *CLI) buildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build <schema>",
		Short: "Build the diagram graph for a schema file",
		Long: `Build reads a parsed schema model (JSON or YAML), applies the saved layout
for that file, places everything else automatically, and writes the
node/edge graph as JSON.`,
		Example: `  schemaflow build db/schema.json
  schemaflow build db/schema.yaml -o diagram.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), cmd.OutOrStdout(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) runBuild(ctx context.Context, stdout io.Writer, path, output string) (err error) {
	prog := newProgress(c.Logger)

	sess, closeFn, err := c.openSession(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); err == nil {
			err = cerr
		}
	}()

	g := sess.Graph()
	if err := writeGraph(g, stdout, output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d nodes, %d edges", len(g.Nodes), len(g.Edges)))

	if output != "" {
		printSuccess("Diagram written")
		printFile(output)
		printStats(len(g.Nodes), len(g.Edges), len(sess.Record()))
		if n := len(sess.Warnings()); n > 0 {
			printWarning("%d schema problems, see log", n)
		}
	}
	return nil
}

// writeGraph writes g to the file at output, or to stdout when output is empty.
func writeGraph(g *diagram.Graph, stdout io.Writer, output string) error {
	if output == "" {
		return diagram.WriteGraph(g, stdout)
	}
	return diagram.WriteGraphFile(g, output)
}
