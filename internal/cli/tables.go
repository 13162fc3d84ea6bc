package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// tablesCommand creates the tables command, an interactive table navigator.
func (c *CLI) tablesCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "tables <schema>",
		Short: "Pick a table and print its navigation target",
		Long: `Tables lists the tables of a schema in an interactive picker. Selecting a
table prints the centre point of its header, which is where an editor
centres the viewport when jumping to that table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTables(cmd.Context(), cmd.OutOrStdout(), args[0], list)
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "print every table and its centre without the picker")
	return cmd
}

func (c *CLI) runTables(ctx context.Context, stdout io.Writer, path string, list bool) (err error) {
	sess, closeFn, err := c.openSession(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); err == nil {
			err = cerr
		}
	}()

	items := tableItems(sess.Graph())
	if len(items) == 0 {
		printInfo("No tables in %s", path)
		return nil
	}

	if list {
		for _, it := range items {
			fmt.Fprintf(stdout, "%s\t%g\t%g\n", it.ID, it.Center.X, it.Center.Y)
		}
		return nil
	}

	final, err := tea.NewProgram(NewTableListModel(items), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("table picker: %w", err)
	}
	m, ok := final.(TableListModel)
	if !ok || m.Selected == nil {
		return nil
	}

	center, err := sess.Center(m.Selected.ID)
	if err != nil {
		return err
	}
	printKeyValue("Table", m.Selected.Title)
	printKeyValue("Center", formatPosition(center))
	return nil
}
