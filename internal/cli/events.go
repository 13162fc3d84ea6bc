package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/session"
)

// dragCommand creates the drag command, which records a table or note position.
func (c *CLI) dragCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "drag <schema> <node-id> <x> <y>",
		Short:             "Move a table or note and save its position",
		Example:           `  schemaflow drag db/schema.json table-users 420 80`,
		Args:              cobra.ExactArgs(4),
		ValidArgsFunction: completeNodes(diagram.KindTableHeader, diagram.KindNote),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePair(args[2], args[3])
			if err != nil {
				return err
			}
			p := diagram.Position{X: pos[0], Y: pos[1]}
			return c.withSession(cmd.Context(), args[0], func(sess *session.Session) error {
				if _, err := sess.OnDragComplete(cmd.Context(), args[1], p); err != nil {
					return err
				}
				printSuccess("Moved %s to %s", StyleHighlight.Render(args[1]), formatPosition(p))
				return nil
			})
		},
	}
}

// groupDragCommand creates the group-drag command, which moves every member of a group.
func (c *CLI) groupDragCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "group-drag <schema> <group-id> <dx> <dy>",
		Short:             "Move a group and all of its tables by an offset",
		Example:           `  schemaflow group-drag db/schema.json group-billing -- 30 -10`,
		Args:              cobra.ExactArgs(4),
		ValidArgsFunction: completeNodes(diagram.KindGroup),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parsePair(args[2], args[3])
			if err != nil {
				return err
			}
			off := diagram.Offset{DX: d[0], DY: d[1]}
			return c.withSession(cmd.Context(), args[0], func(sess *session.Session) error {
				g, err := sess.OnGroupDragComplete(cmd.Context(), args[1], off)
				if err != nil {
					return err
				}
				printSuccess("Moved %s by (%g, %g)", StyleHighlight.Render(args[1]), off.DX, off.DY)
				if n := g.Node(args[1]); n != nil {
					printDetail("Bounds: %s, %gx%g", formatPosition(n.Position), n.Size.W, n.Size.H)
				}
				return nil
			})
		},
	}
}

// resetCommand creates the reset command, which discards saved positions.
func (c *CLI) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <schema>",
		Short: "Discard saved positions and return to the automatic layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(cmd.Context(), args[0], func(sess *session.Session) error {
				if _, err := sess.ResetLayout(cmd.Context()); err != nil {
					return err
				}
				printSuccess("Layout reset for %s", args[0])
				return nil
			})
		},
	}
}

// withSession opens a session for path, runs fn, and closes the session so
// pending layout writes are flushed before the command exits.
func (c *CLI) withSession(ctx context.Context, path string, fn func(*session.Session) error) (err error) {
	sess, closeFn, err := c.openSession(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); err == nil && cerr != nil {
			err = fmt.Errorf("save layout: %w", cerr)
		}
	}()
	return fn(sess)
}

func parsePair(a, b string) ([2]float64, error) {
	var out [2]float64
	for i, s := range []string{a, b} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return out, fmt.Errorf("invalid coordinate %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

func formatPosition(p diagram.Position) string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
