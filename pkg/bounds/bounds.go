// Package bounds keeps group container rectangles consistent with the
// positions of their member tables.
//
// Membership comes from the schema (diagram.Group.Members), never from
// geometry: a table dragged outside its group's rectangle is still a member
// and the rectangle grows to follow it. A group rectangle is the bounding box
// of its members' rectangles expanded by diagram.GroupPadding on every side.
//
// Group rectangles are derived state. They are recomputed after every
// position mutation and are never persisted.
package bounds

import (
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
)

// Of returns the padded bounding rectangle of the given member tables.
// Members missing from nodes are ignored. ok is false when no member is present.
func Of(nodes []diagram.Node, members []string) (r diagram.Rect, ok bool) {
	index := indexNodes(nodes)
	return of(nodes, index, members)
}

func of(nodes []diagram.Node, index map[string]int, members []string) (r diagram.Rect, ok bool) {
	for _, id := range members {
		i, present := index[id]
		if !present {
			continue
		}
		mr := nodes[i].Rect()
		if !ok {
			r, ok = mr, true
			continue
		}
		r = r.Union(mr)
	}
	if !ok {
		return diagram.Rect{}, false
	}
	return r.Expand(diagram.GroupPadding), true
}

// Recompute updates the position and size of every group node in g from its
// members. A group with no present members keeps its previous rectangle.
func Recompute(g *diagram.Graph) {
	index := indexNodes(g.Nodes)
	for _, grp := range g.Groups {
		i, present := index[grp.ID]
		if !present {
			continue
		}
		r, ok := of(g.Nodes, index, grp.Members)
		if !ok {
			continue
		}
		g.Nodes[i].Position = r.Min
		g.Nodes[i].Size = diagram.Size{W: r.Width(), H: r.Height()}
	}
}

// TranslateGroup moves every member table of groupID by (dx, dy) and then
// recomputes all group rectangles. A member listed more than once moves once.
// It returns the new positions of the moved tables so the caller can persist
// them.
func TranslateGroup(g *diagram.Graph, groupID string, dx, dy float64) (diagram.LayoutRecord, error) {
	moved, err := MoveMembers(g, groupID, dx, dy)
	if err != nil {
		return nil, err
	}
	Recompute(g)
	return moved, nil
}

// MoveMembers is TranslateGroup without the recompute: group rectangles are
// left as they were until the caller runs Recompute.
func MoveMembers(g *diagram.Graph, groupID string, dx, dy float64) (diagram.LayoutRecord, error) {
	grp := findGroup(g, groupID)
	if grp == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "group %q not found", groupID)
	}
	index := indexNodes(g.Nodes)
	moved := make(diagram.LayoutRecord, len(grp.Members))
	for _, id := range grp.Members {
		i, present := index[id]
		if _, done := moved[id]; !present || done {
			continue
		}
		n := &g.Nodes[i]
		n.Position = n.Position.Add(dx, dy)
		moved[id] = n.Position
	}
	return moved, nil
}

// Containing returns the identities of the groups that list tableID as a member.
func Containing(g *diagram.Graph, tableID string) []string {
	var ids []string
	for _, grp := range g.Groups {
		for _, m := range grp.Members {
			if m == tableID {
				ids = append(ids, grp.ID)
				break
			}
		}
	}
	return ids
}

func findGroup(g *diagram.Graph, id string) *diagram.Group {
	for i := range g.Groups {
		if g.Groups[i].ID == id {
			return &g.Groups[i]
		}
	}
	return nil
}

func indexNodes(nodes []diagram.Node) map[string]int {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	return index
}
