package session

import (
	"github.com/matzehuels/schemaflow/pkg/bounds"
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/store"
)

// State is the diagram state a session evolves: the rendered graph and the
// persisted layout record it was built from. Transitions never mutate their
// input; they return a new State.
type State struct {
	Graph  *diagram.Graph
	Record diagram.LayoutRecord
}

// Clone returns a deep copy of st.
func (st State) Clone() State {
	out := State{Record: st.Record.Clone()}
	if st.Graph != nil {
		out.Graph = st.Graph.Clone()
	}
	return out
}

// ApplyDrag records pos as the user position of a table or note and moves
// the node there. Group rectangles are left stale; run Settle once the
// record has been handed to persistence.
func ApplyDrag(st State, id string, pos diagram.Position) (State, error) {
	if err := errors.ValidateNodeID(id); err != nil {
		return st, err
	}
	if !pos.Finite() {
		return st, errors.New(errors.ErrCodeInvalidInput, "position for %s is not finite", id)
	}
	if st.Graph == nil || st.Graph.Node(id) == nil {
		return st, errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}

	next := st.Clone()
	next.Record[id] = pos
	next.Graph.Node(id).Position = pos
	return next, nil
}

// ApplyGroupDrag translates every member table of groupID by off and records
// the members' new positions. As with ApplyDrag, group rectangles are
// recomputed by Settle. A group without present members is left as it is.
func ApplyGroupDrag(st State, groupID string, off diagram.Offset) (State, error) {
	if err := errors.ValidateGroupID(groupID); err != nil {
		return st, err
	}
	if st.Graph == nil {
		return st, errors.New(errors.ErrCodeNotFound, "group %q not found", groupID)
	}
	if p := (diagram.Position{X: off.DX, Y: off.DY}); !p.Finite() {
		return st, errors.New(errors.ErrCodeInvalidInput, "offset for %s is not finite", groupID)
	}

	next := st.Clone()
	moved, err := bounds.MoveMembers(next.Graph, groupID, off.DX, off.DY)
	if err != nil {
		return st, err
	}
	for id, p := range moved {
		next.Record[id] = p
	}
	return next, nil
}

// Settle recomputes the group rectangles of a State returned by ApplyDrag
// or ApplyGroupDrag. It updates st.Graph in place.
func Settle(st State) State {
	if st.Graph != nil {
		bounds.Recompute(st.Graph)
	}
	return st
}

// ApplySchema replaces the graph with a freshly built one and prunes record
// entries whose identities no longer exist. changed reports whether the
// pruned record differs from the old one and must be written back.
func ApplySchema(st State, g *diagram.Graph) (next State, changed bool) {
	pruned := store.Prune(st.Record, g.PersistableIDs())
	return State{Graph: g, Record: pruned}, store.Changed(st.Record, pruned)
}
