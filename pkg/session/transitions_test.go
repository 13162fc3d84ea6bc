package session

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/schemaflow/pkg/builder"
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/schema"
)

func apiModel() *schema.Model {
	return &schema.Model{Schemas: []schema.Schema{{
		Name: "public",
		Tables: []schema.Table{
			{Name: "users", Columns: []schema.Column{{Name: "id", Type: "int"}, {Name: "name", Type: "text"}}},
			{Name: "orders", Columns: []schema.Column{{Name: "id", Type: "int"}, {Name: "user_id", Type: "int"}}},
		},
		Refs: []schema.Ref{{
			Source: schema.Endpoint{Table: "orders", Column: "user_id", Relation: "*"},
			Target: schema.Endpoint{Table: "users", Column: "id", Relation: "1"},
		}},
		Groups: []schema.Group{{Name: "api", Tables: []string{"users", "orders"}}},
		Notes:  []schema.Note{{Name: "todo", Content: "index"}},
	}}}
}

func initialState(rec diagram.LayoutRecord) State {
	g := builder.New(nil, nil).Build(context.Background(), apiModel(), rec).Graph
	return State{Graph: g, Record: rec.Clone()}
}

func TestApplyDrag(t *testing.T) {
	st := initialState(nil)
	pos := diagram.Position{X: 640, Y: 320}

	next, err := ApplyDrag(st, "table-orders", pos)
	if err != nil {
		t.Fatalf("ApplyDrag: %v", err)
	}
	if next.Record["table-orders"] != pos {
		t.Errorf("record = %v", next.Record)
	}
	if got := next.Graph.Node("table-orders").Position; got != pos {
		t.Errorf("node position = %+v", got)
	}

	// Group rectangle is stale until Settle, then follows its member.
	if next.Graph.Node("group-api").Size != st.Graph.Node("group-api").Size {
		t.Error("ApplyDrag recomputed group rectangles")
	}
	next = Settle(next)
	orders := next.Graph.Node("table-orders")
	grp := next.Graph.Node("group-api")
	if right := grp.Position.X + grp.Size.W; right != orders.Position.X+orders.Size.W+diagram.GroupPadding {
		t.Errorf("group right edge = %v", right)
	}

	// Input untouched.
	if len(st.Record) != 0 || st.Graph.Node("table-orders").Position == pos {
		t.Error("ApplyDrag mutated its input")
	}
}

func TestApplyDragNote(t *testing.T) {
	next, err := ApplyDrag(initialState(nil), "note-todo", diagram.Position{X: -10, Y: -10})
	if err != nil {
		t.Fatal(err)
	}
	if next.Record["note-todo"] != (diagram.Position{X: -10, Y: -10}) {
		t.Errorf("record = %v", next.Record)
	}
}

func TestApplyDragErrors(t *testing.T) {
	st := initialState(nil)
	tests := []struct {
		name string
		id   string
		pos  diagram.Position
		code errors.Code
	}{
		{"Unknown", "table-missing", diagram.Position{}, errors.ErrCodeNotFound},
		{"Column", "column-users-id", diagram.Position{}, errors.ErrCodeInvalidInput},
		{"Group", "group-api", diagram.Position{}, errors.ErrCodeInvalidInput},
		{"NaN", "table-users", diagram.Position{X: math.NaN()}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyDrag(st, tt.id, tt.pos)
			if !errors.Is(err, tt.code) {
				t.Errorf("ApplyDrag(%s) = %v, want %s", tt.id, err, tt.code)
			}
		})
	}
}

func TestApplyGroupDrag(t *testing.T) {
	st := initialState(nil)
	users0 := st.Graph.Node("table-users").Position
	orders0 := st.Graph.Node("table-orders").Position
	note0 := st.Graph.Node("note-todo").Position

	next, err := ApplyGroupDrag(st, "group-api", diagram.Offset{DX: 30, DY: -10})
	if err != nil {
		t.Fatalf("ApplyGroupDrag: %v", err)
	}

	users := next.Graph.Node("table-users").Position
	orders := next.Graph.Node("table-orders").Position
	if users != users0.Add(30, -10) || orders != orders0.Add(30, -10) {
		t.Errorf("members = %+v, %+v", users, orders)
	}
	if next.Record["table-users"] != users || next.Record["table-orders"] != orders {
		t.Errorf("record = %v", next.Record)
	}
	if next.Graph.Node("note-todo").Position != note0 {
		t.Error("non-member moved")
	}
	if next.Graph.Node("group-api").Position != st.Graph.Node("group-api").Position {
		t.Error("ApplyGroupDrag recomputed group rectangles")
	}

	next = Settle(next)
	want := diagram.Position{
		X: min(users.X, orders.X) - diagram.GroupPadding,
		Y: min(users.Y, orders.Y) - diagram.GroupPadding,
	}
	if got := next.Graph.Node("group-api").Position; got != want {
		t.Errorf("group top-left = %+v, want %+v", got, want)
	}
	if _, ok := next.Record["group-api"]; ok {
		t.Error("group rectangles must not be recorded")
	}
}

func TestApplyGroupDragErrors(t *testing.T) {
	st := initialState(nil)
	if _, err := ApplyGroupDrag(st, "group-nope", diagram.Offset{DX: 1}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown group = %v", err)
	}
	if _, err := ApplyGroupDrag(st, "table-users", diagram.Offset{DX: 1}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("non-group id = %v", err)
	}
	if _, err := ApplyGroupDrag(st, "group-api", diagram.Offset{DX: math.Inf(1)}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("infinite offset = %v", err)
	}
}

func TestApplySchema(t *testing.T) {
	rec := diagram.LayoutRecord{
		"table-users":  {X: 1, Y: 1},
		"table-orders": {X: 2, Y: 2},
		"note-todo":    {X: 3, Y: 3},
	}
	st := initialState(rec)

	m := apiModel()
	m.Schemas[0].Tables = m.Schemas[0].Tables[:1] // drop orders
	m.Schemas[0].Notes = nil
	g := builder.New(nil, nil).Build(context.Background(), m, st.Record).Graph

	next, changed := ApplySchema(st, g)
	if !changed {
		t.Error("dropping tables should change the record")
	}
	want := diagram.LayoutRecord{"table-users": {X: 1, Y: 1}}
	if !next.Record.Equal(want) {
		t.Errorf("record = %v, want %v", next.Record, want)
	}

	again, changed := ApplySchema(next, g)
	if changed || !again.Record.Equal(want) {
		t.Errorf("second ApplySchema changed = %v, record = %v", changed, again.Record)
	}
}
