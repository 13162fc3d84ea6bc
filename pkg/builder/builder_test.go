package builder

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaflow/pkg/color"
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/schema"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

func usersOrders() *schema.Model {
	return &schema.Model{Schemas: []schema.Schema{{
		Name: "public",
		Tables: []schema.Table{
			{Name: "users", Columns: []schema.Column{
				{Name: "id", Type: "int", PK: true},
				{Name: "name", Type: "varchar"},
			}},
			{Name: "orders", Columns: []schema.Column{
				{Name: "id", Type: "int", PK: true},
				{Name: "user_id", Type: "int", NotNull: true},
			}},
		},
		Refs: []schema.Ref{{
			Source: schema.Endpoint{Table: "orders", Column: "user_id", Relation: "*"},
			Target: schema.Endpoint{Table: "users", Column: "id", Relation: "1"},
		}},
	}}}
}

func withGroup(m *schema.Model) *schema.Model {
	m.Schemas[0].Groups = []schema.Group{{Name: "api", Tables: []string{"users", "orders"}}}
	return m
}

func build(m *schema.Model, saved diagram.LayoutRecord) *Result {
	return New(nil, nil).Build(context.Background(), m, saved)
}

func TestBuildUsersOrdersEmptyLayout(t *testing.T) {
	res := build(usersOrders(), nil)
	g := res.Graph

	if got := g.NodeIDs(diagram.KindTableHeader); !reflect.DeepEqual(got, []string{"table-users", "table-orders"}) {
		t.Errorf("table headers = %v", got)
	}
	wantColumns := []string{"column-users-id", "column-users-name", "column-orders-id", "column-orders-user_id"}
	if got := g.NodeIDs(diagram.KindColumn); !reflect.DeepEqual(got, wantColumns) {
		t.Errorf("columns = %v, want %v", got, wantColumns)
	}
	for _, id := range wantColumns {
		n := g.Node(id)
		if !strings.HasPrefix(n.Parent, diagram.PrefixTable) {
			t.Errorf("%s parent = %q", id, n.Parent)
		}
	}

	if len(g.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(g.Edges))
	}
	e := g.Edges[0]
	if e.ID != "edge-orders.user_id-users.id" {
		t.Errorf("edge id = %q", e.ID)
	}
	if e.Source != "column-orders-user_id" || e.Target != "column-users-id" {
		t.Errorf("edge endpoints = %s -> %s", e.Source, e.Target)
	}
	if e.Data.SourceRelation != schema.LabelMany || e.Data.TargetRelation != schema.LabelOne {
		t.Errorf("edge labels = %s/%s, want many/one", e.Data.SourceRelation, e.Data.TargetRelation)
	}
	if e.Data.Dangling {
		t.Error("edge should not be dangling")
	}
	if e.Data.Type != theme.EdgeSmoothStep {
		t.Errorf("edge type = %q", e.Data.Type)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	// Both placed by the flow layout from the origin, in declaration order.
	users, orders := g.Node("table-users"), g.Node("table-orders")
	if users.Position != (diagram.Position{}) {
		t.Errorf("users position = %+v, want origin", users.Position)
	}
	gap := theme.Defaults().Layout.GapX
	if want := (diagram.Position{X: users.Size.W + gap}); orders.Position != want {
		t.Errorf("orders position = %+v, want %+v", orders.Position, want)
	}
}

func TestBuildSavedPositionPrecedence(t *testing.T) {
	saved := diagram.LayoutRecord{"table-orders": {X: 500, Y: 500}}
	g := build(usersOrders(), saved).Graph

	if got := g.Node("table-orders").Position; got != (diagram.Position{X: 500, Y: 500}) {
		t.Errorf("orders position = %+v, want {500 500}", got)
	}
	// users is the only unsaved table, so it takes the first flow slot.
	if got := g.Node("table-users").Position; got != (diagram.Position{}) {
		t.Errorf("users position = %+v, want origin", got)
	}
	if len(g.Edges) != 1 || g.Edges[0].Data.Dangling {
		t.Errorf("edges affected by saved layout: %+v", g.Edges)
	}
}

func TestBuildDeterministic(t *testing.T) {
	m := withGroup(usersOrders())
	m.Schemas[0].Notes = []schema.Note{{Name: "todo", Content: "index user_id"}}
	saved := diagram.LayoutRecord{"table-users": {X: 40, Y: 60}}

	first, err := diagram.Marshal(build(m, saved).Graph)
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := diagram.Marshal(build(m, saved).Graph)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Build is not deterministic")
		}
	}
}

func TestBuildTableGeometry(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Tables[0].Note = "people"
	g := build(m, nil).Graph

	users := g.Node("table-users")
	if users.Size.H != diagram.TableHeight(2, true) {
		t.Errorf("users height = %v, want %v", users.Size.H, diagram.TableHeight(2, true))
	}
	if users.Size.W != diagram.MinTableWidth {
		t.Errorf("users width = %v, want %v", users.Size.W, diagram.MinTableWidth)
	}
	if !users.Table.HasNote || users.Table.ColumnCount != 2 {
		t.Errorf("users payload = %+v", users.Table)
	}
	if got := g.Node("column-users-name").Position; got != diagram.ColumnOffset(1, true) {
		t.Errorf("second column offset = %+v", got)
	}
	if got := g.Node("column-orders-id").Position; got != diagram.ColumnOffset(0, false) {
		t.Errorf("orders first column offset = %+v", got)
	}

	m.Schemas[0].Tables[1].Columns[1].Type = strings.Repeat("x", 60)
	g = build(m, nil).Graph
	if w := g.Node("table-orders").Size.W; w <= diagram.MinTableWidth {
		t.Errorf("long type should widen table, width = %v", w)
	}
}

func TestBuildColumnPayload(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Enums = []schema.Enum{{Name: "status", Values: []schema.EnumValue{{Name: "new"}, {Name: "paid", Note: "settled"}}}}
	m.Schemas[0].Tables[1].Columns = append(m.Schemas[0].Tables[1].Columns,
		schema.Column{Name: "status", Type: "status", Default: "'new'", NotNull: true})

	g := build(m, nil).Graph
	c := g.Node("column-orders-status").Column
	if c.Enum == nil || c.Enum.Name != "status" || len(c.Enum.Values) != 2 {
		t.Fatalf("enum = %+v", c.Enum)
	}
	if c.Flags != "NN = 'new'" {
		t.Errorf("flags = %q", c.Flags)
	}
	if c.Nullable {
		t.Error("not null column reported nullable")
	}
	if pk := g.Node("column-users-id").Column; pk.Flags != "PK" || pk.Nullable {
		t.Errorf("pk column = %+v", pk)
	}
	if name := g.Node("column-users-name").Column; !name.Nullable || name.Enum != nil {
		t.Errorf("name column = %+v", name)
	}
}

func TestBuildDanglingReference(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Refs = append(m.Schemas[0].Refs, schema.Ref{
		Source: schema.Endpoint{Table: "orders", Column: "coupon_id", Relation: "*"},
		Target: schema.Endpoint{Table: "coupons", Column: "id", Relation: "1"},
	})

	res := build(m, nil)
	if len(res.Graph.Edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(res.Graph.Edges))
	}
	e := res.Graph.Edges[1]
	if !e.Data.Dangling {
		t.Error("edge to missing table should be dangling")
	}
	if e.Target != "column-coupons-id" {
		t.Errorf("dangling target = %q", e.Target)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], errors.ErrCodeReferenceDangling) {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestBuildDuplicateReferences(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Refs = append(m.Schemas[0].Refs, m.Schemas[0].Refs[0], m.Schemas[0].Refs[0])

	g := build(m, nil).Graph
	var ids []string
	for _, e := range g.Edges {
		ids = append(ids, e.ID)
	}
	want := []string{
		"edge-orders.user_id-users.id",
		"edge-orders.user_id-users.id#2",
		"edge-orders.user_id-users.id#3",
	}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("edge ids = %v, want %v", ids, want)
	}
}

func TestBuildUnknownRelation(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Refs[0].Source.Relation = "-"
	e := build(m, nil).Graph.Edges[0]
	if e.Data.SourceRelation != schema.LabelUnknown {
		t.Errorf("source relation = %q, want unknown", e.Data.SourceRelation)
	}
}

func TestBuildGroups(t *testing.T) {
	g := build(withGroup(usersOrders()), nil).Graph

	grp := g.Node("group-api")
	if grp == nil {
		t.Fatal("group node missing")
	}
	if len(g.Groups) != 1 || !reflect.DeepEqual(g.Groups[0].Members, []string{"table-users", "table-orders"}) {
		t.Fatalf("groups = %+v", g.Groups)
	}

	users, orders := g.Node("table-users"), g.Node("table-orders")
	if users.Table.Group != "api" || orders.Table.Group != "api" {
		t.Errorf("membership = %q, %q", users.Table.Group, orders.Table.Group)
	}

	wantMin := diagram.Position{
		X: min(users.Position.X, orders.Position.X) - diagram.GroupPadding,
		Y: min(users.Position.Y, orders.Position.Y) - diagram.GroupPadding,
	}
	if grp.Position != wantMin {
		t.Errorf("group top-left = %+v, want %+v", grp.Position, wantMin)
	}
	right := max(users.Position.X+users.Size.W, orders.Position.X+orders.Size.W) + diagram.GroupPadding
	if got := grp.Position.X + grp.Size.W; got != right {
		t.Errorf("group right edge = %v, want %v", got, right)
	}
}

func TestBuildGroupAliasedMembers(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Groups = []schema.Group{{Name: "api", Tables: []string{"users", "public.users", "users"}}}
	g := build(m, nil).Graph

	if len(g.Groups) != 1 || !reflect.DeepEqual(g.Groups[0].Members, []string{"table-users"}) {
		t.Fatalf("members = %+v, want [table-users]", g.Groups)
	}
}

func TestBuildEmptyGroup(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Groups = []schema.Group{{Name: "ghost", Tables: []string{"missing"}}}
	g := build(m, nil).Graph

	n := g.Node("group-ghost")
	if n == nil {
		t.Fatal("group with no present members should still be emitted")
	}
	if n.Position != (diagram.Position{}) || n.Size != (diagram.Size{}) {
		t.Errorf("empty group rect = %+v %+v, want zero", n.Position, n.Size)
	}
}

func TestBuildNotes(t *testing.T) {
	m := usersOrders()
	m.Schemas[0].Notes = []schema.Note{{Name: "todo", Content: "add indexes", HeaderColor: "#fff"}}
	g := build(m, nil).Graph

	n := g.Node("note-todo")
	if n == nil || n.Kind != diagram.KindNote {
		t.Fatalf("note node = %+v", n)
	}
	if n.Size != (diagram.Size{W: diagram.StickyNoteWidth, H: diagram.StickyNoteHeight}) {
		t.Errorf("note size = %+v", n.Size)
	}
	if n.Note.Color != "#ffffff" || n.Note.TextColor != string(color.Dark) {
		t.Errorf("note colors = %s/%s", n.Note.Color, n.Note.TextColor)
	}
	// Notes start a fresh row below the tables.
	users := g.Node("table-users")
	if want := users.Size.H + theme.Defaults().Layout.GapY; n.Position != (diagram.Position{Y: want}) {
		t.Errorf("note position = %+v, want {0 %v}", n.Position, want)
	}

	saved := diagram.LayoutRecord{"note-todo": {X: -50, Y: 10}}
	if got := build(m, saved).Graph.Node("note-todo").Position; got != (diagram.Position{X: -50, Y: 10}) {
		t.Errorf("saved note position = %+v", got)
	}
}

func TestBuildColors(t *testing.T) {
	var buf bytes.Buffer
	m := withGroup(usersOrders())
	m.Schemas[0].Tables[0].HeaderColor = "#FFF"
	m.Schemas[0].Tables[1].HeaderColor = "notacolor"
	m.Schemas[0].Groups[0].Color = "#000"

	g := New(nil, log.New(&buf)).Build(context.Background(), m, nil).Graph

	users := g.Node("table-users").Table
	if users.HeaderColor != "#ffffff" || users.TextColor != string(color.Dark) {
		t.Errorf("users colors = %s/%s", users.HeaderColor, users.TextColor)
	}
	orders := g.Node("table-orders").Table
	if orders.HeaderColor != theme.Defaults().Theme.TableHeader || orders.TextColor != string(color.Light) {
		t.Errorf("orders colors = %s/%s, want theme default", orders.HeaderColor, orders.TextColor)
	}
	if !strings.Contains(buf.String(), "table-orders") {
		t.Errorf("invalid color should be reported, log = %q", buf.String())
	}
	grp := g.Node("group-api").Group
	if grp.Color != "#000000" || grp.TextColor != string(color.Light) {
		t.Errorf("group colors = %s/%s", grp.Color, grp.TextColor)
	}
}

func TestBuildMultiSchema(t *testing.T) {
	m := &schema.Model{Schemas: []schema.Schema{
		{
			Name:   "core",
			Tables: []schema.Table{{Name: "users", Columns: []schema.Column{{Name: "id", Type: "int"}}}},
			Groups: []schema.Group{{Name: "people", Tables: []string{"users"}}},
		},
		{
			Name:   "audit",
			Tables: []schema.Table{{Name: "log", Columns: []schema.Column{{Name: "user_id", Type: "int"}}}},
			Refs: []schema.Ref{{
				Source: schema.Endpoint{Table: "log", Column: "user_id", Relation: "*"},
				Target: schema.Endpoint{Schema: "core", Table: "users", Column: "id", Relation: "1"},
			}},
		},
	}}

	g := build(m, nil).Graph
	if got := g.NodeIDs(diagram.KindTableHeader); !reflect.DeepEqual(got, []string{"table-core.users", "table-audit.log"}) {
		t.Errorf("headers = %v", got)
	}
	if g.Node("group-core.people") == nil {
		t.Error("group id should be schema-qualified")
	}
	if g.Edges[0].ID != "edge-audit%2Elog.user_id-core%2Eusers.id" || g.Edges[0].Data.Dangling {
		t.Errorf("edge = %+v", g.Edges[0])
	}
	if title := g.Node("table-core.users").Table.Title; title != "core.users" {
		t.Errorf("title = %q", title)
	}
}

func TestBuildDashedNamesDistinct(t *testing.T) {
	m := &schema.Model{Schemas: []schema.Schema{{
		Name: "public",
		Tables: []schema.Table{
			{Name: "a-b", Columns: []schema.Column{{Name: "c", Type: "int"}}},
			{Name: "a", Columns: []schema.Column{{Name: "b-c", Type: "int"}}},
		},
	}}}
	g := build(m, nil).Graph

	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	if len(g.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(g.Nodes))
	}
}

func TestBuildNilModel(t *testing.T) {
	res := build(nil, nil)
	if len(res.Graph.Nodes) != 0 || len(res.Graph.Edges) != 0 {
		t.Errorf("nil model graph = %+v", res.Graph)
	}
}

func TestBuildStyle(t *testing.T) {
	cfg := theme.Defaults()
	cfg.Theme.EdgeType = theme.EdgeStep
	cfg.Theme.InheritThemeStyle = false
	g := New(cfg, nil).Build(context.Background(), usersOrders(), nil).Graph
	if g.Style.EdgeType != theme.EdgeStep || g.Style.InheritThemeStyle {
		t.Errorf("style = %+v", g.Style)
	}
	if g.Edges[0].Data.Type != theme.EdgeStep {
		t.Errorf("edge type = %q", g.Edges[0].Data.Type)
	}
}
