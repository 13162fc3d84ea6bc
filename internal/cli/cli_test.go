package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/schema"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

func shopModel() *schema.Model {
	return &schema.Model{Schemas: []schema.Schema{{
		Name: "public",
		Tables: []schema.Table{
			{Name: "users", Columns: []schema.Column{{Name: "id", Type: "int", PK: true}}},
			{Name: "orders", Columns: []schema.Column{{Name: "id", Type: "int", PK: true}, {Name: "user_id", Type: "int"}}},
		},
		Refs: []schema.Ref{{
			Source: schema.Endpoint{Table: "orders", Column: "user_id", Relation: "*"},
			Target: schema.Endpoint{Table: "users", Column: "id", Relation: "1"},
		}},
		Groups: []schema.Group{{Name: "shop", Tables: []string{"users", "orders"}}},
	}}}
}

func writeModel(t *testing.T, path string, m *schema.Model) {
	t.Helper()
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

type env struct {
	dir      string
	schema   string
	config   string
	storeDir string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		dir:      dir,
		schema:   filepath.Join(dir, "shop.json"),
		config:   filepath.Join(dir, "config.toml"),
		storeDir: filepath.Join(dir, "layouts"),
	}
	writeModel(t, e.schema, shopModel())

	cfg := theme.Defaults()
	cfg.Store.Dir = e.storeDir
	cfg.Session.Coalesce = 10 * time.Millisecond
	f, err := os.Create(e.config)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := cfg.Write(f); err != nil {
		t.Fatal(err)
	}
	return e
}

// run executes the root command and returns what it wrote to its output.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e env) build(t *testing.T) *diagram.Graph {
	t.Helper()
	out, err := e.run(t, "build", e.schema)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	g, err := diagram.ReadGraph(strings.NewReader(out))
	if err != nil {
		t.Fatalf("decode graph: %v", err)
	}
	return g
}

func TestBuildCommand(t *testing.T) {
	e := newEnv(t)
	g := e.build(t)

	if g.Node("table-users") == nil || g.Node("table-orders") == nil {
		t.Fatalf("graph missing tables: %d nodes", len(g.Nodes))
	}
	if g.Node("group-shop") == nil {
		t.Error("graph missing group")
	}
	if len(g.Edges) != 1 {
		t.Errorf("edges = %d, want 1", len(g.Edges))
	}
}

func TestBuildCommandOutputFile(t *testing.T) {
	e := newEnv(t)
	out := filepath.Join(e.dir, "diagram.json")
	if _, err := e.run(t, "build", e.schema, "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := diagram.Unmarshal(data); err != nil {
		t.Errorf("output is not a graph: %v", err)
	}
}

func TestBuildCommandErrors(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "build", filepath.Join(e.dir, "missing.json")); err == nil {
		t.Error("missing schema should fail")
	}
	if _, err := e.run(t, "build"); err == nil {
		t.Error("build without args should fail")
	}

	bad := filepath.Join(e.dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[store]\nbackend = \"tape\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", bad, "build", e.schema})
	if err := root.Execute(); err == nil {
		t.Error("invalid config should fail")
	}
}

func TestDragCommandPersists(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "drag", e.schema, "table-users", "420", "80"); err != nil {
		t.Fatal(err)
	}

	g := e.build(t)
	if got := g.Node("table-users").Position; got != (diagram.Position{X: 420, Y: 80}) {
		t.Errorf("users = %+v, want saved position", got)
	}

	out, err := e.run(t, "store", "show", e.schema)
	if err != nil {
		t.Fatal(err)
	}
	var rec diagram.LayoutRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("store show output: %v\n%s", err, out)
	}
	if rec["table-users"] != (diagram.Position{X: 420, Y: 80}) {
		t.Errorf("record = %v", rec)
	}
}

func TestDragCommandErrors(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"BadCoordinate", []string{"drag", e.schema, "table-users", "left", "0"}},
		{"Column", []string{"drag", e.schema, "column-users-id", "0", "0"}},
		{"Unknown", []string{"drag", e.schema, "table-nope", "0", "0"}},
		{"NaN", []string{"drag", e.schema, "table-users", "NaN", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.run(t, tt.args...); err == nil {
				t.Errorf("%v should fail", tt.args)
			}
		})
	}
}

func TestGroupDragCommand(t *testing.T) {
	e := newEnv(t)
	before := e.build(t)

	if _, err := e.run(t, "group-drag", e.schema, "group-shop", "--", "30", "-10"); err != nil {
		t.Fatal(err)
	}
	after := e.build(t)
	for _, id := range []string{"table-users", "table-orders", "group-shop"} {
		want := before.Node(id).Position.Add(30, -10)
		if got := after.Node(id).Position; got != want {
			t.Errorf("%s = %+v, want %+v", id, got, want)
		}
	}
}

func TestResetCommand(t *testing.T) {
	e := newEnv(t)
	auto := e.build(t)

	if _, err := e.run(t, "drag", e.schema, "table-orders", "999", "999"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.run(t, "reset", e.schema); err != nil {
		t.Fatal(err)
	}
	g := e.build(t)
	if got, want := g.Node("table-orders").Position, auto.Node("table-orders").Position; got != want {
		t.Errorf("orders after reset = %+v, want %+v", got, want)
	}
}

func TestStoreCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "store", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != e.storeDir {
		t.Errorf("store path = %q, want %q", out, e.storeDir)
	}

	if _, err := e.run(t, "drag", e.schema, "table-users", "1", "2"); err != nil {
		t.Fatal(err)
	}
	out, err = e.run(t, "store", "path", e.schema)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(strings.TrimSpace(out)); err != nil {
		t.Errorf("layout file %q: %v", out, err)
	}

	if _, err := e.run(t, "store", "clear"); err != nil {
		t.Fatal(err)
	}
	out, err = e.run(t, "store", "show", e.schema)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "{}" {
		t.Errorf("after clear: %s", out)
	}
}

func TestConfigCommand(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "config")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := theme.Parse(out)
	if err != nil {
		t.Fatalf("config output does not parse: %v\n%s", err, out)
	}
	if cfg.Store.Dir != e.storeDir || cfg.Session.Coalesce != 10*time.Millisecond {
		t.Errorf("effective config = %+v", cfg.Store)
	}
}

func TestTablesList(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "tables", "--list", e.schema)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "table-users\t") {
		t.Errorf("tables --list =\n%s", out)
	}
}

func TestTableListModel(t *testing.T) {
	g := &diagram.Graph{Nodes: []diagram.Node{
		{ID: "table-a", Kind: diagram.KindTableHeader, Size: diagram.Size{W: 200, H: 100}, Table: &diagram.TableData{Title: "a"}},
		{ID: "column-a-id", Kind: diagram.KindColumn},
		{ID: "table-b", Kind: diagram.KindTableHeader, Position: diagram.Position{X: 300}, Size: diagram.Size{W: 200, H: 100}, Table: &diagram.TableData{Title: "b"}},
	}}
	items := tableItems(g)
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[1].Center != (diagram.Position{X: 400, Y: 50}) {
		t.Errorf("center = %+v", items[1].Center)
	}

	var m tea.Model = NewTableListModel(items)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("enter should quit")
	}
	tl := m.(TableListModel)
	if tl.Selected == nil || tl.Selected.ID != "table-b" {
		t.Errorf("selected = %+v", tl.Selected)
	}
	if !strings.Contains(tl.View(), "Go to Table") {
		t.Error("view missing title")
	}
}

func TestWatchRebuildsOnChange(t *testing.T) {
	e := newEnv(t)
	out := filepath.Join(e.dir, "diagram.json")

	c := New(io.Discard, LogInfo)
	cfg := theme.Defaults()
	cfg.Store.Dir = e.storeDir
	c.config = cfg

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.runWatch(ctx, io.Discard, e.schema, out) }()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(out); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("initial diagram not written: %v", <-errc)
		}
		time.Sleep(10 * time.Millisecond)
	}

	changed := shopModel()
	changed.Schemas[0].Tables = append(changed.Schemas[0].Tables, schema.Table{Name: "payments"})

	deadline = time.Now().Add(5 * time.Second)
	for {
		if data, err := os.ReadFile(out); err == nil && bytes.Contains(data, []byte("table-payments")) {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("diagram was not rebuilt")
		}
		writeModel(t, e.schema, changed)
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("runWatch = %v", err)
	}
}

func TestRebuildInvalidSchemaEmptiesDiagram(t *testing.T) {
	e := newEnv(t)
	out := filepath.Join(e.dir, "diagram.json")

	c := New(io.Discard, LogInfo)
	cfg := theme.Defaults()
	cfg.Store.Dir = e.storeDir
	c.config = cfg

	ctx := withLogger(context.Background(), c.Logger)
	sess, closeFn, err := c.openSession(ctx, e.schema)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()

	if err := os.WriteFile(e.schema, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.rebuild(ctx, sess, io.Discard, e.schema, out); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	var g diagram.Graph
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &g); err != nil {
		t.Fatal(err)
	}
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Errorf("diagram = %d nodes, %d edges, want empty", len(g.Nodes), len(g.Edges))
	}

	writeModel(t, e.schema, shopModel())
	if err := c.rebuild(ctx, sess, io.Discard, e.schema, out); err != nil {
		t.Fatal(err)
	}
	if sess.Graph().Node("table-users") == nil {
		t.Error("valid schema did not restore the diagram")
	}
}

func TestIsSchemaWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: path + ".swp", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := isSchemaWrite(tt.ev, path); got != tt.want {
			t.Errorf("isSchemaWrite(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestFormatStats(t *testing.T) {
	if got := formatStats(4, 1, 0); !strings.Contains(got, "4 nodes") || !strings.Contains(got, "auto layout") {
		t.Errorf("formatStats = %q", got)
	}
	if got := formatStats(4, 0, 2); !strings.Contains(got, "2 saved") || strings.Contains(got, "edges") {
		t.Errorf("formatStats = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, ExitOK},
		{"Canceled", fmt.Errorf("serve: %w", context.Canceled), ExitInterrupted},
		{"InvalidPath", errors.New(errors.ErrCodeInvalidPath, "empty path"), ExitUsage},
		{"Schema", errors.Wrap(errors.ErrCodeSchemaInvalid, io.ErrUnexpectedEOF, "decode"), ExitUsage},
		{"NodeID", fmt.Errorf("drag: %w", errors.New(errors.ErrCodeInvalidInput, "bad id")), ExitUsage},
		{"Storage", errors.New(errors.ErrCodeStorageWrite, "disk full"), ExitUnavailable},
		{"NotFound", errors.New(errors.ErrCodeNotFound, "table-x"), ExitFailure},
		{"Plain", io.EOF, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCompleteNodes(t *testing.T) {
	e := newEnv(t)
	cmd := &cobra.Command{}

	ids, dir := completeNodes(diagram.KindTableHeader, diagram.KindNote)(cmd, []string{e.schema}, "")
	if dir != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v", dir)
	}
	if strings.Join(ids, ",") != "table-users,table-orders" {
		t.Errorf("table completions = %v", ids)
	}

	ids, _ = completeNodes(diagram.KindGroup)(cmd, []string{e.schema}, "")
	if strings.Join(ids, ",") != "group-shop" {
		t.Errorf("group completions = %v", ids)
	}

	if _, dir := completeNodes(diagram.KindGroup)(cmd, nil, ""); dir != cobra.ShellCompDirectiveDefault {
		t.Errorf("schema argument should complete files, directive = %v", dir)
	}
	if _, dir := completeNodes(diagram.KindGroup)(cmd, []string{filepath.Join(e.dir, "missing.json")}, ""); dir != cobra.ShellCompDirectiveError {
		t.Errorf("missing schema directive = %v", dir)
	}
}

func TestCompletionCommand(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "schemaflow") {
		t.Errorf("bash completion does not mention schemaflow:\n%.200s", out)
	}
}
