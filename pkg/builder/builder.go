package builder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/schemaflow/pkg/autolayout"
	"github.com/matzehuels/schemaflow/pkg/bounds"
	"github.com/matzehuels/schemaflow/pkg/color"
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/errors"
	"github.com/matzehuels/schemaflow/pkg/observability"
	"github.com/matzehuels/schemaflow/pkg/schema"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

// Result is the outcome of a build. Graph is always usable; Warnings lists
// recoverable problems such as dangling references.
type Result struct {
	Graph    *diagram.Graph
	Warnings []error
}

// Builder converts schema models into diagrams using one configuration.
// A Builder is safe for concurrent use.
type Builder struct {
	palette  theme.Palette
	layout   *autolayout.Engine
	resolver *color.Resolver
}

// New returns a Builder for cfg. A nil cfg uses theme.Defaults. Color
// diagnostics go to logger, which may be nil.
func New(cfg *theme.Config, logger *log.Logger) *Builder {
	if cfg == nil {
		cfg = theme.Defaults()
	}
	return &Builder{
		palette:  cfg.Theme,
		layout:   autolayout.New(cfg.Layout),
		resolver: color.NewResolver(logger),
	}
}

// Build produces the diagram for m, preferring positions from saved.
// A nil model yields an empty graph.
func (b *Builder) Build(ctx context.Context, m *schema.Model, saved diagram.LayoutRecord) *Result {
	start := time.Now()
	observability.Build().OnBuildStart(ctx, m.TableCount(), m.RefCount())

	st := newState(b, m, saved)
	st.collectTables()
	st.collectNotes()
	st.resolvePositions()
	st.emitTables()
	st.emitGroups()
	st.emitNotes()
	st.emitEdges()
	bounds.Recompute(st.graph)

	observability.Build().OnBuildComplete(ctx, len(st.graph.Nodes), len(st.graph.Edges), time.Since(start))
	return &Result{Graph: st.graph, Warnings: st.warnings}
}

// =============================================================================
// Build State
// =============================================================================

type tableEntry struct {
	key     string
	schema  *schema.Schema
	table   *schema.Table
	columns map[string]bool
	size    diagram.Size
	group   string
}

type noteEntry struct {
	note *schema.Note
}

type state struct {
	b     *Builder
	model *schema.Model
	saved diagram.LayoutRecord

	tables    []*tableEntry
	tableByID map[string]*tableEntry
	notes     []noteEntry
	memberOf  map[string]string // table key -> group full name
	positions diagram.LayoutRecord

	graph    *diagram.Graph
	warnings []error
}

func newState(b *Builder, m *schema.Model, saved diagram.LayoutRecord) *state {
	return &state{
		b:         b,
		model:     m,
		saved:     saved,
		tableByID: make(map[string]*tableEntry),
		memberOf:  make(map[string]string),
		positions: make(diagram.LayoutRecord),
		graph: &diagram.Graph{
			Nodes: []diagram.Node{},
			Edges: []diagram.Edge{},
			Style: diagram.Style{
				EdgeType:          b.palette.EdgeType,
				InheritThemeStyle: b.palette.InheritThemeStyle,
			},
		},
	}
}

func (st *state) schemas() []schema.Schema {
	if st.model == nil {
		return nil
	}
	return st.model.Schemas
}

func (st *state) collectTables() {
	for si := range st.schemas() {
		s := &st.model.Schemas[si]
		for gi := range s.Groups {
			g := &s.Groups[gi]
			full := st.model.GroupKey(s, g)
			for _, member := range g.Tables {
				key := st.model.MemberKey(s, g, member)
				if _, dup := st.memberOf[key]; !dup {
					st.memberOf[key] = full
				}
			}
		}
	}
	for si := range st.schemas() {
		s := &st.model.Schemas[si]
		for ti := range s.Tables {
			t := &s.Tables[ti]
			e := &tableEntry{
				key:     st.model.TableKey(s, t),
				schema:  s,
				table:   t,
				columns: make(map[string]bool, len(t.Columns)),
			}
			labels := []string{tableTitle(st.model, s, t)}
			for _, c := range t.Columns {
				e.columns[c.Name] = true
				labels = append(labels, columnLabel(c))
			}
			e.size = diagram.Size{
				W: diagram.TableWidth(labels...),
				H: diagram.TableHeight(len(t.Columns), t.Note != ""),
			}
			e.group = st.memberOf[e.key]
			st.tables = append(st.tables, e)
			st.tableByID[diagram.TableID(e.key)] = e
		}
	}
}

func (st *state) collectNotes() {
	for si := range st.schemas() {
		s := &st.model.Schemas[si]
		for ni := range s.Notes {
			st.notes = append(st.notes, noteEntry{note: &s.Notes[ni]})
		}
	}
}

// resolvePositions applies saved positions first and delegates the rest to
// the flow layout.
func (st *state) resolvePositions() {
	tables := make([]autolayout.Item, 0, len(st.tables))
	for _, e := range st.tables {
		tables = append(tables, autolayout.Item{ID: diagram.TableID(e.key), Size: e.size})
	}
	notes := make([]autolayout.Item, 0, len(st.notes))
	for _, n := range st.notes {
		notes = append(notes, autolayout.Item{ID: diagram.NoteID(n.note.Name), Size: noteSize})
	}

	placed := st.b.layout.Place(tables, notes, st.saved)
	for _, it := range append(tables, notes...) {
		if p, ok := st.saved.Lookup(it.ID); ok {
			st.positions[it.ID] = p
			continue
		}
		st.positions[it.ID] = placed[it.ID]
	}
}

var noteSize = diagram.Size{W: diagram.StickyNoteWidth, H: diagram.StickyNoteHeight}

// =============================================================================
// Emission
// =============================================================================

func (st *state) emitTables() {
	for _, e := range st.tables {
		t := e.table
		id := diagram.TableID(e.key)
		header := st.b.resolver.Resolve(id, t.HeaderColor, st.b.palette.TableHeader)
		hasNote := t.Note != ""

		st.graph.Nodes = append(st.graph.Nodes, diagram.Node{
			ID:       id,
			Kind:     diagram.KindTableHeader,
			Position: st.positions[id],
			Size:     e.size,
			Table: &diagram.TableData{
				Key:         e.key,
				Name:        t.Name,
				Schema:      firstNonEmpty(t.Schema, e.schema.Name),
				Title:       tableTitle(st.model, e.schema, t),
				Note:        t.Note,
				HasNote:     hasNote,
				Group:       e.group,
				ColumnCount: len(t.Columns),
				Width:       e.size.W,
				HeaderColor: header.Background.String(),
				TextColor:   string(header.Foreground),
			},
		})

		for i, c := range t.Columns {
			st.graph.Nodes = append(st.graph.Nodes, diagram.Node{
				ID:       diagram.ColumnID(e.key, c.Name),
				Kind:     diagram.KindColumn,
				Parent:   id,
				Position: diagram.ColumnOffset(i, hasNote),
				Size:     diagram.Size{W: e.size.W - 2*diagram.TablePadding, H: diagram.RowHeight},
				Column:   st.columnData(e, c),
			})
		}
	}
}

func (st *state) columnData(e *tableEntry, c schema.Column) *diagram.ColumnData {
	d := &diagram.ColumnData{
		Table:     e.key,
		Name:      c.Name,
		Type:      c.Type,
		Flags:     columnFlags(c),
		PK:        c.PK,
		Unique:    c.Unique,
		Nullable:  c.Nullable(),
		Increment: c.Increment,
		Default:   c.Default,
		Note:      c.Note,
	}
	if en, ok := st.model.FindEnum(e.schema, firstNonEmpty(c.Enum, c.Type)); ok {
		d.Enum = &diagram.EnumData{Name: en.Name}
		for _, v := range en.Values {
			d.Enum.Values = append(d.Enum.Values, diagram.EnumValueData{Name: v.Name, Note: v.Note})
		}
	}
	return d
}

func (st *state) emitGroups() {
	for si := range st.schemas() {
		s := &st.model.Schemas[si]
		for gi := range s.Groups {
			g := &s.Groups[gi]
			full := st.model.GroupKey(s, g)
			id := diagram.GroupID(full)
			pair := st.b.resolver.Resolve(id, g.Color, st.b.palette.Group)

			members := make([]string, 0, len(g.Tables))
			seen := make(map[string]bool, len(g.Tables))
			for _, m := range g.Tables {
				mid := diagram.TableID(st.model.MemberKey(s, g, m))
				if seen[mid] {
					continue
				}
				seen[mid] = true
				members = append(members, mid)
			}
			st.graph.Groups = append(st.graph.Groups, diagram.Group{ID: id, Members: members})
			st.graph.Nodes = append(st.graph.Nodes, diagram.Node{
				ID:   id,
				Kind: diagram.KindGroup,
				Group: &diagram.GroupData{
					Name:      g.Name,
					FullName:  full,
					Note:      g.Note,
					Color:     pair.Background.String(),
					TextColor: string(pair.Foreground),
				},
			})
		}
	}
}

func (st *state) emitNotes() {
	for _, n := range st.notes {
		id := diagram.NoteID(n.note.Name)
		pair := st.b.resolver.Resolve(id, n.note.HeaderColor, st.b.palette.Note)
		st.graph.Nodes = append(st.graph.Nodes, diagram.Node{
			ID:       id,
			Kind:     diagram.KindNote,
			Position: st.positions[id],
			Size:     noteSize,
			Note: &diagram.NoteData{
				Name:      n.note.Name,
				Content:   n.note.Content,
				Color:     pair.Background.String(),
				TextColor: string(pair.Foreground),
			},
		})
	}
}

func (st *state) emitEdges() {
	seen := make(map[string]int)
	for si := range st.schemas() {
		s := &st.model.Schemas[si]
		for _, r := range s.Refs {
			srcKey := st.model.EndpointKey(s, r.Source)
			tgtKey := st.model.EndpointKey(s, r.Target)

			id := diagram.EdgeID(srcKey, r.Source.Column, tgtKey, r.Target.Column)
			seen[id]++
			if n := seen[id]; n > 1 {
				id = fmt.Sprintf("%s#%d", id, n)
			}

			dangling := !st.hasColumn(srcKey, r.Source.Column) || !st.hasColumn(tgtKey, r.Target.Column)
			if dangling {
				st.warnings = append(st.warnings, errors.New(errors.ErrCodeReferenceDangling,
					"reference %s.%s > %s.%s points at a missing table or column",
					srcKey, r.Source.Column, tgtKey, r.Target.Column))
			}

			st.graph.Edges = append(st.graph.Edges, diagram.Edge{
				ID:     id,
				Source: diagram.ColumnID(srcKey, r.Source.Column),
				Target: diagram.ColumnID(tgtKey, r.Target.Column),
				Data: diagram.EdgeData{
					Name:           r.Name,
					SourceTable:    srcKey,
					SourceColumn:   r.Source.Column,
					TargetTable:    tgtKey,
					TargetColumn:   r.Target.Column,
					SourceRelation: schema.RelationLabel(r.Source.Relation),
					TargetRelation: schema.RelationLabel(r.Target.Relation),
					Type:           st.b.palette.EdgeType,
					Dangling:       dangling,
				},
			})
		}
	}
}

func (st *state) hasColumn(key, column string) bool {
	e, ok := st.tableByID[diagram.TableID(key)]
	return ok && e.columns[column]
}

// =============================================================================
// Labels
// =============================================================================

func tableTitle(m *schema.Model, s *schema.Schema, t *schema.Table) string {
	return m.TableKey(s, t)
}

// columnLabel is the widest single line a column renders: name, type, flags.
func columnLabel(c schema.Column) string {
	parts := []string{c.Name, c.Type}
	if f := columnFlags(c); f != "" {
		parts = append(parts, f)
	}
	return strings.Join(parts, "  ")
}

func columnFlags(c schema.Column) string {
	var flags []string
	if c.PK {
		flags = append(flags, "PK")
	}
	if c.Unique {
		flags = append(flags, "UQ")
	}
	if c.NotNull {
		flags = append(flags, "NN")
	}
	if c.Increment {
		flags = append(flags, "AI")
	}
	if c.Default != "" {
		flags = append(flags, "= "+c.Default)
	}
	return strings.Join(flags, " ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
