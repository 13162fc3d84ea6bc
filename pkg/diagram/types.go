package diagram

import "strings"

// =============================================================================
// Constants - Identity Prefixes and Kinds
// =============================================================================

// NodeKind is the closed set of visual node kinds.
type NodeKind string

// Node kinds understood by the rendering collaborator.
const (
	KindTableHeader NodeKind = "tableHeader"
	KindColumn      NodeKind = "column"
	KindGroup       NodeKind = "group"
	KindNote        NodeKind = "note"
)

// Identity prefixes. The prefix alone determines an identity's kind.
const (
	PrefixTable  = "table-"
	PrefixColumn = "column-"
	PrefixGroup  = "group-"
	PrefixNote   = "note-"
	PrefixEdge   = "edge-"
)

// TableID returns the node identity of the table with the given key.
func TableID(key string) string { return PrefixTable + key }

// Separator characters inside identity components are percent-escaped so
// that distinct (table, column) pairs never share an identity.
var (
	columnEscaper = strings.NewReplacer("%", "%25", "-", "%2D")
	edgeEscaper   = strings.NewReplacer("%", "%25", "-", "%2D", ".", "%2E", "#", "%23")
)

// ColumnID returns the node identity of a column row, scoped to its table.
func ColumnID(tableKey, column string) string {
	return PrefixColumn + columnEscaper.Replace(tableKey) + "-" + columnEscaper.Replace(column)
}

// GroupID returns the node identity of a group container.
func GroupID(fullName string) string { return PrefixGroup + fullName }

// NoteID returns the node identity of a sticky note.
func NoteID(name string) string { return PrefixNote + name }

// EdgeID returns the base edge identity for a reference between two endpoints.
func EdgeID(srcTable, srcColumn, tgtTable, tgtColumn string) string {
	e := edgeEscaper.Replace
	return PrefixEdge + e(srcTable) + "." + e(srcColumn) + "-" + e(tgtTable) + "." + e(tgtColumn)
}

// Persistable reports whether positions for id belong in a layout record.
// Only table headers and notes are persisted.
func Persistable(id string) bool {
	return strings.HasPrefix(id, PrefixTable) || strings.HasPrefix(id, PrefixNote)
}

// =============================================================================
// Graph - Rendered Diagram
// =============================================================================

// Graph is the visual diagram handed to the rendering collaborator.
// Nodes appear in build order: per table a header followed by its columns,
// then groups, then notes. Parents always precede their children.
type Graph struct {
	Nodes  []Node  `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Groups []Group `json:"groups,omitempty"`
	Style  Style   `json:"style"`
}

// Style carries rendering options that apply to the whole diagram.
type Style struct {
	EdgeType          string `json:"edgeType"`
	InheritThemeStyle bool   `json:"inheritThemeStyle"`
}

// Node returns the node with the given identity, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodeIDs returns the identities of all nodes of the given kind, in order.
func (g *Graph) NodeIDs(kind NodeKind) []string {
	var ids []string
	for _, n := range g.Nodes {
		if n.Kind == kind {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// PersistableIDs returns the set of identities that may carry a saved position.
func (g *Graph) PersistableIDs() map[string]bool {
	live := make(map[string]bool)
	for _, n := range g.Nodes {
		if n.Kind == KindTableHeader || n.Kind == KindNote {
			live[n.ID] = true
		}
	}
	return live
}

// Positions captures the current positions of every persistable node.
func (g *Graph) Positions() LayoutRecord {
	rec := make(LayoutRecord)
	for _, n := range g.Nodes {
		if n.Kind == KindTableHeader || n.Kind == KindNote {
			rec[n.ID] = n.Position
		}
	}
	return rec
}

// Clone returns a deep copy of the graph. Payload pointers are shared since
// payloads are never mutated after build.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
		Style: g.Style,
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	if g.Groups != nil {
		out.Groups = make([]Group, len(g.Groups))
		for i, grp := range g.Groups {
			out.Groups[i] = Group{ID: grp.ID, Members: append([]string(nil), grp.Members...)}
		}
	}
	return out
}

// Group lists the table nodes belonging to a group container.
// Membership comes from the schema, never from geometry.
type Group struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

// =============================================================================
// Node - Positioned Visual Element
// =============================================================================

// Node is one visual element. Exactly one payload pointer is set, matching Kind.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Parent   string   `json:"parent,omitempty"` // set for column rows
	Position Position `json:"position"`         // relative to Parent when set
	Size     Size     `json:"size"`

	Table  *TableData  `json:"table,omitempty"`
	Column *ColumnData `json:"column,omitempty"`
	Group  *GroupData  `json:"group,omitempty"`
	Note   *NoteData   `json:"note,omitempty"`
}

// Rect returns the node's rectangle in its own coordinate space.
func (n *Node) Rect() Rect { return RectOf(n.Position, n.Size) }

// Center returns the navigation target for the node: the midpoint of its rectangle.
func (n *Node) Center() Position { return n.Rect().Center() }

// TableData is the payload of a table header node.
type TableData struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Schema      string  `json:"schema,omitempty"`
	Title       string  `json:"title"`
	Note        string  `json:"note,omitempty"`
	HasNote     bool    `json:"hasNote,omitempty"`
	Group       string  `json:"group,omitempty"` // full name of the containing group
	ColumnCount int     `json:"columnCount"`
	Width       float64 `json:"width"`
	HeaderColor string  `json:"headerColor"`
	TextColor   string  `json:"textColor"`
}

// ColumnData is the payload of a column row node.
type ColumnData struct {
	Table     string    `json:"table"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Flags     string    `json:"flags,omitempty"`
	PK        bool      `json:"pk,omitempty"`
	Unique    bool      `json:"unique,omitempty"`
	Nullable  bool      `json:"nullable,omitempty"`
	Increment bool      `json:"increment,omitempty"`
	Default   string    `json:"default,omitempty"`
	Note      string    `json:"note,omitempty"`
	Enum      *EnumData `json:"enum,omitempty"`
}

// EnumData is a resolved enum attached to a column for tooltips.
type EnumData struct {
	Name   string          `json:"name"`
	Values []EnumValueData `json:"values"`
}

// EnumValueData is one enum value.
type EnumValueData struct {
	Name string `json:"name"`
	Note string `json:"note,omitempty"`
}

// GroupData is the payload of a group container node.
type GroupData struct {
	Name      string `json:"name"`
	FullName  string `json:"fullName"`
	Note      string `json:"note,omitempty"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

// NoteData is the payload of a sticky note node.
type NoteData struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

// =============================================================================
// Edge - Reference Between Columns
// =============================================================================

// Edge connects two column nodes. Source and Target may name column nodes that
// do not exist when Dangling is set.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Data   EdgeData `json:"data"`
}

// EdgeData is the payload of a reference edge.
type EdgeData struct {
	Name           string `json:"name,omitempty"`
	SourceTable    string `json:"sourceTable"`
	SourceColumn   string `json:"sourceColumn"`
	TargetTable    string `json:"targetTable"`
	TargetColumn   string `json:"targetColumn"`
	SourceRelation string `json:"sourceRelation"`
	TargetRelation string `json:"targetRelation"`
	Type           string `json:"type"` // edge style, e.g. "smoothstep"
	Dangling       bool   `json:"dangling,omitempty"`
}
