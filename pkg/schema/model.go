package schema

import "strings"

// Relation symbols used on reference endpoints.
const (
	RelationOne  = "1"
	RelationMany = "*"
)

// Relation labels derived from relation symbols.
const (
	LabelOne     = "one"
	LabelMany    = "many"
	LabelUnknown = "unknown"
)

// Model is the top-level parsed schema document.
type Model struct {
	Schemas []Schema `json:"schemas" yaml:"schemas"`
}

// Schema is one named namespace of tables and the entities that relate them.
type Schema struct {
	Name   string  `json:"name" yaml:"name"`
	Tables []Table `json:"tables,omitempty" yaml:"tables,omitempty"`
	Refs   []Ref   `json:"refs,omitempty" yaml:"refs,omitempty"`
	Enums  []Enum  `json:"enums,omitempty" yaml:"enums,omitempty"`
	Groups []Group `json:"groups,omitempty" yaml:"groups,omitempty"`
	Notes  []Note  `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Table is a relational table. Columns keep their declared order.
type Table struct {
	Name        string   `json:"name" yaml:"name"`
	Schema      string   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Columns     []Column `json:"columns,omitempty" yaml:"columns,omitempty"`
	Note        string   `json:"note,omitempty" yaml:"note,omitempty"`
	HeaderColor string   `json:"headerColor,omitempty" yaml:"headerColor,omitempty"`
}

// Column is a single table column.
type Column struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	PK        bool   `json:"pk,omitempty" yaml:"pk,omitempty"`
	Unique    bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	NotNull   bool   `json:"notNull,omitempty" yaml:"notNull,omitempty"`
	Increment bool   `json:"increment,omitempty" yaml:"increment,omitempty"`
	Default   string `json:"default,omitempty" yaml:"default,omitempty"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
	Enum      string `json:"enum,omitempty" yaml:"enum,omitempty"` // name of an Enum in the same model
}

// Nullable reports whether the column accepts NULL.
func (c Column) Nullable() bool { return !c.NotNull && !c.PK }

// Endpoint is one side of a reference.
type Endpoint struct {
	Schema   string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table    string `json:"table" yaml:"table"`
	Column   string `json:"column" yaml:"column"`
	Relation string `json:"relation" yaml:"relation"` // "1" or "*"
}

// Ref is a relationship between two columns.
type Ref struct {
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Source Endpoint `json:"source" yaml:"source"`
	Target Endpoint `json:"target" yaml:"target"`
}

// Enum is a named set of values a column may reference.
type Enum struct {
	Name   string      `json:"name" yaml:"name"`
	Schema string      `json:"schema,omitempty" yaml:"schema,omitempty"`
	Values []EnumValue `json:"values,omitempty" yaml:"values,omitempty"`
}

// EnumValue is one member of an Enum.
type EnumValue struct {
	Name string `json:"name" yaml:"name"`
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Group is a named, colorable set of tables. Tables holds member identity keys.
type Group struct {
	Name   string   `json:"name" yaml:"name"`
	Schema string   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Note   string   `json:"note,omitempty" yaml:"note,omitempty"`
	Color  string   `json:"color,omitempty" yaml:"color,omitempty"`
	Tables []string `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// Note is a free-floating sticky note.
type Note struct {
	Name        string `json:"name" yaml:"name"`
	Content     string `json:"content" yaml:"content"`
	HeaderColor string `json:"headerColor,omitempty" yaml:"headerColor,omitempty"`
}

// RelationLabel maps a relation symbol to its label.
func RelationLabel(symbol string) string {
	switch strings.TrimSpace(symbol) {
	case RelationOne:
		return LabelOne
	case RelationMany:
		return LabelMany
	default:
		return LabelUnknown
	}
}

// MultiSchema reports whether table identities must be schema-qualified.
func (m *Model) MultiSchema() bool {
	return m != nil && len(m.Schemas) > 1
}

// TableKey returns the identity key of t, which lives in schema s.
func (m *Model) TableKey(s *Schema, t *Table) string {
	return m.qualify(firstNonEmpty(t.Schema, s.Name), t.Name)
}

// GroupKey returns the identity key of g, which lives in schema s.
func (m *Model) GroupKey(s *Schema, g *Group) string {
	return m.qualify(firstNonEmpty(g.Schema, s.Name), g.Name)
}

// EndpointKey returns the identity key of the table a reference endpoint
// points at. Endpoints without an explicit schema resolve within s.
func (m *Model) EndpointKey(s *Schema, e Endpoint) string {
	return m.qualify(firstNonEmpty(e.Schema, s.Name), e.Table)
}

// MemberKey resolves a group member reference to a table identity key.
// Unqualified members resolve within the group's schema; qualified members
// lose their schema prefix when the model has a single schema.
func (m *Model) MemberKey(s *Schema, g *Group, member string) string {
	schemaName, name, qualified := strings.Cut(member, ".")
	if !m.MultiSchema() {
		if qualified {
			return name
		}
		return member
	}
	if qualified {
		return m.qualify(schemaName, name)
	}
	return m.qualify(firstNonEmpty(g.Schema, s.Name), member)
}

func (m *Model) qualify(schemaName, name string) string {
	if m.MultiSchema() && schemaName != "" {
		return schemaName + "." + name
	}
	return name
}

// TableCount returns the number of tables across all schemas.
func (m *Model) TableCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, s := range m.Schemas {
		n += len(s.Tables)
	}
	return n
}

// RefCount returns the number of references across all schemas.
func (m *Model) RefCount() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, s := range m.Schemas {
		n += len(s.Refs)
	}
	return n
}

// FindEnum looks up an enum by name, preferring one declared in schema s.
func (m *Model) FindEnum(s *Schema, name string) (*Enum, bool) {
	if name == "" || m == nil {
		return nil, false
	}
	for i := range s.Enums {
		if s.Enums[i].Name == name {
			return &s.Enums[i], true
		}
	}
	for si := range m.Schemas {
		for ei := range m.Schemas[si].Enums {
			e := &m.Schemas[si].Enums[ei]
			if e.Name == name || m.qualify(firstNonEmpty(e.Schema, m.Schemas[si].Name), e.Name) == name {
				return e, true
			}
		}
	}
	return nil, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
