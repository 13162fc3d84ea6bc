// Package diagram provides the visual node/edge types handed to the
// rendering collaborator, and the layout records persisted per file.
//
// This package defines the canonical wire format between the schema-to-diagram
// engine and whatever draws the diagram (a webview, a test, a CLI dump).
//
// # Core Types
//
//   - [Graph]: ordered visual nodes, edges, and group memberships
//   - [Node]: a positioned, sized element of a closed [NodeKind]
//   - [Edge]: one reference between two column nodes
//   - [LayoutRecord]: persisted identity → [Position] map for one file
//
// # Identities
//
// Node identities are stable strings derived from the schema:
//
//	table-<key>             table header
//	column-<key>-<column>   column row, child of its table header
//	group-<fullName>        group container
//	note-<name>             sticky note
//
// Only table headers and notes carry persisted positions. Column positions
// are relative to their table; group rectangles are always derived.
//
// # Serialization
//
//	data, _ := diagram.Marshal(g)
//	g, _ := diagram.Unmarshal(data)
//	diagram.WriteGraph(g, w)
//
// Output order is the build order, which is deterministic for a given model.
package diagram
