// Package pkg provides the core libraries for schemaflow.
//
// # Overview
//
// Schemaflow turns a parsed database schema into a diagram graph: tables with
// their columns, references between columns, group containers, and sticky
// notes. Positions a user drags nodes to are remembered per schema file and
// win over the automatic layout on the next build. The pkg directory is
// organized as:
//
//  1. [schema] - Input model produced by the schema parser
//  2. [diagram] - Output graph, geometry, and layout records
//  3. [builder], [autolayout], [bounds], [color] - The transformation
//  4. [store] - Layout persistence (file, memory, redis, mongo)
//  5. [session], [server] - Interactive editing and the editor bridge
//  6. [theme], [errors], [observability], [buildinfo] - Ambient support
//
// # Architecture
//
// The typical data flow through schemaflow:
//
//	Schema model (JSON/YAML)  +  saved layout ([store])
//	         ↓
//	    [builder] (tables, columns, edges, groups, notes)
//	         ↓
//	    [autolayout] for unsaved tables and notes, [bounds] for groups
//	         ↓
//	    [diagram.Graph] JSON for the renderer
//
// Drag events flow back through [session], which updates the layout record,
// recomputes group bounds, and coalesces writes to the [store].
//
// # Quick Start
//
//	m, _ := schema.ReadFile("db/schema.json")
//	st, _ := store.Open(ctx, theme.Defaults().Store, logger)
//
//	sess, _ := session.Open(ctx, "db/schema.json", m, session.Options{Store: st})
//	defer sess.Close()
//
//	g, _ := sess.OnDragComplete(ctx, "table-users", diagram.Position{X: 420, Y: 80})
//	_ = diagram.WriteGraph(g, os.Stdout)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/session/...   # Specific package
//	go test -run Example ./...  # Examples only
//
// [schema]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/schema
// [diagram]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/diagram
// [diagram.Graph]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/diagram#Graph
// [builder]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/builder
// [autolayout]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/autolayout
// [bounds]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/bounds
// [color]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/color
// [store]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/session
// [server]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/server
// [theme]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/theme
// [errors]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/schemaflow/pkg/buildinfo
package pkg
