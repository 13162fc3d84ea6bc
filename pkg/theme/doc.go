// Package theme holds the process-wide configuration for diagram previews:
// default colors, edge style, flow-layout budget, persistence backend and the
// write-coalescing window.
//
// Configuration is read from a TOML file (see [Load]) and activated
// explicitly with [Init] when a preview session starts and released with
// [Teardown] when it ends. Consumers never read globals on their own; the
// active [Config] is handed to the builder and the session when they are
// constructed.
//
// # File Format
//
//	[theme]
//	table_header = "#316896"
//	group = "#5b6b7c"
//	note = "#f6e27f"
//	edge_type = "smoothstep"
//	inherit_theme_style = true
//
//	[layout]
//	row_budget = 1600
//	gap_x = 80
//	gap_y = 80
//
//	[store]
//	backend = "file"      # file | memory | redis | mongo | none
//	codec = "json"        # json | msgpack
//
//	[session]
//	coalesce = "100ms"
package theme
