// Package builder turns a parsed schema model and a saved layout into the
// visual node/edge graph handed to the rendering collaborator.
//
// # Nodes
//
// Every table yields a header node followed by one child node per column, in
// declared column order. Column positions are relative to their header, so
// only header positions need to be resolved. Groups yield container nodes
// whose rectangles are derived from their members by package bounds. Notes
// yield fixed-size floating nodes.
//
// # Positions
//
// A header or note takes its saved position when the layout record has one
// for its identity; every other position comes from package autolayout.
// The builder never places anything on its own.
//
// # Edges
//
// Every reference yields one edge between the two column nodes. References to
// a missing table or column are still emitted, flagged Dangling, and reported
// in Result.Warnings. Two references between the same columns yield two
// edges; the second and later get a "#n" suffix on their identity.
//
// # Purity
//
// Build performs no I/O. Invalid colors are reported through the color
// resolver and replaced by theme defaults.
package builder
