package diagram

import "unicode/utf8"

// Fixed dimensions of rendered elements, in diagram units.
const (
	HeaderHeight  = 42.0  // table title bar
	NoteRowHeight = 30.0  // extra header row when a table has a note
	RowHeight     = 30.0  // one column row
	TablePadding  = 8.0   // padding around the column area
	MinTableWidth = 200.0 // tables never render narrower than this

	GroupPadding = 24.0 // space between a group border and its members

	StickyNoteWidth  = 240.0
	StickyNoteHeight = 160.0

	charAdvance  = 7.5  // average glyph advance of the column font
	labelPadding = 48.0 // horizontal chrome around a column label
)

// TableHeight returns the derived height of a table with the given number of columns.
func TableHeight(columns int, hasNote bool) float64 {
	h := HeaderHeight + float64(columns)*RowHeight + 2*TablePadding
	if hasNote {
		h += NoteRowHeight
	}
	return h
}

// ColumnOffset returns the position of the i-th column row relative to its table header.
func ColumnOffset(i int, hasNote bool) Position {
	y := HeaderHeight + TablePadding + float64(i)*RowHeight
	if hasNote {
		y += NoteRowHeight
	}
	return Position{X: TablePadding, Y: y}
}

// LabelWidth returns the rendered width of a single-line label.
func LabelWidth(label string) float64 {
	return float64(utf8.RuneCountInString(label))*charAdvance + labelPadding
}

// TableWidth returns the derived width of a table from its widest label,
// clamped to MinTableWidth.
func TableWidth(labels ...string) float64 {
	w := MinTableWidth
	for _, l := range labels {
		w = max(w, LabelWidth(l))
	}
	return w
}
