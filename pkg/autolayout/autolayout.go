// Package autolayout assigns deterministic initial positions to diagram
// entities that have no saved position.
//
// The policy is a simple flow layout. Tables are placed in declaration order
// left to right, wrapping to a new row when the next table would push the row
// past the width budget. Each row is as tall as its tallest table. Notes
// follow the tables on a fresh row using the same flow.
//
// Only entities without a saved position take part in the flow, so a table
// added to an arranged diagram lands after the other unarranged ones instead
// of shifting everything around it.
//
// There is no global optimisation: no force simulation, no edge-crossing
// reduction. The same input always yields the same coordinates.
package autolayout

import (
	"github.com/matzehuels/schemaflow/pkg/diagram"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

// Item is one entity to place.
type Item struct {
	ID   string
	Size diagram.Size
}

// Engine holds the flow-layout parameters.
type Engine struct {
	Origin    diagram.Position
	RowBudget float64
	GapX      float64
	GapY      float64
}

// New returns an engine configured from the layout section of cfg.
func New(cfg theme.Layout) *Engine {
	return &Engine{RowBudget: cfg.RowBudget, GapX: cfg.GapX, GapY: cfg.GapY}
}

// Place returns positions for every table and note that has no entry in
// saved. Entities present in saved are skipped entirely and do not consume a
// slot in the flow.
func (e *Engine) Place(tables, notes []Item, saved diagram.LayoutRecord) diagram.LayoutRecord {
	out := make(diagram.LayoutRecord)
	f := flow{engine: e, x: e.Origin.X, y: e.Origin.Y}

	for _, it := range tables {
		if _, ok := saved[it.ID]; ok {
			continue
		}
		out[it.ID] = f.next(it.Size)
	}

	f.newRow()
	for _, it := range notes {
		if _, ok := saved[it.ID]; ok {
			continue
		}
		out[it.ID] = f.next(it.Size)
	}
	return out
}

type flow struct {
	engine *Engine
	x, y   float64
	rowH   float64
	inRow  int
}

func (f *flow) next(s diagram.Size) diagram.Position {
	if f.inRow > 0 && f.x+s.W > f.engine.Origin.X+f.engine.RowBudget {
		f.newRow()
	}
	p := diagram.Position{X: f.x, Y: f.y}
	f.x += s.W + f.engine.GapX
	f.rowH = max(f.rowH, s.H)
	f.inRow++
	return p
}

func (f *flow) newRow() {
	if f.inRow == 0 {
		return
	}
	f.x = f.engine.Origin.X
	f.y += f.rowH + f.engine.GapY
	f.rowH = 0
	f.inRow = 0
}
