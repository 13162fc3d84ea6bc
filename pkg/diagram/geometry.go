package diagram

import "math"

// Position is a point in diagram coordinate space.
type Position struct {
	X float64 `json:"x" msgpack:"x" bson:"x"`
	Y float64 `json:"y" msgpack:"y" bson:"y"`
}

// Add returns p translated by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the offset from q to p.
func (p Position) Sub(q Position) Offset {
	return Offset{DX: p.X - q.X, DY: p.Y - q.Y}
}

// Finite reports whether both coordinates are finite numbers.
func (p Position) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Offset is a translation vector, used for drags.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Zero reports whether the offset does not move anything.
func (o Offset) Zero() bool { return o.DX == 0 && o.DY == 0 }

// Size is the width and height of a node.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min, Max Position
}

// RectOf returns the rectangle spanned by a node at p with size s.
func RectOf(p Position, s Size) Rect {
	return Rect{Min: p, Max: Position{X: p.X + s.W, Y: p.Y + s.H}}
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Position {
	return Position{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Position{X: min(r.Min.X, o.Min.X), Y: min(r.Min.Y, o.Min.Y)},
		Max: Position{X: max(r.Max.X, o.Max.X), Y: max(r.Max.Y, o.Max.Y)},
	}
}

// Expand grows the rectangle by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{
		Min: Position{X: r.Min.X - pad, Y: r.Min.Y - pad},
		Max: Position{X: r.Max.X + pad, Y: r.Max.Y + pad},
	}
}
