// Package outline holds the immutable path geometry produced by the
// content-stream interpreter's path-construction operators (m, l, c, v, y,
// re, h) before it is handed to a Backend for filling or stroking.
package outline

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Point is a point in unscaled, pre-transform user space.
type Point = vec.Vec2

// SegmentKind distinguishes the three path-segment shapes a content stream
// can describe.
type SegmentKind int

const (
	// SegLine is a straight line to End.
	SegLine SegmentKind = iota
	// SegQuad is a quadratic Bezier curve to End via Control1.
	SegQuad
	// SegCubic is a cubic Bezier curve to End via Control1 and Control2.
	SegCubic
)

// Segment is one edge of a Contour. Only the fields relevant to Kind are
// meaningful; the others are zero.
type Segment struct {
	Kind      SegmentKind
	Control1  Point
	Control2  Point
	End       Point
}

// Contour is a single subpath: a start point followed by a sequence of
// segments, and whether the PDF 'h' operator closed it back to the start.
type Contour struct {
	Start    Point
	Segments []Segment
	Closed   bool
}

// Outline is an ordered sequence of contours, built up by one content
// stream's path-construction operators between the last path-painting
// operator and this one. Outlines are treated as immutable values once
// handed to a Backend; the interpreter never mutates one it has passed on.
type Outline struct {
	Contours []Contour
}

// IsEmpty reports whether the outline has no contours, or only
// single-point contours with no segments (e.g. a lone moveto).
func (o Outline) IsEmpty() bool {
	for _, c := range o.Contours {
		if len(c.Segments) > 0 {
			return false
		}
	}
	return true
}

// Transform returns a copy of o with every point mapped through m.
func (o Outline) Transform(m matrix.Matrix) Outline {
	out := Outline{Contours: make([]Contour, len(o.Contours))}
	for i, c := range o.Contours {
		segs := make([]Segment, len(c.Segments))
		for j, s := range c.Segments {
			segs[j] = Segment{
				Kind:     s.Kind,
				Control1: m.Apply(s.Control1),
				Control2: m.Apply(s.Control2),
				End:      m.Apply(s.End),
			}
		}
		out.Contours[i] = Contour{
			Start:    m.Apply(c.Start),
			Segments: segs,
			Closed:   c.Closed,
		}
	}
	return out
}

// Bounds returns the axis-aligned bounding box of every control and end
// point in the outline. It is a loose (control-polygon) bound for curved
// segments, sufficient for the clip-rectangle summary in GraphicsState.
func (o Outline) Bounds() (llx, lly, urx, ury float64) {
	first := true
	visit := func(p Point) {
		if first {
			llx, lly, urx, ury = p.X, p.Y, p.X, p.Y
			first = false
			return
		}
		if p.X < llx {
			llx = p.X
		}
		if p.X > urx {
			urx = p.X
		}
		if p.Y < lly {
			lly = p.Y
		}
		if p.Y > ury {
			ury = p.Y
		}
	}
	for _, c := range o.Contours {
		visit(c.Start)
		for _, s := range c.Segments {
			if s.Kind != SegLine {
				visit(s.Control1)
			}
			if s.Kind == SegCubic {
				visit(s.Control2)
			}
			visit(s.End)
		}
	}
	return
}
