package outline

// Builder accumulates path-construction operators (m, l, c, v, y, re, h)
// between two path-painting operators into an Outline. Its method names
// follow the MoveTo/LineTo/CubeTo/ClosePath convention shared by
// golang.org/x/image/vector.Rasterizer, since both consume the same
// sequence of PDF path operators.
type Builder struct {
	out     Outline
	started bool
	cur     Point
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// MoveTo starts a new contour at p, implementing the PDF 'm' operator. A
// previous contour with no segments (a bare moveto) is dropped, matching
// the PDF rule that a lone 'm' paints nothing.
func (b *Builder) MoveTo(p Point) {
	if b.started && len(b.out.Contours) > 0 {
		last := &b.out.Contours[len(b.out.Contours)-1]
		if len(last.Segments) == 0 {
			b.out.Contours = b.out.Contours[:len(b.out.Contours)-1]
		}
	}
	b.out.Contours = append(b.out.Contours, Contour{Start: p})
	b.cur = p
	b.started = true
}

// LineTo appends a line segment, implementing the PDF 'l' operator.
func (b *Builder) LineTo(p Point) {
	b.ensureStarted()
	b.appendSeg(Segment{Kind: SegLine, End: p})
}

// QuadTo appends a quadratic Bezier segment.
func (b *Builder) QuadTo(ctrl, p Point) {
	b.ensureStarted()
	b.appendSeg(Segment{Kind: SegQuad, Control1: ctrl, End: p})
}

// CubeTo appends a cubic Bezier segment, implementing the PDF 'c', 'v',
// and 'y' operators (the latter two are degenerate cases where one
// control point coincides with an endpoint, resolved by the caller before
// reaching Builder).
func (b *Builder) CubeTo(ctrl1, ctrl2, p Point) {
	b.ensureStarted()
	b.appendSeg(Segment{Kind: SegCubic, Control1: ctrl1, Control2: ctrl2, End: p})
}

// Rect appends a closed rectangular contour, implementing the PDF 're'
// operator: a moveto to (x,y) followed by three linetos and an implicit
// closepath, per PDF 32000-1:2008 §8.5.2.1.
func (b *Builder) Rect(x, y, w, h float64) {
	b.MoveTo(Point{X: x, Y: y})
	b.LineTo(Point{X: x + w, Y: y})
	b.LineTo(Point{X: x + w, Y: y + h})
	b.LineTo(Point{X: x, Y: y + h})
	b.ClosePath()
}

// ClosePath implements the PDF 'h' operator: marks the current contour
// closed back to its start point.
func (b *Builder) ClosePath() {
	if !b.started || len(b.out.Contours) == 0 {
		return
	}
	last := &b.out.Contours[len(b.out.Contours)-1]
	last.Closed = true
	b.cur = last.Start
}

// CurrentPoint returns the builder's current pen position, used to resolve
// the degenerate control points of the 'v' and 'y' operators.
func (b *Builder) CurrentPoint() Point { return b.cur }

// Outline returns the accumulated path. The Builder remains usable after
// this call; callers typically discard it once the path-painting operator
// that consumes the outline has run.
func (b *Builder) Outline() Outline { return b.out }

// Reset clears the builder back to its zero state, for reuse across path
// construction spans within one content stream.
func (b *Builder) Reset() {
	b.out = Outline{}
	b.started = false
	b.cur = Point{}
}

func (b *Builder) ensureStarted() {
	if !b.started {
		b.MoveTo(Point{})
	}
}

func (b *Builder) appendSeg(s Segment) {
	last := &b.out.Contours[len(b.out.Contours)-1]
	last.Segments = append(last.Segments, s)
	b.cur = s.End
}
