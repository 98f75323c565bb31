// Package graphics implements the page-content interpreter's graphics and
// text state: the transform/stroke/fill/clip state a content stream
// mutates with q/Q/cm/w/rg/... operators, and the text matrices and glyph
// emission algorithm driven by BT/Tf/Tj/TJ/....
package graphics

import (
	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdfcolor"
)

// LineCap selects how an open subpath's stroke ends, per the PDF 'J'
// operator.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin selects how two stroked segments meet, per the PDF 'j' operator.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Dash is a stroke dash pattern: alternating on/off lengths plus a phase,
// both in user-space units at the time the pattern was set.
type Dash struct {
	Pattern []float64
	Phase   float64
}

// StrokeStyle carries everything the 'w'/'j'/'J'/'M'/'d'/'i' operators
// mutate.
type StrokeStyle struct {
	LineWidth  float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
	Dash       Dash
	Flatness   float64
}

// DefaultStrokeStyle matches the PDF spec's initial graphics state: a
// 1-unit line width, miter joins with limit 10, butt caps, no dash.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{LineWidth: 1, Join: JoinMiter, MiterLimit: 10}
}

// FillMode pairs a resolved paint with the alpha and blend mode it should
// be composited under.
type FillMode struct {
	Fill      pdfcolor.Fill
	Alpha     float64
	BlendMode pdfcolor.BlendMode
}

// DrawKind distinguishes the three ways a painting operator can consume a
// path: fill only, stroke only, or both.
type DrawKind int

const (
	DrawFill DrawKind = iota
	DrawStroke
	DrawFillStroke
)

// DrawMode is the fully resolved instruction a painting operator hands to
// Backend.Draw: what to fill and/or stroke with, and the winding rule the
// fill obeys.
type DrawMode struct {
	Kind     DrawKind
	Fill     FillMode
	Stroke   FillMode
	Style    StrokeStyle
	FillRule outline.FillRule
}
