package graphics

import (
	"seehuhn.de/go/geom/matrix"

	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
)

// ClipPathID is the opaque, cheap-to-copy handle a Backend returns from
// CreateClipPath. GraphicsState carries only the token; the backend owns
// the actual clip region data. The zero value means "no clip set".
type ClipPathID int64

// State is the content-stream interpreter's graphics state: everything
// saved and restored as a unit by the 'q'/'Q' operators. It is cloned by
// value on Save (ClipRect is the only pointer field, copied by value
// since *pdf.Rectangle is treated as immutable once set).
type State struct {
	// CTM is the current transform, mapping user space to the page's
	// device space established by the root transform.
	CTM matrix.Matrix

	Stroke StrokeStyle

	FillColor   pdfcolor.Fill
	StrokeColor pdfcolor.Fill
	FillAlpha   float64
	StrokeAlpha float64

	FillColorSpace   pdfcolor.Space
	StrokeColorSpace pdfcolor.Space

	FillBlendMode   pdfcolor.BlendMode
	StrokeBlendMode pdfcolor.BlendMode

	OverprintFill   bool
	OverprintStroke bool
	OverprintMode   int

	// ClipID is the current clip chain's token, or zero if unclipped.
	ClipID ClipPathID
	// ClipRect optionally summarizes ClipID as an axis-aligned rectangle
	// in page space, when the clip chain so far is rectangle-on-rectangle.
	// Nil means either unclipped or the clip is not rectangle-shaped.
	ClipRect *pdf.Rectangle
}

// NewState returns the initial graphics state for a page or Form XObject:
// identity transform, default stroke style, opaque black fill and stroke,
// no color space bound, and no clip.
func NewState() *State {
	return &State{
		CTM:         matrix.Identity,
		Stroke:      DefaultStrokeStyle(),
		FillColor:   pdfcolor.Solid(0, 0, 0),
		StrokeColor: pdfcolor.Solid(0, 0, 0),
		FillAlpha:   1,
		StrokeAlpha: 1,
	}
}

// Clone returns a copy of s, safe to mutate independently; used by 'q' to
// push a new frame onto the graphics stack.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// EffectiveFillBlendMode returns FillBlendMode, flipped to Darken when
// OverprintFill is set, per the overprint-interacts-with-blend-mode rule.
func (s *State) EffectiveFillBlendMode() pdfcolor.BlendMode {
	return s.FillBlendMode.WithOverprint(s.OverprintFill)
}

// EffectiveStrokeBlendMode returns StrokeBlendMode, flipped to Darken when
// OverprintStroke is set.
func (s *State) EffectiveStrokeBlendMode() pdfcolor.BlendMode {
	return s.StrokeBlendMode.WithOverprint(s.OverprintStroke)
}

// IntersectClip computes the new clip chain after a Clip operator: the
// new identifier's region is, by invariant, a subset of both the prior
// clip and the newly created one. Rectangle-on-rectangle intersections
// are additionally folded into ClipRect so later full-page fills can be
// bounded without consulting the backend.
func (s *State) IntersectClip(id ClipPathID, rect *pdf.Rectangle) {
	wasClipped := s.ClipID != 0
	s.ClipID = id
	switch {
	case rect == nil || (s.ClipRect == nil && wasClipped):
		s.ClipRect = nil
	case s.ClipRect == nil:
		s.ClipRect = rect
	default:
		s.ClipRect = intersectRect(s.ClipRect, rect)
	}
}

func intersectRect(a, b *pdf.Rectangle) *pdf.Rectangle {
	r := pdf.Rectangle{
		LLx: max(a.LLx, b.LLx),
		LLy: max(a.LLy, b.LLy),
		URx: min(a.URx, b.URx),
		URy: min(a.URy, b.URy),
	}
	if r.URx < r.LLx {
		r.URx = r.LLx
	}
	if r.URy < r.LLy {
		r.URy = r.LLy
	}
	return &r
}
