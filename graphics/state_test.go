package graphics

import (
	"testing"

	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState()
	if s.FillAlpha != 1 || s.StrokeAlpha != 1 {
		t.Errorf("alpha = (%v,%v), want (1,1)", s.FillAlpha, s.StrokeAlpha)
	}
	if s.Stroke.LineWidth != 1 {
		t.Errorf("LineWidth = %v, want 1", s.Stroke.LineWidth)
	}
	if s.ClipID != 0 || s.ClipRect != nil {
		t.Error("new state should be unclipped")
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := NewState()
	clone := s.Clone()
	clone.FillAlpha = 0.5
	clone.Stroke.LineWidth = 5

	if s.FillAlpha == clone.FillAlpha {
		t.Error("mutating the clone should not affect the original")
	}
	if s.Stroke.LineWidth == clone.Stroke.LineWidth {
		t.Error("mutating the clone's stroke style should not affect the original's")
	}
}

func TestEffectiveBlendModeFlipsOnOverprint(t *testing.T) {
	s := NewState()
	s.FillBlendMode = pdfcolor.Overlay
	if got := s.EffectiveFillBlendMode(); got != pdfcolor.Overlay {
		t.Errorf("EffectiveFillBlendMode() = %v, want Overlay", got)
	}
	s.OverprintFill = true
	if got := s.EffectiveFillBlendMode(); got != pdfcolor.Darken {
		t.Errorf("EffectiveFillBlendMode() with overprint = %v, want Darken", got)
	}
}

func TestIntersectClipRectangleOnRectangle(t *testing.T) {
	s := NewState()
	s.IntersectClip(1, &pdf.Rectangle{LLx: 0, LLy: 0, URx: 100, URy: 100})
	s.IntersectClip(2, &pdf.Rectangle{LLx: 50, LLy: 50, URx: 150, URy: 150})

	want := pdf.Rectangle{LLx: 50, LLy: 50, URx: 100, URy: 100}
	if *s.ClipRect != want {
		t.Errorf("ClipRect = %+v, want %+v", *s.ClipRect, want)
	}
	if s.ClipID != 2 {
		t.Errorf("ClipID = %v, want 2", s.ClipID)
	}
}

func TestIntersectClipNonRectangularDropsSummary(t *testing.T) {
	s := NewState()
	s.IntersectClip(1, &pdf.Rectangle{LLx: 0, LLy: 0, URx: 100, URy: 100})
	s.IntersectClip(2, nil)

	if s.ClipRect != nil {
		t.Error("ClipRect should be nil once a non-rectangular clip is pushed")
	}
	if s.ClipID != 2 {
		t.Errorf("ClipID = %v, want 2", s.ClipID)
	}
}
