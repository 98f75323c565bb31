package outline

import (
	"testing"

	"seehuhn.de/go/geom/matrix"
)

func TestBuilderRect(t *testing.T) {
	b := NewBuilder()
	b.Rect(0, 0, 10, 20)
	o := b.Outline()

	if len(o.Contours) != 1 {
		t.Fatalf("got %d contours, want 1", len(o.Contours))
	}
	c := o.Contours[0]
	if !c.Closed {
		t.Error("rectangle contour should be closed")
	}
	if len(c.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(c.Segments))
	}
	if c.Start != (Point{X: 0, Y: 0}) {
		t.Errorf("start = %v, want (0,0)", c.Start)
	}
	if c.Segments[2].End != (Point{X: 0, Y: 20}) {
		t.Errorf("last segment end = %v, want (0,20)", c.Segments[2].End)
	}
}

func TestBuilderDropsBareMoveto(t *testing.T) {
	b := NewBuilder()
	b.MoveTo(Point{X: 1, Y: 1})
	b.MoveTo(Point{X: 2, Y: 2})
	b.LineTo(Point{X: 3, Y: 3})
	o := b.Outline()

	if len(o.Contours) != 1 {
		t.Fatalf("got %d contours, want 1 (bare moveto should be dropped)", len(o.Contours))
	}
	if o.Contours[0].Start != (Point{X: 2, Y: 2}) {
		t.Errorf("start = %v, want (2,2)", o.Contours[0].Start)
	}
}

func TestOutlineTransform(t *testing.T) {
	b := NewBuilder()
	b.MoveTo(Point{X: 0, Y: 0})
	b.LineTo(Point{X: 1, Y: 0})
	o := b.Outline()

	m := matrix.Translate(5, 5)
	shifted := o.Transform(m)

	if shifted.Contours[0].Start != (Point{X: 5, Y: 5}) {
		t.Errorf("transformed start = %v, want (5,5)", shifted.Contours[0].Start)
	}
	if shifted.Contours[0].Segments[0].End != (Point{X: 6, Y: 5}) {
		t.Errorf("transformed end = %v, want (6,5)", shifted.Contours[0].Segments[0].End)
	}
	// original unmodified
	if o.Contours[0].Start != (Point{X: 0, Y: 0}) {
		t.Errorf("original outline mutated by Transform")
	}
}

func TestOutlineBounds(t *testing.T) {
	b := NewBuilder()
	b.Rect(-1, -2, 10, 20)
	o := b.Outline()

	llx, lly, urx, ury := o.Bounds()
	if llx != -1 || lly != -2 || urx != 9 || ury != 18 {
		t.Errorf("Bounds() = (%v,%v,%v,%v), want (-1,-2,9,18)", llx, lly, urx, ury)
	}
}

func TestOutlineIsEmpty(t *testing.T) {
	o := Outline{}
	if !o.IsEmpty() {
		t.Error("zero-value Outline should be empty")
	}
	b := NewBuilder()
	b.MoveTo(Point{X: 1, Y: 1})
	if !b.Outline().IsEmpty() {
		t.Error("bare moveto should be empty")
	}
	b.LineTo(Point{X: 2, Y: 2})
	if b.Outline().IsEmpty() {
		t.Error("outline with a segment should not be empty")
	}
}

func TestFillRuleString(t *testing.T) {
	if NonZero.String() != "nonzero" {
		t.Errorf("NonZero.String() = %q", NonZero.String())
	}
	if EvenOdd.String() != "even-odd" {
		t.Errorf("EvenOdd.String() = %q", EvenOdd.String())
	}
}
