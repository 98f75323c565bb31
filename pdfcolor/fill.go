// Package pdfcolor resolves PDF color-space operands into Fill values and
// implements the CMYK/RGB/overprint conversion rules for resolved color spaces.
// Color spaces may nest (Indexed over Separation over ICC, and so on);
// ResolveSpace follows that nesting recursively against a Getter.
package pdfcolor

// PatternRef identifies a parsed tiling or shading pattern object. The
// pattern's own content stream or shading dictionary is owned by the
// content-stream interpreter's resource cache, not by Fill itself — Fill
// only carries the handle needed to look it back up.
type PatternRef struct {
	Name      string
	Shading   bool // true for shading patterns, false for tiling patterns
	Underlying Fill // uncolored tiling patterns carry a separate color
}

// Fill is the tagged color/paint value produced by resolving a color-space
// operator, following a color.Color interface shape (a small
// interface over concrete value types) but on the read side: Space.ToFill
// returns a Fill instead of writing PDF operators.
type Fill interface {
	isFill()
}

// FillSolid is a solid color in the 0..1 device RGB range. Color spaces
// always produce Alpha 1; the graphics state's fill/stroke alpha constant
// travels separately, in graphics.FillMode.Alpha.
type FillSolid struct {
	R, G, B, Alpha float64
}

func (FillSolid) isFill() {}

// FillPattern defers painting to a tiling or shading pattern.
type FillPattern struct {
	Ref PatternRef
}

func (FillPattern) isFill() {}

// Solid is a convenience constructor for an opaque FillSolid.
func Solid(r, g, b float64) FillSolid {
	return FillSolid{R: r, G: g, B: b, Alpha: 1}
}
