// Package backend declares the sink every content-stream interpreter
// drives: path and image painting, clip-path creation, glyph and
// text-span emission, and a set of diagnostic hooks that default to
// no-ops for callers that don't care. Concrete implementations live in
// backend/raster, backend/scene, and backend/trace.
package backend

import (
	"seehuhn.de/go/geom/matrix"

	"pdfrender.dev/engine/graphics"
	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/rasterimg"
)

// Backend is every operation the content-stream interpreter drives.
type Backend interface {
	graphics.GlyphDrawer

	// SetViewBox declares the output canvas in page coordinates, called
	// once before a page's content stream runs.
	SetViewBox(rect pdf.Rectangle)

	// CreateClipPath registers a new clip region as the intersection of
	// parent (graphics.ClipPathID(0) for none) and the given outline under
	// rule, returning an opaque, cheap-to-copy handle.
	CreateClipPath(o outline.Outline, rule outline.FillRule, parent graphics.ClipPathID, transform matrix.Matrix) graphics.ClipPathID

	// Draw paints o (in the coordinate space transform maps into page
	// space) under mode, clipped to clip.
	Draw(o outline.Outline, mode graphics.DrawMode, transform matrix.Matrix, clip graphics.ClipPathID) error

	// DrawImage composites an already-decoded Image XObject. transform
	// maps the unit square [0,1]x[0,1] into page space; alpha/blend are
	// the enclosing graphics state's constant alpha and blend mode, the
	// same compositing inputs a filled path uses. An /ImageMask's pixels
	// already carry the fill color the interpreter resolved at decode
	// time (rasterimg.Image.IsMask), so the backend never needs the
	// current paint itself.
	DrawImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error

	// DrawInlineImage is DrawImage's counterpart for BI/ID/EI data that
	// never became a standalone stream object.
	DrawInlineImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error

	// InspectOp is called once per operator, before dispatch, for callers
	// that want a full trace; the default implementation is a no-op.
	InspectOp(op pdf.Operator, args []pdf.Object)
	// BugOp reports an operator-level recoverable problem (an unknown
	// operator, or a missing resource downgraded by AllowErrorInOption).
	BugOp(opIndex int)
	// BugPostscript reports a PostScript XObject, which this engine never
	// executes.
	BugPostscript()
}
