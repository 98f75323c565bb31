// Package trace implements backend.Backend as a text-extraction recorder:
// it ignores every paint operation and keeps only the TextSpans a content
// stream emits, in the same decode-then-accumulate shape as the teacher's
// MakeTextDecoder (extract/text.go), which turns each shown PDF string into
// Unicode text through a font's code-to-text table and concatenates it.
// Here that table is already reconciled ahead of time by pdffont.FontEntry,
// so there is nothing left for this backend to do but record.
package trace

import (
	"strings"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/sfnt/glyph"

	"pdfrender.dev/engine/graphics"
	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/pdffont"
	"pdfrender.dev/engine/rasterimg"
)

// Backend records every TextSpan emitted during a content stream's run,
// discarding all path, image, and clip operations.
type Backend struct {
	Spans       []graphics.TextSpan
	Diagnostics []string
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{}
}

// Text concatenates every recorded span's text in emission order.
func (b *Backend) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func (b *Backend) SetViewBox(rect pdf.Rectangle) {}

// CreateClipPath always returns the "unclipped" handle: clipping affects
// what a page looks like, not what text it contains.
func (b *Backend) CreateClipPath(o outline.Outline, rule outline.FillRule, parent graphics.ClipPathID, transform matrix.Matrix) graphics.ClipPathID {
	return 0
}

func (b *Backend) Draw(o outline.Outline, mode graphics.DrawMode, transform matrix.Matrix, clip graphics.ClipPathID) error {
	return nil
}

// DrawGlyph is a no-op: AddText already carries the span's decoded text,
// which is all this backend collects. A renderer that also needs per-glyph
// outlines (e.g. to derive bounding boxes for extracted words) should use
// backend/scene instead, which keeps every DrawGlyph call.
func (b *Backend) DrawGlyph(font *pdffont.FontEntry, gid glyph.ID, glyphs graphics.GlyphSource, mode graphics.DrawMode, transform matrix.Matrix, clip graphics.ClipPathID) error {
	return nil
}

func (b *Backend) AddText(span graphics.TextSpan, clip graphics.ClipPathID) error {
	b.Spans = append(b.Spans, span)
	return nil
}

func (b *Backend) DrawImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error {
	return nil
}

func (b *Backend) DrawInlineImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error {
	return nil
}

func (b *Backend) BugTextNoFont()    { b.note("text shown with no font selected") }
func (b *Backend) BugTextInvisible() {}

func (b *Backend) InspectOp(op pdf.Operator, args []pdf.Object) {}
func (b *Backend) BugOp(opIndex int)                            { b.note("unsupported or malformed operator") }
func (b *Backend) BugPostscript()                               { b.note("PostScript XObject ignored") }

func (b *Backend) note(msg string) { b.Diagnostics = append(b.Diagnostics, msg) }
