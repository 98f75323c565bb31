// Package scene implements backend.Backend by recording every draw call as
// a scene item instead of rasterizing it immediately — the renderer-side
// counterpart of the teacher's dual output split between an immediate
// rasterizing backend and a scene-description backend meant for a
// downstream GPU renderer or compositor to consume at its own pace.
package scene

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/sfnt/glyph"

	"pdfrender.dev/engine/graphics"
	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/pdffont"
	"pdfrender.dev/engine/rasterimg"
)

// ClipItem is one registered clip region, by construction order; Parent
// and ID form the same tree CreateClipPath's caller builds incrementally.
type ClipItem struct {
	ID        graphics.ClipPathID
	Parent    graphics.ClipPathID
	Outline   outline.Outline
	Rule      outline.FillRule
	Transform matrix.Matrix
}

// PathItem is one 'fill and/or stroke this path' call.
type PathItem struct {
	Outline   outline.Outline
	Mode      graphics.DrawMode
	Transform matrix.Matrix
	Clip      graphics.ClipPathID
}

// GlyphItem is one DrawGlyph call. Glyphs is kept so a consumer can still
// resolve the outline later without its own font cache.
type GlyphItem struct {
	Font      *pdffont.FontEntry
	GID       glyph.ID
	Glyphs    graphics.GlyphSource
	Mode      graphics.DrawMode
	Transform matrix.Matrix
	Clip      graphics.ClipPathID
}

// ImageItem is one DrawImage/DrawInlineImage call.
type ImageItem struct {
	Image     *rasterimg.Image
	Transform matrix.Matrix
	Alpha     float64
	Blend     pdfcolor.BlendMode
	Clip      graphics.ClipPathID
	Inline    bool
}

// Backend accumulates a page's draw calls in emission order rather than
// painting them. A consumer (a GPU renderer, a diffing test, a scene
// serializer) walks the slices afterward.
type Backend struct {
	ViewBox pdf.Rectangle

	Clips  []ClipItem
	Paths  []PathItem
	Glyphs []GlyphItem
	Images []ImageItem
	Text   []graphics.TextSpan

	Diagnostics []string

	nextClip graphics.ClipPathID
}

// New returns an empty Backend. Clip path 0 (graphics.ClipPathID's zero
// value) always means "unclipped" and is never itself recorded.
func New() *Backend {
	return &Backend{}
}

func (b *Backend) SetViewBox(rect pdf.Rectangle) { b.ViewBox = rect }

func (b *Backend) CreateClipPath(o outline.Outline, rule outline.FillRule, parent graphics.ClipPathID, transform matrix.Matrix) graphics.ClipPathID {
	b.nextClip++
	id := b.nextClip
	b.Clips = append(b.Clips, ClipItem{ID: id, Parent: parent, Outline: o, Rule: rule, Transform: transform})
	return id
}

func (b *Backend) Draw(o outline.Outline, mode graphics.DrawMode, transform matrix.Matrix, clip graphics.ClipPathID) error {
	b.Paths = append(b.Paths, PathItem{Outline: o, Mode: mode, Transform: transform, Clip: clip})
	return nil
}

func (b *Backend) DrawGlyph(font *pdffont.FontEntry, gid glyph.ID, glyphs graphics.GlyphSource, mode graphics.DrawMode, transform matrix.Matrix, clip graphics.ClipPathID) error {
	b.Glyphs = append(b.Glyphs, GlyphItem{Font: font, GID: gid, Glyphs: glyphs, Mode: mode, Transform: transform, Clip: clip})
	return nil
}

func (b *Backend) AddText(span graphics.TextSpan, clip graphics.ClipPathID) error {
	b.Text = append(b.Text, span)
	return nil
}

func (b *Backend) DrawImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error {
	b.Images = append(b.Images, ImageItem{Image: img, Transform: transform, Alpha: alpha, Blend: blend, Clip: clip})
	return nil
}

func (b *Backend) DrawInlineImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error {
	b.Images = append(b.Images, ImageItem{Image: img, Transform: transform, Alpha: alpha, Blend: blend, Clip: clip, Inline: true})
	return nil
}

func (b *Backend) BugTextNoFont()    { b.note("text shown with no font selected") }
func (b *Backend) BugTextInvisible() {}

func (b *Backend) InspectOp(op pdf.Operator, args []pdf.Object) {}
func (b *Backend) BugOp(opIndex int)                            { b.note("unsupported or malformed operator") }
func (b *Backend) BugPostscript()                               { b.note("PostScript XObject ignored") }

func (b *Backend) note(msg string) { b.Diagnostics = append(b.Diagnostics, msg) }
