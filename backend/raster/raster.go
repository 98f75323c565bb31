// Package raster implements backend.Backend by rasterizing directly onto
// an image.RGBA, the way the teacher's converter package turns a content
// stream into a bitmap: a golang.org/x/image/vector.Rasterizer accumulates
// one path at a time and is drawn with a uniform-color source image.
//
// Every transform this backend receives already maps all the way from PDF
// user space to device pixels; the root viewport/DPI transform is the
// caller's (package render's) responsibility, not this one's.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/sfnt/glyph"

	"pdfrender.dev/engine/graphics"
	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/pdffont"
	"pdfrender.dev/engine/rasterimg"
)

// clipRegion is one entry in the backend's clip-path table: a device-pixel
// bounding rectangle, the cheapest approximation that still lets nested
// rectangular clips (by far the common case) compose exactly.
type clipRegion struct {
	rect image.Rectangle
}

// Backend rasterizes a single page into an in-memory RGBA image.
type Backend struct {
	img    *image.RGBA
	raster *vector.Rasterizer
	clips  []clipRegion // index 0 is the full canvas, the "no clip" handle

	diagnostics []string
}

// New creates a Backend targeting a width x height canvas, initialized to
// opaque white the way a printed page starts out.
func New(width, height int) *Backend {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &Backend{
		img:    img,
		raster: vector.NewRasterizer(width, height),
		clips:  []clipRegion{{rect: img.Bounds()}},
	}
}

// Image returns the canvas rendered so far. The caller must not mutate it
// while a render is in progress.
func (b *Backend) Image() *image.RGBA { return b.img }

// Diagnostics returns every BugOp/BugPostscript/BugText* message recorded
// during the render, in emission order.
func (b *Backend) Diagnostics() []string { return b.diagnostics }

func (b *Backend) SetViewBox(rect pdf.Rectangle) {}

func (b *Backend) clipRect(id graphics.ClipPathID) image.Rectangle {
	i := int(id)
	if i < 0 || i >= len(b.clips) {
		return b.img.Bounds()
	}
	return b.clips[i].rect
}

func (b *Backend) CreateClipPath(o outline.Outline, rule outline.FillRule, parent graphics.ClipPathID, transform matrix.Matrix) graphics.ClipPathID {
	llx, lly, urx, ury := o.Transform(transform).Bounds()
	rect := image.Rect(
		int(math.Floor(llx)), int(math.Floor(lly)),
		int(math.Ceil(urx)), int(math.Ceil(ury)),
	)
	rect = rect.Intersect(b.clipRect(parent))
	b.clips = append(b.clips, clipRegion{rect: rect})
	return graphics.ClipPathID(len(b.clips) - 1)
}

// Draw fills and/or strokes o, clipped to clip's device-pixel rectangle.
func (b *Backend) Draw(o outline.Outline, mode graphics.DrawMode, transform matrix.Matrix, clip graphics.ClipPathID) error {
	region := b.clipRect(clip).Intersect(b.img.Bounds())
	if region.Empty() {
		return nil
	}
	if mode.Kind == graphics.DrawFill || mode.Kind == graphics.DrawFillStroke {
		b.fillOutline(o, transform, mode.Fill, region)
	}
	if mode.Kind == graphics.DrawStroke || mode.Kind == graphics.DrawFillStroke {
		b.strokeOutline(o, transform, mode.Stroke, mode.Style, region)
	}
	return nil
}

func (b *Backend) outlineToPath(o outline.Outline, transform matrix.Matrix) {
	w, h := b.img.Bounds().Dx(), b.img.Bounds().Dy()
	b.raster.Reset(w, h)
	for _, c := range o.Contours {
		if len(c.Segments) == 0 {
			continue
		}
		sx, sy := devicePoint(transform, c.Start)
		b.raster.MoveTo(sx, sy)
		for _, s := range c.Segments {
			switch s.Kind {
			case outline.SegLine:
				x, y := devicePoint(transform, s.End)
				b.raster.LineTo(x, y)
			case outline.SegQuad:
				cx, cy := devicePoint(transform, s.Control1)
				x, y := devicePoint(transform, s.End)
				b.raster.QuadTo(cx, cy, x, y)
			case outline.SegCubic:
				c1x, c1y := devicePoint(transform, s.Control1)
				c2x, c2y := devicePoint(transform, s.Control2)
				x, y := devicePoint(transform, s.End)
				b.raster.CubeTo(c1x, c1y, c2x, c2y, x, y)
			}
		}
		if c.Closed {
			b.raster.ClosePath()
		}
	}
}

func devicePoint(m matrix.Matrix, p outline.Point) (float32, float32) {
	q := m.Apply(p)
	return float32(q.X), float32(q.Y)
}

func (b *Backend) fillOutline(o outline.Outline, transform matrix.Matrix, fill graphics.FillMode, region image.Rectangle) {
	col, ok := resolveColor(fill.Fill, fill.Alpha)
	if !ok {
		return
	}
	b.outlineToPath(o, transform)
	b.raster.Draw(b.img, region, image.NewUniform(col), image.Point{})
}

// strokeOutline approximates a stroke as a union of per-segment quads, the
// way the teacher's converter does it: every curve is flattened to a
// single line to its endpoint rather than subdivided, and joins/caps are
// left square.
func (b *Backend) strokeOutline(o outline.Outline, transform matrix.Matrix, stroke graphics.FillMode, style graphics.StrokeStyle, region image.Rectangle) {
	col, ok := resolveColor(stroke.Fill, stroke.Alpha)
	if !ok {
		return
	}

	lineWidth := style.LineWidth
	if lineWidth <= 0 {
		lineWidth = 1
	}
	scale := (math.Abs(transform[0]) + math.Abs(transform[3])) / 2
	w := float32(lineWidth * scale / 2)
	if w < 0.5 {
		w = 0.5
	}

	width, height := b.img.Bounds().Dx(), b.img.Bounds().Dy()
	b.raster.Reset(width, height)
	for _, c := range o.Contours {
		if len(c.Segments) == 0 {
			continue
		}
		curX, curY := devicePoint(transform, c.Start)
		startX, startY := curX, curY
		strokeTo := func(destX, destY float32) {
			b.addStrokeQuad(curX, curY, destX, destY, w)
			curX, curY = destX, destY
		}
		for _, s := range c.Segments {
			x, y := devicePoint(transform, s.End)
			strokeTo(x, y)
		}
		if c.Closed {
			strokeTo(startX, startY)
		}
	}
	b.raster.Draw(b.img, region, image.NewUniform(col), image.Point{})
}

func (b *Backend) addStrokeQuad(curX, curY, destX, destY, w float32) {
	vx, vy := destX-curX, destY-curY
	length := float32(math.Hypot(float64(vx), float64(vy)))
	if length == 0 {
		return
	}
	nx, ny := -vy/length*w, vx/length*w
	b.raster.MoveTo(curX+nx, curY+ny)
	b.raster.LineTo(destX+nx, destY+ny)
	b.raster.LineTo(destX-nx, destY-ny)
	b.raster.LineTo(curX-nx, curY-ny)
	b.raster.ClosePath()
}

// DrawGlyph rasterizes one glyph outline, resolved by the caller's
// GlyphSource (the same source the text layer used for its own bbox
// accounting), so this backend never needs its own font-program cache.
func (b *Backend) DrawGlyph(font *pdffont.FontEntry, gid glyph.ID, glyphs graphics.GlyphSource, mode graphics.DrawMode, transform matrix.Matrix, clip graphics.ClipPathID) error {
	if glyphs == nil {
		return nil
	}
	region := b.clipRect(clip).Intersect(b.img.Bounds())
	if region.Empty() {
		return nil
	}
	o := glyphs.Outline(gid)
	if o.IsEmpty() {
		return nil
	}
	if mode.Kind == graphics.DrawFill || mode.Kind == graphics.DrawFillStroke {
		b.fillOutline(o, transform, mode.Fill, region)
	}
	if mode.Kind == graphics.DrawStroke || mode.Kind == graphics.DrawFillStroke {
		b.strokeOutline(o, transform, mode.Stroke, mode.Style, region)
	}
	return nil
}

func (b *Backend) AddText(span graphics.TextSpan, clip graphics.ClipPathID) error { return nil }

func (b *Backend) BugTextNoFont()    { b.note("text shown with no font selected") }
func (b *Backend) BugTextInvisible() {}

func (b *Backend) InspectOp(op pdf.Operator, args []pdf.Object) {}
func (b *Backend) BugOp(opIndex int)                            { b.note("unsupported or malformed operator") }
func (b *Backend) BugPostscript()                               { b.note("PostScript XObject ignored") }

func (b *Backend) note(msg string) { b.diagnostics = append(b.diagnostics, msg) }

// resolveColor turns a resolved paint into a uniform image/color.Color. An
// unresolved pattern (one with no uncolored-tiling underlying color) falls
// back to a neutral mid-gray rather than failing the draw.
func resolveColor(fill pdfcolor.Fill, alpha float64) (color.Color, bool) {
	switch f := fill.(type) {
	case pdfcolor.FillSolid:
		a := clampUnit(f.Alpha * alpha)
		return color.NRGBA{
			R: uint8(clampUnit(f.R) * 255),
			G: uint8(clampUnit(f.G) * 255),
			B: uint8(clampUnit(f.B) * 255),
			A: uint8(a * 255),
		}, true
	case pdfcolor.FillPattern:
		if f.Ref.Underlying != nil {
			return resolveColor(f.Ref.Underlying, alpha)
		}
		return color.Gray{Y: 128}, true
	default:
		return color.Black, fill != nil
	}
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// DrawImage and DrawInlineImage both composite an already-decoded image
// buffer; the distinction between an XObject stream and inline data
// disappears once decoding is done.
func (b *Backend) DrawImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error {
	return b.drawDecoded(img, transform, alpha, clip)
}

func (b *Backend) DrawInlineImage(img *rasterimg.Image, transform matrix.Matrix, alpha float64, blend pdfcolor.BlendMode, clip graphics.ClipPathID) error {
	return b.drawDecoded(img, transform, alpha, clip)
}

func (b *Backend) drawDecoded(img *rasterimg.Image, transform matrix.Matrix, alpha float64, clip graphics.ClipPathID) error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	region := b.clipRect(clip).Intersect(b.img.Bounds())
	if region.Empty() {
		return nil
	}

	src := toGoImage(img, alpha)

	// transform maps the unit square [0,1]x[0,1] to device pixels; compose
	// it with the image-pixel-to-unit-square mapping (row 0 is the image's
	// visual top, i.e. unit-square y=1) to get image-pixel-to-device.
	toUnit := matrix.Matrix{1 / float64(img.Width), 0, 0, -1 / float64(img.Height), 0, 1}.Mul(transform)
	aff := toAff3(toUnit)

	dst := image.NewRGBA(b.img.Bounds())
	draw.Draw(dst, b.img.Bounds(), b.img, image.Point{}, draw.Src)
	xdraw.BiLinear.Transform(dst, aff, src, src.Bounds(), draw.Over, nil)
	draw.Draw(b.img, region, dst, region.Min, draw.Src)
	return nil
}

func toGoImage(img *rasterimg.Image, alpha float64) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	a := clampUnit(alpha)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := img.At(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: p.R, G: p.G, B: p.B,
				A: uint8(float64(p.A) * a),
			})
		}
	}
	return out
}

func toAff3(m matrix.Matrix) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}
