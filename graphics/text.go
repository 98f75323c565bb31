package graphics

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/sfnt/glyph"

	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/pdffont"
)

// RenderMode is the PDF text rendering mode set by the 'Tr' operator.
type RenderMode int

const (
	RenderFill RenderMode = iota
	RenderStroke
	RenderFillStroke
	RenderInvisible
	RenderFillClip
	RenderStrokeClip
	RenderFillStrokeClip
	RenderClip
)

// paints reports which of fill/stroke this mode paints with, and whether
// it paints at all (false for modes 3 and 7). Whether the mode also adds
// to the text clip path is reported separately by clips.
func (m RenderMode) paints() (kind DrawKind, painted bool) {
	switch m {
	case RenderFill, RenderFillClip:
		return DrawFill, true
	case RenderStroke, RenderStrokeClip:
		return DrawStroke, true
	case RenderFillStroke, RenderFillStrokeClip:
		return DrawFillStroke, true
	default:
		return 0, false
	}
}

// clips reports whether this mode accumulates glyph outlines into the text
// clip path (modes 4-7).
func (m RenderMode) clips() bool {
	return m >= RenderFillClip
}

// TextState is the content-stream interpreter's text state: everything
// saved and restored alongside the graphics state by 'q'/'Q', plus the
// running text/line matrices 'BT'/'Td'/'Tm'/'T*' maintain between
// individual glyphs.
type TextState struct {
	Tm, Tlm matrix.Matrix

	CharSpace     float64 // Tc
	WordSpace     float64 // Tw
	HorizScale    float64 // Tz / 100
	Leading       float64 // TL
	Font          *pdffont.FontEntry
	FontSize      float64 // Tfs
	Mode          RenderMode
	Rise          float64 // Ts
}

// NewTextState returns the state BT establishes: identity matrices, 100%
// horizontal scale, fill rendering mode, everything else zero.
func NewTextState() *TextState {
	return &TextState{
		Tm:         matrix.Identity,
		Tlm:        matrix.Identity,
		HorizScale: 1,
		Mode:       RenderFill,
	}
}

// Clone returns a copy of ts, safe to mutate independently.
func (ts *TextState) Clone() *TextState {
	if ts == nil {
		return nil
	}
	clone := *ts
	return &clone
}

// BeginText implements 'BT': reset both matrices to identity.
func (ts *TextState) BeginText() {
	ts.Tm = matrix.Identity
	ts.Tlm = matrix.Identity
}

// SetTextMatrix implements 'Tm': both matrices become m.
func (ts *TextState) SetTextMatrix(m matrix.Matrix) {
	ts.Tm = m
	ts.Tlm = m
}

// MoveTextPosition implements 'Td'/'TD': both matrices become
// translate(tx,ty) composed in front of the current line matrix.
func (ts *TextState) MoveTextPosition(tx, ty float64) {
	m := matrix.Matrix{1, 0, 0, 1, tx, ty}.Mul(ts.Tlm)
	ts.Tm = m
	ts.Tlm = m
}

// TextNewline implements 'T*': move to the start of the next line using
// the current leading.
func (ts *TextState) TextNewline() {
	ts.MoveTextPosition(0, -ts.Leading)
}

// WidthSource supplies a font's /Widths (simple fonts) or /W (composite
// fonts) table: the advance width recorded for one char-id, in glyph
// space (thousandths of text space em). A false return means the
// char-id has no recorded width; ShowText falls back to the glyph
// outline's own advance.
type WidthSource interface {
	Width(charID uint32) (width float64, ok bool)
}

// GlyphSource supplies glyph outlines for the font currently selected by
// 'Tf', scaled to a 1-unit em square (font matrix already applied).
type GlyphSource interface {
	Outline(gid glyph.ID) outline.Outline
}

// GlyphDrawer is the subset of the Backend contract glyph emission needs.
// Any concrete Backend implementation satisfies this structurally.
type GlyphDrawer interface {
	// DrawGlyph paints one glyph. glyphs is the font's outline source (the
	// same one ShowText itself uses for bbox accumulation), passed through
	// so a backend never needs its own independent font-program cache to
	// resolve what the text layer already resolved.
	DrawGlyph(font *pdffont.FontEntry, gid glyph.ID, glyphs GlyphSource, mode DrawMode, transform matrix.Matrix, clip ClipPathID) error
	AddText(span TextSpan, clip ClipPathID) error
	BugTextNoFont()
	BugTextInvisible()
}

// TextChar is one decoded glyph's contribution to a TextSpan.
type TextChar struct {
	ByteOffset int     // offset into TextSpan.Text where this glyph's text starts
	Pos        float64 // position along the span's advance before this glyph
	Advance    float64 // this glyph's advance, in text space units
}

// TextSpan is the accumulated result of one text-showing operator,
// emitted to the backend via AddText once the operator completes.
type TextSpan struct {
	Rect      pdf.Rectangle // loose rectangle in page coordinates
	BBox      pdf.Rectangle // tight bound over rendered glyph outlines
	HasBBox   bool
	Advance   float64
	FontSize  float64
	Font      *pdffont.FontEntry
	Text      string
	Chars     []TextChar
	Fill      pdfcolor.Fill
	Alpha     float64
	Mode      RenderMode
	Transform matrix.Matrix
	OpIndex   int
}

// TJItem is one element of a TextDrawAdjusted ('TJ') array operand: either
// a string to show or a numeric spacing adjustment.
type TJItem struct {
	Text     []byte
	Number   float64
	IsNumber bool
}

// ShowText implements the 'Tj'-family text-showing algorithm for a single
// string operand. ctm is the enclosing graphics state's current transform;
// fill/stroke are its resolved paints and style is its current stroke
// style, used according to the current rendering mode.
func (ts *TextState) ShowText(data []byte, opIndex int, widths WidthSource, glyphs GlyphSource, ctm matrix.Matrix, fill, stroke FillMode, style StrokeStyle, clip ClipPathID, sink GlyphDrawer) TextSpan {
	base := ts.Tm.Mul(ctm)
	span := ts.newSpan(opIndex, ctm, fill)
	ts.appendRun(data, &span, widths, glyphs, ctm, fill, stroke, style, clip, sink)
	finalizeRect(&span, base)
	return span
}

// ShowTextAdjusted implements 'TJ': text strings interleaved with numeric
// spacing adjustments.
func (ts *TextState) ShowTextAdjusted(items []TJItem, opIndex int, widths WidthSource, glyphs GlyphSource, ctm matrix.Matrix, fill, stroke FillMode, style StrokeStyle, clip ClipPathID, sink GlyphDrawer) TextSpan {
	base := ts.Tm.Mul(ctm)
	span := ts.newSpan(opIndex, ctm, fill)
	for _, it := range items {
		if it.IsNumber {
			adv := -0.001 * it.Number * ts.FontSize * ts.HorizScale
			ts.translateTm(adv)
			span.Advance += adv
			continue
		}
		ts.appendRun(it.Text, &span, widths, glyphs, ctm, fill, stroke, style, clip, sink)
	}
	finalizeRect(&span, base)
	return span
}

func (ts *TextState) newSpan(opIndex int, ctm matrix.Matrix, fill FillMode) TextSpan {
	return TextSpan{
		FontSize:  ts.FontSize,
		Font:      ts.Font,
		Fill:      fill.Fill,
		Alpha:     fill.Alpha,
		Mode:      ts.Mode,
		Transform: ts.textRenderMatrix(ctm),
		OpIndex:   opIndex,
	}
}

// textRenderMatrix computes T = Tr x Tm x ctm, where Tr scales by
// (horiz_scale x font_size, font_size) with a y-rise translation. The
// font-internal font matrix is not composed here: GlyphSource.Outline
// already returns outlines in a 1-unit em square.
func (ts *TextState) textRenderMatrix(ctm matrix.Matrix) matrix.Matrix {
	tr := matrix.Matrix{ts.HorizScale * ts.FontSize, 0, 0, ts.FontSize, 0, ts.Rise}
	return tr.Mul(ts.Tm).Mul(ctm)
}

func (ts *TextState) translateTm(tx float64) {
	ts.Tm = matrix.Matrix{1, 0, 0, 1, tx, 0}.Mul(ts.Tm)
}

// xScale approximates a transform's horizontal scale factor by measuring
// the image of a unit x-axis vector; used only as a fallback when a font
// has no recorded width for a char-id.
func xScale(T matrix.Matrix) float64 {
	origin := T.Apply(outline.Point{X: 0, Y: 0})
	unit := T.Apply(outline.Point{X: 1, Y: 0})
	return math.Hypot(unit.X-origin.X, unit.Y-origin.Y)
}

func decodeCharIDs(data []byte, isCID bool) []uint32 {
	if !isCID {
		ids := make([]uint32, len(data))
		for i, b := range data {
			ids[i] = uint32(b)
		}
		return ids
	}
	ids := make([]uint32, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		ids = append(ids, uint32(data[i])<<8|uint32(data[i+1]))
	}
	return ids
}

func (ts *TextState) appendRun(data []byte, span *TextSpan, widths WidthSource, glyphs GlyphSource, ctm matrix.Matrix, fill, stroke FillMode, style StrokeStyle, clip ClipPathID, sink GlyphDrawer) {
	isCID := ts.Font != nil && ts.Font.IsCID
	ids := decodeCharIDs(data, isCID)

	if ts.Font == nil && sink != nil && len(ids) > 0 {
		sink.BugTextNoFont()
	}

	for _, charID := range ids {
		entry := ts.Font.Lookup(charID)

		glyphWidth, haveWidth := 0.0, false
		if widths != nil {
			if w, ok := widths.Width(charID); ok {
				glyphWidth = w * 0.001 * ts.HorizScale * ts.FontSize
				haveWidth = true
			}
		}
		if !haveWidth && glyphs != nil {
			_, _, urx, _ := glyphs.Outline(entry.GID).Bounds()
			glyphWidth = urx * xScale(ts.textRenderMatrix(ctm))
		}

		isSpace := !isCID && entry.Unicode == " "

		var advance float64
		if isSpace {
			advance = (ts.CharSpace+ts.WordSpace)*ts.HorizScale + glyphWidth
		} else {
			advance = ts.CharSpace*ts.HorizScale + glyphWidth
		}

		byteOffset := len(span.Text)
		prePos := span.Advance

		if !isSpace {
			if kind, painted := ts.Mode.paints(); painted {
				T := ts.textRenderMatrix(ctm)
				mode := DrawMode{Kind: kind, Fill: fill, Stroke: stroke, Style: style, FillRule: outline.NonZero}
				if sink != nil {
					sink.DrawGlyph(ts.Font, entry.GID, glyphs, mode, T, clip)
				}
				if glyphs != nil {
					b := glyphs.Outline(entry.GID).Transform(T)
					span.growBBox(b)
				}
			} else if sink != nil {
				sink.BugTextInvisible()
			}
		}

		if entry.Unicode != "" {
			span.Text += entry.Unicode
		} else if isSpace {
			span.Text += " "
		}

		span.Chars = append(span.Chars, TextChar{ByteOffset: byteOffset, Pos: prePos, Advance: advance})
		span.Advance += advance

		ts.translateTm(advance)
	}
}

// finalizeRect computes the span's loose page-coordinate rectangle: the
// text-space box [0,advance] x [0,fontSize] mapped through the text/line
// matrix and CTM in effect when the operator began (before any per-glyph
// rise/scale is applied).
func finalizeRect(span *TextSpan, base matrix.Matrix) {
	corners := [4]outline.Point{
		{X: 0, Y: 0},
		{X: span.Advance, Y: 0},
		{X: span.Advance, Y: span.FontSize},
		{X: 0, Y: span.FontSize},
	}
	for i, c := range corners {
		p := base.Apply(c)
		if i == 0 {
			span.Rect = pdf.Rectangle{LLx: p.X, LLy: p.Y, URx: p.X, URy: p.Y}
			continue
		}
		span.Rect.LLx = min(span.Rect.LLx, p.X)
		span.Rect.LLy = min(span.Rect.LLy, p.Y)
		span.Rect.URx = max(span.Rect.URx, p.X)
		span.Rect.URy = max(span.Rect.URy, p.Y)
	}
}

func (s *TextSpan) growBBox(o outline.Outline) {
	if o.IsEmpty() {
		return
	}
	llx, lly, urx, ury := o.Bounds()
	if !s.HasBBox {
		s.BBox = pdf.Rectangle{LLx: llx, LLy: lly, URx: urx, URy: ury}
		s.HasBBox = true
		return
	}
	s.BBox = pdf.Rectangle{
		LLx: min(s.BBox.LLx, llx),
		LLy: min(s.BBox.LLy, lly),
		URx: max(s.BBox.URx, urx),
		URy: max(s.BBox.URy, ury),
	}
}
