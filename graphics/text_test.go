package graphics

import (
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/sfnt/glyph"

	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/pdffont"
)

func solidFill() FillMode {
	return FillMode{Fill: pdfcolor.Solid(0, 0, 0), Alpha: 1}
}

type fakeWidths map[uint32]float64

func (w fakeWidths) Width(charID uint32) (float64, bool) {
	v, ok := w[charID]
	return v, ok
}

type fakeGlyphs struct{}

func (fakeGlyphs) Outline(gid glyph.ID) outline.Outline {
	if gid == 0 {
		return outline.Outline{}
	}
	b := outline.NewBuilder()
	b.MoveTo(outline.Point{X: 0, Y: 0})
	b.LineTo(outline.Point{X: 1, Y: 0})
	b.LineTo(outline.Point{X: 1, Y: 1})
	b.LineTo(outline.Point{X: 0, Y: 1})
	b.ClosePath()
	return b.Outline()
}

type drawCall struct {
	gid       glyph.ID
	mode      DrawMode
	transform matrix.Matrix
}

type fakeSink struct {
	draws              []drawCall
	texts              []TextSpan
	noFontN, invisibleN int
}

func (s *fakeSink) DrawGlyph(font *pdffont.FontEntry, gid glyph.ID, glyphs GlyphSource, mode DrawMode, transform matrix.Matrix, clip ClipPathID) error {
	s.draws = append(s.draws, drawCall{gid, mode, transform})
	return nil
}

func (s *fakeSink) AddText(span TextSpan, clip ClipPathID) error {
	s.texts = append(s.texts, span)
	return nil
}

func (s *fakeSink) BugTextNoFont()    { s.noFontN++ }
func (s *fakeSink) BugTextInvisible() { s.invisibleN++ }

func simpleFont(cmap map[uint32]pdffont.CMapEntry) *pdffont.FontEntry {
	return &pdffont.FontEntry{CMap: cmap, PSName: "Test"}
}

func TestShowTextSingleGlyph(t *testing.T) {
	ts := NewTextState()
	ts.Font = simpleFont(map[uint32]pdffont.CMapEntry{65: {GID: 1, Unicode: "A"}})
	ts.FontSize = 10

	sink := &fakeSink{}
	widths := fakeWidths{65: 500}
	span := ts.ShowText([]byte("A"), 0, widths, fakeGlyphs{}, matrix.Identity, solidFill(), solidFill(), DefaultStrokeStyle(), 0, sink)

	if len(sink.draws) != 1 {
		t.Fatalf("DrawGlyph called %d times, want 1", len(sink.draws))
	}
	if sink.draws[0].gid != 1 {
		t.Errorf("drew gid %d, want 1", sink.draws[0].gid)
	}
	if span.Text != "A" {
		t.Errorf("span.Text = %q, want %q", span.Text, "A")
	}
	if len(span.Chars) != 1 {
		t.Fatalf("len(span.Chars) = %d, want 1", len(span.Chars))
	}
	wantAdvance := 500 * 0.001 * 10.0
	if span.Advance != wantAdvance {
		t.Errorf("span.Advance = %v, want %v", span.Advance, wantAdvance)
	}
}

func TestShowTextSpaceDoesNotDraw(t *testing.T) {
	ts := NewTextState()
	ts.Font = simpleFont(map[uint32]pdffont.CMapEntry{32: {GID: 3, Unicode: " "}})
	ts.FontSize = 10
	ts.CharSpace = 1
	ts.WordSpace = 2

	sink := &fakeSink{}
	widths := fakeWidths{32: 200}
	span := ts.ShowText([]byte(" "), 0, widths, fakeGlyphs{}, matrix.Identity, solidFill(), solidFill(), DefaultStrokeStyle(), 0, sink)

	if len(sink.draws) != 0 {
		t.Errorf("DrawGlyph called %d times for a space, want 0", len(sink.draws))
	}
	if span.Text != " " {
		t.Errorf("span.Text = %q, want a single space", span.Text)
	}
	wantAdvance := (1+2)*1.0 + 200*0.001*10.0
	if span.Advance != wantAdvance {
		t.Errorf("span.Advance = %v, want %v", span.Advance, wantAdvance)
	}
}

func TestShowTextAdjustedSpacing(t *testing.T) {
	ts := NewTextState()
	ts.Font = simpleFont(map[uint32]pdffont.CMapEntry{
		'o': {GID: 1, Unicode: "o"},
		'W': {GID: 2, Unicode: "W"},
	})
	ts.FontSize = 10

	sink := &fakeSink{}
	widths := fakeWidths{'o': 500, 'W': 800}
	items := []TJItem{
		{Text: []byte("o")},
		{Number: -250, IsNumber: true},
		{Text: []byte("W")},
	}
	span := ts.ShowTextAdjusted(items, 0, widths, fakeGlyphs{}, matrix.Identity, solidFill(), solidFill(), DefaultStrokeStyle(), 0, sink)

	if span.Text != "oW" {
		t.Fatalf("span.Text = %q, want %q", span.Text, "oW")
	}
	gotGap := span.Chars[1].Pos - (span.Chars[0].Pos + span.Chars[0].Advance)
	wantGap := 0.001 * 250 * 10.0
	if gotGap != wantGap {
		t.Errorf("gap between chars = %v, want %v", gotGap, wantGap)
	}
}

func TestShowTextInvisibleModeSkipsDrawing(t *testing.T) {
	ts := NewTextState()
	ts.Font = simpleFont(map[uint32]pdffont.CMapEntry{65: {GID: 1, Unicode: "A"}})
	ts.FontSize = 10
	ts.Mode = RenderInvisible

	sink := &fakeSink{}
	ts.ShowText([]byte("A"), 0, fakeWidths{65: 500}, fakeGlyphs{}, matrix.Identity, solidFill(), solidFill(), DefaultStrokeStyle(), 0, sink)

	if len(sink.draws) != 0 {
		t.Errorf("DrawGlyph called %d times in invisible mode, want 0", len(sink.draws))
	}
	if sink.invisibleN != 1 {
		t.Errorf("BugTextInvisible called %d times, want 1", sink.invisibleN)
	}
}

func TestShowTextNoFontReportsBug(t *testing.T) {
	ts := NewTextState()
	ts.FontSize = 10
	sink := &fakeSink{}
	ts.ShowText([]byte("A"), 0, fakeWidths{}, fakeGlyphs{}, matrix.Identity, solidFill(), solidFill(), DefaultStrokeStyle(), 0, sink)

	if sink.noFontN != 1 {
		t.Errorf("BugTextNoFont called %d times, want 1", sink.noFontN)
	}
}

func TestDecodeCharIDs(t *testing.T) {
	simple := decodeCharIDs([]byte{0x41, 0x42}, false)
	if len(simple) != 2 || simple[0] != 0x41 || simple[1] != 0x42 {
		t.Errorf("decodeCharIDs(simple) = %v", simple)
	}

	cid := decodeCharIDs([]byte{0x01, 0x02, 0x03, 0x04}, true)
	if len(cid) != 2 || cid[0] != 0x0102 || cid[1] != 0x0304 {
		t.Errorf("decodeCharIDs(cid) = %v", cid)
	}
}
