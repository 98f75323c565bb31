package render

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pdfrender.dev/engine/backend/scene"
	"pdfrender.dev/engine/backend/trace"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
)

// memGetter is an in-memory pdf.Getter over a fixed object table, standing
// in for a real file parser the way the teacher's converter tests build a
// small in-process document rather than reading one off disk.
type memGetter struct {
	objects map[pdf.Reference]pdf.Object
	opts    pdf.Options
}

func newMemGetter() *memGetter {
	return &memGetter{objects: make(map[pdf.Reference]pdf.Object)}
}

func (g *memGetter) put(num uint32, obj pdf.Object) pdf.Reference {
	ref := pdf.Reference{Number: num}
	g.objects[ref] = obj
	return ref
}

func (g *memGetter) Get(ref pdf.Reference) (pdf.Object, error) {
	return g.objects[ref], nil
}

func (g *memGetter) Options() pdf.Options { return g.opts }

type byteStream []byte

func (s byteStream) ReadAll() ([]byte, error) { return []byte(s), nil }

func stream(data string) pdf.Stream {
	return pdf.Stream{Dict: pdf.Dict{}, Reader: byteStream(data)}
}

// buildPage assembles a one-page document: an indirect /Contents stream,
// an optional /Font resource naming the built-in Helvetica fallback, and
// the given MediaBox/Rotate. The standard-font directory is left blank,
// so font resolution falls through to pdffont's embedded Go font family.
func buildPage(t *testing.T, content string, rotate int) (*memGetter, pdf.Dict) {
	t.Helper()
	g := newMemGetter()

	fontDict := pdf.Dict{
		"Subtype":  pdf.Name("Type1"),
		"BaseFont": pdf.Name("Helvetica"),
	}
	fontRef := g.put(1, fontDict)

	contentRef := g.put(2, stream(content))

	page := pdf.Dict{
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(200), pdf.Integer(100)},
		"Resources": pdf.Dict{
			"Font": pdf.Dict{"F1": fontRef},
		},
		"Contents": contentRef,
	}
	if rotate != 0 {
		page["Rotate"] = pdf.Integer(rotate)
	}
	return g, page
}

func TestRenderSingleGlyphDrawsThroughScene(t *testing.T) {
	g, page := buildPage(t, "BT /F1 12 Tf 10 10 Td (A) Tj ET", 0)

	b := scene.New()
	if err := Render(g, page, 72, b, Options{}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(b.Text) != 1 {
		t.Fatalf("want 1 recorded text span, got %d", len(b.Text))
	}
	if b.Text[0].Text != "A" {
		t.Fatalf("want span text %q, got %q", "A", b.Text[0].Text)
	}
}

func TestRenderCMYKFillRecordsSolidPath(t *testing.T) {
	g, page := buildPage(t, "0 1 0 0 k 10 10 50 50 re f", 0)

	b := scene.New()
	if err := Render(g, page, 72, b, Options{}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(b.Paths) != 1 {
		t.Fatalf("want 1 recorded path, got %d", len(b.Paths))
	}
	fill, ok := b.Paths[0].Mode.Fill.Fill.(pdfcolor.FillSolid)
	if !ok {
		t.Fatalf("want FillSolid, got %T", b.Paths[0].Mode.Fill.Fill)
	}
	// Magenta (0 1 0 0) converts to device RGB (1, 0, 1).
	want := pdfcolor.FillSolid{R: 1, G: 0, B: 1, Alpha: 1}
	if diff := cmp.Diff(want, fill); diff != "" {
		t.Errorf("CMYK fill color (-want +got):\n%s", diff)
	}
}

func TestRenderSaveRestoreBalance(t *testing.T) {
	g, page := buildPage(t, "q 1 0 0 rg 0 0 10 10 re f Q 0 0 0 rg 20 20 10 10 re f", 0)

	b := scene.New()
	if err := Render(g, page, 72, b, Options{}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(b.Paths) != 2 {
		t.Fatalf("want 2 recorded paths, got %d", len(b.Paths))
	}
	second, ok := b.Paths[1].Mode.Fill.Fill.(pdfcolor.FillSolid)
	if !ok {
		t.Fatalf("want FillSolid, got %T", b.Paths[1].Mode.Fill.Fill)
	}
	// The color set inside q/Q must not leak past the matching Q.
	if second.R != 0 || second.G != 0 || second.B != 0 {
		t.Fatalf("want black after Q restores state, got (%v,%v,%v)", second.R, second.G, second.B)
	}
}

func TestRenderTJAdjustmentWidensAdvance(t *testing.T) {
	plainG, plainPage := buildPage(t, "BT /F1 12 Tf 0 0 Td [(AB)] TJ ET", 0)
	spacedG, spacedPage := buildPage(t, "BT /F1 12 Tf 0 0 Td [(A) -1000 (B)] TJ ET", 0)

	bp := trace.New()
	if err := Render(plainG, plainPage, 72, bp, Options{}, nil); err != nil {
		t.Fatalf("Render(plain): %v", err)
	}
	bs := trace.New()
	if err := Render(spacedG, spacedPage, 72, bs, Options{}, nil); err != nil {
		t.Fatalf("Render(spaced): %v", err)
	}

	if len(bp.Spans) != 1 || len(bs.Spans) != 1 {
		t.Fatalf("want one TJ span per operator, got %d and %d", len(bp.Spans), len(bs.Spans))
	}
	if bp.Spans[0].Text != "AB" || bs.Spans[0].Text != "AB" {
		t.Fatalf("want both spans to decode to %q, got %q and %q", "AB", bp.Spans[0].Text, bs.Spans[0].Text)
	}
	// A -1000/1000 em adjustment at 12pt font size inserts 12 units of
	// extra advance between the two glyphs, on top of their own widths.
	want := bp.Spans[0].Advance + 12
	if math.Abs(bs.Spans[0].Advance-want) > 1e-9 {
		t.Fatalf("want spaced advance %v (plain %v + 12 unit adjustment), got %v",
			want, bp.Spans[0].Advance, bs.Spans[0].Advance)
	}
}

func TestRenderIndexedColorResolvesPaletteEntry(t *testing.T) {
	g := newMemGetter()
	lookup := pdf.String([]byte{0, 0, 0, 255, 0, 0}) // index 0 black, index 1 red
	csArray := pdf.Array{pdf.Name("Indexed"), pdf.Name("DeviceRGB"), pdf.Integer(1), lookup}

	fontRef := g.put(1, pdf.Dict{"Subtype": pdf.Name("Type1"), "BaseFont": pdf.Name("Helvetica")})
	contentRef := g.put(2, stream("/CS0 cs 1 scn 10 10 50 50 re f"))

	page := pdf.Dict{
		"MediaBox": pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(200), pdf.Integer(100)},
		"Resources": pdf.Dict{
			"Font":       pdf.Dict{"F1": fontRef},
			"ColorSpace": pdf.Dict{"CS0": csArray},
		},
		"Contents": contentRef,
	}

	b := scene.New()
	if err := Render(g, page, 72, b, Options{}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(b.Paths) != 1 {
		t.Fatalf("want 1 recorded path, got %d", len(b.Paths))
	}
	fill, ok := b.Paths[0].Mode.Fill.Fill.(pdfcolor.FillSolid)
	if !ok {
		t.Fatalf("want FillSolid, got %T", b.Paths[0].Mode.Fill.Fill)
	}
	want := pdfcolor.FillSolid{R: 1, G: 0, B: 0, Alpha: 1}
	if diff := cmp.Diff(want, fill); diff != "" {
		t.Errorf("indexed palette entry 1 (-want +got):\n%s", diff)
	}
}

func TestRenderNestedClipIntersectsToSmallerRegion(t *testing.T) {
	g, page := buildPage(t, strings.Join([]string{
		"q",
		"0 0 80 80 re W n",
		"q",
		"40 40 80 80 re W n",
		"0 0 0 rg",
		"0 0 200 200 re f",
		"Q",
		"Q",
	}, "\n"), 0)

	b := scene.New()
	if err := Render(g, page, 72, b, Options{}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(b.Clips) != 2 {
		t.Fatalf("want 2 recorded clip regions, got %d", len(b.Clips))
	}
	if len(b.Paths) != 1 {
		t.Fatalf("want 1 recorded fill, got %d", len(b.Paths))
	}
	// The fill's clip handle must be the innermost (second) clip, whose
	// parent is the first, so a backend can intersect bounds up the chain.
	inner := b.Clips[1]
	if inner.Parent != b.Clips[0].ID {
		t.Fatalf("want inner clip's parent to be the outer clip, got parent %v want %v", inner.Parent, b.Clips[0].ID)
	}
	if b.Paths[0].Clip != inner.ID {
		t.Fatalf("want fill clipped by the innermost region, got %v want %v", b.Paths[0].Clip, inner.ID)
	}
}

func TestNormalizeRotation(t *testing.T) {
	cases := map[int]int{0: 0, 90: 90, 180: 180, 270: 270, 360: 0, 450: 90, -90: 270, 37: 0}
	for in, want := range cases {
		if got := normalizeRotation(in); got != want {
			t.Errorf("normalizeRotation(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestRootTransformRotation90SwapsDimensions(t *testing.T) {
	mb := pdf.Rectangle{URx: 200, URy: 100}
	w, h, _ := rootTransform(mb, 90, 72)
	if w != 100 || h != 200 {
		t.Fatalf("want a 90-degree rotation to swap width/height to (100,200), got (%d,%d)", w, h)
	}
}

func TestRootTransformAppliesDPIScale(t *testing.T) {
	mb := pdf.Rectangle{URx: 200, URy: 100}
	w, h, _ := rootTransform(mb, 0, 144)
	if w != 400 || h != 200 {
		t.Fatalf("want 144 DPI to double a 72-DPI-native page, got (%d,%d)", w, h)
	}
}

func TestRenderMissingMediaBoxFallsBackToLetter(t *testing.T) {
	g := newMemGetter()
	fontRef := g.put(1, pdf.Dict{"Subtype": pdf.Name("Type1"), "BaseFont": pdf.Name("Helvetica")})
	contentRef := g.put(2, stream(""))
	page := pdf.Dict{
		"Resources": pdf.Dict{"Font": pdf.Dict{"F1": fontRef}},
		"Contents":  contentRef,
	}

	b := scene.New()
	if err := Render(g, page, 72, b, Options{}, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b.ViewBox.URx != 612 || b.ViewBox.URy != 792 {
		t.Fatalf("want US Letter fallback viewbox, got %+v", b.ViewBox)
	}
}
