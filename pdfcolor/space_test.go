package pdfcolor

import (
	"math"
	"testing"

	"pdfrender.dev/engine/pdf"
)

type fakeGetter struct {
	objs map[pdf.Reference]pdf.Object
}

func (g *fakeGetter) Get(ref pdf.Reference) (pdf.Object, error) { return g.objs[ref], nil }
func (g *fakeGetter) Options() pdf.Options                      { return pdf.Options{} }

type fakeResources struct {
	spaces   map[pdf.Name]pdf.Object
	patterns map[pdf.Name]pdf.Object
}

func (r *fakeResources) ColorSpace(name pdf.Name) (pdf.Object, error) { return r.spaces[name], nil }
func (r *fakeResources) Pattern(name pdf.Name) (pdf.Object, error)    { return r.patterns[name], nil }

func closeF(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestResolveDeviceGray(t *testing.T) {
	g := &fakeGetter{}
	res := &fakeResources{}
	sp, err := ResolveSpace(g, pdf.Name("DeviceGray"), res)
	if err != nil {
		t.Fatal(err)
	}
	fill, err := sp.ToFill(g, []float64{0.5}, Overlay)
	if err != nil {
		t.Fatal(err)
	}
	solid, ok := fill.(FillSolid)
	if !ok || !closeF(solid.R, 0.5) || !closeF(solid.G, 0.5) || !closeF(solid.B, 0.5) {
		t.Errorf("Fill = %#v, want solid gray 0.5", fill)
	}
}

func TestCMYKToRGBDarkenVsOverlay(t *testing.T) {
	rD, gD, bD := CMYKToRGB(0.2, 0.3, 0.4, 0.1, Darken)
	rO, gO, bO := CMYKToRGB(0.2, 0.3, 0.4, 0.1, Overlay)

	if !closeF(rD, 1-math.Min(1, 0.2+0.1)) {
		t.Errorf("Darken R = %v", rD)
	}
	if !closeF(rO, (1-0.2)*(1-0.1)) {
		t.Errorf("Overlay R = %v", rO)
	}
	if closeF(rD, rO) && closeF(gD, gO) && closeF(bD, bO) {
		t.Error("Darken and Overlay should generally diverge for non-trivial CMYK")
	}
}

func TestResolveIndexedDeviceRGB(t *testing.T) {
	g := &fakeGetter{}
	res := &fakeResources{}
	arr := pdf.Array{
		pdf.Name("Indexed"),
		pdf.Name("DeviceRGB"),
		pdf.Integer(1),
		pdf.String([]byte{0, 0, 0, 255, 255, 255}),
	}
	sp, err := ResolveSpace(g, arr, res)
	if err != nil {
		t.Fatal(err)
	}
	if sp.NumComponents() != 1 {
		t.Errorf("NumComponents = %d, want 1", sp.NumComponents())
	}
	fill, err := sp.ToFill(g, []float64{1}, Overlay)
	if err != nil {
		t.Fatal(err)
	}
	solid := fill.(FillSolid)
	if !closeF(solid.R, 1) || !closeF(solid.G, 1) || !closeF(solid.B, 1) {
		t.Errorf("index 1 = %#v, want white", solid)
	}
}

func TestResolveSeparation(t *testing.T) {
	g := &fakeGetter{objs: map[pdf.Reference]pdf.Object{}}
	res := &fakeResources{}

	// tint transform: Type2 N=1 from C0=1 to C1=0, so full tint maps to gray 0
	fnDict := pdf.Dict{
		"FunctionType": pdf.Integer(2),
		"Domain":       pdf.Array{pdf.Real(0), pdf.Real(1)},
		"N":            pdf.Integer(1),
		"C0":           pdf.Array{pdf.Real(1)},
		"C1":           pdf.Array{pdf.Real(0)},
	}
	arr := pdf.Array{
		pdf.Name("Separation"),
		pdf.Name("Spot"),
		pdf.Name("DeviceGray"),
		fnDict,
	}
	sp, err := ResolveSpace(g, arr, res)
	if err != nil {
		t.Fatal(err)
	}
	if sp.NumComponents() != 1 {
		t.Errorf("NumComponents = %d, want 1", sp.NumComponents())
	}
	fill, err := sp.ToFill(g, []float64{1}, Overlay)
	if err != nil {
		t.Fatal(err)
	}
	solid := fill.(FillSolid)
	if !closeF(solid.R, 0) {
		t.Errorf("full tint should map to black via C1, got %#v", solid)
	}
}

func TestResolveNamedColorSpaceMissing(t *testing.T) {
	g := &fakeGetter{}
	res := &fakeResources{spaces: map[pdf.Name]pdf.Object{}}
	_, err := ResolveSpace(g, pdf.Name("CS0"), res)
	if err == nil {
		t.Fatal("expected MissingResource error")
	}
}
