package rasterimg

import (
	"testing"

	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
)

type fakeGetter struct{}

func (fakeGetter) Get(ref pdf.Reference) (pdf.Object, error) { return nil, nil }
func (fakeGetter) Options() pdf.Options                      { return pdf.Options{} }

type grayOnly struct{}

func (grayOnly) NumComponents() int { return 1 }
func (grayOnly) ToFill(r pdf.Getter, c []float64, mode pdfcolor.BlendMode) (pdfcolor.Fill, error) {
	return pdfcolor.FillSolid{R: c[0], G: c[0], B: c[0], Alpha: 1}, nil
}

func TestDecodeDeviceGray1Bit(t *testing.T) {
	// 2x1 image, 1 bit per component: bit 1 -> white, bit 0 -> black.
	// Packed MSB-first: 0b10000000 -> [1, 0] for the first two pixels.
	src := Source{
		Width:            2,
		Height:           1,
		BitsPerComponent: 1,
		Space:            grayOnly{},
		Data:             []byte{0b10000000},
	}
	img, err := Decode(fakeGetter{}, src, nil, pdfcolor.Overlay)
	if err != nil {
		t.Fatal(err)
	}
	if img.At(0, 0) != (RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel 0 = %+v, want white", img.At(0, 0))
	}
	if img.At(1, 0) != (RGBA{0, 0, 0, 255}) {
		t.Errorf("pixel 1 = %+v, want black", img.At(1, 0))
	}
}

func TestDecodeNoSoftMaskIsOpaque(t *testing.T) {
	src := Source{
		Width: 1, Height: 1, BitsPerComponent: 8,
		Space: grayOnly{},
		Data:  []byte{128},
	}
	img, err := Decode(fakeGetter{}, src, nil, pdfcolor.Overlay)
	if err != nil {
		t.Fatal(err)
	}
	if img.At(0, 0).A != 255 {
		t.Errorf("alpha = %d, want 255 (no mask)", img.At(0, 0).A)
	}
}

func TestDecodeSoftMaskSameDimensions(t *testing.T) {
	src := Source{
		Width: 1, Height: 1, BitsPerComponent: 8,
		Space: grayOnly{},
		Data:  []byte{255},
	}
	mask := &SoftMask{Width: 1, Height: 1, BitsPerComponent: 8, Data: []byte{64}}
	img, err := Decode(fakeGetter{}, src, mask, pdfcolor.Overlay)
	if err != nil {
		t.Fatal(err)
	}
	if img.At(0, 0).A != 64 {
		t.Errorf("alpha = %d, want 64", img.At(0, 0).A)
	}
}

func TestDecodeShortDataIsInvalid(t *testing.T) {
	src := Source{
		Width: 4, Height: 4, BitsPerComponent: 8,
		Space: grayOnly{},
		Data:  []byte{1, 2},
	}
	_, err := Decode(fakeGetter{}, src, nil, pdfcolor.Overlay)
	if err == nil {
		t.Fatal("expected error for short data")
	}
}

func TestDecodeIndexedUsesRawIndex(t *testing.T) {
	g := fakeGetter{}
	res := struct {
		spaces   map[pdf.Name]pdf.Object
		patterns map[pdf.Name]pdf.Object
	}{}
	_ = res
	arr := pdf.Array{
		pdf.Name("Indexed"),
		pdf.Name("DeviceRGB"),
		pdf.Integer(1),
		pdf.String([]byte{10, 20, 30, 200, 210, 220}),
	}
	space, err := pdfcolor.ResolveSpace(g, arr, noResources{})
	if err != nil {
		t.Fatal(err)
	}
	src := Source{
		Width: 2, Height: 1, BitsPerComponent: 8,
		Space: space,
		Data:  []byte{0, 1},
	}
	img, err := Decode(g, src, nil, pdfcolor.Overlay)
	if err != nil {
		t.Fatal(err)
	}
	if img.At(0, 0) != (RGBA{10, 20, 30, 255}) {
		t.Errorf("index 0 = %+v, want {10 20 30 255}", img.At(0, 0))
	}
	if img.At(1, 0) != (RGBA{200, 210, 220, 255}) {
		t.Errorf("index 1 = %+v, want {200 210 220 255}", img.At(1, 0))
	}
}

type noResources struct{}

func (noResources) ColorSpace(name pdf.Name) (pdf.Object, error) { return nil, nil }
func (noResources) Pattern(name pdf.Name) (pdf.Object, error)    { return nil, nil }
