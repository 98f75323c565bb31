package pdfcolor

import (
	"bytes"
	"fmt"

	"seehuhn.de/go/icc"

	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdffunc"
	"pdfrender.dev/engine/rendererr"
)

// Resources is the subset of a page's /Resources dictionary that color
// space resolution needs: named color spaces and named patterns. The
// content-stream interpreter's resource cache satisfies this interface
// without pdfcolor importing it back.
type Resources interface {
	ColorSpace(name pdf.Name) (pdf.Object, error)
	Pattern(name pdf.Name) (pdf.Object, error)
}

// Space is a resolved PDF color space: something that knows how many tint
// components it takes and how to turn a tint value into a Fill.
type Space interface {
	NumComponents() int
	ToFill(r pdf.Getter, components []float64, mode BlendMode) (Fill, error)
}

// IsIndexed reports whether sp is an Indexed color space. Indexed's single
// component is a raw palette index rather than a normalized [0,1] tint
// value, which image decoding (rasterimg) needs to know before scaling
// raw sample bits.
func IsIndexed(sp Space) bool {
	_, ok := sp.(indexedSpace)
	return ok
}

// ResolveSpace resolves a PDF color-space object (a Name for the Device
// and Pattern families, or an Array for parameterized families) into a
// Space, recursing through Named, Indexed, Separation, DeviceN, and ICC
// alternates.
func ResolveSpace(r pdf.Getter, obj pdf.Object, res Resources) (Space, error) {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	switch x := resolved.(type) {
	case pdf.Name:
		return resolveDeviceName(r, x, res)
	case pdf.Array:
		if len(x) == 0 {
			return nil, &rendererr.Unimplemented{What: "empty color space array"}
		}
		family, err := pdf.GetName(r, x[0])
		if err != nil {
			return nil, err
		}
		return resolveFamily(r, family, x, res)
	default:
		return nil, fmt.Errorf("pdfcolor: color space must be a name or array, got %T", resolved)
	}
}

func resolveDeviceName(r pdf.Getter, name pdf.Name, res Resources) (Space, error) {
	switch name {
	case "DeviceGray", "CalGray", "G":
		return deviceGraySpace{}, nil
	case "DeviceRGB", "CalRGB", "RGB":
		return deviceRGBSpace{}, nil
	case "DeviceCMYK", "CalCMYK", "CMYK":
		return deviceCMYKSpace{}, nil
	case "Pattern":
		return patternSpace{}, nil
	default:
		obj, err := res.ColorSpace(name)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			return nil, &rendererr.MissingResource{Kind: "ColorSpace", Name: string(name)}
		}
		return ResolveSpace(r, obj, res)
	}
}

func resolveFamily(r pdf.Getter, family pdf.Name, arr pdf.Array, res Resources) (Space, error) {
	switch family {
	case "CalGray":
		return deviceGraySpace{}, nil
	case "CalRGB":
		return deviceRGBSpace{}, nil
	case "CalCMYK":
		return deviceCMYKSpace{}, nil
	case "ICCBased":
		return resolveICC(r, arr, res)
	case "Indexed":
		return resolveIndexed(r, arr, res)
	case "Separation":
		return resolveSeparation(r, arr, res)
	case "DeviceN":
		return resolveDeviceN(r, arr, res)
	case "Pattern":
		var under Space = nil
		if len(arr) > 1 {
			var err error
			under, err = ResolveSpace(r, arr[1], res)
			if err != nil {
				return nil, err
			}
		}
		return patternSpace{Underlying: under}, nil
	default:
		return nil, &rendererr.Unimplemented{What: "color space family " + string(family)}
	}
}

// --- DeviceGray / DeviceRGB / DeviceCMYK ---

type deviceGraySpace struct{}

func (deviceGraySpace) NumComponents() int { return 1 }

func (deviceGraySpace) ToFill(r pdf.Getter, c []float64, mode BlendMode) (Fill, error) {
	if len(c) < 1 {
		return nil, fmt.Errorf("pdfcolor: DeviceGray requires 1 component")
	}
	g := c[0]
	return FillSolid{R: g, G: g, B: g, Alpha: 1}, nil
}

type deviceRGBSpace struct{}

func (deviceRGBSpace) NumComponents() int { return 3 }

func (deviceRGBSpace) ToFill(r pdf.Getter, c []float64, mode BlendMode) (Fill, error) {
	if len(c) < 3 {
		return nil, fmt.Errorf("pdfcolor: DeviceRGB requires 3 components")
	}
	return FillSolid{R: c[0], G: c[1], B: c[2], Alpha: 1}, nil
}

type deviceCMYKSpace struct{}

func (deviceCMYKSpace) NumComponents() int { return 4 }

func (deviceCMYKSpace) ToFill(r pdf.Getter, c []float64, mode BlendMode) (Fill, error) {
	if len(c) < 4 {
		return nil, fmt.Errorf("pdfcolor: DeviceCMYK requires 4 components")
	}
	rr, g, b := CMYKToRGB(c[0], c[1], c[2], c[3], mode)
	return FillSolid{R: rr, G: g, B: b, Alpha: 1}, nil
}

// --- ICCBased ---

type iccSpace struct {
	n         int
	alternate Space
}

func (s iccSpace) NumComponents() int { return s.n }

func (s iccSpace) ToFill(r pdf.Getter, c []float64, mode BlendMode) (Fill, error) {
	return s.alternate.ToFill(r, c, mode)
}

func resolveICC(r pdf.Getter, arr pdf.Array, res Resources) (Space, error) {
	if len(arr) < 2 {
		return nil, fmt.Errorf("pdfcolor: ICCBased array too short")
	}
	streamObj, err := pdf.Resolve(r, arr[1])
	if err != nil {
		return nil, err
	}
	stream, ok := streamObj.(pdf.Stream)
	if !ok {
		return nil, fmt.Errorf("pdfcolor: ICCBased stream missing")
	}

	n, err := pdf.GetNumber(r, stream.Dict["N"])
	if err != nil {
		return nil, err
	}

	// The sRGB profile is common enough in the wild to recognize by exact
	// byte match and skip straight to its known 3-component alternate,
	// rather than round-tripping through the general /N-based fallback.
	if profileData, rerr := stream.Reader.ReadAll(); rerr == nil {
		if bytes.Equal(profileData, icc.SRGBv2Profile) || bytes.Equal(profileData, icc.SRGBv4Profile) {
			return iccSpace{n: 3, alternate: deviceRGBSpace{}}, nil
		}
	}

	if altObj, ok := stream.Dict["Alternate"]; ok {
		if altArr, aerr := pdf.GetArray(r, altObj); aerr == nil && len(altArr) > 0 {
			if fam, _ := pdf.GetName(r, altArr[0]); fam == "ICCBased" {
				return nil, &rendererr.Unimplemented{What: "nested ICC color space"}
			}
		}
		alt, err := ResolveSpace(r, altObj, res)
		if err == nil {
			return iccSpace{n: int(n), alternate: alt}, nil
		}
	}

	alt, err := deviceSpaceForComponentCount(int(n))
	if err != nil {
		return nil, err
	}
	return iccSpace{n: int(n), alternate: alt}, nil
}

func deviceSpaceForComponentCount(n int) (Space, error) {
	switch n {
	case 1:
		return deviceGraySpace{}, nil
	case 3:
		return deviceRGBSpace{}, nil
	case 4:
		return deviceCMYKSpace{}, nil
	default:
		return nil, &rendererr.Unimplemented{What: fmt.Sprintf("ICC profile with %d components", n)}
	}
}

// --- Indexed ---

type indexedSpace struct {
	base   Space
	hival  int
	lookup []byte
}

func (s indexedSpace) NumComponents() int { return 1 }

func (s indexedSpace) ToFill(r pdf.Getter, c []float64, mode BlendMode) (Fill, error) {
	if len(c) < 1 {
		return nil, fmt.Errorf("pdfcolor: Indexed requires 1 component")
	}
	idx := int(c[0] + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx > s.hival {
		idx = s.hival
	}
	k := s.base.NumComponents()
	start := idx * k
	if start+k > len(s.lookup) {
		return nil, &rendererr.InvalidImageData{Err: fmt.Errorf("indexed lookup out of range for index %d", idx)}
	}
	comps := make([]float64, k)
	for i := 0; i < k; i++ {
		comps[i] = float64(s.lookup[start+i]) / 255
	}
	return s.base.ToFill(r, comps, mode)
}

func resolveIndexed(r pdf.Getter, arr pdf.Array, res Resources) (Space, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("pdfcolor: Indexed array too short")
	}
	base, err := ResolveSpace(r, arr[1], res)
	if err != nil {
		return nil, err
	}
	hival, err := pdf.GetNumber(r, arr[2])
	if err != nil {
		return nil, err
	}
	lookup, err := lookupBytes(r, arr[3])
	if err != nil {
		return nil, err
	}
	return indexedSpace{base: base, hival: int(hival), lookup: lookup}, nil
}

func lookupBytes(r pdf.Getter, obj pdf.Object) ([]byte, error) {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := resolved.(type) {
	case pdf.String:
		return []byte(x), nil
	case pdf.Stream:
		return x.Reader.ReadAll()
	default:
		return nil, fmt.Errorf("pdfcolor: Indexed lookup must be a string or stream, got %T", resolved)
	}
}

// --- Separation / DeviceN ---

type tintSpace struct {
	numIn int
	alt   Space
	tint  pdf.Function
}

func (s tintSpace) NumComponents() int { return s.numIn }

func (s tintSpace) ToFill(r pdf.Getter, c []float64, mode BlendMode) (Fill, error) {
	if len(c) < s.numIn {
		return nil, fmt.Errorf("pdfcolor: tint function needs %d components, got %d", s.numIn, len(c))
	}
	out := s.tint.Apply(c[:s.numIn]...)
	return s.alt.ToFill(r, out, mode)
}

func resolveSeparation(r pdf.Getter, arr pdf.Array, res Resources) (Space, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("pdfcolor: Separation array too short")
	}
	alt, err := ResolveSpace(r, arr[2], res)
	if err != nil {
		return nil, err
	}
	tint, err := pdffunc.Build(r, arr[3])
	if err != nil {
		return nil, err
	}
	return tintSpace{numIn: 1, alt: alt, tint: tint}, nil
}

func resolveDeviceN(r pdf.Getter, arr pdf.Array, res Resources) (Space, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("pdfcolor: DeviceN array too short")
	}
	names, err := pdf.GetArray(r, arr[1])
	if err != nil {
		return nil, err
	}
	alt, err := ResolveSpace(r, arr[2], res)
	if err != nil {
		return nil, err
	}
	tint, err := pdffunc.Build(r, arr[3])
	if err != nil {
		return nil, err
	}
	return tintSpace{numIn: len(names), alt: alt, tint: tint}, nil
}

// --- Pattern ---

type patternSpace struct {
	Underlying Space
}

func (s patternSpace) NumComponents() int {
	if s.Underlying != nil {
		return s.Underlying.NumComponents()
	}
	return 0
}

func (s patternSpace) ToFill(r pdf.Getter, c []float64, mode BlendMode) (Fill, error) {
	return nil, fmt.Errorf("pdfcolor: pattern space requires a pattern name, use ResolvePattern")
}

// ResolvePattern resolves the 'scn'/'SCN' pattern-name operand into a
// FillPattern, recursing into the underlying color space for uncolored
// tiling patterns.
func ResolvePattern(r pdf.Getter, name pdf.Name, underComponents []float64, space Space, res Resources, mode BlendMode) (Fill, error) {
	obj, err := res.Pattern(name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, &rendererr.MissingResource{Kind: "Pattern", Name: string(name)}
	}

	ps, _ := space.(patternSpace)
	ref := PatternRef{Name: string(name)}

	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := resolved.(type) {
	case pdf.Stream:
		pt, err := pdf.GetNumber(r, x.Dict["PatternType"])
		if err == nil {
			ref.Shading = int(pt) == 2
		}
	case pdf.Dict:
		pt, err := pdf.GetNumber(r, x["PatternType"])
		if err == nil {
			ref.Shading = int(pt) == 2
		}
	}

	if ps.Underlying != nil && len(underComponents) > 0 {
		fill, err := ps.Underlying.ToFill(r, underComponents, mode)
		if err != nil {
			return nil, err
		}
		ref.Underlying = fill
	}

	return FillPattern{Ref: ref}, nil
}
