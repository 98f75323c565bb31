package pdffunc

import (
	"fmt"

	"pdfrender.dev/engine/pdf"
)

// Build resolves obj into a concrete pdf.Function, dispatching on its
// /FunctionType entry. obj may be a Dict (types 2 and 3) or a Stream whose
// dict carries the same keys (types 0 and 4). An Array of functions, as
// PDF allows for Separation/DeviceN tint transforms with one function per
// output component, is not supported: Build returns an error for it, and
// pdfcolor passes that error on.
func Build(r pdf.Getter, obj pdf.Object) (pdf.Function, error) {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}

	var dict pdf.Dict
	var stream *pdf.Stream
	switch x := resolved.(type) {
	case pdf.Dict:
		dict = x
	case pdf.Stream:
		dict = x.Dict
		stream = &x
	default:
		return nil, fmt.Errorf("pdffunc: expected function dict or stream, got %T", resolved)
	}

	ft, err := pdf.GetNumber(r, dict["FunctionType"])
	if err != nil {
		return nil, err
	}
	domain, err := pdf.GetFloatArray(r, dict["Domain"])
	if err != nil {
		return nil, err
	}

	switch int(ft) {
	case 0:
		return buildType0(r, dict, stream, domain)
	case 2:
		return buildType2(r, dict, domain)
	case 3:
		return buildType3(r, dict, domain)
	case 4:
		return buildType4(r, dict, stream, domain)
	default:
		return nil, fmt.Errorf("pdffunc: unsupported function type %d", int(ft))
	}
}

func buildType0(r pdf.Getter, dict pdf.Dict, stream *pdf.Stream, domain []float64) (pdf.Function, error) {
	if stream == nil {
		return nil, fmt.Errorf("pdffunc: type 0 function requires a stream")
	}
	rng, err := pdf.GetFloatArray(r, dict["Range"])
	if err != nil {
		return nil, err
	}
	sizeArr, err := pdf.GetFloatArray(r, dict["Size"])
	if err != nil {
		return nil, err
	}
	size := make([]int, len(sizeArr))
	for i, v := range sizeArr {
		size[i] = int(v)
	}
	bps, err := pdf.GetNumber(r, dict["BitsPerSample"])
	if err != nil {
		return nil, err
	}
	encode, err := pdf.GetFloatArray(r, dict["Encode"])
	if err != nil {
		return nil, err
	}
	decode, err := pdf.GetFloatArray(r, dict["Decode"])
	if err != nil {
		return nil, err
	}
	data, err := stream.Reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("pdffunc: reading type 0 sample data: %w", err)
	}
	return &Type0{
		XDomain: domain,
		Range:   rng,
		Size:    size,
		BPS:     int(bps),
		Encode:  encode,
		Decode:  decode,
		Samples: data,
	}, nil
}

func buildType2(r pdf.Getter, dict pdf.Dict, domain []float64) (pdf.Function, error) {
	n, err := pdf.GetNumber(r, dict["N"])
	if err != nil {
		return nil, err
	}
	c0, err := pdf.GetFloatArray(r, dict["C0"])
	if err != nil {
		return nil, err
	}
	c1, err := pdf.GetFloatArray(r, dict["C1"])
	if err != nil {
		return nil, err
	}
	var xd [2]float64
	if len(domain) >= 2 {
		xd = [2]float64{domain[0], domain[1]}
	} else {
		xd = [2]float64{0, 1}
	}
	return &Type2{XDomain: xd, N: float64(n), C0: c0, C1: c1}, nil
}

func buildType3(r pdf.Getter, dict pdf.Dict, domain []float64) (pdf.Function, error) {
	fnArr, err := pdf.GetArray(r, dict["Functions"])
	if err != nil {
		return nil, err
	}
	fns := make([]pdf.Function, len(fnArr))
	for i, fo := range fnArr {
		fn, err := Build(r, fo)
		if err != nil {
			return nil, fmt.Errorf("pdffunc: stitching function %d: %w", i, err)
		}
		fns[i] = fn
	}
	bounds, err := pdf.GetFloatArray(r, dict["Bounds"])
	if err != nil {
		return nil, err
	}
	encode, err := pdf.GetFloatArray(r, dict["Encode"])
	if err != nil {
		return nil, err
	}
	var xd [2]float64
	if len(domain) >= 2 {
		xd = [2]float64{domain[0], domain[1]}
	} else {
		xd = [2]float64{0, 1}
	}
	return &Type3{XDomain: xd, Functions: fns, Bounds: bounds, Encode: encode}, nil
}

func buildType4(r pdf.Getter, dict pdf.Dict, stream *pdf.Stream, domain []float64) (pdf.Function, error) {
	if stream == nil {
		return nil, fmt.Errorf("pdffunc: type 4 function requires a stream")
	}
	rng, err := pdf.GetFloatArray(r, dict["Range"])
	if err != nil {
		return nil, err
	}
	src, err := stream.Reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("pdffunc: reading type 4 program: %w", err)
	}
	prog, err := ParseType4Program(stripOuterBraces(src))
	if err != nil {
		return nil, err
	}
	return &Type4{XDomain: domain, Range: rng, Program: prog}, nil
}

// stripOuterBraces removes the PostScript procedure delimiters { ... }
// wrapping a type 4 function body, if present.
func stripOuterBraces(src []byte) []byte {
	start, end := 0, len(src)
	for start < end && (src[start] == ' ' || src[start] == '\n' || src[start] == '\r' || src[start] == '\t') {
		start++
	}
	for end > start && (src[end-1] == ' ' || src[end-1] == '\n' || src[end-1] == '\r' || src[end-1] == '\t') {
		end--
	}
	if start < end && src[start] == '{' && src[end-1] == '}' {
		return src[start+1 : end-1]
	}
	return src[start:end]
}
