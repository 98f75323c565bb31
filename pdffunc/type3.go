package pdffunc

import "pdfrender.dev/engine/pdf"

// Type3 is the stitching function: it partitions its single input's domain
// into k subdomains, each mapped through a bound function.
type Type3 struct {
	XDomain   [2]float64
	Functions []pdf.Function
	Bounds    []float64 // k-1 interior boundaries
	Encode    []float64 // 2*k values, [lo0, hi0, lo1, hi1, ...]
}

func (f *Type3) FunctionType() int { return 3 }

func (f *Type3) Shape() (m, n int) {
	if len(f.Functions) == 0 {
		return 1, 0
	}
	_, n = f.Functions[0].Shape()
	return 1, n
}

func (f *Type3) Domain() []float64 { return []float64{f.XDomain[0], f.XDomain[1]} }

func (f *Type3) Apply(in ...float64) []float64 {
	in = clipDomain(in, f.Domain())
	x := in[0]
	k := len(f.Functions)
	if k == 0 {
		return nil
	}

	idx := 0
	lo := f.XDomain[0]
	hi := f.XDomain[1]
	for idx < k-1 && x >= f.Bounds[idx] {
		idx++
	}
	if idx > 0 {
		lo = f.Bounds[idx-1]
	}
	if idx < k-1 {
		hi = f.Bounds[idx]
	}

	elo, ehi := 0.0, 1.0
	if len(f.Encode) >= 2*(idx+1) {
		elo, ehi = f.Encode[2*idx], f.Encode[2*idx+1]
	}
	xEncoded := interpolate(x, lo, hi, elo, ehi)

	return f.Functions[idx].Apply(xEncoded)
}
