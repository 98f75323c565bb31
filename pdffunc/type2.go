package pdffunc

import "math"

// Type2 is the exponential interpolation function:
//
//	f(x) = C0 + x^N * (C1 - C0)
type Type2 struct {
	XDomain [2]float64
	N       float64
	C0, C1  []float64 // length n each; default C0=[0], C1=[1]
}

func (f *Type2) FunctionType() int { return 2 }

func (f *Type2) Shape() (m, n int) {
	n = len(f.C0)
	if n == 0 {
		n = 1
	}
	return 1, n
}

func (f *Type2) Domain() []float64 { return []float64{f.XDomain[0], f.XDomain[1]} }

func (f *Type2) Apply(in ...float64) []float64 {
	in = clipDomain(in, f.Domain())
	x := in[0]

	c0, c1 := f.C0, f.C1
	if len(c0) == 0 {
		c0 = []float64{0}
	}
	if len(c1) == 0 {
		c1 = []float64{1}
	}

	xn := math.Pow(x, f.N)
	out := make([]float64, len(c0))
	for i := range out {
		out[i] = c0[i] + xn*(c1[i]-c0[i])
	}
	return out
}
