package pdffunc

import (
	"testing"

	"pdfrender.dev/engine/pdf"
)

// stubFunc is a minimal pdf.Function used only by this test, to check
// boundary selection without building a real Type2/Type0 function.
type stubFunc struct {
	apply func(x float64) []float64
}

func (s stubFunc) FunctionType() int                { return 2 }
func (s stubFunc) Shape() (int, int)                 { return 1, 1 }
func (s stubFunc) Domain() []float64                 { return []float64{0, 1} }
func (s stubFunc) Apply(in ...float64) []float64 { return s.apply(in[0]) }

func TestType3BoundaryHandling(t *testing.T) {
	f := &Type3{
		XDomain: [2]float64{0, 2},
		Functions: []pdf.Function{
			stubFunc{apply: func(x float64) []float64 { return []float64{x} }},
			stubFunc{apply: func(x float64) []float64 { return []float64{-x} }},
		},
		Bounds: []float64{1.0},
		Encode: []float64{0, 1, 0, 1},
	}

	cases := []struct {
		input    float64
		wantSign float64 // +1 selects function 0 (non-negative output), -1 selects function 1
	}{
		{0.0, 1},
		{0.5, 1},
		{0.999, 1},
		{1.0, -1},
		{1.5, -1},
		{2.0, -1},
	}
	for _, c := range cases {
		got := f.Apply(c.input)
		if len(got) != 1 {
			t.Fatalf("Apply(%v) returned %d outputs, want 1", c.input, len(got))
		}
		if c.wantSign > 0 && got[0] < 0 {
			t.Errorf("Apply(%v) = %v, expected function 0 (non-negative)", c.input, got[0])
		}
		if c.wantSign < 0 && got[0] > 0 {
			t.Errorf("Apply(%v) = %v, expected function 1 (non-positive)", c.input, got[0])
		}
	}
}

func TestType3EmptyFunctions(t *testing.T) {
	f := &Type3{XDomain: [2]float64{0, 1}}
	if got := f.Apply(0.5); got != nil {
		t.Errorf("Apply with no functions = %v, want nil", got)
	}
}
