package pdffunc

import (
	"math"
	"testing"
)

func TestType2Linear(t *testing.T) {
	f := &Type2{XDomain: [2]float64{0, 1}, N: 1, C0: []float64{0}, C1: []float64{1}}
	for _, x := range []float64{0, 0.25, 0.5, 1} {
		got := f.Apply(x)
		if len(got) != 1 || math.Abs(got[0]-x) > 1e-9 {
			t.Errorf("Apply(%v) = %v, want [%v]", x, got, x)
		}
	}
}

func TestType2DefaultCoefficients(t *testing.T) {
	f := &Type2{XDomain: [2]float64{0, 1}, N: 2}
	got := f.Apply(0.5)
	want := 0.25
	if len(got) != 1 || math.Abs(got[0]-want) > 1e-9 {
		t.Errorf("Apply(0.5) = %v, want [%v]", got, want)
	}
}

func TestType2DomainClip(t *testing.T) {
	f := &Type2{XDomain: [2]float64{0, 1}, N: 1, C0: []float64{0}, C1: []float64{1}}
	got := f.Apply(2)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Apply(2) = %v, want clipped to 1", got)
	}
}
