package outline

// FillRule selects how a filled outline's self-intersections and nested
// contours determine interior vs. exterior, per PDF 32000-1:2008 §8.5.3.
type FillRule int

const (
	// NonZero is the PDF 'f'/'F' winding rule.
	NonZero FillRule = iota
	// EvenOdd is the PDF 'f*' winding rule.
	EvenOdd
)

func (r FillRule) String() string {
	if r == EvenOdd {
		return "even-odd"
	}
	return "nonzero"
}
