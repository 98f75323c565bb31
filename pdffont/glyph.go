package pdffont

import (
	"strings"

	"seehuhn.de/go/sfnt/glyph"
)

// Glyph is a single positioned glyph produced by decoding a PDF text-showing
// operator's string operand against a FontEntry.
type Glyph struct {
	// GID identifies the glyph within the embedded font program, or within
	// the substituted standard font when no program is embedded.
	GID glyph.ID

	// Advance is the glyph's advance width in PDF text space units, already
	// scaled by the font size and by any Tz/Tc/Tw adjustments in effect when
	// the glyph was decoded.
	Advance float64

	// Rise is the glyph's vertical displacement from the baseline, in PDF
	// text space units, already scaled by the font size (Ts).
	Rise float64

	// Text is the Unicode text the glyph represents, as resolved by the
	// font's ToUnicode CMap, Differences/encoding table, or font-internal
	// cmap, in that order of preference.
	Text string
}

// GlyphSeq is a run of glyphs decoded from one or more text-showing
// operators sharing the same text state.
type GlyphSeq struct {
	// Skip is extra advance before the first glyph, accumulated from
	// TJ-array number adjustments that precede any glyph.
	Skip float64
	Seq  []Glyph
}

// Reset empties the sequence for reuse.
func (s *GlyphSeq) Reset() {
	if s == nil {
		return
	}
	s.Skip = 0
	s.Seq = s.Seq[:0]
}

// TotalWidth returns the summed advance of the sequence, including Skip.
func (s *GlyphSeq) TotalWidth() float64 {
	w := s.Skip
	for _, g := range s.Seq {
		w += g.Advance
	}
	return w
}

// Text returns the concatenated Unicode text of the sequence.
func (s *GlyphSeq) Text() string {
	var b strings.Builder
	for _, g := range s.Seq {
		b.WriteString(g.Text)
	}
	return b.String()
}

// Append adds the glyphs of other to the end of s. A leading Skip in other
// becomes extra advance on s's last glyph, or on s.Skip if s is empty.
func (s *GlyphSeq) Append(other *GlyphSeq) {
	if len(s.Seq) == 0 {
		s.Skip += other.Skip
	} else {
		s.Seq[len(s.Seq)-1].Advance += other.Skip
	}
	s.Seq = append(s.Seq, other.Seq...)
}

// AddSkip folds a TJ-array number adjustment (already converted to text
// space units) into the sequence, either as extra Skip before the first
// glyph or as extra advance after the last one.
func (s *GlyphSeq) AddSkip(amount float64) {
	if len(s.Seq) == 0 {
		s.Skip += amount
		return
	}
	s.Seq[len(s.Seq)-1].Advance += amount
}
