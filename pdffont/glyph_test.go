package pdffont

import "testing"

func TestGlyphSeqTotalWidthAndText(t *testing.T) {
	seq := &GlyphSeq{
		Skip: 2,
		Seq: []Glyph{
			{GID: 1, Advance: 10, Text: "H"},
			{GID: 2, Advance: 12, Text: "i"},
		},
	}
	if got := seq.TotalWidth(); got != 24 {
		t.Errorf("TotalWidth() = %v, want 24", got)
	}
	if got := seq.Text(); got != "Hi" {
		t.Errorf("Text() = %q, want %q", got, "Hi")
	}
}

func TestGlyphSeqAppendEmptyTarget(t *testing.T) {
	seq := &GlyphSeq{}
	other := &GlyphSeq{Skip: 5, Seq: []Glyph{{GID: 3, Advance: 7, Text: "x"}}}
	seq.Append(other)
	if seq.Skip != 5 {
		t.Errorf("Skip = %v, want 5", seq.Skip)
	}
	if len(seq.Seq) != 1 || seq.Seq[0].Advance != 7 {
		t.Errorf("Seq = %+v, want one glyph with advance 7", seq.Seq)
	}
}

func TestGlyphSeqAppendNonEmptyTarget(t *testing.T) {
	seq := &GlyphSeq{Seq: []Glyph{{GID: 1, Advance: 10, Text: "a"}}}
	other := &GlyphSeq{Skip: 3, Seq: []Glyph{{GID: 2, Advance: 4, Text: "b"}}}
	seq.Append(other)
	if seq.Seq[0].Advance != 13 {
		t.Errorf("first glyph advance = %v, want 13 (10+skip 3)", seq.Seq[0].Advance)
	}
	if len(seq.Seq) != 2 || seq.Seq[1].Text != "b" {
		t.Errorf("Seq = %+v, want second glyph 'b' appended", seq.Seq)
	}
}

func TestGlyphSeqAddSkip(t *testing.T) {
	seq := &GlyphSeq{}
	seq.AddSkip(5)
	if seq.Skip != 5 {
		t.Errorf("Skip = %v, want 5", seq.Skip)
	}

	seq.Seq = append(seq.Seq, Glyph{Advance: 10})
	seq.AddSkip(2)
	if seq.Seq[0].Advance != 12 {
		t.Errorf("last glyph advance = %v, want 12", seq.Seq[0].Advance)
	}
}

func TestGlyphSeqReset(t *testing.T) {
	seq := &GlyphSeq{Skip: 5, Seq: []Glyph{{GID: 1}}}
	seq.Reset()
	if seq.Skip != 0 || len(seq.Seq) != 0 {
		t.Errorf("Reset() left seq = %+v", seq)
	}
}
