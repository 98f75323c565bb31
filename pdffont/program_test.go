package pdffont

import (
	"testing"

	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyf"
	"seehuhn.de/go/sfnt/glyph"
	"seehuhn.de/go/sfnt/funit"
)

func testFont(numGlyphs int, names []string) *Font {
	sf := &sfnt.Font{
		UnitsPerEm: 1000,
		Outlines: &glyf.Outlines{
			Glyphs: make(glyf.Glyphs, numGlyphs),
			Widths: make([]funit.Int16, numGlyphs),
			Names:  names,
		},
	}

	f := &Font{sf: sf, unitsPerEm: float64(sf.UnitsPerEm)}
	f.nameToGID = make(map[string]glyph.ID, len(names))
	f.gidToRune = make(map[glyph.ID]rune, len(names))
	for gid, name := range names {
		if name == "" {
			continue
		}
		f.nameToGID[name] = glyph.ID(gid)
		if u := glyphNameToUnicode(name); u != "" {
			f.gidToRune[glyph.ID(gid)] = []rune(u)[0]
		}
	}
	return f
}

func TestFontNumGlyphs(t *testing.T) {
	f := testFont(5, nil)
	if got := f.NumGlyphs(); got != 5 {
		t.Errorf("NumGlyphs() = %d, want 5", got)
	}
}

func TestFontGIDForNameAndUnicodeForGID(t *testing.T) {
	f := testFont(3, []string{"", "A", "bullet"})
	gid, ok := f.GIDForName("A")
	if !ok || gid != 1 {
		t.Errorf("GIDForName(A) = (%d,%v), want (1,true)", gid, ok)
	}
	r, ok := f.UnicodeForGID(2)
	if !ok || r != 0x2022 {
		t.Errorf("UnicodeForGID(2) = (%U,%v), want (U+2022,true)", r, ok)
	}
}

func TestFontGIDForNameMissing(t *testing.T) {
	f := testFont(1, []string{"A"})
	if _, ok := f.GIDForName("nonexistent"); ok {
		t.Error("GIDForName(nonexistent) should fail")
	}
}

func TestFontIsCFFFalseForGlyf(t *testing.T) {
	f := testFont(1, nil)
	if f.IsCFF() {
		t.Error("glyf-outline font should report IsCFF() = false")
	}
}

func TestFontGIDForUnicodeNoCMapTable(t *testing.T) {
	f := testFont(1, nil)
	if _, ok := f.GIDForUnicode('A'); ok {
		t.Error("GIDForUnicode should fail with no CMapTable")
	}
}
