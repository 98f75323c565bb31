package pdffont

import (
	"testing"

	"seehuhn.de/go/sfnt/glyph"
)

type fakeInventory struct {
	numGlyphs int
	byName    map[string]glyph.ID
	byUnicode map[rune]glyph.ID
	byCode    map[int]glyph.ID
	unicode   map[glyph.ID]rune
	isCFF     bool
}

func (f *fakeInventory) NumGlyphs() int { return f.numGlyphs }
func (f *fakeInventory) GIDForName(name string) (glyph.ID, bool) {
	g, ok := f.byName[name]
	return g, ok
}
func (f *fakeInventory) GIDForUnicode(r rune) (glyph.ID, bool) {
	g, ok := f.byUnicode[r]
	return g, ok
}
func (f *fakeInventory) GIDForCodepoint(cp int) (glyph.ID, bool) {
	g, ok := f.byCode[cp]
	return g, ok
}
func (f *fakeInventory) UnicodeForGID(gid glyph.ID) (rune, bool) {
	r, ok := f.unicode[gid]
	return r, ok
}
func (f *fakeInventory) IsCFF() bool { return f.isCFF }

func TestBuildFontEntryIdentityCIDToGID(t *testing.T) {
	in := BuildInput{
		CIDToGID: &CIDToGIDMap{Identity: true},
		NumCIDs:  3,
		ToUnicode: map[uint32]string{
			1: "B",
		},
	}
	e := BuildFontEntry(in)
	if !e.IsCID {
		t.Fatal("expected IsCID")
	}
	if e.Lookup(0).GID != 0 || e.Lookup(2).GID != 2 {
		t.Errorf("identity GID mapping wrong: %+v", e.CMap)
	}
	if e.Lookup(1).Unicode != "B" {
		t.Errorf("ToUnicode overlay missing: %+v", e.Lookup(1))
	}
}

func TestBuildFontEntryExplicitCIDToGIDTable(t *testing.T) {
	in := BuildInput{
		CIDToGID: &CIDToGIDMap{Table: []glyph.ID{10, 20, 30}},
	}
	e := BuildFontEntry(in)
	if e.Lookup(1).GID != 20 {
		t.Errorf("Lookup(1).GID = %v, want 20", e.Lookup(1).GID)
	}
}

func TestBuildFontEntrySimpleBaseEncodingOnly(t *testing.T) {
	inv := &fakeInventory{byUnicode: map[rune]glyph.ID{'A': 5}}
	in := BuildInput{
		BaseEncoding: StandardEncoding,
		Inventory:    inv,
	}
	e := BuildFontEntry(in)
	if e.IsCID {
		t.Fatal("simple font should not be CID")
	}
	entry := e.Lookup(uint32('A'))
	if entry.GID != 5 || entry.Unicode != "A" {
		t.Errorf("Lookup('A') = %+v, want GID 5 Unicode A", entry)
	}
}

func TestBuildFontEntryDifferencesOverride(t *testing.T) {
	inv := &fakeInventory{byName: map[string]glyph.ID{"bullet": 99}}
	in := BuildInput{
		BaseEncoding: StandardEncoding,
		Differences:  map[byte]string{200: "bullet"},
		Inventory:    inv,
	}
	e := BuildFontEntry(in)
	entry := e.Lookup(200)
	if entry.GID != 99 || entry.Unicode != string(rune(0x2022)) {
		t.Errorf("Lookup(200) = %+v, want GID 99 bullet", entry)
	}
}

func TestBuildFontEntryEmptyFallsBackToIdentity(t *testing.T) {
	in := BuildInput{NumCIDs: 2}
	e := BuildFontEntry(in)
	if !e.IsCID {
		t.Fatal("empty simple-font result should fall back to identity CID")
	}
	if len(e.CMap) != 2 {
		t.Errorf("len(CMap) = %d, want 2", len(e.CMap))
	}
}

func TestEnforceUniqueUnicodeDedupsAndSynthesizesPUA(t *testing.T) {
	in := BuildInput{
		CIDToGID:             &CIDToGIDMap{Table: []glyph.ID{1, 2, 3}},
		RequireUniqueUnicode: true,
		ToUnicode: map[uint32]string{
			0: "x",
			1: "x", // duplicate, should be dropped
		},
	}
	e := BuildFontEntry(in)
	if e.Lookup(0).Unicode != "x" {
		t.Errorf("first occurrence should keep Unicode: %+v", e.Lookup(0))
	}
	if e.Lookup(1).Unicode == "" || e.Lookup(1).Unicode == "x" {
		t.Errorf("duplicate occurrence should be cleared then resynthesized to a fresh PUA codepoint: %+v", e.Lookup(1))
	}
	if e.Lookup(2).Unicode == "" {
		t.Errorf("unmapped glyph should get a synthesized PUA codepoint: %+v", e.Lookup(2))
	}
	if e.Lookup(1).Unicode == e.Lookup(2).Unicode {
		t.Errorf("synthesized PUA codepoints should not collide: %q", e.Lookup(1).Unicode)
	}
}

func TestGlyphNameToUnicodeCommonAndUniPrefix(t *testing.T) {
	if got := glyphNameToUnicode("bullet"); got != string(rune(0x2022)) {
		t.Errorf("bullet = %q, want U+2022", got)
	}
	if got := glyphNameToUnicode("uni0041"); got != "A" {
		t.Errorf("uni0041 = %q, want A", got)
	}
	if got := glyphNameToUnicode("A.sc"); got != "A" {
		t.Errorf("A.sc = %q, want A (suffix stripped)", got)
	}
}
