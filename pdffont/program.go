package pdffont

import (
	"io"

	geompath "seehuhn.de/go/geom/path"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyf"
	"seehuhn.de/go/sfnt/glyph"

	"pdfrender.dev/engine/outline"
)

// Font wraps a parsed TrueType/OpenType/CFF font program and adapts it to
// the Inventory interface the reconciliation algorithm needs, plus glyph
// outline extraction for rendering.
type Font struct {
	sf         *sfnt.Font
	nameToGID  map[string]glyph.ID
	gidToRune  map[glyph.ID]rune
	unitsPerEm float64
}

// LoadFont parses an embedded font program (TrueType, OpenType, or bare
// CFF wrapped in an OpenType shell) via seehuhn.de/go/sfnt.
func LoadFont(r io.Reader) (*Font, error) {
	sf, err := sfnt.Read(r)
	if err != nil {
		return nil, err
	}

	f := &Font{sf: sf, unitsPerEm: float64(sf.UnitsPerEm)}
	if f.unitsPerEm == 0 {
		f.unitsPerEm = 1000
	}

	if glyfOutlines, ok := sf.Outlines.(*glyf.Outlines); ok && len(glyfOutlines.Names) > 0 {
		f.nameToGID = make(map[string]glyph.ID, len(glyfOutlines.Names))
		f.gidToRune = make(map[glyph.ID]rune, len(glyfOutlines.Names))
		for gid, name := range glyfOutlines.Names {
			if name == "" {
				continue
			}
			f.nameToGID[name] = glyph.ID(gid)
			if u := glyphNameToUnicode(name); u != "" {
				f.gidToRune[glyph.ID(gid)] = []rune(u)[0]
			}
		}
	}

	return f, nil
}

// NumGlyphs implements Inventory.
func (f *Font) NumGlyphs() int {
	if glyfOutlines, ok := f.sf.Outlines.(*glyf.Outlines); ok {
		return len(glyfOutlines.Glyphs)
	}
	return 0
}

// GIDForName implements Inventory, using the font's "post"-table glyph
// names when present (TrueType outlines only; CFF charset names are not
// currently exposed by the font-program inventory).
func (f *Font) GIDForName(name string) (glyph.ID, bool) {
	g, ok := f.nameToGID[name]
	return g, ok
}

// GIDForUnicode implements Inventory via the font's best available cmap
// subtable, the same lookup path used when rendering a glyph run.
func (f *Font) GIDForUnicode(r rune) (glyph.ID, bool) {
	if f.sf.CMapTable == nil {
		return 0, false
	}
	subtable, err := f.sf.CMapTable.GetBest()
	if err != nil || subtable == nil {
		return 0, false
	}
	gid := subtable.Lookup(r)
	if gid == 0 {
		return 0, false
	}
	return gid, true
}

// GIDForCodepoint implements Inventory. Symbolic and Type 1 fonts address
// their cmap by raw codepoint rather than a Unicode scalar value, but the
// same cmap-subtable lookup path serves both.
func (f *Font) GIDForCodepoint(cp int) (glyph.ID, bool) {
	return f.GIDForUnicode(rune(cp))
}

// UnicodeForGID implements Inventory from the reverse of the font's own
// glyph-name table, when available.
func (f *Font) UnicodeForGID(gid glyph.ID) (rune, bool) {
	r, ok := f.gidToRune[gid]
	return r, ok
}

// IsCFF implements Inventory: true for OpenType-CFF and bare CFF outlines,
// false for TrueType/glyf outlines.
func (f *Font) IsCFF() bool {
	_, isGlyf := f.sf.Outlines.(*glyf.Outlines)
	return !isGlyf
}

// Outline returns the glyph's outline in font design units scaled to a
// 1-unit em square, ready for the caller to place with its own text
// transform.
func (f *Font) Outline(gid glyph.ID) outline.Outline {
	b := outline.NewBuilder()
	if f.sf.Outlines == nil {
		return b.Outline()
	}

	scale := func(p outline.Point) outline.Point {
		return outline.Point{X: p.X / f.unitsPerEm, Y: p.Y / f.unitsPerEm}
	}

	for cmd, pts := range f.sf.Outlines.Path(gid) {
		switch cmd {
		case geompath.CmdMoveTo:
			b.MoveTo(scale(pts[0]))
		case geompath.CmdLineTo:
			b.LineTo(scale(pts[0]))
		case geompath.CmdQuadTo:
			b.QuadTo(scale(pts[0]), scale(pts[1]))
		case geompath.CmdCubeTo:
			b.CubeTo(scale(pts[0]), scale(pts[1]), scale(pts[2]))
		case geompath.CmdClose:
			b.ClosePath()
		}
	}

	return b.Outline()
}
