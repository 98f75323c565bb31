package content

import (
	"bytes"

	"seehuhn.de/go/sfnt/glyph"

	"pdfrender.dev/engine/graphics"
	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdffont"
	"pdfrender.dev/engine/rcache"
)

// boundFont is everything a text-showing operator needs from a resolved
// /Font resource: the reconciled cmap, its widths table, and a glyph-outline
// source. Cached per font-dictionary reference for the lifetime of a render.
type boundFont struct {
	entry  *pdffont.FontEntry
	widths graphics.WidthSource
	glyphs graphics.GlyphSource
}

// fontGlyphSource adapts *pdffont.Font to graphics.GlyphSource; a nil
// program (no embedded font and no standard-font fallback resolved) yields
// empty outlines so glyphs still advance but draw nothing.
type fontGlyphSource struct{ f *pdffont.Font }

func (g fontGlyphSource) Outline(gid glyph.ID) outline.Outline {
	if g.f == nil {
		return outline.Outline{}
	}
	return g.f.Outline(gid)
}

// FontCache resolves and memoizes /Font resource entries by their
// indirect-reference identity, the same key the process-wide font cache
// uses (§5's "process-wide concurrent map keyed by font-object identity").
type FontCache struct {
	r        pdf.Getter
	std      *pdffont.StandardDirectory
	byRef    map[pdf.Reference]*boundFont
	requireU bool

	dumpMode pdffont.DumpFontMode
	dumpDir  string

	programs *rcache.Cache[pdf.Reference, *pdffont.Font]
}

func NewFontCache(r pdf.Getter, std *pdffont.StandardDirectory, requireUniqueUnicode bool) *FontCache {
	return &FontCache{r: r, std: std, byRef: make(map[pdf.Reference]*boundFont), requireU: requireUniqueUnicode}
}

// SetDumpOptions enables writing every embedded font program this cache
// loads to dir, gated by mode (§6.4's DUMP_FONT/PDF_FONTS environment
// variables). A zero dir leaves dumping disabled.
func (fc *FontCache) SetDumpOptions(mode pdffont.DumpFontMode, dir string) {
	fc.dumpMode = mode
	fc.dumpDir = dir
}

// SetProgramCache installs a process-wide cache for parsed font programs,
// keyed by the embedded font program stream's own object identity (the
// program itself, not the /Font dict that references it) — the same
// program is frequently referenced by several /Font dicts within a
// document (e.g. regular/bold/italic sharing one FontFile), and across
// every page that uses it.
func (fc *FontCache) SetProgramCache(c *rcache.Cache[pdf.Reference, *pdffont.Font]) {
	fc.programs = c
}

func (fc *FontCache) resolve(obj pdf.Object) (*boundFont, error) {
	if ref, ok := obj.(pdf.Reference); ok {
		if bf, ok := fc.byRef[ref]; ok {
			return bf, nil
		}
		bf, err := fc.build(obj)
		if err != nil {
			return nil, err
		}
		fc.byRef[ref] = bf
		return bf, nil
	}
	return fc.build(obj)
}

func (fc *FontCache) build(obj pdf.Object) (*boundFont, error) {
	resolved, err := pdf.Resolve(fc.r, obj)
	if err != nil {
		return nil, err
	}
	dict, ok := resolved.(pdf.Dict)
	if !ok {
		return &boundFont{entry: pdffont.BuildFontEntry(pdffont.BuildInput{})}, nil
	}

	subtype, _ := pdf.GetName(fc.r, dict["Subtype"])
	baseFont, _ := pdf.GetName(fc.r, dict["BaseFont"])

	if subtype == "Type0" {
		return fc.buildComposite(dict)
	}
	return fc.buildSimple(dict, string(baseFont))
}

func (fc *FontCache) buildComposite(dict pdf.Dict) (*boundFont, error) {
	descendants, err := pdf.GetArray(fc.r, dict["DescendantFonts"])
	if err != nil || len(descendants) == 0 {
		return &boundFont{entry: pdffont.BuildFontEntry(pdffont.BuildInput{})}, nil
	}
	cidFont, err := pdf.GetDict(fc.r, descendants[0])
	if err != nil {
		return nil, err
	}

	baseFont, _ := pdf.GetName(fc.r, dict["BaseFont"])
	prog, inv := fc.loadProgram(cidFont, string(baseFont))

	cidToGID, err := fc.parseCIDToGIDMap(cidFont)
	if err != nil {
		return nil, err
	}

	toUni := fc.parseToUnicode(dict)

	in := pdffont.BuildInput{
		IsIdentityH:          true,
		CIDToGID:             cidToGID,
		ToUnicode:            toUni,
		Inventory:            inv,
		RequireUniqueUnicode: fc.requireU,
		PSName:               string(baseFont),
	}
	entry := pdffont.BuildFontEntry(in)

	widths := parseCompositeWidths(fc.r, cidFont)
	return &boundFont{entry: entry, widths: widths, glyphs: fontGlyphSource{prog}}, nil
}

func (fc *FontCache) buildSimple(dict pdf.Dict, baseFont string) (*boundFont, error) {
	prog, inv := fc.loadProgram(dict, baseFont)

	toUni := fc.parseToUnicode(dict)

	in := pdffont.BuildInput{
		ToUnicode:            toUni,
		Inventory:            inv,
		RequireUniqueUnicode: fc.requireU,
		PSName:               baseFont,
	}
	fc.parseEncoding(dict, &in)
	entry := pdffont.BuildFontEntry(in)

	missing, haveMissing := fc.missingWidth(dict)
	widths := parseSimpleWidths(fc.r, dict, missing, haveMissing)
	return &boundFont{entry: entry, widths: widths, glyphs: fontGlyphSource{prog}}, nil
}

func (fc *FontCache) missingWidth(dict pdf.Dict) (float64, bool) {
	descriptor, err := pdf.GetDict(fc.r, dict["FontDescriptor"])
	if err != nil || descriptor == nil {
		return 0, false
	}
	if _, ok := descriptor["MissingWidth"]; !ok {
		return 0, false
	}
	mw, err := pdf.GetNumber(fc.r, descriptor["MissingWidth"])
	if err != nil {
		return 0, false
	}
	return float64(mw), true
}

// loadProgram extracts an embedded font program from fontDict's
// /FontDescriptor, falling back to the standard-font directory by base
// name when no embedded program parses. Returns (nil, nil) when neither
// source yields a usable program; callers still get a valid (empty-glyph)
// FontEntry.
func (fc *FontCache) loadProgram(fontDict pdf.Dict, baseFont string) (*pdffont.Font, pdffont.Inventory) {
	descriptor, _ := pdf.GetDict(fc.r, fontDict["FontDescriptor"])
	for _, key := range []pdf.Name{"FontFile2", "FontFile3", "FontFile"} {
		obj, ok := descriptor[key]
		if !ok {
			continue
		}

		ref, isRef := obj.(pdf.Reference)
		if isRef && fc.programs != nil {
			if prog, hit := fc.programs.Get(ref); hit {
				if prog == nil {
					continue // a cached parse failure; don't retry this stream
				}
				return prog, prog
			}
		}

		resolved, err := pdf.Resolve(fc.r, obj)
		if err != nil {
			continue
		}
		stream, ok := resolved.(pdf.Stream)
		if !ok {
			continue
		}
		data, err := stream.Reader.ReadAll()
		if err != nil {
			continue
		}
		prog, perr := pdffont.LoadFont(bytes.NewReader(data))
		if fc.dumpDir != "" {
			pdffont.DumpFont(fc.dumpMode, fc.dumpDir, dumpFileName(baseFont, string(key)), data, perr)
		}
		if isRef && fc.programs != nil {
			fc.programs.Put(ref, prog)
		}
		if perr == nil {
			return prog, prog
		}
	}

	if fc.std != nil {
		name := stripSubsetPrefix(baseFont)
		if prog, err := fc.std.Resolve(name); err == nil {
			return prog, prog
		}
	}
	return nil, nil
}

// dumpFileName builds a PDF_FONTS-relative name for an embedded font
// program from its base font name and the FontDescriptor key it came from,
// avoiding collisions between fonts sharing a base name.
func dumpFileName(baseFont, key string) string {
	name := stripSubsetPrefix(baseFont)
	if name == "" {
		name = "font"
	}
	return name + "-" + key
}

// stripSubsetPrefix removes a subset tag ("ABCDEF+") from an embedded
// font's base name, per §4.3 step 5.
func stripSubsetPrefix(name string) string {
	if len(name) > 7 && name[6] == '+' {
		tag := name[:6]
		allUpper := true
		for _, c := range tag {
			if c < 'A' || c > 'Z' {
				allUpper = false
				break
			}
		}
		if allUpper {
			return name[7:]
		}
	}
	return name
}

func (fc *FontCache) parseCIDToGIDMap(cidFont pdf.Dict) (*pdffont.CIDToGIDMap, error) {
	obj, ok := cidFont["CIDToGIDMap"]
	if !ok {
		return &pdffont.CIDToGIDMap{Identity: true}, nil
	}
	resolved, err := pdf.Resolve(fc.r, obj)
	if err != nil {
		return nil, err
	}
	switch x := resolved.(type) {
	case pdf.Name:
		return &pdffont.CIDToGIDMap{Identity: true}, nil
	case pdf.Stream:
		data, err := x.Reader.ReadAll()
		if err != nil {
			return nil, err
		}
		table := make([]glyph.ID, len(data)/2)
		for i := range table {
			table[i] = glyph.ID(uint16(data[2*i])<<8 | uint16(data[2*i+1]))
		}
		return &pdffont.CIDToGIDMap{Table: table}, nil
	default:
		return &pdffont.CIDToGIDMap{Identity: true}, nil
	}
}

// parseEncoding reads a simple font's /Encoding — either a base-encoding
// name directly, or a dict naming a base encoding plus a /Differences
// overlay — and fills the corresponding BuildInput fields in place, since
// the base-encoding table type is unexported and can only be named by
// assignment, not as a return type, outside package pdffont.
func (fc *FontCache) parseEncoding(dict pdf.Dict, in *pdffont.BuildInput) {
	obj, ok := dict["Encoding"]
	if !ok {
		return
	}
	resolved, err := pdf.Resolve(fc.r, obj)
	if err != nil {
		return
	}

	switch x := resolved.(type) {
	case pdf.Name:
		setBaseEncoding(in, x)
	case pdf.Dict:
		if name, err := pdf.GetName(fc.r, x["BaseEncoding"]); err == nil && name != "" {
			setBaseEncoding(in, name)
		}
		in.Differences = fc.parseDifferences(x["Differences"])
	}
}

func (fc *FontCache) parseDifferences(obj pdf.Object) map[byte]string {
	arr, err := pdf.GetArray(fc.r, obj)
	if err != nil || arr == nil {
		return nil
	}
	out := make(map[byte]string)
	code := 0
	for _, item := range arr {
		resolved, err := pdf.Resolve(fc.r, item)
		if err != nil {
			continue
		}
		switch v := resolved.(type) {
		case pdf.Integer:
			code = int(v)
		case pdf.Real:
			code = int(v)
		case pdf.Name:
			if code >= 0 && code < 256 {
				out[byte(code)] = string(v)
			}
			code++
		}
	}
	return out
}

func (fc *FontCache) parseToUnicode(dict pdf.Dict) map[uint32]string {
	obj, ok := dict["ToUnicode"]
	if !ok {
		return nil
	}
	resolved, err := pdf.Resolve(fc.r, obj)
	if err != nil {
		return nil
	}
	stream, ok := resolved.(pdf.Stream)
	if !ok {
		return nil
	}
	data, err := stream.Reader.ReadAll()
	if err != nil {
		return nil
	}
	return parseToUnicodeCMap(data)
}

func setBaseEncoding(in *pdffont.BuildInput, name pdf.Name) {
	switch name {
	case "WinAnsiEncoding":
		in.BaseEncoding = pdffont.WinAnsiEncoding
	case "MacRomanEncoding":
		in.BaseEncoding = pdffont.MacRomanEncoding
	case "MacExpertEncoding":
		in.BaseEncoding = pdffont.MacExpertEncoding
	case "StandardEncoding":
		in.BaseEncoding = pdffont.StandardEncoding
	}
}
