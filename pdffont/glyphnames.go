package pdffont

import "seehuhn.de/go/postscript/type1/names"

// glyphNameToUnicode resolves a PostScript glyph name to Unicode text,
// stripping any subset/variant suffix starting at the first ".". Resolution
// itself (Adobe Glyph List entries, the "uniXXXX"/"uXXXXXX" conventions,
// and the Zapf Dingbats exception) is delegated to names.ToUnicode.
func glyphNameToUnicode(name string) string {
	for i, r := range name {
		if r == '.' {
			name = name[:i]
			break
		}
	}
	return string(names.ToUnicode(name, false))
}
