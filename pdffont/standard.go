package pdffont

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"pdfrender.dev/engine/rendererr"
)

// StandardDirectory is a STANDARD_FONTS directory: a fonts.json mapping
// from PDF standard font name to a relative font-file path, loaded lazily.
type StandardDirectory struct {
	baseDir string
	entries map[string]string
	cache   map[string]*Font
}

// LoadStandardDirectory reads fonts.json from dir. A missing or unreadable
// directory is not an error here — callers fall back to the built-in Go
// font family, per the "resolves to None" rule for a missing standard-font
// directory.
func LoadStandardDirectory(dir string) (*StandardDirectory, error) {
	d := &StandardDirectory{baseDir: dir, cache: make(map[string]*Font)}

	data, err := os.ReadFile(filepath.Join(dir, "fonts.json"))
	if err != nil {
		return d, nil
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return d, fmt.Errorf("pdffont: parsing fonts.json: %w", err)
	}
	d.entries = entries
	return d, nil
}

// Resolve returns the Font for a PDF standard font name (e.g.
// "Times-Roman", "Helvetica-Bold"), first consulting fonts.json, then
// falling back to the built-in Go font family, then giving up.
//
// Failure to resolve a standard font is never fatal: the returned error is
// a FontBuildFailure, and the content package's FontCache then carries on
// with no font program, so text in that font still advances by its metrics
// but draws no glyphs. No diagnostic is sent to the backend.
func (d *StandardDirectory) Resolve(name string) (*Font, error) {
	if f, ok := d.cache[name]; ok {
		return f, nil
	}

	if rel, ok := d.entries[name]; ok {
		data, err := os.ReadFile(filepath.Join(d.baseDir, rel))
		if err == nil {
			f, err := LoadFont(bytes.NewReader(data))
			if err == nil {
				d.cache[name] = f
				return f, nil
			}
		}
	}

	if data, ok := builtinGoFonts[name]; ok {
		f, err := LoadFont(bytes.NewReader(data))
		if err != nil {
			return nil, &rendererr.FontBuildFailure{FontName: name, Err: err}
		}
		d.cache[name] = f
		return f, nil
	}

	return nil, &rendererr.FontBuildFailure{
		FontName: name,
		Err:      &rendererr.Unimplemented{What: "standard font " + name + " not found in STANDARD_FONTS or the built-in font family"},
	}
}

// builtinGoFonts maps the 14 PDF standard font names to the closest member
// of the embedded Go font family (golang.org/x/image/font/gofont), used
// when no STANDARD_FONTS directory supplies a closer match. Metrics will
// not match the nominal Adobe fonts exactly, but glyph coverage and
// readability are preserved, which is the same tradeoff any substitute
// font makes.
var builtinGoFonts = map[string][]byte{
	"Helvetica":             goregular.TTF,
	"Helvetica-Bold":        gobold.TTF,
	"Helvetica-Oblique":     goitalic.TTF,
	"Helvetica-BoldOblique": gobolditalic.TTF,
	"Arial":                 goregular.TTF,
	"Arial,Bold":            gobold.TTF,
	"Arial,Italic":          goitalic.TTF,
	"Arial,BoldItalic":      gobolditalic.TTF,
	"Times-Roman":           goregular.TTF,
	"Times-Bold":            gobold.TTF,
	"Times-Italic":          goitalic.TTF,
	"Times-BoldItalic":      gobolditalic.TTF,
	"Courier":               goregular.TTF,
	"Courier-Bold":          gobold.TTF,
	"Courier-Oblique":       goitalic.TTF,
	"Courier-BoldOblique":   gobolditalic.TTF,
	"Symbol":                goregular.TTF,
	"ZapfDingbats":          goregular.TTF,
}
