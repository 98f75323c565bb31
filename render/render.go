// Package render is the page renderer: it computes a page's device-space
// root transform from its MediaBox, /Rotate, and a requested DPI, then
// drives the content-stream interpreter over the page's content stream(s)
// against a caller-supplied Backend.
package render

import (
	"bytes"
	"math"
	"os"

	"seehuhn.de/go/geom/matrix"

	"pdfrender.dev/engine/backend"
	"pdfrender.dev/engine/content"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdffont"
	"pdfrender.dev/engine/rasterimg"
	"pdfrender.dev/engine/rcache"
)

// Options configures a single Render call. The zero value is usable: no
// standard-font fallback directory, no font dumping, strict error
// propagation, and no Unicode-uniqueness enforcement.
type Options struct {
	// AllowErrorInOption downgrades missing-resource and color-conversion
	// failures to recoverable fallbacks instead of aborting the page.
	AllowErrorInOption bool
	// RequireUniqueUnicode enables the font-entry builder's PUA-synthesis
	// dedup pass (§4.3 step 4).
	RequireUniqueUnicode bool
	// StandardFontDir is the STANDARD_FONTS directory: a fonts.json mapping
	// plus the font files it names, consulted when a simple font has no
	// embedded program.
	StandardFontDir string
	// DumpFontDir is the PDF_FONTS directory every embedded font program is
	// additionally written to, gated by DumpFontMode. Blank disables it.
	DumpFontDir string
	// DumpFontMode controls which embedded font programs DumpFontDir
	// receives: always, only ones the parser rejected, or never.
	DumpFontMode pdffont.DumpFontMode
}

// OptionsFromEnv reads STANDARD_FONTS, PDF_FONTS, and DUMP_FONT the way
// §6.4 names them, leaving AllowErrorInOption and RequireUniqueUnicode at
// their zero values for the caller to set from its own configuration.
func OptionsFromEnv() Options {
	return Options{
		StandardFontDir: os.Getenv("STANDARD_FONTS"),
		DumpFontDir:     os.Getenv("PDF_FONTS"),
		DumpFontMode:    pdffont.ParseDumpFontMode(os.Getenv("DUMP_FONT")),
	}
}

// Cache holds the caches a host application shares across concurrent page
// renders of the same document: parsed font programs, keyed by the
// embedded font program stream's object identity, and decoded images,
// keyed by the image XObject stream's object identity. Reference identity
// is only meaningful within one Getter's document, so a Cache must not be
// reused across different documents.
type Cache struct {
	Fonts  *rcache.Cache[pdf.Reference, *pdffont.Font]
	Images *rcache.Cache[pdf.Reference, *rasterimg.Image]
}

// NewCache returns a Cache bounding its font cache by entry count (a parsed
// font program's in-memory size is not tracked) and its image cache by
// total decoded byte size. A non-positive bound disables eviction for that
// cache.
func NewCache(maxFontPrograms, maxImageBytes int) *Cache {
	return &Cache{
		Fonts:  rcache.New[pdf.Reference, *pdffont.Font](maxFontPrograms, constOne),
		Images: rcache.New[pdf.Reference, *rasterimg.Image](maxImageBytes, imageByteSize),
	}
}

func constOne(*pdffont.Font) int { return 1 }

func imageByteSize(img *rasterimg.Image) int {
	if img == nil {
		return 0
	}
	return len(img.Pixels) * 4
}

// Render walks page's content stream(s) and drives b. page must carry
// /MediaBox, /Resources, and /Contents the way a parsed Page object from
// the file-parser layer would; /Rotate is optional. dpi sets the device
// pixel density (72 yields one device pixel per PDF point). cache may be
// nil, in which case font programs and decoded images are not shared
// beyond this one call.
func Render(r pdf.Getter, page pdf.Dict, dpi float64, b backend.Backend, opts Options, cache *Cache) error {
	mediaBox, err := pdf.GetRectangle(r, page["MediaBox"])
	if err != nil {
		return err
	}
	if mediaBox == nil || mediaBox.IsZero() {
		// US Letter, the size PDF readers fall back to when a page is
		// missing its own MediaBox and none is inherited from a Pages node.
		mediaBox = &pdf.Rectangle{URx: 612, URy: 792}
	}

	rotateNum, err := pdf.GetNumber(r, page["Rotate"])
	if err != nil {
		return err
	}
	rotate := normalizeRotation(int(rotateNum))

	width, height, root := rootTransform(*mediaBox, rotate, dpi)

	reader := r
	reader = withOptions(r, pdf.Options{AllowErrorInOption: opts.AllowErrorInOption})

	resDict, err := pdf.GetDict(reader, page["Resources"])
	if err != nil {
		return err
	}
	res := content.NewResources(reader, resDict)

	std, err := pdffont.LoadStandardDirectory(opts.StandardFontDir)
	if err != nil {
		return err
	}

	fonts := content.NewFontCache(reader, std, opts.RequireUniqueUnicode)
	fonts.SetDumpOptions(opts.DumpFontMode, opts.DumpFontDir)
	if cache != nil {
		fonts.SetProgramCache(cache.Fonts)
	}

	ip := content.NewInterpreter(reader, b, res, fonts)
	if cache != nil {
		ip.SetImageCache(cache.Images)
	}
	ip.SetRootTransform(root)

	b.SetViewBox(pdf.Rectangle{URx: float64(width), URy: float64(height)})

	data, err := concatContents(reader, page["Contents"])
	if err != nil {
		return err
	}
	return ip.Run(bytes.NewReader(data))
}

// concatContents resolves /Contents, which per PDF 32000-1:2008 §7.7.3.3 is
// either a single content stream or an array of them to be treated as one
// logical stream, concatenated with an intervening newline so a token
// split across a stream boundary is never glued to its neighbor.
func concatContents(r pdf.Getter, obj pdf.Object) ([]byte, error) {
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return nil, err
	}
	switch x := resolved.(type) {
	case pdf.Stream:
		return x.Reader.ReadAll()
	case pdf.Array:
		var buf bytes.Buffer
		for _, item := range x {
			part, err := pdf.Resolve(r, item)
			if err != nil {
				return nil, err
			}
			stream, ok := part.(pdf.Stream)
			if !ok {
				continue
			}
			data, err := stream.Reader.ReadAll()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	default:
		return nil, nil
	}
}

// normalizeRotation reduces deg to one of {0, 90, 180, 270} per PDF
// /Rotate's "a multiple of 90" requirement, tolerating out-of-range or
// negative values some malformed files carry.
func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return (deg / 90) * 90 % 360
}

// rootTransform computes the device canvas size and the transform mapping
// a page's user space (MediaBox-relative, Y-up) into device pixels
// (top-left origin, Y-down), folding in page rotation and DPI scaling —
// the same three-stage composition (page points -> rotated page points ->
// DPI-scaled, Y-flipped device pixels) the teacher's image renderer
// performs per glyph/path point, computed once here as a single matrix.
func rootTransform(mediaBox pdf.Rectangle, rotate int, dpi float64) (width, height int, m matrix.Matrix) {
	w, h := mediaBox.Dx(), mediaBox.Dy()
	translate := matrix.Matrix{1, 0, 0, 1, -mediaBox.LLx, -mediaBox.LLy}

	var rot matrix.Matrix
	var rw, rh float64
	switch rotate {
	case 90:
		rot = matrix.Matrix{0, -1, 1, 0, 0, w}
		rw, rh = h, w
	case 180:
		rot = matrix.Matrix{-1, 0, 0, -1, w, h}
		rw, rh = w, h
	case 270:
		rot = matrix.Matrix{0, 1, -1, 0, h, 0}
		rw, rh = h, w
	default:
		rot = matrix.Identity
		rw, rh = w, h
	}

	scale := dpi / 72.0
	if scale <= 0 {
		scale = 1
	}
	scaleM := matrix.Matrix{scale, 0, 0, scale, 0, 0}

	pixelW := rw * scale
	pixelH := rh * scale
	flip := matrix.Matrix{1, 0, 0, -1, 0, pixelH}

	m = translate.Mul(rot).Mul(scaleM).Mul(flip)
	return int(math.Ceil(pixelW)), int(math.Ceil(pixelH)), m
}

// withOptions wraps r so its Options() reports opts, leaving Get
// untouched. Used to apply a render's AllowErrorInOption choice without
// requiring every host application to implement it on its own Getter.
func withOptions(r pdf.Getter, opts pdf.Options) pdf.Getter {
	return optionsOverride{Getter: r, opts: opts}
}

type optionsOverride struct {
	pdf.Getter
	opts pdf.Options
}

func (o optionsOverride) Options() pdf.Options { return o.opts }
