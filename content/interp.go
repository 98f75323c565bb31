package content

import (
	"bytes"
	"errors"
	"io"

	"seehuhn.de/go/geom/matrix"

	"pdfrender.dev/engine/backend"
	"pdfrender.dev/engine/graphics"
	"pdfrender.dev/engine/outline"
	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/rasterimg"
	"pdfrender.dev/engine/rcache"
	"pdfrender.dev/engine/rendererr"
)

const maxFormDepth = 12

// Interpreter drives one content stream's operators against a graphics
// and text state, handing the results to a Backend. A fresh Interpreter is
// created per page; Form XObjects recurse into a child Interpreter that
// shares the parent's font and resource caches but not its state.
type Interpreter struct {
	r       pdf.Getter
	backend backend.Backend
	fonts   *FontCache
	res     *Resources

	gs *graphics.State
	ts *graphics.TextState

	gsStack []*graphics.State
	tsStack []*graphics.TextState

	path      *outline.Builder
	rectHint  bool          // path so far is exactly one 're' call
	rectStart outline.Point // that rectangle's lower-left corner, in user space
	rectW     float64
	rectH     float64

	pendingClip     bool
	pendingClipRule outline.FillRule

	curFont *boundFont

	images *rcache.Cache[pdf.Reference, *rasterimg.Image]

	opIndex int
	depth   int
}

// NewInterpreter creates an interpreter for one page or top-level content
// stream. fonts is normally shared across every page of a document so
// embedded font programs are parsed once.
func NewInterpreter(r pdf.Getter, backend backend.Backend, res *Resources, fonts *FontCache) *Interpreter {
	return &Interpreter{
		r:       r,
		backend: backend,
		fonts:   fonts,
		res:     res,
		gs:      graphics.NewState(),
		ts:      graphics.NewTextState(),
		path:    outline.NewBuilder(),
	}
}

// SetImageCache installs a process-wide cache for decoded image XObjects,
// keyed by the XObject stream's own object identity. A Form XObject's
// child interpreter inherits its parent's cache.
func (ip *Interpreter) SetImageCache(c *rcache.Cache[pdf.Reference, *rasterimg.Image]) {
	ip.images = c
}

// SetRootTransform installs m as the interpreter's initial current
// transform, mapping a page's (or Form XObject's) user space into the
// device space a render's root transform (DPI scale plus page rotation)
// establishes. Must be called before Run.
func (ip *Interpreter) SetRootTransform(m matrix.Matrix) {
	ip.gs.CTM = m
}

// Run tokenizes data as a content stream and dispatches its operators in
// order, stopping at the first fatal error (graphics-stack underflow, or a
// missing resource when the Getter's Options disallow recovering from
// one).
func (ip *Interpreter) Run(data io.Reader) error {
	s := newScanner(data)
	var args []pdf.Object
	for {
		obj, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		op, isOp := obj.(pdf.Operator)
		if !isOp {
			args = append(args, obj)
			continue
		}

		ip.backend.InspectOp(op, args)
		if err := ip.dispatch(op, args, s); err != nil {
			return err
		}
		args = args[:0]
		ip.opIndex++
	}
}

func (ip *Interpreter) dispatch(op pdf.Operator, args []pdf.Object, s *scanner) error {
	switch op {
	// --- general graphics state ---
	case "q":
		ip.gsStack = append(ip.gsStack, ip.gs)
		ip.tsStack = append(ip.tsStack, ip.ts)
		ip.gs = ip.gs.Clone()
		ip.ts = ip.ts.Clone()
	case "Q":
		if len(ip.gsStack) == 0 {
			return &rendererr.GraphicsStackUnderflow{}
		}
		ip.gs = ip.gsStack[len(ip.gsStack)-1]
		ip.ts = ip.tsStack[len(ip.tsStack)-1]
		ip.gsStack = ip.gsStack[:len(ip.gsStack)-1]
		ip.tsStack = ip.tsStack[:len(ip.tsStack)-1]
	case "cm":
		if len(args) < 6 {
			return nil
		}
		m := matrix.Matrix{num(args[0]), num(args[1]), num(args[2]), num(args[3]), num(args[4]), num(args[5])}
		ip.gs.CTM = m.Mul(ip.gs.CTM)
	case "w":
		if len(args) >= 1 {
			ip.gs.Stroke.LineWidth = num(args[0])
		}
	case "J":
		if len(args) >= 1 {
			ip.gs.Stroke.Cap = graphics.LineCap(int(num(args[0])))
		}
	case "j":
		if len(args) >= 1 {
			ip.gs.Stroke.Join = graphics.LineJoin(int(num(args[0])))
		}
	case "M":
		if len(args) >= 1 {
			ip.gs.Stroke.MiterLimit = num(args[0])
		}
	case "d":
		if len(args) >= 2 {
			arr, _ := args[0].(pdf.Array)
			pattern := make([]float64, len(arr))
			for i, v := range arr {
				pattern[i] = num(v)
			}
			ip.gs.Stroke.Dash = graphics.Dash{Pattern: pattern, Phase: num(args[1])}
		}
	case "i":
		if len(args) >= 1 {
			ip.gs.Stroke.Flatness = num(args[0])
		}
	case "ri":
		// rendering intent: no visible effect on this engine's output.
	case "gs":
		if len(args) >= 1 {
			if err := ip.applyExtGState(args[0]); err != nil {
				return err
			}
		}

	// --- path construction ---
	case "m":
		if len(args) >= 2 {
			ip.rectHint = false
			ip.path.MoveTo(outline.Point{X: num(args[0]), Y: num(args[1])})
		}
	case "l":
		if len(args) >= 2 {
			ip.rectHint = false
			ip.path.LineTo(outline.Point{X: num(args[0]), Y: num(args[1])})
		}
	case "c":
		if len(args) >= 6 {
			ip.rectHint = false
			ip.path.CubeTo(
				outline.Point{X: num(args[0]), Y: num(args[1])},
				outline.Point{X: num(args[2]), Y: num(args[3])},
				outline.Point{X: num(args[4]), Y: num(args[5])},
			)
		}
	case "v":
		if len(args) >= 4 {
			ip.rectHint = false
			ctrl1 := ip.path.CurrentPoint()
			ip.path.CubeTo(ctrl1,
				outline.Point{X: num(args[0]), Y: num(args[1])},
				outline.Point{X: num(args[2]), Y: num(args[3])},
			)
		}
	case "y":
		if len(args) >= 4 {
			ip.rectHint = false
			end := outline.Point{X: num(args[2]), Y: num(args[3])}
			ip.path.CubeTo(outline.Point{X: num(args[0]), Y: num(args[1])}, end, end)
		}
	case "re":
		if len(args) >= 4 {
			x, y, w, h := num(args[0]), num(args[1]), num(args[2]), num(args[3])
			ip.rectHint = len(ip.path.Outline().Contours) == 0
			ip.path.Rect(x, y, w, h)
			ip.rectStart = outline.Point{X: x, Y: y}
			ip.rectW, ip.rectH = w, h
		}
	case "h":
		ip.path.ClosePath()

	// --- clipping (deferred to the next painting operator) ---
	case "W":
		ip.pendingClip = true
		ip.pendingClipRule = outline.NonZero
	case "W*":
		ip.pendingClip = true
		ip.pendingClipRule = outline.EvenOdd

	// --- path painting ---
	case "S":
		return ip.paint(graphics.DrawStroke, outline.NonZero)
	case "s":
		ip.path.ClosePath()
		return ip.paint(graphics.DrawStroke, outline.NonZero)
	case "f", "F":
		return ip.paint(graphics.DrawFill, outline.NonZero)
	case "f*":
		return ip.paint(graphics.DrawFill, outline.EvenOdd)
	case "B":
		return ip.paint(graphics.DrawFillStroke, outline.NonZero)
	case "B*":
		return ip.paint(graphics.DrawFillStroke, outline.EvenOdd)
	case "b":
		ip.path.ClosePath()
		return ip.paint(graphics.DrawFillStroke, outline.NonZero)
	case "b*":
		ip.path.ClosePath()
		return ip.paint(graphics.DrawFillStroke, outline.EvenOdd)
	case "n":
		return ip.paint(-1, outline.NonZero)

	// --- color ---
	case "g":
		ip.setDeviceColor("DeviceGray", floats(args), false)
	case "G":
		ip.setDeviceColor("DeviceGray", floats(args), true)
	case "rg":
		ip.setDeviceColor("DeviceRGB", floats(args), false)
	case "RG":
		ip.setDeviceColor("DeviceRGB", floats(args), true)
	case "k":
		ip.setDeviceColor("DeviceCMYK", floats(args), false)
	case "K":
		ip.setDeviceColor("DeviceCMYK", floats(args), true)
	case "cs":
		if len(args) >= 1 {
			ip.setColorSpace(args[0], false)
		}
	case "CS":
		if len(args) >= 1 {
			ip.setColorSpace(args[0], true)
		}
	case "sc", "scn":
		return ip.setColor(args, false)
	case "SC", "SCN":
		return ip.setColor(args, true)

	// --- text object ---
	case "BT":
		ip.ts.BeginText()
	case "ET":
		// nothing to flush: each showing operator emits its own span.
	case "Tc":
		if len(args) >= 1 {
			ip.ts.CharSpace = num(args[0])
		}
	case "Tw":
		if len(args) >= 1 {
			ip.ts.WordSpace = num(args[0])
		}
	case "Tz":
		if len(args) >= 1 {
			ip.ts.HorizScale = num(args[0]) / 100
		}
	case "TL":
		if len(args) >= 1 {
			ip.ts.Leading = num(args[0])
		}
	case "Tf":
		if len(args) >= 2 {
			if err := ip.setFont(args[0], num(args[1])); err != nil {
				return err
			}
		}
	case "Tr":
		if len(args) >= 1 {
			ip.ts.Mode = graphics.RenderMode(int(num(args[0])))
		}
	case "Ts":
		if len(args) >= 1 {
			ip.ts.Rise = num(args[0])
		}
	case "Td":
		if len(args) >= 2 {
			ip.ts.MoveTextPosition(num(args[0]), num(args[1]))
		}
	case "TD":
		if len(args) >= 2 {
			ip.ts.Leading = -num(args[1])
			ip.ts.MoveTextPosition(num(args[0]), num(args[1]))
		}
	case "Tm":
		if len(args) >= 6 {
			ip.ts.SetTextMatrix(matrix.Matrix{num(args[0]), num(args[1]), num(args[2]), num(args[3]), num(args[4]), num(args[5])})
		}
	case "T*":
		ip.ts.TextNewline()
	case "Tj":
		if len(args) >= 1 {
			if str, ok := args[0].(pdf.String); ok {
				ip.showText(str)
			}
		}
	case "'":
		ip.ts.TextNewline()
		if len(args) >= 1 {
			if str, ok := args[0].(pdf.String); ok {
				ip.showText(str)
			}
		}
	case "\"":
		if len(args) >= 3 {
			ip.ts.WordSpace = num(args[0])
			ip.ts.CharSpace = num(args[1])
			ip.ts.TextNewline()
			if str, ok := args[2].(pdf.String); ok {
				ip.showText(str)
			}
		}
	case "TJ":
		if len(args) >= 1 {
			if arr, ok := args[0].(pdf.Array); ok {
				ip.showTextAdjusted(arr)
			}
		}

	// --- Type3 glyph metrics: this engine does not execute Type3 glyph
	// procedures (/CharProcs), so d0/d1 have no effect; Type3 advances
	// come only from the widths table consulted by ShowText.
	case "d0", "d1":

	// --- marked content: no visual effect ---
	case "BMC", "BDC", "EMC", "MP", "DP":

	// --- compatibility operators ---
	case "BX", "EX":

	case "sh":
		ip.backend.BugOp(ip.opIndex) // shading patterns paint the whole clip; unsupported as a standalone fill.

	// --- XObjects and inline images ---
	case "Do":
		if len(args) >= 1 {
			if name, ok := args[0].(pdf.Name); ok {
				return ip.doXObject(name)
			}
		}
	case "BI":
		return ip.inlineImage(s)

	default:
		ip.backend.BugOp(ip.opIndex)
	}
	return nil
}

func num(obj pdf.Object) float64 {
	switch x := obj.(type) {
	case pdf.Integer:
		return float64(x)
	case pdf.Real:
		return float64(x)
	default:
		return 0
	}
}

func floats(args []pdf.Object) []float64 {
	out := make([]float64, len(args))
	for i, a := range args {
		out[i] = num(a)
	}
	return out
}

func (ip *Interpreter) missingResource(kind, name string) error {
	err := &rendererr.MissingResource{Kind: kind, Name: name}
	if ip.r.Options().AllowErrorInOption {
		ip.backend.BugOp(ip.opIndex)
		return nil
	}
	return err
}

func (ip *Interpreter) setDeviceColor(name pdf.Name, comps []float64, stroke bool) {
	sp, err := pdfcolor.ResolveSpace(ip.r, name, ip.res)
	if err != nil {
		return
	}
	if stroke {
		ip.gs.StrokeColorSpace = sp
		if fill, err := sp.ToFill(ip.r, comps, ip.gs.EffectiveStrokeBlendMode()); err == nil {
			ip.gs.StrokeColor = fill
		}
	} else {
		ip.gs.FillColorSpace = sp
		if fill, err := sp.ToFill(ip.r, comps, ip.gs.EffectiveFillBlendMode()); err == nil {
			ip.gs.FillColor = fill
		}
	}
}

func (ip *Interpreter) setColorSpace(obj pdf.Object, stroke bool) {
	sp, err := pdfcolor.ResolveSpace(ip.r, obj, ip.res)
	if err != nil {
		return
	}
	zeros := make([]float64, sp.NumComponents())
	if stroke {
		ip.gs.StrokeColorSpace = sp
		if fill, err := sp.ToFill(ip.r, zeros, ip.gs.EffectiveStrokeBlendMode()); err == nil {
			ip.gs.StrokeColor = fill
		}
	} else {
		ip.gs.FillColorSpace = sp
		if fill, err := sp.ToFill(ip.r, zeros, ip.gs.EffectiveFillBlendMode()); err == nil {
			ip.gs.FillColor = fill
		}
	}
}

// setColor implements sc/SC/scn/SCN: a run of numeric tint components,
// optionally followed by a trailing pattern name for the Pattern color
// space.
func (ip *Interpreter) setColor(args []pdf.Object, stroke bool) error {
	if len(args) == 0 {
		return nil
	}
	sp := ip.gs.FillColorSpace
	mode := ip.gs.EffectiveFillBlendMode()
	if stroke {
		sp = ip.gs.StrokeColorSpace
		mode = ip.gs.EffectiveStrokeBlendMode()
	}

	if name, ok := args[len(args)-1].(pdf.Name); ok {
		comps := floats(args[:len(args)-1])
		fill, err := pdfcolor.ResolvePattern(ip.r, name, comps, sp, ip.res, mode)
		if err != nil {
			if mr, ok := err.(*rendererr.MissingResource); ok {
				return ip.missingResource(mr.Kind, mr.Name)
			}
			return err
		}
		if stroke {
			ip.gs.StrokeColor = fill
		} else {
			ip.gs.FillColor = fill
		}
		return nil
	}

	if sp == nil {
		return nil
	}
	fill, err := sp.ToFill(ip.r, floats(args), mode)
	if err != nil {
		return nil
	}
	if stroke {
		ip.gs.StrokeColor = fill
	} else {
		ip.gs.FillColor = fill
	}
	return nil
}

// applyExtGState merges an ExtGState dictionary's supported keys into the
// graphics state, per the 'gs' operator.
func (ip *Interpreter) applyExtGState(nameObj pdf.Object) error {
	name, ok := nameObj.(pdf.Name)
	if !ok {
		return nil
	}
	obj, err := ip.res.ExtGState(name)
	if err != nil {
		return err
	}
	if obj == nil {
		return ip.missingResource("ExtGState", string(name))
	}
	dict, ok := obj.(pdf.Dict)
	if !ok {
		return nil
	}

	if v, err := pdf.GetNumber(ip.r, dict["LW"]); err == nil && dict["LW"] != nil {
		ip.gs.Stroke.LineWidth = float64(v)
	}
	if v, err := pdf.GetBool(ip.r, dict["OP"]); err == nil && dict["OP"] != nil {
		ip.gs.OverprintStroke = bool(v)
	}
	if v, err := pdf.GetBool(ip.r, dict["op"]); err == nil && dict["op"] != nil {
		ip.gs.OverprintFill = bool(v)
	}
	if v, err := pdf.GetNumber(ip.r, dict["OPM"]); err == nil && dict["OPM"] != nil {
		ip.gs.OverprintMode = int(v)
	}
	if v, err := pdf.GetNumber(ip.r, dict["CA"]); err == nil && dict["CA"] != nil {
		ip.gs.StrokeAlpha = float64(v)
	}
	if v, err := pdf.GetNumber(ip.r, dict["ca"]); err == nil && dict["ca"] != nil {
		ip.gs.FillAlpha = float64(v)
	}
	if bm, ok := blendModeFromExtGState(ip.r, dict["BM"]); ok {
		ip.gs.FillBlendMode = bm
		ip.gs.StrokeBlendMode = bm
	}
	return nil
}

// blendModeFromExtGState maps a /BM entry (a Name, or an Array of Names
// naming a fallback chain) onto the engine's two-mode blend model: Normal
// and Compatible behave like simple overlay compositing, every separable
// blend mode is approximated as Darken.
func blendModeFromExtGState(r pdf.Getter, obj pdf.Object) (pdfcolor.BlendMode, bool) {
	if obj == nil {
		return 0, false
	}
	resolved, err := pdf.Resolve(r, obj)
	if err != nil {
		return 0, false
	}
	var name pdf.Name
	switch x := resolved.(type) {
	case pdf.Name:
		name = x
	case pdf.Array:
		if len(x) == 0 {
			return 0, false
		}
		n, ok := x[0].(pdf.Name)
		if !ok {
			return 0, false
		}
		name = n
	default:
		return 0, false
	}
	switch name {
	case "Normal", "Compatible":
		return pdfcolor.Overlay, true
	default:
		return pdfcolor.Darken, true
	}
}

func (ip *Interpreter) setFont(nameObj pdf.Object, size float64) error {
	name, ok := nameObj.(pdf.Name)
	if !ok {
		return nil
	}
	ref, err := ip.res.Font(name)
	if err != nil {
		return err
	}
	if ref == nil {
		ip.curFont = nil
		ip.ts.Font = nil
		ip.ts.FontSize = size
		return ip.missingResource("Font", string(name))
	}
	bf, err := ip.fonts.resolve(ref)
	if err != nil {
		return err
	}
	ip.curFont = bf
	if bf != nil {
		ip.ts.Font = bf.entry
	}
	ip.ts.FontSize = size
	return nil
}

func (ip *Interpreter) showText(data pdf.String) {
	var widths graphics.WidthSource
	var glyphs graphics.GlyphSource
	if ip.curFont != nil {
		widths, glyphs = ip.curFont.widths, ip.curFont.glyphs
	}
	fill := graphics.FillMode{Fill: ip.gs.FillColor, Alpha: ip.gs.FillAlpha, BlendMode: ip.gs.EffectiveFillBlendMode()}
	stroke := graphics.FillMode{Fill: ip.gs.StrokeColor, Alpha: ip.gs.StrokeAlpha, BlendMode: ip.gs.EffectiveStrokeBlendMode()}
	span := ip.ts.ShowText([]byte(data), ip.opIndex, widths, glyphs, ip.gs.CTM, fill, stroke, ip.gs.Stroke, ip.gs.ClipID, ip.backend)
	ip.backend.AddText(span, ip.gs.ClipID)
}

func (ip *Interpreter) showTextAdjusted(arr pdf.Array) {
	items := make([]graphics.TJItem, 0, len(arr))
	for _, a := range arr {
		switch x := a.(type) {
		case pdf.String:
			items = append(items, graphics.TJItem{Text: []byte(x)})
		case pdf.Integer:
			items = append(items, graphics.TJItem{Number: float64(x), IsNumber: true})
		case pdf.Real:
			items = append(items, graphics.TJItem{Number: float64(x), IsNumber: true})
		}
	}
	var widths graphics.WidthSource
	var glyphs graphics.GlyphSource
	if ip.curFont != nil {
		widths, glyphs = ip.curFont.widths, ip.curFont.glyphs
	}
	fill := graphics.FillMode{Fill: ip.gs.FillColor, Alpha: ip.gs.FillAlpha, BlendMode: ip.gs.EffectiveFillBlendMode()}
	stroke := graphics.FillMode{Fill: ip.gs.StrokeColor, Alpha: ip.gs.StrokeAlpha, BlendMode: ip.gs.EffectiveStrokeBlendMode()}
	span := ip.ts.ShowTextAdjusted(items, ip.opIndex, widths, glyphs, ip.gs.CTM, fill, stroke, ip.gs.Stroke, ip.gs.ClipID, ip.backend)
	ip.backend.AddText(span, ip.gs.ClipID)
}

// paint implements a path-painting operator: kind < 0 means 'n' (no paint,
// clip-only). The accumulated path is always consumed and reset, and any
// pending W/W* clip is folded in after painting per PDF 32000-1:2008
// §8.5.4.
func (ip *Interpreter) paint(kind graphics.DrawKind, rule outline.FillRule) error {
	o := ip.path.Outline()

	if kind >= 0 && !o.IsEmpty() {
		mode := graphics.DrawMode{FillRule: rule}
		switch kind {
		case graphics.DrawFill:
			mode.Kind = graphics.DrawFill
			mode.Fill = graphics.FillMode{Fill: ip.gs.FillColor, Alpha: ip.gs.FillAlpha, BlendMode: ip.gs.EffectiveFillBlendMode()}
		case graphics.DrawStroke:
			mode.Kind = graphics.DrawStroke
			mode.Stroke = graphics.FillMode{Fill: ip.gs.StrokeColor, Alpha: ip.gs.StrokeAlpha, BlendMode: ip.gs.EffectiveStrokeBlendMode()}
			mode.Style = ip.gs.Stroke
		case graphics.DrawFillStroke:
			mode.Kind = graphics.DrawFillStroke
			mode.Fill = graphics.FillMode{Fill: ip.gs.FillColor, Alpha: ip.gs.FillAlpha, BlendMode: ip.gs.EffectiveFillBlendMode()}
			mode.Stroke = graphics.FillMode{Fill: ip.gs.StrokeColor, Alpha: ip.gs.StrokeAlpha, BlendMode: ip.gs.EffectiveStrokeBlendMode()}
			mode.Style = ip.gs.Stroke
		}
		if err := ip.backend.Draw(o, mode, ip.gs.CTM, ip.gs.ClipID); err != nil {
			return err
		}
	}

	if ip.pendingClip {
		id := ip.backend.CreateClipPath(o, ip.pendingClipRule, ip.gs.ClipID, ip.gs.CTM)
		ip.gs.IntersectClip(id, ip.rectClipHint())
		ip.pendingClip = false
	}

	ip.path.Reset()
	ip.rectHint = false
	return nil
}

// rectClipHint returns the current path's rectangle in page space when it
// was built as exactly one axis-aligned 're' call, so State.IntersectClip
// can fold a rectangle-on-rectangle clip chain without consulting the
// backend. Any shear in the CTM (b or c nonzero) disqualifies the fold.
func (ip *Interpreter) rectClipHint() *pdf.Rectangle {
	if !ip.rectHint {
		return nil
	}
	m := ip.gs.CTM
	if m[1] != 0 || m[2] != 0 {
		return nil
	}
	p0 := m.Apply(ip.rectStart)
	p1 := m.Apply(outline.Point{X: ip.rectStart.X + ip.rectW, Y: ip.rectStart.Y + ip.rectH})
	r := pdf.Rectangle{LLx: p0.X, LLy: p0.Y, URx: p1.X, URy: p1.Y}
	if r.URx < r.LLx {
		r.LLx, r.URx = r.URx, r.LLx
	}
	if r.URy < r.LLy {
		r.LLy, r.URy = r.URy, r.LLy
	}
	return &r
}

func (ip *Interpreter) doXObject(name pdf.Name) error {
	obj, err := ip.res.XObject(name)
	if err != nil {
		return err
	}
	if obj == nil {
		return ip.missingResource("XObject", string(name))
	}
	ref, isRef := obj.(pdf.Reference)
	resolved, err := pdf.Resolve(ip.r, obj)
	if err != nil {
		return err
	}
	stream, ok := resolved.(pdf.Stream)
	if !ok {
		return nil
	}
	subtype, _ := pdf.GetName(ip.r, stream.Dict["Subtype"])
	switch subtype {
	case "Image":
		if isRef && ip.images != nil {
			if img, hit := ip.images.Get(ref); hit {
				if img == nil {
					return nil // a cached decode failure; don't retry
				}
				return ip.backend.DrawImage(img, ip.gs.CTM, ip.gs.FillAlpha, ip.gs.EffectiveFillBlendMode(), ip.gs.ClipID)
			}
		}
		return ip.drawImageXObject(ref, isRef, stream)
	case "Form":
		return ip.runForm(stream)
	case "PS":
		ip.backend.BugPostscript()
		return nil
	default:
		ip.backend.BugOp(ip.opIndex)
		return nil
	}
}

// drawImageXObject decodes and composites an Image XObject. Per §7's
// per-image failure policy, a decode error skips the draw with a
// diagnostic instead of aborting the page.
func (ip *Interpreter) drawImageXObject(ref pdf.Reference, isRef bool, stream pdf.Stream) error {
	data, err := stream.Reader.ReadAll()
	if err != nil {
		ip.backend.BugOp(ip.opIndex)
		return nil
	}
	img, err := ip.decodeImage(stream.Dict, data, ip.gs.FillColor)
	if err != nil || img == nil {
		ip.backend.BugOp(ip.opIndex)
		if isRef && ip.images != nil {
			ip.images.Put(ref, nil)
		}
		return nil
	}
	if isRef && ip.images != nil {
		ip.images.Put(ref, img)
	}
	return ip.backend.DrawImage(img, ip.gs.CTM, ip.gs.FillAlpha, ip.gs.EffectiveFillBlendMode(), ip.gs.ClipID)
}

// runForm recurses a Form XObject's content stream through a child
// interpreter: the child inherits the parent's CTM (pre-multiplied by the
// form's own /Matrix) and clip, but its path and save/restore stack never
// escape back to the caller.
func (ip *Interpreter) runForm(stream pdf.Stream) error {
	if ip.depth >= maxFormDepth {
		return &rendererr.Unimplemented{What: "Form XObject nesting too deep"}
	}

	res := ip.res
	if dict, err := pdf.GetDict(ip.r, stream.Dict["Resources"]); err == nil && dict != nil {
		res = NewResources(ip.r, dict)
	}

	child := NewInterpreter(ip.r, ip.backend, res, ip.fonts)
	child.images = ip.images
	child.depth = ip.depth + 1
	child.gs = ip.gs.Clone()
	child.ts = ip.ts.Clone()
	child.opIndex = ip.opIndex

	if m, err := pdf.GetFloatArray(ip.r, stream.Dict["Matrix"]); err == nil && len(m) == 6 {
		fm := matrix.Matrix{m[0], m[1], m[2], m[3], m[4], m[5]}
		child.gs.CTM = fm.Mul(child.gs.CTM)
	}

	if rect, err := pdf.GetRectangle(ip.r, stream.Dict["BBox"]); err == nil && rect != nil {
		o := outline.NewBuilder()
		o.Rect(rect.LLx, rect.LLy, rect.Dx(), rect.Dy())
		id := ip.backend.CreateClipPath(o.Outline(), outline.NonZero, child.gs.ClipID, child.gs.CTM)
		child.gs.IntersectClip(id, nil)
	}

	data, err := stream.Reader.ReadAll()
	if err != nil {
		return err
	}
	if err := child.Run(bytes.NewReader(data)); err != nil {
		return err
	}
	ip.opIndex = child.opIndex
	return nil
}

func (ip *Interpreter) inlineImage(s *scanner) error {
	dict := pdf.Dict{}
	for {
		obj, err := s.Next()
		if err != nil {
			return err
		}
		op, isOp := obj.(pdf.Operator)
		if isOp && op == "ID" {
			break
		}
		key, ok := obj.(pdf.Name)
		if !ok {
			continue
		}
		val, err := s.Next()
		if err != nil {
			return err
		}
		dict[key] = val
	}

	data, err := s.readInlineImageData()
	if err != nil {
		return err
	}

	img, err := ip.decodeImage(dict, data, ip.gs.FillColor)
	if err != nil || img == nil {
		ip.backend.BugOp(ip.opIndex)
		return nil
	}
	return ip.backend.DrawInlineImage(img, ip.gs.CTM, ip.gs.FillAlpha, ip.gs.EffectiveFillBlendMode(), ip.gs.ClipID)
}
