package content

import "pdfrender.dev/engine/pdf"

// Resources wraps one page's or Form XObject's /Resources dictionary,
// resolving the named sub-dictionaries (Font, ExtGState, XObject,
// ColorSpace, Pattern, Properties) on demand. It implements
// pdfcolor.Resources directly so color-space resolution never needs its
// own copy of this lookup logic.
type Resources struct {
	r    pdf.Getter
	dict pdf.Dict
}

// NewResources wraps a page's /Resources dictionary. A nil dict is valid
// and behaves as an empty resource set.
func NewResources(r pdf.Getter, dict pdf.Dict) *Resources {
	return &Resources{r: r, dict: dict}
}

func (res *Resources) category(name pdf.Name) (pdf.Dict, error) {
	if res == nil || res.dict == nil {
		return nil, nil
	}
	obj, ok := res.dict[name]
	if !ok {
		return nil, nil
	}
	return pdf.GetDict(res.r, obj)
}

func (res *Resources) lookup(category, name pdf.Name) (pdf.Object, error) {
	dict, err := res.category(category)
	if err != nil || dict == nil {
		return nil, err
	}
	obj, ok := dict[name]
	if !ok {
		return nil, nil
	}
	return pdf.Resolve(res.r, obj)
}

// ColorSpace implements pdfcolor.Resources.
func (res *Resources) ColorSpace(name pdf.Name) (pdf.Object, error) { return res.lookup("ColorSpace", name) }

// Pattern implements pdfcolor.Resources.
func (res *Resources) Pattern(name pdf.Name) (pdf.Object, error) { return res.lookup("Pattern", name) }

// Font resolves a /Font resource entry, still wrapped in its indirect
// reference so the font cache can key on reference identity.
func (res *Resources) Font(name pdf.Name) (pdf.Object, error) {
	dict, err := res.category("Font")
	if err != nil || dict == nil {
		return nil, err
	}
	obj, ok := dict[name]
	if !ok {
		return nil, nil
	}
	return obj, nil
}

func (res *Resources) ExtGState(name pdf.Name) (pdf.Object, error) { return res.lookup("ExtGState", name) }

// XObject resolves a /XObject resource entry, still wrapped in its
// indirect reference: the image cache keys on (reference, blend mode)
// identity, so callers resolve it themselves once they need the stream.
func (res *Resources) XObject(name pdf.Name) (pdf.Object, error) {
	dict, err := res.category("XObject")
	if err != nil || dict == nil {
		return nil, err
	}
	obj, ok := dict[name]
	if !ok {
		return nil, nil
	}
	return obj, nil
}

func (res *Resources) Properties(name pdf.Name) (pdf.Object, error) {
	return res.lookup("Properties", name)
}
