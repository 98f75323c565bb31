package content

import "pdfrender.dev/engine/pdf"

// fixedWidths implements graphics.WidthSource over a sparse char-id → width
// table plus an optional default (a simple font's /MissingWidth, or a
// composite font's /DW), matching §4.3's "widths table (optional)" field.
type fixedWidths struct {
	values     map[uint32]float64
	fallback   float64
	hasDefault bool
}

func (w fixedWidths) Width(charID uint32) (float64, bool) {
	if v, ok := w.values[charID]; ok {
		return v, true
	}
	if w.hasDefault {
		return w.fallback, true
	}
	return 0, false
}

// parseSimpleWidths reads a simple font's /FirstChar and /Widths. /LastChar
// is not consulted: the length of /Widths alone bounds the code range.
func parseSimpleWidths(r pdf.Getter, dict pdf.Dict, missingWidth float64, haveMissing bool) fixedWidths {
	out := fixedWidths{values: make(map[uint32]float64), fallback: missingWidth, hasDefault: haveMissing}

	first, err := pdf.GetNumber(r, dict["FirstChar"])
	if err != nil {
		return out
	}
	arr, err := pdf.GetFloatArray(r, dict["Widths"])
	if err != nil {
		return out
	}
	for i, w := range arr {
		out.values[uint32(int(first)+i)] = w
	}
	return out
}

// parseCompositeWidths reads a CIDFont's /DW default width and /W array:
// groups of either "c [w1 w2 ... wn]" (consecutive CIDs from c) or
// "cFirst cLast w" (uniform width over a CID range).
func parseCompositeWidths(r pdf.Getter, cidFont pdf.Dict) fixedWidths {
	dw, err := pdf.GetNumber(r, cidFont["DW"])
	if err != nil || cidFont["DW"] == nil {
		dw = 1000
	}
	out := fixedWidths{values: make(map[uint32]float64), fallback: float64(dw), hasDefault: true}

	arr, err := pdf.GetArray(r, cidFont["W"])
	if err != nil || arr == nil {
		return out
	}

	i := 0
	for i < len(arr) {
		first, err := pdf.GetNumber(r, arr[i])
		if err != nil || i+1 >= len(arr) {
			break
		}
		next, err := pdf.Resolve(r, arr[i+1])
		if err != nil {
			break
		}
		if sub, ok := next.(pdf.Array); ok {
			for j, w := range sub {
				wn, err := pdf.GetNumber(r, w)
				if err != nil {
					continue
				}
				out.values[uint32(int(first))+uint32(j)] = float64(wn)
			}
			i += 2
			continue
		}
		if i+2 >= len(arr) {
			break
		}
		last, err1 := pdf.GetNumber(r, arr[i+1])
		w, err2 := pdf.GetNumber(r, arr[i+2])
		if err1 != nil || err2 != nil {
			break
		}
		for cid := int(first); cid <= int(last); cid++ {
			out.values[uint32(cid)] = float64(w)
		}
		i += 3
	}
	return out
}
