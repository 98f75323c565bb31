package content

import (
	"errors"

	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/rasterimg"
	"pdfrender.dev/engine/rendererr"
)

var (
	errInvalidImageDims = errors.New("image has non-positive width or height")
	errShortMaskData    = errors.New("image mask data shorter than width*height implies")
)

// decodeImage resolves an image XObject's (or inline image's) dictionary
// and already filter-decoded sample bytes into a backend-ready pixel
// buffer. An /ImageMask stencil is decoded specially: its sample bits
// select between "paint with the caller's current fill color" and
// "transparent", rather than naming a color space of their own.
func (ip *Interpreter) decodeImage(dict pdf.Dict, data []byte, fill pdfcolor.Fill) (*rasterimg.Image, error) {
	width, err := pdf.GetNumber(ip.r, dictLookup(dict, "Width", "W"))
	if err != nil {
		return nil, err
	}
	height, err := pdf.GetNumber(ip.r, dictLookup(dict, "Height", "H"))
	if err != nil {
		return nil, err
	}
	w, h := int(width), int(height)
	if w <= 0 || h <= 0 {
		return nil, &rendererr.InvalidImageData{Err: errInvalidImageDims}
	}

	isMask, err := pdf.GetBool(ip.r, dictLookup(dict, "ImageMask", "IM"))
	if err != nil {
		return nil, err
	}
	if bool(isMask) {
		return decodeStencilMask(w, h, data, fill)
	}

	bpc, err := pdf.GetNumber(ip.r, dictLookup(dict, "BitsPerComponent", "BPC"))
	if err != nil {
		return nil, err
	}

	spaceObj := dictLookup(dict, "ColorSpace", "CS")
	space, err := pdfcolor.ResolveSpace(ip.r, spaceObj, ip.res)
	if err != nil {
		return nil, err
	}

	mask, err := ip.decodeSoftMask(dict)
	if err != nil {
		return nil, err
	}

	src := rasterimg.Source{Width: w, Height: h, BitsPerComponent: int(bpc), Space: space, Data: data}
	return rasterimg.Decode(ip.r, src, mask, ip.gs.EffectiveFillBlendMode())
}

// decodeSoftMask resolves an image XObject's /SMask entry, if present.
// Inline images never carry one.
func (ip *Interpreter) decodeSoftMask(dict pdf.Dict) (*rasterimg.SoftMask, error) {
	obj, ok := dict["SMask"]
	if !ok {
		return nil, nil
	}
	resolved, err := pdf.Resolve(ip.r, obj)
	if err != nil || resolved == nil {
		return nil, err
	}
	stream, ok := resolved.(pdf.Stream)
	if !ok {
		return nil, nil
	}
	width, err := pdf.GetNumber(ip.r, stream.Dict["Width"])
	if err != nil {
		return nil, err
	}
	height, err := pdf.GetNumber(ip.r, stream.Dict["Height"])
	if err != nil {
		return nil, err
	}
	bpc, err := pdf.GetNumber(ip.r, stream.Dict["BitsPerComponent"])
	if err != nil {
		return nil, err
	}
	data, err := stream.Reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return &rasterimg.SoftMask{Width: int(width), Height: int(height), BitsPerComponent: int(bpc), Data: data}, nil
}

// decodeStencilMask expands a 1-bit-per-pixel /ImageMask into a pixel
// buffer carrying fill's color with per-pixel alpha: PDF's default decode
// ([0 1]) paints on a 0 sample and masks a 1 sample.
func decodeStencilMask(w, h int, data []byte, fill pdfcolor.Fill) (*rasterimg.Image, error) {
	rowStride := (w + 7) / 8
	if len(data) < rowStride*h {
		return nil, &rendererr.InvalidImageData{Err: errShortMaskData}
	}

	r, g, b := uint8(0), uint8(0), uint8(0)
	if solid, ok := fill.(pdfcolor.FillSolid); ok {
		r = clampByte(solid.R)
		g = clampByte(solid.G)
		b = clampByte(solid.B)
	}

	out := rasterimg.NewImage(w, h)
	out.IsMask = true
	for y := 0; y < h; y++ {
		rowOff := y * rowStride
		for x := 0; x < w; x++ {
			byteVal := data[rowOff+x/8]
			bit := (byteVal >> uint(7-x%8)) & 1
			alpha := uint8(0)
			if bit == 0 {
				alpha = 255
			}
			out.Set(x, y, rasterimg.RGBA{R: r, G: g, B: b, A: alpha})
		}
	}
	return out, nil
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 255
	}
	return uint8(v * 255)
}

// dictLookup returns the first of several candidate keys present in dict;
// inline images use abbreviated key names (§4.1's BI/ID/EI operators) for
// the same entries an Image XObject spells out in full.
func dictLookup(dict pdf.Dict, keys ...pdf.Name) pdf.Object {
	for _, k := range keys {
		if v, ok := dict[k]; ok {
			return v
		}
	}
	return nil
}
