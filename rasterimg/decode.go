package rasterimg

import (
	"errors"
	stdimage "image"
	"image/color"
	stddraw "image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"pdfrender.dev/engine/pdf"
	"pdfrender.dev/engine/pdfcolor"
	"pdfrender.dev/engine/rendererr"
)

var (
	errInvalidDims = errors.New("image has non-positive width or height")
	errShortData   = errors.New("sample data shorter than width*height*bits-per-pixel implies")
)

// Source describes an image XObject's sample data plus the color space it
// is expressed in, after filter decoding but before pixel expansion.
type Source struct {
	Width, Height    int
	BitsPerComponent int
	Space            pdfcolor.Space
	Data             []byte
}

// SoftMask describes an image XObject's /SMask: a single-component alpha
// plane, possibly at different dimensions than the base image.
type SoftMask struct {
	Width, Height    int
	BitsPerComponent int
	Data             []byte
}

// Decode performs bit-depth expansion, color-space
// dispatch, and soft-mask alpha compositing.
func Decode(r pdf.Getter, src Source, mask *SoftMask, mode pdfcolor.BlendMode) (*Image, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return nil, &rendererr.InvalidImageData{Err: errInvalidDims}
	}

	numComp := src.Space.NumComponents()
	bpc := src.BitsPerComponent
	if bpc <= 0 {
		bpc = 8
	}

	isIndexed := pdfcolor.IsIndexed(src.Space)

	bitsPerPixel := bpc * numComp
	expectedBytes := (src.Width*bitsPerPixel + 7) / 8 * src.Height
	if len(src.Data) < expectedBytes {
		return nil, &rendererr.InvalidImageData{Err: errShortData}
	}

	alpha, err := resolveAlpha(src.Width, src.Height, mask)
	if err != nil {
		return nil, err
	}

	out := NewImage(src.Width, src.Height)
	maxVal := float64((uint64(1) << uint(bpc)) - 1)

	// Single-input color spaces (DeviceGray, Separation, CalGray) admit a
	// small lookup table keyed directly by the raw sample value, per
	// a 256-entry LUT, generalized to the
	// sample's actual bit depth.
	var lut []pdfcolor.Fill
	if numComp == 1 && !isIndexed && bpc <= 8 {
		lut = make([]pdfcolor.Fill, int(maxVal)+1)
		for i := range lut {
			fill, ferr := src.Space.ToFill(r, []float64{float64(i) / maxVal}, mode)
			if ferr != nil {
				return nil, &rendererr.InvalidImageData{Err: ferr}
			}
			lut[i] = fill
		}
	}

	rowStrideBits := src.Width * bitsPerPixel
	rowStrideBytes := (rowStrideBits + 7) / 8

	for y := 0; y < src.Height; y++ {
		rowOff := y * rowStrideBytes * 8
		for x := 0; x < src.Width; x++ {
			pixBit := rowOff + x*bitsPerPixel
			comps := make([]float64, numComp)
			var rawFirst uint64
			for c := 0; c < numComp; c++ {
				raw := readBits(src.Data, pixBit+c*bpc, bpc)
				if c == 0 {
					rawFirst = raw
				}
				if isIndexed {
					comps[c] = float64(raw)
				} else {
					comps[c] = float64(raw) / maxVal
				}
			}

			var fill pdfcolor.Fill
			if lut != nil {
				fill = lut[rawFirst]
			} else {
				fill, err = src.Space.ToFill(r, comps, mode)
				if err != nil {
					return nil, &rendererr.Unimplemented{What: "image color space/bit-depth combination: " + err.Error()}
				}
			}

			solid, ok := fill.(pdfcolor.FillSolid)
			if !ok {
				return nil, &rendererr.Unimplemented{What: "pattern fill inside image data"}
			}
			a := alpha.At(x, y)
			out.Set(x, y, RGBA{
				R: clamp255(solid.R),
				G: clamp255(solid.G),
				B: clamp255(solid.B),
				A: a,
			})
		}
	}

	return out, nil
}

func clamp255(v float64) uint8 {
	v = v * 255
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// resolveAlpha decodes the soft mask at its own resolution and resizes it
// to the base image's dimensions with a Catmull-Rom filter when they
// differ, or returns full opacity when there is no mask.
func resolveAlpha(width, height int, mask *SoftMask) (*stdimage.Gray, error) {
	full := stdimage.NewGray(stdimage.Rect(0, 0, width, height))
	if mask == nil {
		for i := range full.Pix {
			full.Pix[i] = 255
		}
		return full, nil
	}

	bpc := mask.BitsPerComponent
	if bpc <= 0 {
		bpc = 8
	}
	maxVal := float64((uint64(1) << uint(bpc)) - 1)
	rowStrideBytes := (mask.Width*bpc + 7) / 8

	src := stdimage.NewGray(stdimage.Rect(0, 0, mask.Width, mask.Height))
	for y := 0; y < mask.Height; y++ {
		rowOff := y * rowStrideBytes * 8
		for x := 0; x < mask.Width; x++ {
			raw := readBits(mask.Data, rowOff+x*bpc, bpc)
			v := clamp255(float64(raw) / maxVal)
			src.SetGray(x, y, color.Gray{Y: v})
		}
	}

	if mask.Width == width && mask.Height == height {
		return src, nil
	}

	xdraw.CatmullRom.Scale(full, full.Bounds(), src, src.Bounds(), stddraw.Over, nil)
	return full, nil
}

func readBits(data []byte, bitOffset, bpc int) uint64 {
	var v uint64
	for i := 0; i < bpc; i++ {
		byteIdx := (bitOffset + i) / 8
		bitIdx := 7 - (bitOffset+i)%8
		if byteIdx >= len(data) {
			break
		}
		bit := (data[byteIdx] >> uint(bitIdx)) & 1
		v = v<<1 | uint64(bit)
	}
	return v
}
