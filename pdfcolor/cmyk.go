package pdfcolor

// CMYKToRGB converts a DeviceCMYK color to RGB. Two
// formulas are used depending on BlendMode:
//
//   - Darken (overprint emulation): the additive-coverage form
//     1 - min(1, channel+k), which saturates to black as inks accumulate —
//     appropriate when simulating ink overlap on a physical substrate.
//   - Overlay (normal compositing): the multiplicative form
//     (1-channel) * (1-k), the conventional non-overprint CMYK→RGB
//     conversion.
func CMYKToRGB(c, m, y, k float64, mode BlendMode) (r, g, b float64) {
	if mode == Darken {
		return 1 - minF(1, c+k), 1 - minF(1, m+k), 1 - minF(1, y+k)
	}
	return (1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
