// Package pdffunc implements the four PDF function types (PDF 32000-1:2008
// §7.10): sampled (0), exponential interpolation (2), stitching (3), and
// PostScript calculator (4). Color-space tint transforms are the engine's
// only consumer.
package pdffunc

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clipDomain(in []float64, domain []float64) []float64 {
	if len(domain) < 2*len(in) {
		return in
	}
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = clip(x, domain[2*i], domain[2*i+1])
	}
	return out
}

func interpolate(x, xmin, xmax, ymin, ymax float64) float64 {
	if xmax == xmin {
		return ymin
	}
	return ymin + (x-xmin)*(ymax-ymin)/(xmax-xmin)
}
