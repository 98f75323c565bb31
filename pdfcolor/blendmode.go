package pdfcolor

// BlendMode selects between plain source-over compositing and the
// multiplicative emulation used for CMYK overprint.
type BlendMode int

const (
	// Overlay is normal source-over painting.
	Overlay BlendMode = iota
	// Darken approximates overprint by taking the per-channel minimum with
	// the existing backdrop, matching how CMYK-device output darkens
	// where inks physically overlap.
	Darken
)

// WithOverprint returns the BlendMode that applies once the overprint flag
// overprint flag is set: it flips Overlay to Darken and
// leaves Darken unchanged.
func (m BlendMode) WithOverprint(overprint bool) BlendMode {
	if overprint {
		return Darken
	}
	return m
}
