package pdffont

import (
	"sort"

	"seehuhn.de/go/sfnt/glyph"
)

// CMapEntry is one reconciled char-id mapping: a glyph-id and an optional
// Unicode text fragment.
type CMapEntry struct {
	GID     glyph.ID
	Unicode string // "" means no Unicode fragment is known
}

// FontEntry is the result of reconciling a PDF font dictionary's encoding
// information against a font program's own tables: a single char-id to
// (glyph-id, Unicode) map, ready for use by the text-showing operators.
type FontEntry struct {
	IsCID  bool
	CMap   map[uint32]CMapEntry
	PSName string
}

// Lookup returns the reconciled entry for a char-id (a byte code for simple
// fonts, a CID for composite fonts). The zero value (GID 0, no Unicode) is
// returned when the char-id was never reconciled; this is not an error —
// the glyph still advances, it just renders nothing and contributes no text.
func (e *FontEntry) Lookup(charID uint32) CMapEntry {
	if e == nil {
		return CMapEntry{}
	}
	return e.CMap[charID]
}

// Inventory exposes the font program's own lookup tables, as needed by the
// reconciliation algorithm. This package's implementation, Font, wraps
// seehuhn.de/go/sfnt (TrueType/OpenType/CFF); Type 1 font programs have no
// Inventory implementation.
type Inventory interface {
	NumGlyphs() int
	GIDForName(name string) (glyph.ID, bool)
	GIDForUnicode(r rune) (glyph.ID, bool)
	GIDForCodepoint(cp int) (glyph.ID, bool)
	UnicodeForGID(gid glyph.ID) (rune, bool)
	IsCFF() bool
}

// CIDToGIDMap describes a PDF composite font's /CIDToGIDMap entry.
type CIDToGIDMap struct {
	Identity bool
	Table    []glyph.ID // Table[cid] = gid, used when Identity is false
}

// BuildInput collects every piece of encoding information that may or may
// not be present for a single PDF font, as enumerated by the Font-Entry
// Builder's reconciliation algorithm.
type BuildInput struct {
	// IsIdentityH is set for composite fonts whose base /Encoding is
	// Identity-H (or Identity-V).
	IsIdentityH bool

	// CIDToGID is non-nil for composite fonts that carry an explicit
	// /CIDToGIDMap entry (Identity or a lookup table).
	CIDToGID *CIDToGIDMap

	// NumCIDs bounds the identity CID fallback range when no narrower
	// information is available.
	NumCIDs int

	// BaseEncoding is one of the five PDF base encodings for simple fonts.
	// Nil means no base encoding was specified.
	BaseEncoding *tables

	// FontInternalEncoding is the font program's own byte-to-Unicode table,
	// when a transcoder between it and BaseEncoding is known to exist
	// (e.g. both are one of the five PDF base encodings). Nil disables
	// branch 3a.
	FontInternalEncoding *tables

	// Differences is the sparse code→glyph-name overlay from the font
	// dictionary's /Encoding /Differences array.
	Differences map[byte]string

	// ToUnicode is the sparse code/CID→Unicode fragment table from the
	// font's /ToUnicode CMap stream.
	ToUnicode map[uint32]string

	Inventory Inventory

	// RequireUniqueUnicode enables step 4's deduplication and PUA
	// synthesis pass.
	RequireUniqueUnicode bool

	PSName string
}

const (
	puaStart = 0xE000
	puaEnd   = 0xF800
)

// BuildFontEntry runs the five-step reconciliation algorithm and returns the
// resulting FontEntry. It never fails: an input that yields no usable
// mapping produces an entry with an empty CMap, and callers render no
// glyphs but still advance correctly.
func BuildFontEntry(in BuildInput) *FontEntry {
	e := &FontEntry{CMap: make(map[uint32]CMapEntry), PSName: in.PSName}

	switch {
	case in.CIDToGID != nil:
		e.IsCID = true
		buildFromCIDToGID(e, in)
	case in.IsIdentityH:
		e.IsCID = true
		buildIdentityCID(e, in)
	default:
		buildSimple(e, in)
		if len(e.CMap) == 0 {
			e.IsCID = true
			buildIdentityCID(e, in)
		}
	}

	if in.RequireUniqueUnicode {
		enforceUniqueUnicode(e)
	}

	return e
}

// buildFromCIDToGID implements step 1.
func buildFromCIDToGID(e *FontEntry, in BuildInput) {
	if in.CIDToGID.Identity {
		n := in.NumCIDs
		if in.Inventory != nil && in.Inventory.NumGlyphs() > n {
			n = in.Inventory.NumGlyphs()
		}
		for cid := 0; cid < n; cid++ {
			entry := CMapEntry{GID: glyph.ID(cid)}
			if u, ok := in.ToUnicode[uint32(cid)]; ok {
				entry.Unicode = u
			}
			e.CMap[uint32(cid)] = entry
		}
		return
	}

	for cid, gid := range in.CIDToGID.Table {
		entry := CMapEntry{GID: gid}
		if u, ok := in.ToUnicode[uint32(cid)]; ok {
			entry.Unicode = u
		} else if in.Inventory != nil {
			if r, ok := in.Inventory.UnicodeForGID(gid); ok {
				entry.Unicode = string(r)
			}
		}
		e.CMap[uint32(cid)] = entry
	}
}

// buildIdentityCID implements step 2 and the step-1/step-3e Identity
// fallback: a generic CID cmap built from whatever of ToUnicode, the font's
// platform cmap, or its codepoint table is available.
func buildIdentityCID(e *FontEntry, in BuildInput) {
	n := in.NumCIDs
	if in.Inventory != nil && in.Inventory.NumGlyphs() > n {
		n = in.Inventory.NumGlyphs()
	}
	for cid := 0; cid < n; cid++ {
		entry := CMapEntry{GID: glyph.ID(cid)}
		if u, ok := in.ToUnicode[uint32(cid)]; ok {
			entry.Unicode = u
		} else if in.Inventory != nil {
			if r, ok := in.Inventory.UnicodeForGID(glyph.ID(cid)); ok {
				entry.Unicode = string(r)
			}
		}
		e.CMap[uint32(cid)] = entry
	}
}

// buildSimple implements step 3 (branches a-d) for single-byte encodings.
func buildSimple(e *FontEntry, in BuildInput) {
	inv := in.Inventory

	for code := 0; code < 256; code++ {
		var (
			gid    glyph.ID
			have   bool
			uniStr string
		)

		switch {
		case in.BaseEncoding != nil && in.FontInternalEncoding != nil:
			// 3a: translate base -> Unicode -> font-internal byte -> GID.
			r := in.BaseEncoding.Decode(byte(code))
			if r != noRune {
				if fc, ok := in.FontInternalEncoding.Encode(r); ok && inv != nil {
					if g, ok := inv.GIDForCodepoint(int(fc)); ok {
						gid, have = g, true
					}
				}
				uniStr = string(r)
			}

		case in.BaseEncoding != nil:
			// 3b: translate base -> Unicode, then look up by Unicode.
			r := in.BaseEncoding.Decode(byte(code))
			if r != noRune {
				uniStr = string(r)
				if inv != nil {
					if g, ok := inv.GIDForUnicode(r); ok {
						gid, have = g, true
					}
				}
			}

		case inv != nil && inv.IsCFF():
			// 3c: seed from the CFF's own codepoint map.
			if g, ok := inv.GIDForCodepoint(code); ok {
				gid, have = g, true
				if r, ok := inv.UnicodeForGID(g); ok {
					uniStr = string(r)
				}
			}
		}

		if have || uniStr != "" {
			e.CMap[uint32(code)] = CMapEntry{GID: gid, Unicode: uniStr}
		}
	}

	// 3d: the Differences table overrides (and can add to) the above.
	for code, name := range in.Differences {
		gid, uniStr := resolveDifferenceName(name, code, inv)
		e.CMap[uint32(code)] = CMapEntry{GID: gid, Unicode: uniStr}
	}
}

// resolveDifferenceName implements step 3d's glyph-name resolution order.
func resolveDifferenceName(name string, code byte, inv Inventory) (glyph.ID, string) {
	uni := glyphNameToUnicode(name)

	if inv != nil {
		if g, ok := inv.GIDForName(name); ok {
			return g, uniOrPUA(uni, g)
		}
		if uni != "" {
			r := []rune(uni)[0]
			if g, ok := inv.GIDForUnicode(r); ok {
				return g, uni
			}
		}
		if g, ok := inv.GIDForCodepoint(int(code)); ok {
			return g, uniOrPUA(uni, g)
		}
	}

	return 0, uni
}

func uniOrPUA(uni string, gid glyph.ID) string {
	if uni != "" {
		return uni
	}
	return string(rune(0xF000 + int(gid)))
}

// enforceUniqueUnicode implements step 4.
func enforceUniqueUnicode(e *FontEntry) {
	ids := make([]uint32, 0, len(e.CMap))
	for id := range e.CMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return e.CMap[ids[i]].GID < e.CMap[ids[j]].GID })

	// Codepoints already spent as PUA fallbacks by step 3d (0xF000+gid) must
	// not be handed out again here.
	usedAsGID := make(map[rune]bool)
	for _, id := range ids {
		if u := e.CMap[id].Unicode; u != "" {
			if r := []rune(u)[0]; r >= puaStart && r < puaEnd {
				usedAsGID[r] = true
			}
		}
	}

	seenUnicode := make(map[string]bool)
	next := rune(puaStart)
	for _, id := range ids {
		entry := e.CMap[id]
		if entry.Unicode != "" {
			if seenUnicode[entry.Unicode] {
				entry.Unicode = ""
				e.CMap[id] = entry
			} else {
				seenUnicode[entry.Unicode] = true
				continue
			}
		}
		if entry.GID == 0 {
			continue
		}
		for next < puaEnd && usedAsGID[next] {
			next++
		}
		if next >= puaEnd {
			continue
		}
		entry.Unicode = string(next)
		e.CMap[id] = entry
		next++
	}
}
