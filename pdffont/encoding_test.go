package pdffont

import "testing"

func TestStandardEncodingRoundTrip(t *testing.T) {
	for _, c := range []byte{65, 97, 48} {
		r := StandardEncoding.Decode(c)
		got, ok := StandardEncoding.Encode(r)
		if !ok || got != c {
			t.Errorf("round trip for byte %d: decode=%U encode=(%d,%v)", c, r, got, ok)
		}
	}
}

func TestSymbolEncodingGreek(t *testing.T) {
	if r := SymbolEncoding.Decode('A'); r != 0x0391 {
		t.Errorf("Symbol 'A' = %U, want Alpha U+0391", r)
	}
	if c, ok := SymbolEncoding.Encode(0x03b1); !ok || c != 'a' {
		t.Errorf("Symbol alpha encode = (%d,%v), want ('a', true)", c, ok)
	}
}

func TestSymbolEncodingUnmappedByte(t *testing.T) {
	if r := SymbolEncoding.Decode(200); r != noRune {
		t.Errorf("Symbol byte 200 = %U, want noRune (unmapped)", r)
	}
}

func TestWinAnsiASCIIIdentity(t *testing.T) {
	for c := byte('A'); c <= 'Z'; c++ {
		if r := WinAnsiEncoding.Decode(c); r != rune(c) {
			t.Errorf("WinAnsi byte %d = %U, want identity", c, r)
		}
	}
}
