package content

import (
	"bytes"
	"unicode/utf16"

	"pdfrender.dev/engine/pdf"
)

// parseToUnicodeCMap extracts the code/CID → Unicode mapping from a
// /ToUnicode CMap stream's bfchar and bfrange operators. The CMap language
// is a restricted PostScript dialect; its tokens (hex strings, arrays,
// names, integers) are exactly the tokens the content-stream scanner
// already understands, so the same tokenizer drives this parser too.
func parseToUnicodeCMap(data []byte) map[uint32]string {
	out := make(map[uint32]string)
	s := newScanner(bytes.NewReader(data))

	var pending []pdf.Object
	for {
		obj, err := s.Next()
		if err != nil {
			break
		}
		op, isOp := obj.(pdf.Operator)
		if !isOp {
			pending = append(pending, obj)
			continue
		}

		switch op {
		case "endbfchar":
			for i := 0; i+1 < len(pending); i += 2 {
				src, ok := pending[i].(pdf.String)
				if !ok {
					continue
				}
				code := beUint32(src)
				if text, ok := dstText(pending[i+1]); ok {
					out[code] = text
				}
			}
		case "endbfrange":
			for i := 0; i+2 < len(pending); i += 3 {
				lo, ok1 := pending[i].(pdf.String)
				hi, ok2 := pending[i+1].(pdf.String)
				if !ok1 || !ok2 {
					continue
				}
				loCode := beUint32(lo)
				hiCode := beUint32(hi)
				if hiCode < loCode || hiCode-loCode > 1<<16 {
					continue
				}
				switch dst := pending[i+2].(type) {
				case pdf.Array:
					for j, item := range dst {
						if text, ok := dstText(item); ok {
							out[loCode+uint32(j)] = text
						}
					}
				default:
					if text, ok := dstText(pending[i+2]); ok {
						base := []rune(text)
						for code := loCode; code <= hiCode; code++ {
							r := base[len(base)-1] + rune(code-loCode)
							out[code] = string(append(append([]rune{}, base[:len(base)-1]...), r))
						}
					}
				}
			}
		case "beginbfchar", "beginbfrange", "begincmap", "endcmap", "begincodespacerange", "endcodespacerange":
			pending = pending[:0]
		default:
			pending = pending[:0]
		}
	}
	return out
}

func beUint32(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// dstText decodes a bfchar/bfrange destination, which is UTF-16BE bytes
// wrapped in a PDF string, or occasionally a bare glyph name (rare, treated
// as literal ASCII text).
func dstText(obj pdf.Object) (string, bool) {
	switch x := obj.(type) {
	case pdf.String:
		return utf16BEToString([]byte(x)), true
	case pdf.Name:
		return string(x), true
	default:
		return "", false
	}
}

func utf16BEToString(b []byte) string {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units))
}
