package pdffont

import (
	"os"
	"path/filepath"
)

// DumpFontMode controls when DumpFont writes an embedded font program's raw
// bytes to disk for offline inspection (the DUMP_FONT environment variable).
type DumpFontMode int

const (
	// DumpFontNever never writes a font program to disk.
	DumpFontNever DumpFontMode = iota
	// DumpFontAlways writes every embedded font program encountered.
	DumpFontAlways
	// DumpFontOnError writes only font programs the parser rejected.
	DumpFontOnError
)

// ParseDumpFontMode parses DUMP_FONT's three recognized values, defaulting
// to DumpFontNever for an unset or unrecognized one.
func ParseDumpFontMode(s string) DumpFontMode {
	switch s {
	case "always":
		return DumpFontAlways
	case "error":
		return DumpFontOnError
	default:
		return DumpFontNever
	}
}

// DumpFont writes data to dir/name when mode's condition holds against
// parseErr (the font program parser's result; nil means it succeeded). A
// blank dir (PDF_FONTS unset) is a no-op regardless of mode.
func DumpFont(mode DumpFontMode, dir, name string, data []byte, parseErr error) error {
	if dir == "" || mode == DumpFontNever {
		return nil
	}
	if mode == DumpFontOnError && parseErr == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
