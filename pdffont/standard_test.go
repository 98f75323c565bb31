package pdffont

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStandardDirectoryMissingDirIsNotFatal(t *testing.T) {
	d, err := LoadStandardDirectory(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("LoadStandardDirectory: %v", err)
	}
	if d.entries != nil {
		t.Errorf("entries should be nil when fonts.json is absent")
	}
}

func TestResolveFallsBackToBuiltinGoFont(t *testing.T) {
	d, err := LoadStandardDirectory(t.TempDir())
	if err != nil {
		t.Fatalf("LoadStandardDirectory: %v", err)
	}
	f, err := d.Resolve("Helvetica")
	if err != nil {
		t.Fatalf("Resolve(Helvetica): %v", err)
	}
	if f == nil {
		t.Fatal("Resolve(Helvetica) returned nil font")
	}
}

func TestResolveUnknownNameFails(t *testing.T) {
	d, err := LoadStandardDirectory(t.TempDir())
	if err != nil {
		t.Fatalf("LoadStandardDirectory: %v", err)
	}
	if _, err := d.Resolve("NotARealFont"); err == nil {
		t.Fatal("expected an error for an unresolvable font name")
	}
}

func TestResolveCachesResult(t *testing.T) {
	d, err := LoadStandardDirectory(t.TempDir())
	if err != nil {
		t.Fatalf("LoadStandardDirectory: %v", err)
	}
	f1, err := d.Resolve("Helvetica")
	if err != nil {
		t.Fatal(err)
	}
	f2, err := d.Resolve("Helvetica")
	if err != nil {
		t.Fatal(err)
	}
	if f1 != f2 {
		t.Error("Resolve should cache and return the same *Font instance")
	}
}

func TestLoadStandardDirectoryParsesFontsJSON(t *testing.T) {
	dir := t.TempDir()
	entries := map[string]string{"Times-Roman": "MinionPro-Regular.otf"}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fonts.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadStandardDirectory(dir)
	if err != nil {
		t.Fatalf("LoadStandardDirectory: %v", err)
	}
	if d.entries["Times-Roman"] != "MinionPro-Regular.otf" {
		t.Errorf("entries = %+v", d.entries)
	}
}
