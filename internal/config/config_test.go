package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ctl.yaml")
	contents := "name: demo\nroots: [src, lib]\nno_core: true\nleak: false\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "demo" {
		t.Fatalf("Name = %q, want demo", m.Name)
	}
	if len(m.Roots) != 2 || m.Roots[0] != "src" || m.Roots[1] != "lib" {
		t.Fatalf("Roots = %v", m.Roots)
	}
	if !m.NoCore {
		t.Fatalf("NoCore should be true")
	}
}

func TestDefaultManifest(t *testing.T) {
	m := DefaultManifest()
	if len(m.Roots) != 1 || m.Roots[0] != "." {
		t.Fatalf("default manifest roots = %v", m.Roots)
	}
}
