package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLayout(t *testing.T) {
	root := t.TempDir()
	pp, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if pp.Root != root {
		t.Fatalf("Root = %q, want %q", pp.Root, root)
	}
	if pp.ConfigFile != filepath.Join(root, "claudebuild.yaml") {
		t.Fatalf("ConfigFile = %q", pp.ConfigFile)
	}
	if pp.CacheDir != filepath.Join(root, ".cache", "downloads") {
		t.Fatalf("CacheDir = %q", pp.CacheDir)
	}
	if pp.WorkDir != filepath.Join(root, "build") {
		t.Fatalf("WorkDir = %q", pp.WorkDir)
	}
	if pp.PackageDir != filepath.Join(root, "packages") {
		t.Fatalf("PackageDir = %q", pp.PackageDir)
	}
}

func TestMetadataCacheFile(t *testing.T) {
	pp, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	got := pp.MetadataCacheFile("mac_metadata.json")
	if got != filepath.Join(pp.CacheDir, "mac_metadata.json") {
		t.Fatalf("MetadataCacheFile = %q", got)
	}
}

func TestResetWorkDir(t *testing.T) {
	pp, err := Resolve(t.TempDir())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	stale := filepath.Join(pp.WorkDir, "extract", "old.nupkg")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := pp.ResetWorkDir(); err != nil {
		t.Fatalf("ResetWorkDir: %v", err)
	}

	if ok, _ := FileExists(stale); ok {
		t.Fatal("stale file survived reset")
	}
	if ok, _ := DirExists(pp.WorkDir); !ok {
		t.Fatal("work dir missing after reset")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	if ok, err := FileExists(filepath.Join(dir, "missing")); err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}

	if ok, err := FileExists(dir); err != nil || ok {
		t.Fatalf("directory should not count as file: ok=%v err=%v", ok, err)
	}

	file := filepath.Join(dir, "present")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := FileExists(file); err != nil || !ok {
		t.Fatalf("present file: ok=%v err=%v", ok, err)
	}
}
