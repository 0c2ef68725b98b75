package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"claudebuild/internal/builderr"
)

func plistXML(fields map[string]string) string {
	body := ""
	for key, value := range fields {
		body += fmt.Sprintf("<key>%s</key><string>%s</string>", key, value)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0"><dict>` + body + `</dict></plist>`
}

// macBundle lays out a Contents directory with the given Info.plist
// fields and returns its Resources subdirectory.
func macBundle(t *testing.T, info map[string]string, electronFramework string) string {
	t.Helper()
	contents := filepath.Join(t.TempDir(), "Contents")
	resources := filepath.Join(contents, "Resources")
	if err := os.MkdirAll(resources, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(contents, "Info.plist"), []byte(plistXML(info)), 0o644); err != nil {
		t.Fatal(err)
	}

	if electronFramework != "" {
		frameworkDir := filepath.Join(contents, "Frameworks", "Electron Framework.framework", "Versions", "A", "Resources")
		if err := os.MkdirAll(frameworkDir, 0o755); err != nil {
			t.Fatal(err)
		}
		framework := plistXML(map[string]string{"CFBundleVersion": electronFramework})
		if err := os.WriteFile(filepath.Join(frameworkDir, "Info.plist"), []byte(framework), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return resources
}

func TestMacExtractMetadata(t *testing.T) {
	resources := macBundle(t, map[string]string{
		"CFBundleShortVersionString": "0.14.10",
		"CFBundleVersion":            "14100",
		"CFBundleDisplayName":        "Claude",
		"CFBundleIdentifier":         "com.anthropic.claudefordesktop",
	}, "34.2.0")

	s := newMacSource(Deps{})
	meta, err := s.ExtractMetadata(context.Background(), resources)
	if err != nil {
		t.Fatalf("ExtractMetadata: %v", err)
	}

	if meta.Version != "0.14.10" {
		t.Fatalf("version = %q, marketing version should win", meta.Version)
	}
	if meta.ElectronVersion != "34.2.0" {
		t.Fatalf("electron = %q", meta.ElectronVersion)
	}
	if meta.AppName != "Claude" {
		t.Fatalf("app name = %q", meta.AppName)
	}
	if meta.BundleID != "com.anthropic.claudefordesktop" {
		t.Fatalf("bundle id = %q", meta.BundleID)
	}
	if meta.Source != "macos" {
		t.Fatalf("source = %q", meta.Source)
	}
}

func TestMacMetadataVersionFallback(t *testing.T) {
	resources := macBundle(t, map[string]string{
		"CFBundleVersion":     "14100",
		"CFBundleDisplayName": "Claude",
	}, "34.2.0")

	s := newMacSource(Deps{})
	meta, err := s.ExtractMetadata(context.Background(), resources)
	if err != nil {
		t.Fatalf("ExtractMetadata: %v", err)
	}
	if meta.Version != "14100" {
		t.Fatalf("version = %q, want CFBundleVersion fallback", meta.Version)
	}
}

func TestMacMetadataNoVersion(t *testing.T) {
	resources := macBundle(t, map[string]string{
		"CFBundleDisplayName": "Claude",
	}, "34.2.0")

	s := newMacSource(Deps{})
	_, err := s.ExtractMetadata(context.Background(), resources)
	var metaErr *builderr.MetadataError
	if !errors.As(err, &metaErr) {
		t.Fatalf("expected MetadataError, got %v", err)
	}
	if metaErr.Field != "version" {
		t.Fatalf("field = %q", metaErr.Field)
	}
}

func TestMacMetadataDefaultBundleID(t *testing.T) {
	resources := macBundle(t, map[string]string{
		"CFBundleShortVersionString": "0.14.10",
		"CFBundleDisplayName":        "Claude",
	}, "34.2.0")

	s := newMacSource(Deps{})
	meta, err := s.ExtractMetadata(context.Background(), resources)
	if err != nil {
		t.Fatal(err)
	}
	if meta.BundleID != "com.anthropic.claudefordesktop" {
		t.Fatalf("bundle id = %q, want default", meta.BundleID)
	}
}

func TestMacMetadataElectronFromPackageJSON(t *testing.T) {
	// No framework plist: the handler falls back to the app manifest.
	resources := macBundle(t, map[string]string{
		"CFBundleShortVersionString": "0.14.10",
	}, "")
	if err := writeFileIn(resources, "app.asar", "asar-bytes"); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{packageJSON: `{
		"productName": "Claude",
		"devDependencies": {"electron": "33.0.1"},
		"engines": {"node": ">=20"}
	}`}

	s := newMacSource(Deps{Runner: runner})
	meta, err := s.ExtractMetadata(context.Background(), resources)
	if err != nil {
		t.Fatalf("ExtractMetadata: %v", err)
	}
	if meta.ElectronVersion != "33.0.1" {
		t.Fatalf("electron = %q, want package.json fallback", meta.ElectronVersion)
	}
	if meta.AppName != "Claude" {
		t.Fatalf("app name = %q", meta.AppName)
	}
	if meta.NodeRequirement != ">=20" {
		t.Fatalf("node requirement = %q", meta.NodeRequirement)
	}
}

func TestFindAppContentsFixedLayout(t *testing.T) {
	extractDir := t.TempDir()
	fixed := filepath.Join(extractDir, "Claude", "Claude.app", "Contents")
	if err := os.MkdirAll(fixed, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := findAppContents(extractDir)
	if err != nil {
		t.Fatalf("findAppContents: %v", err)
	}
	if got != fixed {
		t.Fatalf("contents = %q, want %q", got, fixed)
	}
}

func TestFindAppContentsRecursiveFallback(t *testing.T) {
	extractDir := t.TempDir()
	nested := filepath.Join(extractDir, "disk", "Applications", "Claude.app", "Contents")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := findAppContents(extractDir)
	if err != nil {
		t.Fatalf("findAppContents: %v", err)
	}
	if got != nested {
		t.Fatalf("contents = %q, want %q", got, nested)
	}
}

func TestFindAppContentsMissing(t *testing.T) {
	_, err := findAppContents(t.TempDir())
	var exErr *builderr.ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestMacPostPatchAppInstallsStub(t *testing.T) {
	appDir := t.TempDir()
	s := newMacSource(Deps{})

	if err := s.PostPatchApp(context.Background(), appDir); err != nil {
		t.Fatalf("PostPatchApp: %v", err)
	}

	stubDir := filepath.Join(appDir, "node_modules", "@ant", "claude-swift")
	for _, rel := range []string{"index.js", "package.json", filepath.Join("js", "index.js")} {
		if _, err := os.Stat(filepath.Join(stubDir, rel)); err != nil {
			t.Errorf("stub file %s missing: %v", rel, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(stubDir, "index.js"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("stub index.js empty")
	}
}

func TestMacPostAssembleRemovesMacModules(t *testing.T) {
	libDir := t.TempDir()
	unpacked := filepath.Join(libDir, "app.asar.unpacked", "node_modules")
	for _, rel := range []string{filepath.Join("@ant", "claude-swift"), "node-pty", "keep-me"} {
		if err := os.MkdirAll(filepath.Join(unpacked, rel), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	s := newMacSource(Deps{})
	if err := s.PostAssemble(context.Background(), libDir, ""); err != nil {
		t.Fatalf("PostAssemble: %v", err)
	}

	if _, err := os.Stat(filepath.Join(unpacked, "@ant", "claude-swift")); !os.IsNotExist(err) {
		t.Fatal("claude-swift should be removed")
	}
	if _, err := os.Stat(filepath.Join(unpacked, "node-pty")); !os.IsNotExist(err) {
		t.Fatal("node-pty should be removed")
	}
	if _, err := os.Stat(filepath.Join(unpacked, "keep-me")); err != nil {
		t.Fatal("unrelated module should survive")
	}
}
