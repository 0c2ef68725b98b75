package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claudebuild/internal/run"
)

// fakeRunner scripts the external commands a handler shells out to. It
// mimics 7z by materializing the files an extraction would produce and
// npx asar by unpacking a fixture manifest.
type fakeRunner struct {
	// nupkgNames are the update packages "inside" the exe.
	nupkgNames []string

	// packageJSON is the manifest inside app.asar.
	packageJSON string

	calls []string
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, _ run.Options) (run.Result, error) {
	f.calls = append(f.calls, command+" "+strings.Join(args, " "))

	switch command {
	case "7z":
		dest := ""
		for _, arg := range args {
			if strings.HasPrefix(arg, "-o") {
				dest = strings.TrimPrefix(arg, "-o")
			}
		}
		if dest == "" {
			return run.Result{}, fmt.Errorf("fake runner: 7z without -o dir")
		}
		archive := args[2]
		if strings.HasSuffix(archive, ".exe") {
			for _, name := range f.nupkgNames {
				if err := writeFileIn(dest, name, "nupkg-bytes"); err != nil {
					return run.Result{}, err
				}
			}
			return run.Result{}, nil
		}
		if strings.HasSuffix(archive, ".nupkg") {
			resources := filepath.Join(dest, "lib", "net45", "resources")
			if err := writeFileIn(resources, "app.asar", "asar-bytes"); err != nil {
				return run.Result{}, err
			}
			if err := writeFileIn(resources, "TrayTemplate.png", "png"); err != nil {
				return run.Result{}, err
			}
			return run.Result{}, nil
		}
		return run.Result{}, fmt.Errorf("fake runner: unexpected 7z archive %s", archive)

	case "npx":
		if len(args) >= 4 && args[0] == "asar" && args[1] == "extract" {
			return run.Result{}, writeFileIn(args[3], "package.json", f.packageJSON)
		}
		return run.Result{}, fmt.Errorf("fake runner: unexpected npx args %v", args)

	default:
		return run.Result{}, fmt.Errorf("fake runner: unexpected command %s", command)
	}
}

func writeFileIn(dir, name, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func TestNewUnknownSource(t *testing.T) {
	_, err := New("linux", Deps{})
	if err == nil {
		t.Fatal("expected error for unknown source")
	}
	msg := err.Error()
	if !strings.Contains(msg, "linux") {
		t.Fatalf("error should name the bad token: %q", msg)
	}
	if !strings.Contains(msg, "macos") || !strings.Contains(msg, "windows") {
		t.Fatalf("error should list available sources: %q", msg)
	}
}

func TestNewDispatch(t *testing.T) {
	cases := []struct {
		token     string
		installer string
		cacheKey  string
		metaName  string
	}{
		{"windows", "Claude-Setup-x64.exe", "windows", "metadata.json"},
		{"macos", "Claude.dmg", "mac", "mac_metadata.json"},
	}

	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			h, err := New(tc.token, Deps{CacheDir: t.TempDir()})
			if err != nil {
				t.Fatalf("New(%q): %v", tc.token, err)
			}
			if h.InstallerFilename() != tc.installer {
				t.Fatalf("installer = %q", h.InstallerFilename())
			}
			if h.CacheKey() != tc.cacheKey {
				t.Fatalf("cache key = %q", h.CacheKey())
			}
			if h.MetadataCacheName() != tc.metaName {
				t.Fatalf("metadata cache name = %q", h.MetadataCacheName())
			}
		})
	}
}

func TestHasInstaller(t *testing.T) {
	cacheDir := t.TempDir()
	h, err := New("windows", Deps{CacheDir: cacheDir})
	if err != nil {
		t.Fatal(err)
	}

	if h.HasInstaller() {
		t.Fatal("installer should be absent")
	}

	if err := writeFileIn(cacheDir, "Claude-Setup-x64.exe", "exe"); err != nil {
		t.Fatal(err)
	}
	if !h.HasInstaller() {
		t.Fatal("installer should be present")
	}
}
