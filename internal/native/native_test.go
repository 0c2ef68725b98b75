package native

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"claudebuild/internal/run"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Printf(format string, v ...any) { l.t.Logf(format, v...) }

// npmRunner fakes the npm invocations; `npm run build` drops the
// requested bindings into the build directory.
type npmRunner struct {
	bindings []string
	installs int
	builds   int
	buildErr error
}

func (f *npmRunner) Run(_ context.Context, command string, args []string, opts run.Options) (run.Result, error) {
	if command != "npm" {
		return run.Result{}, fmt.Errorf("unexpected command %s", command)
	}
	switch args[0] {
	case "install":
		f.installs++
		return run.Result{}, nil
	case "run":
		f.builds++
		if f.buildErr != nil {
			return run.Result{Stderr: []byte("gyp ERR! build failed")}, f.buildErr
		}
		for _, name := range f.bindings {
			if err := os.WriteFile(filepath.Join(opts.Dir, name), []byte("elf"), 0o644); err != nil {
				return run.Result{}, err
			}
		}
		return run.Result{}, nil
	default:
		return run.Result{}, fmt.Errorf("unexpected npm args %v", args)
	}
}

func moduleSources(t *testing.T) string {
	t.Helper()
	moduleDir := filepath.Join(t.TempDir(), "patchy-cnb")
	srcDir := filepath.Join(moduleDir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for path, content := range map[string]string{
		filepath.Join(moduleDir, "package.json"): `{"name":"patchy-cnb"}`,
		filepath.Join(srcDir, "lib.rs"):          "fn main() {}",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return moduleDir
}

func TestBuild(t *testing.T) {
	runner := &npmRunner{bindings: []string{"patchy-cnb.linux-x64-gnu.node"}}
	workDir := t.TempDir()

	binding, err := Build(context.Background(), runner, testLogger{t}, moduleSources(t), workDir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if filepath.Dir(binding) != filepath.Join(workDir, "native-module") {
		t.Fatalf("binding = %q, want it inside the staged build dir", binding)
	}
	if runner.installs != 1 || runner.builds != 1 {
		t.Fatalf("installs = %d, builds = %d", runner.installs, runner.builds)
	}

	// Sources are staged, not built in place.
	if _, err := os.Stat(filepath.Join(workDir, "native-module", "src", "lib.rs")); err != nil {
		t.Fatalf("staged source missing: %v", err)
	}
}

func TestBuildMissingSources(t *testing.T) {
	_, err := Build(context.Background(), &npmRunner{}, testLogger{t},
		filepath.Join(t.TempDir(), "nope"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing sources")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("error = %v", err)
	}
}

func TestBuildNoBindingProduced(t *testing.T) {
	runner := &npmRunner{}
	_, err := Build(context.Background(), runner, testLogger{t}, moduleSources(t), t.TempDir())
	if err == nil {
		t.Fatal("expected error when no binding is produced")
	}
	if !strings.Contains(err.Error(), "found 0") {
		t.Fatalf("error = %v", err)
	}
}

func TestBuildAmbiguousBindings(t *testing.T) {
	runner := &npmRunner{bindings: []string{"a.node", "b.node"}}
	_, err := Build(context.Background(), runner, testLogger{t}, moduleSources(t), t.TempDir())
	if err == nil {
		t.Fatal("expected error for ambiguous bindings")
	}
	if !strings.Contains(err.Error(), "found 2") {
		t.Fatalf("error = %v", err)
	}
}

func TestBuildCommandFailure(t *testing.T) {
	runner := &npmRunner{buildErr: fmt.Errorf("exit status 1")}
	_, err := Build(context.Background(), runner, testLogger{t}, moduleSources(t), t.TempDir())
	if err == nil {
		t.Fatal("expected build failure")
	}
	if !strings.Contains(err.Error(), "gyp ERR!") {
		t.Fatalf("error should carry the stderr tail: %v", err)
	}
}
