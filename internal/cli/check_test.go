package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"claudebuild/internal/config"
	"claudebuild/internal/tools"
)

func TestAnyUnsatisfied(t *testing.T) {
	ok := []tools.Status{{Tool: "7z", Satisfied: true}}
	if anyUnsatisfied(ok) {
		t.Fatal("all satisfied, got unsatisfied")
	}
	missing := append(ok, tools.Status{Tool: "npx"})
	if !anyUnsatisfied(missing) {
		t.Fatal("missing tool not reported")
	}
}

func TestPrintInstallHint(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	printInstallHint(cmd, config.Default().SystemPackages)

	got := out.String()
	if !strings.Contains(got, "sudo apt install ") {
		t.Fatalf("no apt hint in output:\n%s", got)
	}
	if !strings.Contains(got, "sudo dnf install ") {
		t.Fatalf("no dnf hint in output:\n%s", got)
	}
	for _, name := range []string{"p7zip-full", "icnsutils", "ImageMagick"} {
		if !strings.Contains(got, name) {
			t.Fatalf("package %s missing from hint:\n%s", name, got)
		}
	}
	// The union folds the shared packages together.
	if strings.Count(got, "imagemagick") > 1 {
		t.Fatalf("duplicate apt package in hint:\n%s", got)
	}
}
