package tools

import (
	"context"
	"strings"
	"testing"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"v22.1.0", "22.1.0"},
		{"10.9.2", "10.9.2"},
		{"Version: ImageMagick 6.9.11-60 Q16 x86_64", "6.9.11"},
		{"tar (GNU tar) 1.34", "1.34"},
		{"2", "2"},
		{"no digits here", "no digits here"},
	}
	for _, tt := range tests {
		if got := normalizeVersion(tt.line); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("v22.1.0\nextra banner"); got != "v22.1.0" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine("single"); got != "single" {
		t.Fatalf("firstLine = %q", got)
	}
}

func TestMeetsMinimum(t *testing.T) {
	tests := []struct {
		version string
		minimum string
		want    bool
	}{
		{"22.1.0", "18.0.0", true},
		{"18.0.0", "18.0.0", true},
		{"16.20.2", "18.0.0", false},
		{"22.1.0", "", true},
		{"", "18.0.0", false},
		{"not-a-version", "18.0.0", true},
		{"22.1.0", "not-a-version", true},
	}
	for _, tt := range tests {
		if got := meetsMinimum(tt.version, tt.minimum); got != tt.want {
			t.Errorf("meetsMinimum(%q, %q) = %v, want %v", tt.version, tt.minimum, got, tt.want)
		}
	}
}

func TestKnownToolsSorted(t *testing.T) {
	names := KnownTools()
	if len(names) == 0 {
		t.Fatal("no known tools")
	}
	for i := 1; i < len(names); i++ {
		if names[i] < names[i-1] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	for _, required := range []string{"7z", "node", "npm", "npx", "dpkg-deb", "rpmbuild"} {
		if _, ok := Definition(required); !ok {
			t.Errorf("missing definition for %s", required)
		}
	}
}

func TestDefinitionUnknown(t *testing.T) {
	if _, ok := Definition("frobnicator"); ok {
		t.Fatal("Definition should not resolve unknown tools")
	}
}

func TestCheckMissingCommand(t *testing.T) {
	err := Check(context.Background(), []string{"definitely-not-installed-anywhere"})
	if err == nil {
		t.Fatal("expected missing command error")
	}
	if !strings.Contains(err.Error(), "missing or outdated commands") {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(err.Error(), "definitely-not-installed-anywhere") {
		t.Fatalf("error should name the command: %v", err)
	}
}

func TestCheckNoRequirements(t *testing.T) {
	if err := Check(context.Background(), nil); err != nil {
		t.Fatalf("Check(nil) = %v", err)
	}
}

func TestDetectCoversKnownTools(t *testing.T) {
	statuses := Detect(context.Background())
	if len(statuses) != len(KnownTools()) {
		t.Fatalf("statuses = %d, want %d", len(statuses), len(KnownTools()))
	}
	seen := map[string]bool{}
	for _, s := range statuses {
		if s.Tool == "" {
			t.Fatal("status with empty tool name")
		}
		if s.Purpose == "" {
			t.Errorf("%s has no purpose", s.Tool)
		}
		seen[s.Tool] = true
	}
	for _, name := range KnownTools() {
		if !seen[name] {
			t.Errorf("no status for %s", name)
		}
	}
}
