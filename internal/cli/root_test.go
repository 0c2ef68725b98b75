package cli

import "testing"

func TestEnvDefault(t *testing.T) {
	t.Setenv("CLAUDE_DESKTOP_SOURCE", "macos")
	if got := envDefault("SOURCE", "windows"); got != "macos" {
		t.Fatalf("envDefault = %q", got)
	}
	if got := envDefault("FORMAT", "deb"); got != "deb" {
		t.Fatalf("envDefault fallback = %q", got)
	}
}

func TestEnvDefaultBool(t *testing.T) {
	tests := []struct {
		value    string
		fallback bool
		want     bool
	}{
		{"", true, true},
		{"", false, false},
		{"1", false, true},
		{"true", false, true},
		{"yes", false, true},
		{"0", true, false},
		{"false", true, false},
		{"no", true, false},
	}
	for _, tt := range tests {
		t.Setenv("CLAUDE_DESKTOP_FLAG", tt.value)
		if got := envDefaultBool("FLAG", tt.fallback); got != tt.want {
			t.Errorf("envDefaultBool(%q, %v) = %v, want %v", tt.value, tt.fallback, got, tt.want)
		}
	}
}

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCmd("1.2.3")
	if cmd.Version != "1.2.3" {
		t.Fatalf("version = %q", cmd.Version)
	}

	want := []string{"build", "info", "download", "compare", "check-update", "clean", "check"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %s", name)
		}
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0.14.10", "0.14.9", 1},
		{"0.14.9", "0.14.10", -1},
		{"0.14.10", "0.14.10", 0},
		{"1.0.0", "0.99.99", 1},
		{"abc", "abd", -1},
		{"same", "same", 0},
	}
	for _, tt := range tests {
		if got := compareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
