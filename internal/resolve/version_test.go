package resolve

import "testing"

func TestVersionFromURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
		ok   bool
	}{
		{
			name: "windows release",
			url:  "https://downloads.claude.ai/releases/win32/x64/1.0.1217/Claude-Setup-x64.exe",
			want: "1.0.1217",
			ok:   true,
		},
		{
			name: "mac release",
			url:  "https://downloads.claude.ai/releases/darwin/universal/0.14.10/Claude.dmg",
			want: "0.14.10",
			ok:   true,
		},
		{
			name: "no version segment",
			url:  "https://downloads.claude.ai/latest/Claude-Setup-x64.exe",
			ok:   false,
		},
		{
			name: "partial version",
			url:  "https://downloads.claude.ai/releases/2.1/Claude.dmg",
			ok:   false,
		},
		{
			name: "empty",
			url:  "",
			ok:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := VersionFromURL(tc.url)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if got != tc.want {
				t.Fatalf("version = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsArtifactURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://storage.googleapis.com/osprey-downloads/Claude-Setup-x64.exe", true},
		{"https://downloads.claude.ai/releases/1.0.1217/Claude-Setup-x64.exe", true},
		{"https://downloads.claude.ai/releases/1.0.1217/Claude.dmg", true},
		{"https://claude.ai/download", false},
		{"https://claude.ai/redirect/latest", false},
	}

	for _, tc := range cases {
		if got := IsArtifactURL(tc.url); got != tc.want {
			t.Errorf("IsArtifactURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
