package builderr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "download",
			err:  &DownloadError{URL: "https://example.com/a.exe", Err: errors.New("timeout")},
			want: []string{"download", "https://example.com/a.exe", "timeout"},
		},
		{
			name: "extraction message only",
			err:  &ExtractionError{Path: "/tmp/extract", Message: "no .nupkg found in extracted exe"},
			want: []string{"extract", "/tmp/extract", "no .nupkg"},
		},
		{
			name: "extraction wrapped",
			err:  &ExtractionError{Path: "install.exe", Err: errors.New("7z: exit status 2")},
			want: []string{"extract", "install.exe", "exit status 2"},
		},
		{
			name: "metadata",
			err:  &MetadataError{Field: "electron_version", Message: "not found in package.json"},
			want: []string{"metadata", "electron_version", "not found"},
		},
		{
			name: "patch",
			err:  &PatchError{Patch: "claude-code-platforms", Message: "mandatory pattern not found"},
			want: []string{"patch", "claude-code-platforms", "mandatory pattern"},
		},
		{
			name: "packaging",
			err:  &PackagingError{Format: "deb", Err: errors.New("dpkg-deb: exit status 2")},
			want: []string{"package", "deb", "exit status 2"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := tc.err.Error()
			for _, fragment := range tc.want {
				if !strings.Contains(msg, fragment) {
					t.Fatalf("error %q missing fragment %q", msg, fragment)
				}
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	wrapped := fmt.Errorf("stage: %w", &DownloadError{URL: "https://example.com", Err: inner})

	if !errors.Is(wrapped, inner) {
		t.Fatalf("expected errors.Is to reach the inner error")
	}

	var dl *DownloadError
	if !errors.As(wrapped, &dl) {
		t.Fatalf("expected errors.As to find DownloadError")
	}
	if dl.URL != "https://example.com" {
		t.Fatalf("unexpected URL %q", dl.URL)
	}
}
