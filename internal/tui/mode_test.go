package tui

import (
	"bytes"
	"testing"
)

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer

	if got := DetectMode(&buf, false, true); got != ModeJSON {
		t.Fatalf("json flag: mode = %v", got)
	}
	if got := DetectMode(&buf, true, false); got != ModePlain {
		t.Fatalf("no-progress flag: mode = %v", got)
	}
	// A plain buffer is not a terminal.
	if got := DetectMode(&buf, false, false); got != ModePlain {
		t.Fatalf("buffer writer: mode = %v", got)
	}
}

func TestDetectModeJSONWinsOverNoProgress(t *testing.T) {
	var buf bytes.Buffer
	if got := DetectMode(&buf, true, true); got != ModeJSON {
		t.Fatalf("mode = %v, json output should take precedence", got)
	}
}
