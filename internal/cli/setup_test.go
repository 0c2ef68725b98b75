package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestStatusLinePlainWriter(t *testing.T) {
	var buf bytes.Buffer

	stop := statusLine(&buf, "Downloading windows installer...")
	stop()
	stop()

	out := buf.String()
	if !strings.Contains(out, "Downloading windows installer...\n") {
		t.Fatalf("plain writer should get the message once:\n%q", out)
	}
	if strings.Count(out, "Downloading") != 1 {
		t.Fatalf("message printed more than once:\n%q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("plain output must not carry escape codes:\n%q", out)
	}
}
