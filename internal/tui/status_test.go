package tui

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards concurrent writes from the spinner goroutine.
type syncBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestStatusWriterRendersMessage(t *testing.T) {
	buf := &syncBuffer{}
	sw := NewStatusWriter(buf)
	sw.Update("Resolving download URL...")

	// Let the spinner render at least one frame.
	time.Sleep(250 * time.Millisecond)
	sw.Stop()
	time.Sleep(150 * time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "Resolving download URL...") {
		t.Fatalf("spinner never rendered the message:\n%q", out)
	}
	if !strings.Contains(out, "\r\033[K") {
		t.Fatalf("spinner output missing line clear:\n%q", out)
	}
}

func TestStatusWriterStopIsIdempotent(t *testing.T) {
	buf := &syncBuffer{}
	sw := NewStatusWriter(buf)
	sw.Stop()
	sw.Stop()
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{1500 * time.Millisecond, "1.5s"},
		{15 * time.Second, "15s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
