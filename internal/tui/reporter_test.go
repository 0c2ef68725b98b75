package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"claudebuild/internal/builder"
)

func TestStageReporter(t *testing.T) {
	var msgs []tea.Msg
	r := NewStageReporter(func(msg tea.Msg) { msgs = append(msgs, msg) })

	r.StageStarted(builder.StageExtract)
	r.StageFinished(builder.StageExtract, nil)
	r.StageFinished(builder.StagePackage, errors.New("dpkg-deb exited 2"))

	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want 3", len(msgs))
	}

	started := msgs[0].(StageUpdateMsg)
	if started.Key != builder.StageExtract.String() || started.Status != "running" {
		t.Fatalf("started = %+v", started)
	}

	finished := msgs[1].(StageUpdateMsg)
	if finished.Status != "done" || finished.Detail != "" {
		t.Fatalf("finished = %+v", finished)
	}

	failed := msgs[2].(StageUpdateMsg)
	if failed.Status != "failed" || failed.Detail != "dpkg-deb exited 2" {
		t.Fatalf("failed = %+v", failed)
	}
}
