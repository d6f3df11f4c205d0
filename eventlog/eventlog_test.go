package eventlog

import (
	"path/filepath"
	"testing"

	"github.com/tarungka/flowplan/plan"
)

func TestRecordAndReplayOperators(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	events := []plan.Event{
		plan.NewCreateOperatorEvent("A", 1),
		plan.NewStartOperatorEvent("A", 1, "container-1", ""),
	}
	if err := l.RecordOperators(events, 1000); err != nil {
		t.Fatalf("RecordOperators: %v", err)
	}

	var replayed []plan.Event
	err = l.ReplayOperators(func(ts int64, ev plan.Event) error {
		if ts != 1000 {
			t.Fatalf("timestamp = %d, want 1000", ts)
		}
		replayed = append(replayed, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("ReplayOperators: %v", err)
	}
	if len(replayed) != 2 {
		t.Fatalf("replayed %d events, want 2", len(replayed))
	}
	if replayed[0].Type != plan.EventCreateOperator || replayed[1].Type != plan.EventStartOperator {
		t.Fatalf("unexpected replay order/types: %+v", replayed)
	}
}

func TestRecordContainers(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if err := l.RecordContainers(map[string]any{"container-1": "RUNNING"}, 2000); err != nil {
		t.Fatalf("RecordContainers: %v", err)
	}
}
