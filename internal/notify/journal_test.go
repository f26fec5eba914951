package notify

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestJournal_AppendAndTail(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "outcomes.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	at := time.Now()
	outcomes := []Outcome{
		{Op: "list", Level: LevelSuccess, Message: "listed aaaa_0", At: at},
		{Op: "cancel", Level: LevelFailure, Message: "not found", At: at.Add(time.Second)},
		{Op: "purchase", Level: LevelSuccess, Message: "settled", At: at.Add(2 * time.Second)},
	}
	for _, o := range outcomes {
		if err := j.Append(o); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := j.Tail(context.Background(), 2)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("tail = %d outcomes, want 2", len(got))
	}
	// Newest last, matching the live queue's ordering.
	if got[0].Op != "cancel" || got[1].Op != "purchase" {
		t.Errorf("tail order = [%s, %s], want [cancel, purchase]", got[0].Op, got[1].Op)
	}
	if got[1].Level != LevelSuccess || got[1].Message != "settled" {
		t.Errorf("last = %+v", got[1])
	}
}

func TestJournal_QueueIntegration(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "outcomes.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	q := NewQueue(10, j)
	q.Success("list", "listed")
	q.Failure("purchase", "agent rejected")

	got, err := j.Tail(context.Background(), 10)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("journal rows = %d, want 2", len(got))
	}
	if got[0].Op != "list" || got[1].Op != "purchase" {
		t.Errorf("journal order = [%s, %s]", got[0].Op, got[1].Op)
	}
}
