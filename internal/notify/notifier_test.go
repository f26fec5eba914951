package notify

import (
	"fmt"
	"testing"
)

func TestQueue_RecordsBothLevels(t *testing.T) {
	q := NewQueue(10, nil)
	q.Success("list", "listed")
	q.Failure("cancel", "listing not found")

	got := q.Recent(0)
	if len(got) != 2 {
		t.Fatalf("recent = %d outcomes, want 2", len(got))
	}
	if got[0].Level != LevelSuccess || got[0].Op != "list" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Level != LevelFailure || got[1].Message != "listing not found" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestQueue_BoundedOldestFirstOut(t *testing.T) {
	q := NewQueue(3, nil)
	for i := 0; i < 5; i++ {
		q.Success("op", fmt.Sprintf("m%d", i))
	}

	got := q.Recent(0)
	if len(got) != 3 {
		t.Fatalf("recent = %d outcomes, want 3", len(got))
	}
	if got[0].Message != "m2" || got[2].Message != "m4" {
		t.Errorf("window = [%s .. %s], want [m2 .. m4]", got[0].Message, got[2].Message)
	}
}

func TestQueue_RecentLimit(t *testing.T) {
	q := NewQueue(10, nil)
	for i := 0; i < 4; i++ {
		q.Success("op", fmt.Sprintf("m%d", i))
	}

	got := q.Recent(2)
	if len(got) != 2 {
		t.Fatalf("recent(2) = %d outcomes", len(got))
	}
	if got[0].Message != "m2" || got[1].Message != "m3" {
		t.Errorf("window = [%s, %s], want [m2, m3]", got[0].Message, got[1].Message)
	}

	if got := q.Recent(100); len(got) != 4 {
		t.Errorf("recent(100) = %d outcomes, want all 4", len(got))
	}
}
