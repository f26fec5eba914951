package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Level distinguishes success from failure outcomes.
type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
)

// Outcome is one surfaced operation result.
type Outcome struct {
	Op      string    `json:"op"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Queue collects operation outcomes for the display layer to drain and,
// when a journal is attached, appends each one there. Bounded: oldest
// entries fall off first.
type Queue struct {
	mu       sync.Mutex
	items    []Outcome
	capacity int
	journal  *Journal
}

// NewQueue creates a queue holding at most capacity outcomes.
// journal may be nil.
func NewQueue(capacity int, journal *Journal) *Queue {
	if capacity <= 0 {
		capacity = 100
	}
	return &Queue{capacity: capacity, journal: journal}
}

// Success records a success outcome.
func (q *Queue) Success(op, message string) {
	q.push(Outcome{Op: op, Level: LevelSuccess, Message: message, At: time.Now()})
}

// Failure records a failure outcome.
func (q *Queue) Failure(op, message string) {
	q.push(Outcome{Op: op, Level: LevelFailure, Message: message, At: time.Now()})
}

func (q *Queue) push(o Outcome) {
	q.mu.Lock()
	q.items = append(q.items, o)
	if len(q.items) > q.capacity {
		q.items = q.items[len(q.items)-q.capacity:]
	}
	j := q.journal
	q.mu.Unlock()

	if j != nil {
		if err := j.Append(o); err != nil {
			// Journal loss is tolerable; the queue is the live surface.
			slog.Warn("Outcome journal append failed", slog.Any("error", err))
		}
	}
}

// Recent returns up to n outcomes, newest last.
func (q *Queue) Recent(n int) []Outcome {
	q.mu.Lock()
	defer q.mu.Unlock()

	if n <= 0 || n > len(q.items) {
		n = len(q.items)
	}
	out := make([]Outcome, n)
	copy(out, q.items[len(q.items)-n:])
	return out
}
