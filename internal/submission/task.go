package submission

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Task is one dispatched submission. Its result is applied to the session
// only while the task is current and not discarded.
type Task struct {
	id        string
	cancel    context.CancelFunc
	done      chan struct{}
	discarded atomic.Bool
}

func newTask(cancel context.CancelFunc) *Task {
	return &Task{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (t *Task) ID() string { return t.id }

// Done is closed once the judge call has returned and its result was applied or dropped.
func (t *Task) Done() <-chan struct{} { return t.done }

// Discard cancels the judge call and marks any later result as unwanted.
// Safe to call more than once.
func (t *Task) Discard() {
	if t.discarded.CompareAndSwap(false, true) {
		t.cancel()
	}
}

func (t *Task) Discarded() bool { return t.discarded.Load() }
