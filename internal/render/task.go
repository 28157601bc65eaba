package render

import (
	"context"
	"fmt"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var idFallback atomic.Uint64

// NewID returns a short random identifier for a render task.
func NewID() string {
	id, err := gonanoid.Generate(idAlphabet, 8)
	if err != nil {
		return fmt.Sprintf("task%04d", idFallback.Add(1))
	}
	return id
}

// Task is a render running on its own goroutine.
type Task struct {
	ID  string
	Job Job

	cancel context.CancelFunc
	done   chan struct{}
	result Result
}

// Start runs job in the background and returns immediately. onLine is
// called from the task goroutine in output order; onComplete is called once,
// after the last line and before Done is closed.
func (inv *Invoker) Start(ctx context.Context, job Job, onLine LineFunc, onComplete CompleteFunc) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		ID:     NewID(),
		Job:    job,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()
		inv.Run(ctx, job, onLine, func(r Result) {
			r.TaskID = t.ID
			t.result = r
			if onComplete != nil {
				onComplete(r)
			}
			close(t.done)
		})
	}()

	return t
}

// Done is closed once the render has completed.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the render has completed and returns its result.
func (t *Task) Wait() Result {
	<-t.done
	return t.result
}

// Cancel kills the renderer process. Completion is still reported.
func (t *Task) Cancel() {
	t.cancel()
}
