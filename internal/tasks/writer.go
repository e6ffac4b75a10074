package tasks

import (
	"context"
	"errors"
)

// ErrWriterStopped is returned by Writer.Do once Run has returned.
var ErrWriterStopped = errors.New("writer stopped")

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// Writer runs submitted jobs one at a time on a single goroutine. Routing
// every load-modify-save cycle through it means no two cycles interleave,
// so a save can never overwrite a concurrent one's effect.
type Writer struct {
	jobs    chan job
	stopped chan struct{}
}

func NewWriter(queue int) *Writer {
	if queue < 0 {
		queue = 0
	}
	return &Writer{
		jobs:    make(chan job, queue),
		stopped: make(chan struct{}),
	}
}

// Run executes jobs until ctx is cancelled. It must be called exactly once.
func (w *Writer) Run(ctx context.Context) error {
	defer close(w.stopped)
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-w.jobs:
			// The submitter may have given up while the job was queued.
			if err := j.ctx.Err(); err != nil {
				j.done <- err
				continue
			}
			j.done <- j.fn(j.ctx)
		}
	}
}

// Do submits fn and waits for its result.
func (w *Writer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}

	select {
	case w.jobs <- j:
	case <-w.stopped:
		return ErrWriterStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-w.stopped:
		// Run may have finished the job just before stopping.
		select {
		case err := <-j.done:
			return err
		default:
			return ErrWriterStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
