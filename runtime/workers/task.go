package workers

import (
	"context"
	"fmt"
	"log/slog"
	"lum/errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// TaskFunc is the body of a background task. It is expected to run until
// its context is canceled.
type TaskFunc func(ctx context.Context) error

// Outcome is how a task ended. Panic is set when the task panicked, in
// which case Err wraps errors.ErrTaskPanic. Aborted is set when the task
// ended after Abort was called.
type Outcome struct {
	TaskID  string
	Err     error
	Panic   any
	Aborted bool
}

func (o Outcome) Panicked() bool {
	return o.Panic != nil
}

// Task is a handle on a spawned background task.
type Task struct {
	ID      string
	Name    string
	cancel  context.CancelFunc
	aborted atomic.Bool
	done    chan struct{}
}

// Spawn runs fn in its own goroutine, detached from the cancellation of
// ctx. A panic in fn is recovered and turned into an Outcome, so it never
// reaches the spawner. then, when not nil, receives the Outcome once fn
// has returned; Done is closed only after then has completed.
func Spawn(ctx context.Context, log *slog.Logger, name string, fn TaskFunc, then func(Outcome)) *Task {
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	t := &Task{
		ID:     uuid.NewString(),
		Name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		outcome := t.run(taskCtx, fn)
		log.Debug("Task finished", "task", t.Name, "task_id", t.ID,
			"aborted", outcome.Aborted, "panicked", outcome.Panicked(), "error", outcome.Err)
		if then != nil {
			then(outcome)
		}
	}()
	return t
}

func (t *Task) run(ctx context.Context, fn TaskFunc) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Err: fmt.Errorf("%w: %v", errors.ErrTaskPanic, r), Panic: r}
		}
		outcome.TaskID = t.ID
		outcome.Aborted = t.aborted.Load()
	}()
	return Outcome{Err: fn(ctx)}
}

// Abort cancels the task context and returns without waiting.
// There is no graceful shutdown step: the task sees a canceled context.
func (t *Task) Abort() {
	t.aborted.Store(true)
	t.cancel()
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}
