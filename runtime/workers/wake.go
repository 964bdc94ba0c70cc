package workers

import "context"

// WakeSignal resumes a loop suspended while it has nothing to do.
// A Notify without a waiter is kept until the next Wait, so a signal
// sent between the idle check and the Wait is never lost. Several
// Notify calls collapse into one wakeup.
type WakeSignal struct {
	c chan struct{}
}

func NewWakeSignal() *WakeSignal {
	return &WakeSignal{c: make(chan struct{}, 1)}
}

func (w *WakeSignal) Notify() {
	select {
	case w.c <- struct{}{}:
	default:
	}
}

func (w *WakeSignal) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.c:
		return nil
	}
}
