package workers

import (
	"context"
	"time"
)

// IdleLoop runs Tick every Interval while Pending reports work, and parks
// on Wake otherwise. The condition is evaluated again after every wakeup,
// spurious ones included.
type IdleLoop struct {
	Pending  func() bool
	Wake     *WakeSignal
	Tick     TaskFunc
	Interval time.Duration
}

func (l IdleLoop) Run(ctx context.Context) error {
	for {
		if !l.Pending() {
			if err := l.Wake.Wait(ctx); err != nil {
				return err
			}
			continue
		}

		if err := l.Tick(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.Interval):
		}
	}
}
