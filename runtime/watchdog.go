package runtime

import (
	"context"
	"fmt"
	"lum/domain"
	"lum/runtime/workers"
	"reflect"
	"time"

	"github.com/google/uuid"
)

const (
	reasonStopped  = "The background task has stopped unexpectedly."
	reasonErrored  = "The background task has encountered an error: %s"
	reasonPanicked = "The background task has panicked: %v"
)

// Supervise spawns task as the background behaviour of the service of
// kind T. When the task ends for any reason other than Abort, the
// watchdog resolves the service through the manager and records the
// outcome as a runtime error in its status. A clean return counts as a
// failure too: the task is meant to run until aborted.
func Supervise[T Service](ctx context.Context, m *Manager, name string, task workers.TaskFunc) *workers.Task {
	return workers.Spawn(ctx, m.log, name, task, func(outcome workers.Outcome) {
		watchdog[T](context.WithoutCancel(ctx), m, outcome)
	})
}

func watchdog[T Service](ctx context.Context, m *Manager, outcome workers.Outcome) {
	if outcome.Aborted {
		return
	}

	service, ok := GetService[T](m)
	if !ok {
		m.log.Error("Watchdog failed to resolve its service", "kind", reflect.TypeFor[T]().String(),
			"task_id", outcome.TaskID, "error", outcome.Err)
		return
	}

	cause, reason := describe(outcome)
	status := domain.Failed(reason)
	info := service.Info()
	info.SetStatus(status)

	m.log.Error(fmt.Sprintf("Watchdog triggered for service %s. %s", info.ID, status),
		"task_id", outcome.TaskID, "cause", cause)

	if m.incidents == nil {
		return
	}
	incident := domain.Incident{
		ID:        uuid.New(),
		ServiceID: info.ID,
		TaskID:    outcome.TaskID,
		Cause:     cause,
		Reason:    reason,
		At:        time.Now().UTC(),
	}
	if err := m.incidents.Record(ctx, incident); err != nil {
		m.log.Error("Failed to record incident", "service", info.ID, "error", err)
	}
}

func describe(outcome workers.Outcome) (domain.Cause, string) {
	switch {
	case outcome.Panicked():
		return domain.CausePanic, fmt.Sprintf(reasonPanicked, outcome.Panic)
	case outcome.Err != nil:
		return domain.CauseError, fmt.Sprintf(reasonErrored, outcome.Err)
	default:
		return domain.CauseExit, reasonStopped
	}
}
