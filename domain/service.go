package domain

import (
	"fmt"
	"sync"
)

type State int

const (
	NotStarted State = iota
	Starting
	Started
	Stopping
	Stopped
	RuntimeError
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "Not started"
	case Starting:
		return "Starting"
	case Started:
		return "Started"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	case RuntimeError:
		return "Runtime error"
	default:
		return fmt.Sprintf("Unknown state %d", int(s))
	}
}

// Status is the health of a service. Reason is only meaningful for
// RuntimeError.
type Status struct {
	State  State
	Reason string
}

func NewStatus(state State) Status {
	return Status{State: state}
}

func Failed(reason string) Status {
	return Status{State: RuntimeError, Reason: reason}
}

func (s Status) Is(state State) bool {
	return s.State == state
}

func (s Status) String() string {
	if s.State == RuntimeError {
		return fmt.Sprintf("%s: %s", s.State, s.Reason)
	}
	return s.State.String()
}

// Priority orders startup and decides whether a start failure aborts the
// whole orchestration.
type Priority int

const (
	Critical Priority = iota
	Optional
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "Critical"
	case Optional:
		return "Optional"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// ServiceInfo is the identity of a service plus its status.
// Only the status changes after construction.
type ServiceInfo struct {
	ID       string
	Name     string
	Priority Priority

	mu     sync.RWMutex
	status Status
}

func NewServiceInfo(id, name string, priority Priority) *ServiceInfo {
	return &ServiceInfo{
		ID:       id,
		Name:     name,
		Priority: priority,
		status:   NewStatus(NotStarted),
	}
}

// Status returns a point-in-time copy of the status.
func (i *ServiceInfo) Status() Status {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status
}

func (i *ServiceInfo) SetStatus(status Status) {
	i.mu.Lock()
	i.status = status
	i.mu.Unlock()
}

// Transition replaces the status only when the current state is from.
// It reports whether the write happened.
func (i *ServiceInfo) Transition(from State, to Status) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.status.State != from {
		return false
	}
	i.status = to
	return true
}
