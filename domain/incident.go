package domain

import (
	"time"

	"github.com/google/uuid"
)

type Cause string

const (
	CauseExit  Cause = "exit"
	CauseError Cause = "error"
	CausePanic Cause = "panic"
)

// Incident is the record of a watchdog trigger.
type Incident struct {
	ID        uuid.UUID
	ServiceID string
	TaskID    string
	Cause     Cause
	Reason    string
	At        time.Time
}
