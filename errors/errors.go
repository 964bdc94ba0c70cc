package errors

import "fmt"

var (
	ErrConfiguration         = fmt.Errorf("configuration error")
	ErrAlreadySet            = fmt.Errorf("set lock already holds a value")
	ErrNotSet                = fmt.Errorf("set lock holds no value")
	ErrNotFound              = fmt.Errorf("service not found")
	ErrAlreadyRegistered     = fmt.Errorf("service already registered")
	ErrDependencyUnavailable = fmt.Errorf("dependency unavailable")
	ErrTaskPanic             = fmt.Errorf("background task panic")
	ErrLifecyclePanic        = fmt.Errorf("service lifecycle panic")
	ErrInvalidServiceID      = fmt.Errorf("invalid service id")
)
