// Package setlock provides a cell that can be written exactly once and read
// any number of times afterwards.
package setlock

import (
	"lum/errors"
	"sync"
)

// SetLock holds a value of type T that is unknown at construction time.
// The first Set wins, every later Set fails with errors.ErrAlreadySet and
// leaves the stored value untouched. Get before Set fails with
// errors.ErrNotSet instead of returning the zero value.
type SetLock[T any] struct {
	mu    sync.RWMutex
	set   bool
	value T
}

func New[T any]() *SetLock[T] {
	return &SetLock[T]{}
}

func (l *SetLock[T]) Set(value T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set {
		return errors.ErrAlreadySet
	}
	l.value = value
	l.set = true
	return nil
}

func (l *SetLock[T]) Get() (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.set {
		var zero T
		return zero, errors.ErrNotSet
	}
	return l.value, nil
}

func (l *SetLock[T]) IsSet() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.set
}
