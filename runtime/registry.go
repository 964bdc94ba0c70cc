package runtime

import (
	"fmt"
	"lum/errors"
	"reflect"
	"sync"
)

// Registry indexes services by their concrete type and by their ID.
// The stored value is the shared handle handed out to every caller.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Service
	byID   map[string]Service
	order  []Service
}

func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]Service),
		byID:   make(map[string]Service),
	}
}

// Register adds a service. A second service of the same type or with the
// same ID is rejected.
func (r *Registry) Register(service Service) error {
	kind := reflect.TypeOf(service)
	id := service.Info().ID

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byType[kind]; ok {
		return fmt.Errorf("%w: kind %s", errors.ErrAlreadyRegistered, kind)
	}
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("%w: id %s", errors.ErrAlreadyRegistered, id)
	}
	r.byType[kind] = service
	r.byID[id] = service
	r.order = append(r.order, service)
	return nil
}

func (r *Registry) Lookup(kind reflect.Type) (Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	service, ok := r.byType[kind]
	return service, ok
}

func (r *Registry) ByID(id string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	service, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", errors.ErrNotFound, id)
	}
	return service, nil
}

// All returns a snapshot of the registered services in registration order.
func (r *Registry) All() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Service, len(r.order))
	copy(out, r.order)
	return out
}
