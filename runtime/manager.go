package runtime

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"lum/contract"
	"lum/domain"
	"lum/errors"
	"reflect"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Manager registers services, resolves them by kind and drives their
// startup and shutdown.
type Manager struct {
	log       *slog.Logger
	registry  *Registry
	incidents contract.IncidentSink

	mu      sync.Mutex
	started []Service
}

type Option func(*Manager)

// WithIncidentSink makes every watchdog trigger also land in sink.
func WithIncidentSink(sink contract.IncidentSink) Option {
	return func(m *Manager) {
		m.incidents = sink
	}
}

func NewManager(log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		log:      log,
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Register(services ...Service) error {
	for _, service := range services {
		if err := m.registry.Register(service); err != nil {
			return err
		}
		info := service.Info()
		m.log.Debug("Service registered", "service", info.ID, "priority", info.Priority)
	}
	return nil
}

// GetService returns the registered service of kind T. Repeated calls
// return the same instance.
func GetService[T Service](m *Manager) (T, bool) {
	var zero T
	service, ok := m.registry.Lookup(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	typed, ok := service.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Service looks a service up by its ID.
func (m *Manager) Service(id string) (Service, error) {
	return m.registry.ByID(id)
}

func (m *Manager) Services() []Service {
	return m.registry.All()
}

// StartAll starts every service that has not been started yet, Critical
// ones first. A Critical failure stops the orchestration and is returned.
// An Optional failure is logged, left visible in the service status, and
// the remaining services are still started.
func (m *Manager) StartAll(ctx context.Context) error {
	pending := lo.Filter(m.registry.All(), func(s Service, _ int) bool {
		return s.Info().Status().Is(domain.NotStarted)
	})
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Info().Priority < pending[j].Info().Priority
	})

	for _, service := range pending {
		info := service.Info()
		if err := m.start(ctx, service); err != nil {
			if info.Priority == domain.Critical {
				m.log.Error("Critical service failed to start", "service", info.ID, "error", err)
				return fmt.Errorf("critical service %s (%s) failed to start: %w", info.Name, info.ID, err)
			}
			m.log.Warn("Optional service failed to start", "service", info.ID, "error", err)
		}
	}
	return nil
}

func (m *Manager) start(ctx context.Context, service Service) error {
	info := service.Info()
	info.SetStatus(domain.NewStatus(domain.Starting))
	m.log.Info("Starting service", "service", info.ID, "name", info.Name, "priority", info.Priority)

	if err := safeCall(func() error { return service.Start(ctx, m) }); err != nil {
		// A failure reported by the watchdog during start keeps its reason.
		if !info.Transition(domain.Starting, domain.Failed(err.Error())) {
			m.log.Warn("Start error not recorded over existing status", "service", info.ID,
				"status", info.Status(), "error", err)
		}
		return err
	}

	m.mu.Lock()
	m.started = append(m.started, service)
	m.mu.Unlock()

	// The watchdog may already have recorded a failure of the freshly
	// spawned task, which must not be hidden behind Started.
	if !info.Transition(domain.Starting, domain.NewStatus(domain.Started)) {
		m.log.Warn("Service left the starting state during start", "service", info.ID, "status", info.Status())
		return nil
	}
	m.log.Info("Service started", "service", info.ID)
	return nil
}

// StopAll stops every successfully started service, in reverse start
// order. A failing Stop is recorded in that service status and does not
// prevent the others from stopping. All failures are returned joined.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	started := m.started
	m.started = nil
	m.mu.Unlock()

	var errs []error
	for i := len(started) - 1; i >= 0; i-- {
		service := started[i]
		info := service.Info()
		// A runtime error stays visible until someone restarts the service.
		info.Transition(domain.Started, domain.NewStatus(domain.Stopping))
		m.log.Info("Stopping service", "service", info.ID)

		if err := safeCall(func() error { return service.Stop(ctx) }); err != nil {
			info.Transition(domain.Stopping, domain.Failed(err.Error()))
			m.log.Error("Service failed to stop", "service", info.ID, "error", err)
			errs = append(errs, fmt.Errorf("stopping service %s: %w", info.ID, err))
			continue
		}
		if !info.Transition(domain.Stopping, domain.NewStatus(domain.Stopped)) {
			m.log.Warn("Service stopped with a runtime error", "service", info.ID, "status", info.Status())
			continue
		}
		m.log.Info("Service stopped", "service", info.ID)
	}
	return goerrors.Join(errs...)
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrLifecyclePanic, r)
		}
	}()
	return fn()
}
