package runtime

import (
	"context"
	"lum/domain"
)

// Service is a unit with a stable identity, a lifecycle and an observable
// status. Info is the only place a service reports its status.
//
// Start resolves dependencies through the manager, stores them and spawns
// the background behaviour. Stop is only called after a successful Start.
type Service interface {
	Info() *domain.ServiceInfo
	Start(ctx context.Context, manager *Manager) error
	Stop(ctx context.Context) error
}
