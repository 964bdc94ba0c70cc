//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"lum/domain"
)

// PlatformClient is the connection to the chat platform.
// Listen blocks for as long as the connection is alive.
type PlatformClient interface {
	Connect(ctx context.Context) error
	Listen(ctx context.Context) error
	Ready() bool
	Close() error
}

// IncidentSink receives every watchdog trigger.
type IncidentSink interface {
	Record(ctx context.Context, incident domain.Incident) error
}

// Availability is exposed by services other services may depend on.
// The answer is a snapshot, it can change right after the call.
type Availability interface {
	IsAvailable() bool
}
