package services

import (
	"context"
	"fmt"
	"log/slog"
	"lum/contract"
	"lum/domain"
	"lum/runtime"
	"lum/runtime/workers"
	"lum/setlock"
)

const PlatformServiceID = "lum_builtin_platform"

// PlatformService owns the connection to the chat platform. Other services
// depend on it and check IsAvailable before trusting it.
type PlatformService struct {
	info   *domain.ServiceInfo
	log    *slog.Logger
	client contract.PlatformClient
	task   *setlock.SetLock[*workers.Task]
}

func NewPlatformService(log *slog.Logger, client contract.PlatformClient) *PlatformService {
	return &PlatformService{
		info:   domain.NewServiceInfo(PlatformServiceID, "Chat platform", domain.Critical),
		log:    log,
		client: client,
		task:   setlock.New[*workers.Task](),
	}
}

func (s *PlatformService) Info() *domain.ServiceInfo {
	return s.info
}

func (s *PlatformService) Start(ctx context.Context, manager *runtime.Manager) error {
	if err := s.client.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to the chat platform: %w", err)
	}

	task := runtime.Supervise[*PlatformService](ctx, manager, "platform-listener", s.client.Listen)
	if err := s.task.Set(task); err != nil {
		task.Abort()
		return fmt.Errorf("error setting listener task: %w", err)
	}
	return nil
}

func (s *PlatformService) Stop(ctx context.Context) error {
	task, err := s.task.Get()
	if err != nil {
		return fmt.Errorf("platform service was never started: %w", err)
	}
	task.Abort()
	return s.client.Close()
}

// IsAvailable reports whether the service is started and its client is
// connected, at the instant of the call.
func (s *PlatformService) IsAvailable() bool {
	return s.info.Status().Is(domain.Started) && s.client.Ready()
}

var _ contract.Availability = (*PlatformService)(nil)
