package services

import (
	"context"
	"fmt"
	"log/slog"
	"lum/domain"
	"lum/runtime"
	"lum/runtime/workers"
	"lum/setlock"
	"time"

	"github.com/samber/lo"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const HealthServiceID = "lum_builtin_health"

// HealthService mirrors the status of every registered service into a
// gRPC health server. Each service is exposed under its ID; the empty
// name reports whether every Critical service is started.
type HealthService struct {
	info     *domain.ServiceInfo
	log      *slog.Logger
	interval time.Duration
	server   *health.Server
	task     *setlock.SetLock[*workers.Task]
}

func NewHealthService(log *slog.Logger, server *health.Server, interval time.Duration) *HealthService {
	return &HealthService{
		info:     domain.NewServiceInfo(HealthServiceID, "Health", domain.Optional),
		log:      log,
		interval: interval,
		server:   server,
		task:     setlock.New[*workers.Task](),
	}
}

func (s *HealthService) Info() *domain.ServiceInfo {
	return s.info
}

func (s *HealthService) Start(ctx context.Context, manager *runtime.Manager) error {
	s.sync(manager)

	task := runtime.Supervise[*HealthService](ctx, manager, "health-sync", func(ctx context.Context) error {
		return s.run(ctx, manager)
	})
	if err := s.task.Set(task); err != nil {
		task.Abort()
		return fmt.Errorf("error setting health sync task: %w", err)
	}
	return nil
}

func (s *HealthService) Stop(ctx context.Context) error {
	task, err := s.task.Get()
	if err != nil {
		return fmt.Errorf("health service was never started: %w", err)
	}
	task.Abort()
	s.server.Shutdown()
	return nil
}

func (s *HealthService) run(ctx context.Context, manager *runtime.Manager) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sync(manager)
		}
	}
}

func (s *HealthService) sync(manager *runtime.Manager) {
	services := manager.Services()
	for _, service := range services {
		info := service.Info()
		s.server.SetServingStatus(info.ID, servingStatus(info.Status()))
	}

	critical := lo.Filter(services, func(service runtime.Service, _ int) bool {
		return service.Info().Priority == domain.Critical
	})
	healthy := lo.EveryBy(critical, func(service runtime.Service) bool {
		return service.Info().Status().Is(domain.Started)
	})
	overall := healthpb.HealthCheckResponse_NOT_SERVING
	if healthy {
		overall = healthpb.HealthCheckResponse_SERVING
	}
	s.server.SetServingStatus("", overall)
	s.log.Debug("Health synced", "services", len(services), "healthy", healthy)
}

func servingStatus(status domain.Status) healthpb.HealthCheckResponse_ServingStatus {
	switch status.State {
	case domain.Started:
		return healthpb.HealthCheckResponse_SERVING
	case domain.NotStarted:
		return healthpb.HealthCheckResponse_SERVICE_UNKNOWN
	default:
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
}
