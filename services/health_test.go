package services

import (
	"context"
	"log/slog"
	"lum/runtime"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func check(t *testing.T, server *health.Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := server.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestHealthService_Mirrors_Statuses(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	release := make(chan struct{})
	client := expectConnectedClient(ctrl, release, nil)

	server := health.NewServer()
	manager := runtime.NewManager(log)
	platform := NewPlatformService(log, client)
	mute := NewMuteService(log, time.Millisecond)
	healthService := NewHealthService(log, server, 5*time.Millisecond)
	req.NoError(manager.Register(healthService, mute, platform))

	// When everything is started
	req.NoError(manager.StartAll(context.Background()))

	// Then every service is reported serving
	req.Eventually(func() bool {
		return check(t, server, PlatformServiceID) == healthpb.HealthCheckResponse_SERVING &&
			check(t, server, MuteServiceID) == healthpb.HealthCheckResponse_SERVING &&
			check(t, server, HealthServiceID) == healthpb.HealthCheckResponse_SERVING &&
			check(t, server, "") == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	// When the critical platform fails
	close(release)
	waitTask(t, platform.task)

	// Then it and the overall status stop serving
	req.Eventually(func() bool {
		return check(t, server, PlatformServiceID) == healthpb.HealthCheckResponse_NOT_SERVING &&
			check(t, server, "") == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	// When everything stops
	req.NoError(manager.StopAll(context.Background()))
	waitTask(t, healthService.task)

	// Then nothing is serving anymore
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, check(t, server, MuteServiceID))
}

func TestServingStatus_Not_Started_Is_Unknown(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	server := health.NewServer()
	manager := runtime.NewManager(log)
	mute := NewMuteService(log, time.Millisecond)
	healthService := NewHealthService(log, server, time.Hour)
	req.NoError(manager.Register(mute, healthService))

	healthService.sync(manager)

	req.Equal(healthpb.HealthCheckResponse_SERVICE_UNKNOWN, check(t, server, MuteServiceID))
	// No critical service registered at all counts as healthy
	req.Equal(healthpb.HealthCheckResponse_SERVING, check(t, server, ""))
}
