package main

import (
	"context"
	"errors"
	"fmt"
	"lum/infrastructure/platform"
	"lum/internal"
	"lum/repositories"
	"lum/runtime"
	"lum/services"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lum terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every service, starts them, serves health until a signal
// arrives and then stops everything. Returning instead of exiting lets
// the deferred cleanups run.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Incident journal (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	incidents := repositories.NewIncidentRepository(db, log, config.IncidentLimit)

	// 3. Services
	healthServer := health.NewServer()
	manager := runtime.NewManager(log, runtime.WithIncidentSink(incidents))
	err = manager.Register(
		services.NewPlatformService(log, platform.NewLocalClient(log)),
		services.NewMuteService(log, config.MuteTickInterval),
		services.NewHealthService(log, healthServer, config.HealthSyncInterval),
	)
	if err != nil {
		return exitConfig, err
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := manager.StopAll(stopCtx); err != nil {
			log.Error("Some services failed to stop", "error", err)
		}
		runtime.RenderStatus(os.Stdout, manager.Services(), config.StatusColours)

		ids := lo.Map(manager.Services(), func(s runtime.Service, _ int) string { return s.Info().ID })
		recent, err := incidents.Recent(ids)
		if err != nil {
			log.Error("Failed to read incidents", "error", err)
			return
		}
		runtime.RenderIncidents(os.Stdout, recent, config.StatusColours)
	}()

	// 5. Start the services
	if err = manager.StartAll(ctx); err != nil {
		return exitRuntime, fmt.Errorf("services failed to start: %w", err)
	}
	runtime.RenderStatus(os.Stdout, manager.Services(), config.StatusColours)

	// 6. gRPC health endpoint
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting gRPC health server", "address", config.Address(), "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return exitRuntime, err
	}

	s.GracefulStop()
	log.Info("Program stopped cleanly")
	return exitOK, nil
}
