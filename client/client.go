package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Exit codes for the probe.
const (
	exitOK        = 0
	exitRuntime   = 1
	exitConfig    = 2
	exitUnhealthy = 3
)

var defaultServices = []string{"lum_builtin_platform", "lum_builtin_mute", "lum_builtin_health"}

// Config defines the probe environment variables.
type Config struct {
	ServerAddress string        `env:"LUM_HEALTH_ADDR,default=localhost:8080"`
	Services      string        `env:"LUM_PROBE_SERVICES"`
	Timeout       time.Duration `env:"LUM_PROBE_TIMEOUT,default=3s"`
	LogLevel      string        `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Probe error: %v\n", err)
	}
	os.Exit(code)
}

// run asks a running lum process for the health of each service and
// prints one row per service. The exit code tells whether the process
// as a whole is serving.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	conn, err := grpc.NewClient(config.ServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerAddress, err)
	}
	defer func() {
		_ = conn.Close()
	}()
	client := healthpb.NewHealthClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	overall, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return exitRuntime, fmt.Errorf("health check failed: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Service", "Health"})
	table.SetBorder(false)
	names := defaultServices
	if config.Services != "" {
		names = strings.Split(config.Services, ",")
	}
	for _, service := range names {
		service = strings.TrimSpace(service)
		if service == "" {
			continue
		}
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			log.Warn("Service health unavailable", "service", service, "error", err)
			table.Append([]string{service, color.Gray.Render("UNKNOWN")})
			continue
		}
		table.Append([]string{service, paint(resp.GetStatus())})
	}
	table.Append([]string{"(overall)", paint(overall.GetStatus())})
	table.Render()

	if overall.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return exitUnhealthy, nil
	}
	return exitOK, nil
}

func paint(status healthpb.HealthCheckResponse_ServingStatus) string {
	switch status {
	case healthpb.HealthCheckResponse_SERVING:
		return color.Green.Render(status.String())
	case healthpb.HealthCheckResponse_NOT_SERVING:
		return color.Red.Render(status.String())
	default:
		return color.Yellow.Render(status.String())
	}
}
