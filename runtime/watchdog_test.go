package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"lum/domain"
	"lum/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestWatchdog_Clean_Exit_Is_A_Failure(t *testing.T) {
	req := require.New(t)
	manager := NewManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	service := newTaskService(func(ctx context.Context) error { return nil })
	req.NoError(manager.Register(service))

	// When the background task returns without error
	req.NoError(manager.StartAll(context.Background()))
	req.True(service.waitTask(time.Second))

	// Then the service is in runtime error
	status := service.Info().Status()
	req.True(status.Is(domain.RuntimeError))
	req.Equal("The background task has stopped unexpectedly.", status.Reason)
}

func TestWatchdog_Returned_Error(t *testing.T) {
	req := require.New(t)
	manager := NewManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	service := newTaskService(func(ctx context.Context) error { return fmt.Errorf("X") })
	req.NoError(manager.Register(service))

	req.NoError(manager.StartAll(context.Background()))
	req.True(service.waitTask(time.Second))

	status := service.Info().Status()
	req.True(status.Is(domain.RuntimeError))
	req.Contains(status.Reason, "X")
	req.Equal("The background task has encountered an error: X", status.Reason)
}

func TestWatchdog_Panic(t *testing.T) {
	req := require.New(t)
	manager := NewManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	service := newTaskService(func(ctx context.Context) error { panic("index out of range") })
	req.NoError(manager.Register(service))

	req.NoError(manager.StartAll(context.Background()))
	req.True(service.waitTask(time.Second))

	status := service.Info().Status()
	req.True(status.Is(domain.RuntimeError))
	req.Equal("The background task has panicked: index out of range", status.Reason)
}

func TestWatchdog_Failure_After_Started(t *testing.T) {
	req := require.New(t)
	manager := NewManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	release := make(chan struct{})
	service := newTaskService(func(ctx context.Context) error {
		<-release
		return fmt.Errorf("gateway closed")
	})
	req.NoError(manager.Register(service))

	// Given a running service
	req.NoError(manager.StartAll(context.Background()))
	req.True(service.Info().Status().Is(domain.Started))

	// When its task fails later on
	close(release)
	req.True(service.waitTask(time.Second))

	// Then the status does not stay falsely started
	req.Equal(domain.Failed("The background task has encountered an error: gateway closed"), service.Info().Status())

	// And stopping keeps the runtime error visible
	req.NoError(manager.StopAll(context.Background()))
	req.True(service.Info().Status().Is(domain.RuntimeError))
}

func TestWatchdog_Abort_Does_Not_Write_Status(t *testing.T) {
	req := require.New(t)
	manager := NewManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	service := newTaskService(blockUntilCanceled)
	req.NoError(manager.Register(service))
	req.NoError(manager.StartAll(context.Background()))

	// When the service is stopped
	req.NoError(manager.StopAll(context.Background()))
	req.True(service.waitTask(time.Second))

	// Then the task end is not reported as a failure
	req.True(service.Info().Status().Is(domain.Stopped))
}

func TestWatchdog_Records_Incident(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockIncidentSink(ctrl)

	incidents := make(chan domain.Incident, 1)
	sink.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, incident domain.Incident) error {
			incidents <- incident
			return nil
		}).
		Times(1)

	manager := NewManager(logs.GetLoggerFromLevel(slog.LevelDebug), WithIncidentSink(sink))
	service := newTaskService(func(ctx context.Context) error { return fmt.Errorf("X") })
	req.NoError(manager.Register(service))
	req.NoError(manager.StartAll(context.Background()))
	req.True(service.waitTask(time.Second))

	incident := <-incidents
	req.Equal("task_service", incident.ServiceID)
	req.Equal(domain.CauseError, incident.Cause)
	req.Contains(incident.Reason, "X")
	req.NotEmpty(incident.TaskID)
	req.False(incident.At.IsZero())
}

func TestWatchdog_Unregistered_Service_Is_Logged_Only(t *testing.T) {
	req := require.New(t)
	manager := NewManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	service := newTaskService(nil)

	// Given a task spawned for a kind the manager does not know
	task := Supervise[*taskService](context.Background(), manager, "orphan",
		func(ctx context.Context) error { return nil })

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		req.Fail("orphan task did not finish")
	}

	// Then nothing was written anywhere
	req.True(service.Info().Status().Is(domain.NotStarted))
}
