package services

import (
	"context"
	"lum/mocks"
	"lum/runtime/workers"
	"lum/setlock"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
)

// expectConnectedClient prepares a client that connects, stays ready and
// listens until release is closed, then returns listenErr.
func expectConnectedClient(ctrl *gomock.Controller, release <-chan struct{}, listenErr error) *mocks.MockPlatformClient {
	client := mocks.NewMockPlatformClient(ctrl)
	client.EXPECT().Connect(gomock.Any()).Return(nil)
	client.EXPECT().Ready().Return(true).AnyTimes()
	client.EXPECT().
		Listen(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-release:
				return listenErr
			}
		})
	client.EXPECT().Close().Return(nil).AnyTimes()
	return client
}

func waitTask(t *testing.T, lock *setlock.SetLock[*workers.Task]) {
	t.Helper()
	task, err := lock.Get()
	if err != nil {
		t.Fatalf("task never spawned: %v", err)
	}
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not finish")
	}
}
