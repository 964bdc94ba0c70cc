package runtime

import (
	"context"
	"lum/domain"
	"lum/runtime/workers"
	"lum/setlock"
	"sync"
	"time"
)

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type stubService struct {
	info     *domain.ServiceInfo
	journal  *journal
	startErr error
	stopErr  error
}

func (s *stubService) Info() *domain.ServiceInfo {
	return s.info
}

func (s *stubService) Start(ctx context.Context, manager *Manager) error {
	if s.journal != nil {
		s.journal.add("start:" + s.info.ID)
	}
	return s.startErr
}

func (s *stubService) Stop(ctx context.Context) error {
	if s.journal != nil {
		s.journal.add("stop:" + s.info.ID)
	}
	return s.stopErr
}

// Distinct kinds so that several stubs can live in one registry.
type (
	gatewayStub  struct{ stubService }
	databaseStub struct{ stubService }
	mutesStub    struct{ stubService }
	reportsStub  struct{ stubService }
)

func newStub(id string, priority domain.Priority, j *journal) stubService {
	return stubService{info: domain.NewServiceInfo(id, id, priority), journal: j}
}

// taskService runs body under the watchdog.
type taskService struct {
	info *domain.ServiceInfo
	body workers.TaskFunc
	task *setlock.SetLock[*workers.Task]
}

func newTaskService(body workers.TaskFunc) *taskService {
	return &taskService{
		info: domain.NewServiceInfo("task_service", "Task service", domain.Optional),
		body: body,
		task: setlock.New[*workers.Task](),
	}
}

func (s *taskService) Info() *domain.ServiceInfo {
	return s.info
}

func (s *taskService) Start(ctx context.Context, manager *Manager) error {
	return s.task.Set(Supervise[*taskService](ctx, manager, "stub-task", s.body))
}

func (s *taskService) Stop(ctx context.Context) error {
	task, err := s.task.Get()
	if err != nil {
		return err
	}
	task.Abort()
	return nil
}

func (s *taskService) waitTask(timeout time.Duration) bool {
	task, err := s.task.Get()
	if err != nil {
		return false
	}
	select {
	case <-task.Done():
		return true
	case <-time.After(timeout):
		return false
	}
}

func blockUntilCanceled(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
