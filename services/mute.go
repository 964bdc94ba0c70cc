package services

import (
	"context"
	"fmt"
	"log/slog"
	"lum/domain"
	"lum/errors"
	"lum/runtime"
	"lum/runtime/workers"
	"lum/setlock"
	"sync"
	"time"

	"github.com/samber/lo"
)

const MuteServiceID = "lum_builtin_mute"

// MuteService keeps track of muted members. Its background loop sleeps
// while nobody is muted and checks on every tick that the chat platform
// it depends on is still started.
type MuteService struct {
	info     *domain.ServiceInfo
	log      *slog.Logger
	interval time.Duration

	platform *setlock.SetLock[*PlatformService]
	wake     *setlock.SetLock[*workers.WakeSignal]
	task     *setlock.SetLock[*workers.Task]

	mu    sync.RWMutex
	muted map[domain.Mute]struct{}
}

func NewMuteService(log *slog.Logger, interval time.Duration) *MuteService {
	return &MuteService{
		info:     domain.NewServiceInfo(MuteServiceID, "Mute", domain.Optional),
		log:      log,
		interval: interval,
		platform: setlock.New[*PlatformService](),
		wake:     setlock.New[*workers.WakeSignal](),
		task:     setlock.New[*workers.Task](),
		muted:    make(map[domain.Mute]struct{}),
	}
}

func (s *MuteService) Info() *domain.ServiceInfo {
	return s.info
}

func (s *MuteService) Start(ctx context.Context, manager *runtime.Manager) error {
	platform, ok := runtime.GetService[*PlatformService](manager)
	if !ok {
		return fmt.Errorf("%w: platform service not found", errors.ErrConfiguration)
	}
	if !platform.IsAvailable() {
		return fmt.Errorf("%w: platform service is not available", errors.ErrConfiguration)
	}
	if err := s.platform.Set(platform); err != nil {
		return fmt.Errorf("error setting platform service: %w", err)
	}
	wake := workers.NewWakeSignal()
	if err := s.wake.Set(wake); err != nil {
		return fmt.Errorf("error setting wake signal: %w", err)
	}

	loop := workers.IdleLoop{
		Pending:  s.hasMuted,
		Wake:     wake,
		Tick:     s.tick,
		Interval: s.interval,
	}
	task := runtime.Supervise[*MuteService](ctx, manager, "mute-loop", loop.Run)
	if err := s.task.Set(task); err != nil {
		task.Abort()
		return fmt.Errorf("error setting mute loop task: %w", err)
	}
	return nil
}

func (s *MuteService) Stop(ctx context.Context) error {
	task, err := s.task.Get()
	if err != nil {
		return fmt.Errorf("mute service was never started: %w", err)
	}
	task.Abort()
	return nil
}

func (s *MuteService) IsAvailable() bool {
	return s.info.Status().Is(domain.Started)
}

// Mute adds the member to the muted set and wakes the loop.
func (s *MuteService) Mute(channelID, memberID string) {
	s.mu.Lock()
	s.muted[domain.Mute{ChannelID: channelID, MemberID: memberID}] = struct{}{}
	s.mu.Unlock()

	if wake, err := s.wake.Get(); err == nil {
		wake.Notify()
	}
}

// Unmute reports whether the member was muted.
func (s *MuteService) Unmute(channelID, memberID string) bool {
	key := domain.Mute{ChannelID: channelID, MemberID: memberID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.muted[key]; !ok {
		return false
	}
	delete(s.muted, key)
	return true
}

// Muted returns a snapshot of the muted set.
func (s *MuteService) Muted() []domain.Mute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Keys(s.muted)
}

func (s *MuteService) hasMuted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.muted) > 0
}

func (s *MuteService) tick(ctx context.Context) error {
	platform, err := s.platform.Get()
	if err != nil {
		return err
	}
	status := platform.Info().Status()
	if !status.Is(domain.Started) {
		return fmt.Errorf("%w: platform service expected to be started, but it was %s",
			errors.ErrDependencyUnavailable, status)
	}

	// TODO: enforce mutes through the platform client once it exposes moderation calls.
	s.log.Debug("Tick", "muted", len(s.Muted()))
	return nil
}
