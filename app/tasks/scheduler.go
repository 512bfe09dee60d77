package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/birdwatcher/app/feed"
	"github.com/lysyi3m/birdwatcher/app/metrics"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type State string

const (
	StateIdle           State = "idle"
	StateFetching       State = "fetching"
	StateParsing        State = "parsing"
	StateNotifying      State = "notifying"
	StateTimeoutBackoff State = "timeout_backoff"
)

// Clock is the scheduler's only source of time, so tests can drive ticks.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// TaskFactory builds the task for one cycle; setState reports its progress.
type TaskFactory func(setState func(State)) TaskInterface

type Status struct {
	State          State
	CyclesRun      int64
	LastStartedAt  *time.Time
	LastFinishedAt *time.Time
	LastError      string
	LastReport     CycleReport
	NextRunAt      *time.Time
}

type Scheduler struct {
	newTask  TaskFactory
	interval time.Duration
	backoff  time.Duration
	clock    Clock
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	mu       sync.RWMutex
	status   Status
}

// NewScheduler runs a cycle, then waits interval (or backoff after a feed
// timeout) before the next. A nil clock means wall time.
func NewScheduler(newTask TaskFactory, interval, backoff time.Duration, clock Clock) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if clock == nil {
		clock = realClock{}
	}

	return &Scheduler{
		newTask:  newTask,
		interval: interval,
		backoff:  backoff,
		clock:    clock,
		ctx:      ctx,
		cancel:   cancel,
		status:   Status{State: StateIdle},
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(s.ctx)
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Run loops until ctx is cancelled. No cycle outcome ends the loop.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		delay := s.runCycle(ctx)

		if ctx.Err() != nil {
			return
		}

		next := s.clock.Now().Add(delay)
		s.mu.Lock()
		s.status.NextRunAt = &next
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(delay):
		}
	}
}

func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Scheduler) runCycle(ctx context.Context) time.Duration {
	started := s.clock.Now()
	s.mu.Lock()
	s.status.LastStartedAt = &started
	s.status.NextRunAt = nil
	s.mu.Unlock()

	task := s.newTask(s.setState)
	err := s.executeTask(ctx, task)

	metrics.Cycles.Inc()
	metrics.ObserveCycleDuration(started)

	finished := s.clock.Now()
	delay := s.interval
	state := StateIdle

	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.CyclesRun++
	s.status.LastFinishedAt = &finished
	s.status.LastError = ""
	if reporter, ok := task.(interface{ GetReport() CycleReport }); ok {
		s.status.LastReport = reporter.GetReport()
	}

	if err != nil {
		metrics.CycleErrors.Inc()
		s.status.LastError = err.Error()

		if errors.Is(err, feed.ErrTimeout) {
			metrics.FetchTimeouts.Inc()
			delay = s.backoff
			state = StateTimeoutBackoff
			slog.Error("Error fetching RSS feed: connection timed out, backing off", "id", task.GetID(), "backoff", delay.String(), "error", err)
		} else if ctx.Err() == nil {
			slog.Error("Error processing feed", "type", string(task.GetType()), "id", task.GetID(), "error", err)
		}
	}

	s.status.State = state
	slog.Info("Feed processing completed", "id", task.GetID(), "wait", delay.String())

	return delay
}

func (s *Scheduler) executeTask(ctx context.Context, task TaskInterface) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll cycle panicked: %v", r)
		}
	}()

	task.Start()
	return task.Execute(ctx)
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.status.State = state
	s.mu.Unlock()
}
