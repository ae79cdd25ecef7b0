package scheduler

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Task is a pending delayed call
type Task interface {
	// Stop cancels the task. It returns false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs delayed and periodic work. It can be replaced in tests
// with a manually advanced implementation.
type Scheduler interface {
	// AfterFunc runs fn once after d
	AfterFunc(d time.Duration, fn func()) (Task, error)
	// Every runs fn every d until the scheduler shuts down
	Every(name string, d time.Duration, fn func()) error
	Start()
	Shutdown() error
}

// immediateThreshold is the delay below which a one-time job starts immediately
const immediateThreshold = 10 * time.Millisecond

// task states
const (
	taskPending int32 = iota
	taskFired
	taskStopped
)

// GocronScheduler implements Scheduler on top of gocron
type GocronScheduler struct {
	sched  gocron.Scheduler
	logger *slog.Logger
}

// Ensure GocronScheduler implements Scheduler
var _ Scheduler = (*GocronScheduler)(nil)

// New creates a gocron-backed scheduler. Call Start before relying on it.
func New(logger *slog.Logger) (*GocronScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &GocronScheduler{
		sched:  sched,
		logger: logger.With(slog.String("component", "scheduler")),
	}, nil
}

type gocronTask struct {
	state atomic.Int32
	sched gocron.Scheduler
	job   gocron.Job
}

func (t *gocronTask) Stop() bool {
	if !t.state.CompareAndSwap(taskPending, taskStopped) {
		return false
	}
	if t.job != nil {
		_ = t.sched.RemoveJob(t.job.ID())
	}
	return true
}

// AfterFunc schedules fn as a one-time gocron job
func (s *GocronScheduler) AfterFunc(d time.Duration, fn func()) (Task, error) {
	t := &gocronTask{sched: s.sched}

	start := gocron.OneTimeJobStartImmediately()
	if d > immediateThreshold {
		start = gocron.OneTimeJobStartDateTime(time.Now().Add(d))
	}

	job, err := s.sched.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(func() {
			if !t.state.CompareAndSwap(taskPending, taskFired) {
				return
			}
			fn()
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule task: %w", err)
	}
	t.job = job
	return t, nil
}

// Every registers a named periodic job
func (s *GocronScheduler) Every(name string, d time.Duration, fn func()) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(d),
		gocron.NewTask(fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("periodic job registered",
		slog.String("job", name),
		slog.Duration("interval", d),
	)
	return nil
}

// Start begins executing jobs
func (s *GocronScheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for running jobs
func (s *GocronScheduler) Shutdown() error {
	return s.sched.Shutdown()
}
