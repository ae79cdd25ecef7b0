package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/mcoot/aicardgame-go/internal/dependencies/scheduler"
)

// MockScheduler runs tasks only when the test advances time.
// Tasks fire synchronously on the goroutine calling Advance.
type MockScheduler struct {
	clock *MockClock

	mu       sync.Mutex
	seq      int
	tasks    []*mockTask
	periodic map[string]func()
}

type mockTask struct {
	s       *MockScheduler
	seq     int
	due     time.Time
	fn      func()
	done    bool
	stopped bool
}

// Ensure MockScheduler implements Scheduler
var _ scheduler.Scheduler = (*MockScheduler)(nil)

// NewMockScheduler creates a scheduler driven by the given clock
func NewMockScheduler(clock *MockClock) *MockScheduler {
	return &MockScheduler{
		clock:    clock,
		periodic: make(map[string]func()),
	}
}

func (t *mockTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc records a task due at clock.Now()+d
func (s *MockScheduler) AfterFunc(d time.Duration, fn func()) (scheduler.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &mockTask{s: s, seq: s.seq, due: s.clock.Now().Add(d), fn: fn}
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Every records a periodic job; tests trigger it with RunPeriodic
func (s *MockScheduler) Every(name string, d time.Duration, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodic[name] = fn
	return nil
}

// Start is a no-op
func (s *MockScheduler) Start() {}

// Shutdown is a no-op
func (s *MockScheduler) Shutdown() error { return nil }

// Advance moves the clock forward, firing due tasks in due-time order.
// Tasks scheduled by fired tasks also run if they fall due within the window.
func (s *MockScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		if t.due.After(s.clock.Now()) {
			s.clock.Set(t.due)
		}
		t.fn()
	}
	s.clock.Set(target)
}

// nextDue pops the earliest pending task due at or before target
func (s *MockScheduler) nextDue(target time.Time) *mockTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due.Equal(s.tasks[j].due) {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due.Before(s.tasks[j].due)
	})

	for i, t := range s.tasks {
		if t.stopped {
			continue
		}
		if t.due.After(target) {
			return nil
		}
		t.done = true
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		return t
	}
	return nil
}

// Pending returns the number of tasks that have not fired or been stopped
func (s *MockScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.done && !t.stopped {
			n++
		}
	}
	return n
}

// RunPeriodic invokes a registered periodic job once
func (s *MockScheduler) RunPeriodic(name string) bool {
	s.mu.Lock()
	fn, ok := s.periodic[name]
	s.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}
