package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() (*MockClock, *MockScheduler) {
	clk := NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return clk, NewMockScheduler(clk)
}

func TestMockSchedulerFiresInDueOrder(t *testing.T) {
	clk, sched := newTestScheduler()
	var order []string

	_, err := sched.AfterFunc(3*time.Second, func() { order = append(order, "b") })
	require.NoError(t, err)
	_, err = sched.AfterFunc(1*time.Second, func() { order = append(order, "a") })
	require.NoError(t, err)

	sched.Advance(2 * time.Second)
	assert.Equal(t, []string{"a"}, order)

	sched.Advance(1 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 3, 0, time.UTC), clk.Now())
}

func TestMockSchedulerStop(t *testing.T) {
	_, sched := newTestScheduler()
	fired := false

	task, _ := sched.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, task.Stop())
	assert.False(t, task.Stop())

	sched.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, sched.Pending())
}

func TestMockSchedulerChainedTasks(t *testing.T) {
	clk, sched := newTestScheduler()
	var firedAt []time.Time

	_, _ = sched.AfterFunc(time.Second, func() {
		firedAt = append(firedAt, clk.Now())
		_, _ = sched.AfterFunc(2*time.Second, func() {
			firedAt = append(firedAt, clk.Now())
		})
	})

	sched.Advance(5 * time.Second)
	require.Len(t, firedAt, 2)
	assert.Equal(t, 2*time.Second, firedAt[1].Sub(firedAt[0]))
}

func TestMockSchedulerStopAfterFire(t *testing.T) {
	_, sched := newTestScheduler()
	task, _ := sched.AfterFunc(time.Second, func() {})
	sched.Advance(time.Second)
	assert.False(t, task.Stop())
}

func TestMockSchedulerRunPeriodic(t *testing.T) {
	_, sched := newTestScheduler()
	count := 0
	require.NoError(t, sched.Every("job", time.Minute, func() { count++ }))

	assert.True(t, sched.RunPeriodic("job"))
	assert.True(t, sched.RunPeriodic("job"))
	assert.False(t, sched.RunPeriodic("missing"))
	assert.Equal(t, 2, count)
}
