package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWaker struct {
	fired *[]string
	name  string
}

func (w recordingWaker) Unpark() { *w.fired = append(*w.fired, w.name) }

func TestTimerHeap_FiresInDeadlineOrder(t *testing.T) {
	now := time.Unix(0, 0)
	exec := NewExecutor(withClock(func() time.Time { return now }))

	var fired []string
	_, err := exec.ScheduleTimer(3*time.Second, recordingWaker{&fired, "c"})
	require.NoError(t, err)
	_, err = exec.ScheduleTimer(1*time.Second, recordingWaker{&fired, "a"})
	require.NoError(t, err)
	_, err = exec.ScheduleTimer(2*time.Second, recordingWaker{&fired, "b"})
	require.NoError(t, err)

	now = now.Add(5 * time.Second)
	exec.runDueTimers()

	assert.Equal(t, []string{"a", "b", "c"}, fired)
}

func TestTimerHeap_CancelledTimerDoesNotFire(t *testing.T) {
	now := time.Unix(0, 0)
	exec := NewExecutor(withClock(func() time.Time { return now }))

	var fired []string
	handle, err := exec.ScheduleTimer(time.Second, recordingWaker{&fired, "x"})
	require.NoError(t, err)
	handle.Cancel()

	now = now.Add(2 * time.Second)
	exec.runDueTimers()

	assert.Empty(t, fired)
}

func TestNextTimeout_ReportsEarliestDeadline(t *testing.T) {
	now := time.Unix(0, 0)
	exec := NewExecutor(withClock(func() time.Time { return now }))

	assert.Equal(t, time.Duration(-1), exec.nextTimeout())

	var fired []string
	_, err := exec.ScheduleTimer(5*time.Second, recordingWaker{&fired, "only"})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, exec.nextTimeout())

	now = now.Add(5 * time.Second)
	assert.Equal(t, time.Duration(0), exec.nextTimeout())
}

func TestScheduleTimer_AfterCloseErrors(t *testing.T) {
	exec := NewExecutor()
	exec.closed = true
	_, err := exec.ScheduleTimer(time.Second, Waker{})
	assert.ErrorIs(t, err, ErrExecutorClosed)
}
