package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_SpawnRunsToCompletion(t *testing.T) {
	exec := NewExecutor()
	var ran bool
	_, err := exec.Spawn(func() Poll[struct{}] {
		ran = true
		return Ready(struct{}{})
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = exec.Run(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestExecutor_ParkAndUnpark(t *testing.T) {
	exec := NewExecutor()
	var polls int32
	wakerCh := make(chan Waker, 1)
	parked := false

	_, err := exec.Spawn(func() Poll[struct{}] {
		polls++
		if !parked {
			parked = true
			w := Park()
			wakerCh <- w
			return NotReady[struct{}]()
		}
		return Ready(struct{}{})
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- exec.Run(ctx) }()

	select {
	case w := <-wakerCh:
		w.Unpark()
	case <-time.After(time.Second):
		cancel()
		t.Fatal("task never parked")
	}

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		cancel()
		t.Fatal("executor did not complete after unpark")
	}
	assert.Equal(t, int32(2), polls)
}

func TestExecutor_ParkOutsidePollPanics(t *testing.T) {
	assert.PanicsWithValue(t, ErrParkOutsidePoll, func() {
		Park()
	})
}

func TestExecutor_ScheduleTimerFires(t *testing.T) {
	exec := NewExecutor()
	fired := make(chan struct{})
	scheduled := false
	_, err := exec.Spawn(func() Poll[struct{}] {
		if scheduled {
			return Ready(struct{}{})
		}
		scheduled = true
		w := Park()
		_, terr := exec.ScheduleTimer(10*time.Millisecond, w)
		if terr != nil {
			return Err[struct{}](terr)
		}
		return NotReady[struct{}]()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go func() {
		_ = exec.Run(ctx)
		close(fired)
	}()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestExecutor_NoWorkReturnsImmediately(t *testing.T) {
	exec := NewExecutor()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := exec.Run(ctx)
	assert.NoError(t, err)
}
