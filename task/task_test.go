package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_CancelAbortsSignalAndRequeuesParked(t *testing.T) {
	exec := NewExecutor()
	abortCh := make(chan error, 1)
	parkedCh := make(chan struct{}, 1)
	stage := 0

	tk, err := exec.Spawn(func() Poll[struct{}] {
		if stage == 0 {
			stage = 1
			cur := Current()
			cur.Signal().OnAbort(func(reason error) { abortCh <- reason })
			Park()
			parkedCh <- struct{}{}
			return NotReady[struct{}]()
		}
		if cur := Current(); cur.Signal().Aborted() {
			return Err[struct{}](cur.Signal().Reason())
		}
		return Ready(struct{}{})
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- exec.Run(ctx) }()

	select {
	case <-parkedCh:
	case <-time.After(time.Second):
		cancel()
		t.Fatal("task never parked")
	}

	wantErr := assert.AnError
	tk.Cancel(wantErr)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		cancel()
		t.Fatal("executor did not complete after cancel")
	}

	select {
	case got := <-abortCh:
		assert.Equal(t, wantErr, got)
	default:
		t.Fatal("abort handler never fired")
	}
}

func TestTask_DoneReflectsCompletion(t *testing.T) {
	exec := NewExecutor()
	tk, err := exec.Spawn(func() Poll[struct{}] { return Ready(struct{}{}) })
	require.NoError(t, err)
	assert.False(t, tk.Done())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, exec.Run(ctx))
	assert.True(t, tk.Done())
}

func TestWaker_UnparkOnZeroValueIsNoop(t *testing.T) {
	var w Waker
	assert.NotPanics(t, func() { w.Unpark() })
}
