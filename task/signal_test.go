package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal_OnAbortFiresOnce(t *testing.T) {
	s := newSignal()
	fires := 0
	var gotReason error
	s.OnAbort(func(reason error) {
		fires++
		gotReason = reason
	})

	wantErr := errors.New("cancelled")
	s.abort(wantErr)
	s.abort(errors.New("second abort must be ignored"))

	assert.Equal(t, 1, fires)
	assert.Equal(t, wantErr, gotReason)
	assert.True(t, s.Aborted())
	assert.Equal(t, wantErr, s.Reason())
}

func TestSignal_OnAbortAfterAbortFiresImmediately(t *testing.T) {
	s := newSignal()
	wantErr := errors.New("already cancelled")
	s.abort(wantErr)

	fired := false
	s.OnAbort(func(reason error) {
		fired = true
		assert.Equal(t, wantErr, reason)
	})
	assert.True(t, fired)
}

func TestSignal_NotAbortedByDefault(t *testing.T) {
	s := newSignal()
	assert.False(t, s.Aborted())
	assert.NoError(t, s.Reason())
}
