package rpc

import (
	"testing"

	"github.com/corvid-labs/goflow/future"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ResponsesStayFIFODespiteOutOfOrderCompletion(t *testing.T) {
	reqs := &queueStream[int]{vals: []int{1, 2, 3}}
	resp := &captureSink[int]{}

	var calls []*manualFuture[int]
	service := func(req int) future.Future[int] {
		mf := &manualFuture[int]{}
		calls = append(calls, mf)
		return mf
	}

	srv := NewServer[int, int](reqs, resp, service)

	// first Poll dispatches all three requests; none of their service
	// futures have resolved yet, so nothing can be staged into resp.
	p := srv.Poll()
	assert.True(t, p.IsNotReady())
	require.Len(t, calls, 3)
	assert.Empty(t, resp.sent)

	// resolve the third call first: the server must still refuse to emit
	// its response before the first and second are ready.
	calls[2].resolve(30)
	p = srv.Poll()
	assert.True(t, p.IsNotReady())
	assert.Empty(t, resp.sent)

	// resolve the first call: only its response may now flush.
	calls[0].resolve(10)
	p = srv.Poll()
	assert.True(t, p.IsNotReady())
	assert.Equal(t, []int{10}, resp.sent)

	// resolving the second call unblocks both the second and the
	// already-ready third, in order.
	calls[1].resolve(20)
	p = srv.Poll()
	require.True(t, p.IsReady())
	assert.Equal(t, []int{10, 20, 30}, resp.sent)
}

func TestServer_CancelAbortsStreamAndPending(t *testing.T) {
	reqs := &queueStream[int]{vals: []int{1}}
	resp := &captureSink[int]{}
	var calls []*manualFuture[int]
	service := func(req int) future.Future[int] {
		mf := &manualFuture[int]{}
		calls = append(calls, mf)
		return mf
	}
	srv := NewServer[int, int](reqs, resp, service)
	_ = srv.Poll()
	require.Len(t, calls, 1)

	srv.Cancel()
	assert.True(t, reqs.cancelled)

	p := srv.Poll()
	assert.True(t, p.IsErr())
	assert.ErrorIs(t, p.Error(), future.ErrCancelled)
}

func TestServer_PropagatesRequestStreamError(t *testing.T) {
	wantErr := errSentinelForTest
	reqs := &queueStream[int]{terminalErr: wantErr}
	resp := &captureSink[int]{}
	service := func(req int) future.Future[int] { return future.Ready(req) }
	srv := NewServer[int, int](reqs, resp, service)

	p := srv.Poll()
	require.True(t, p.IsErr())
	assert.ErrorIs(t, p.Error(), wantErr)
}
