package future

import (
	"errors"
	"testing"

	"github.com/corvid-labs/goflow/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFuture reports NotReady countdown times before reporting Ready(v),
// so combinator tests can exercise the "poll again later" path without a
// real executor.
type countingFuture[T any] struct {
	countdown int
	v         T
	err       error
	cancelled bool
}

func (c *countingFuture[T]) Poll() task.Poll[T] {
	if c.countdown > 0 {
		c.countdown--
		return task.NotReady[T]()
	}
	if c.err != nil {
		return task.Err[T](c.err)
	}
	return task.Ready(c.v)
}

func (c *countingFuture[T]) Cancel() { c.cancelled = true }

func TestOption_SomeNone(t *testing.T) {
	s := Some(7)
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	n := None[int]()
	_, ok = n.Get()
	assert.False(t, ok)
}

func TestBox_Identity(t *testing.T) {
	f := Ready(3)
	boxed := Box(f)
	v1, _ := f.Poll().Value()
	v2, _ := boxed.Poll().Value()
	assert.Equal(t, v1, v2)
}

func TestMap(t *testing.T) {
	inner := &countingFuture[int]{countdown: 1, v: 5}
	m := Map(inner, func(n int) string { return "got" })

	p := m.Poll()
	assert.True(t, p.IsNotReady())

	p = m.Poll()
	v, ok := p.Value()
	require.True(t, ok)
	assert.Equal(t, "got", v)
}

func TestAndThen_ChainsOnSuccess(t *testing.T) {
	inner := &countingFuture[int]{v: 2}
	called := false
	chained := AndThen(inner, func(n int) Future[int] {
		called = true
		return Ready(n * 10)
	})

	p := chained.Poll()
	v, ok := p.Value()
	require.True(t, ok)
	assert.True(t, called)
	assert.Equal(t, 20, v)
}

func TestAndThen_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	inner := &countingFuture[int]{err: wantErr}
	chained := AndThen(inner, func(n int) Future[int] {
		t.Fatal("f must not be called when inner errors")
		return nil
	})

	p := chained.Poll()
	assert.True(t, p.IsErr())
	assert.Equal(t, wantErr, p.Error())
}

func TestOrElse_RecoversFromError(t *testing.T) {
	inner := &countingFuture[int]{err: errors.New("boom")}
	recovered := OrElse(inner, func(err error) Future[int] { return Ready(99) })

	p := recovered.Poll()
	v, ok := p.Value()
	require.True(t, ok)
	assert.Equal(t, 99, v)
}

func TestOrElse_PassesThroughSuccess(t *testing.T) {
	inner := &countingFuture[int]{v: 1}
	recovered := OrElse(inner, func(err error) Future[int] {
		t.Fatal("f must not be called on success")
		return nil
	})

	p := recovered.Poll()
	v, ok := p.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestThen_FiresExactlyOnce(t *testing.T) {
	inner := &countingFuture[int]{countdown: 1, v: 4}
	fires := 0
	observed := Then(inner, func(p task.Poll[int]) { fires++ })

	p := observed.Poll()
	assert.True(t, p.IsNotReady())
	assert.Equal(t, 0, fires)

	p = observed.Poll()
	_, ok := p.Value()
	require.True(t, ok)
	assert.Equal(t, 1, fires)

	p = observed.Poll()
	_, ok = p.Value()
	require.True(t, ok)
	assert.Equal(t, 1, fires, "f must not fire again on a repeated poll")
}

func TestReadyAndFailed(t *testing.T) {
	r := Ready("x")
	v, ok := r.Poll().Value()
	require.True(t, ok)
	assert.Equal(t, "x", v)
	r.Cancel() // must not panic

	wantErr := errors.New("fail")
	f := Failed[string](wantErr)
	assert.Equal(t, wantErr, f.Poll().Error())
}
