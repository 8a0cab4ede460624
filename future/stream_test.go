package future

import (
	"errors"
	"testing"

	"github.com/corvid-labs/goflow/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceStream yields each element of vals in order, then None forever; if
// failAt >= 0 it reports Err instead of None once it reaches that index.
type sliceStream[T any] struct {
	vals      []T
	idx       int
	failAt    int
	failErr   error
	cancelled bool
}

func (s *sliceStream[T]) Poll() task.Poll[Option[T]] {
	if s.failAt >= 0 && s.idx == s.failAt {
		return task.Err[Option[T]](s.failErr)
	}
	if s.idx >= len(s.vals) {
		return task.Ready(None[T]())
	}
	v := s.vals[s.idx]
	s.idx++
	return task.Ready(Some(v))
}

func (s *sliceStream[T]) Cancel() { s.cancelled = true }

func TestMapStream(t *testing.T) {
	s := &sliceStream[int]{vals: []int{1, 2, 3}, failAt: -1}
	mapped := MapStream(s, func(n int) int { return n * 2 })

	var got []int
	for {
		p := mapped.Poll()
		require.True(t, p.IsReady())
		opt, _ := p.Value()
		v, ok := opt.Get()
		if !ok {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 4, 6}, got)
}

func TestForEach(t *testing.T) {
	s := &sliceStream[int]{vals: []int{1, 2, 3}, failAt: -1}
	var sum int
	f := ForEach[int](s, func(n int) { sum += n })

	p := f.Poll()
	require.True(t, p.IsReady())
	assert.Equal(t, 6, sum)
}

func TestForEach_PropagatesError(t *testing.T) {
	wantErr := errors.New("stream broke")
	s := &sliceStream[int]{vals: []int{1, 2, 3}, failAt: 1, failErr: wantErr}
	var sum int
	f := ForEach[int](s, func(n int) { sum += n })

	p := f.Poll()
	require.True(t, p.IsErr())
	assert.Equal(t, wantErr, p.Error())
	assert.Equal(t, 1, sum)
}

func TestCollect(t *testing.T) {
	s := &sliceStream[string]{vals: []string{"a", "b"}, failAt: -1}
	f := Collect[string](s)

	p := f.Poll()
	require.True(t, p.IsReady())
	v, _ := p.Value()
	assert.Equal(t, []string{"a", "b"}, v)
}
