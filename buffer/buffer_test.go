package buffer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AppendAndBytes(t *testing.T) {
	b := New(4)
	b.Append([]byte("hello"))
	assert.Equal(t, "hello", string(b.Bytes()))
	assert.Equal(t, 5, b.Len())
}

func TestBuffer_TrimStartIsHeadroom(t *testing.T) {
	b := New(16)
	b.Append([]byte("abcdef"))
	b.TrimStart(2)
	assert.Equal(t, "cdef", string(b.Bytes()))
	assert.Equal(t, 2, b.Headroom())
}

func TestBuffer_RetreatReclaimsHeadroom(t *testing.T) {
	b := New(16)
	b.Append([]byte("abcdef"))
	b.TrimStart(3)
	require.Equal(t, "def", string(b.Bytes()))
	b.Retreat(1)
	assert.Equal(t, "cdef", string(b.Bytes()))
}

func TestBuffer_ReserveCompactsBeforeGrowing(t *testing.T) {
	b := New(8)
	b.Append([]byte("abcdefgh"))
	b.TrimStart(6) // headroom=6, readable="gh", tailroom=0
	cap0 := cap(b.data)
	b.Reserve(6) // should fit via compaction (headroom+tailroom=6), no realloc
	assert.Equal(t, cap0, cap(b.data))
	assert.Equal(t, "gh", string(b.Bytes()))
}

func TestBuffer_WritableTailAndCommit(t *testing.T) {
	b := New(4)
	tail := b.WritableTail(5)
	n := copy(tail, []byte("world"))
	b.Commit(n)
	assert.True(t, bytes.Equal(b.Bytes(), []byte("world")))
}

func TestBuffer_Reset(t *testing.T) {
	b := New(4)
	b.Append([]byte("xyz"))
	b.Reset()
	assert.Equal(t, 0, b.Len())
}
