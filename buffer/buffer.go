// Package buffer implements the growable read/write byte buffer the L4/L5
// layers are built on: headroom/tailroom-aware, append-only growth, O(1)
// TrimStart. There is no pack library offering this exact shape (it mirrors
// folly::IOBuf's headroom/tailroom discipline, not Go's bytes.Buffer, which
// cannot express "discard from the front without a copy" or "grow into
// spare front/back capacity on demand") — this is a deliberately hand-rolled
// data structure, not a library gap.
package buffer

// Buffer is a single contiguous backing array viewed through [start, end)
// with capacity on both sides: bytes before start are headroom (already
// consumed, reusable by Retreat), bytes after end up to len(data) are
// tailroom (spare capacity Reserve can hand out without reallocating).
type Buffer struct {
	data  []byte
	start int
	end   int
}

// New constructs an empty Buffer with the given initial capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// FromBytes wraps an existing slice as a Buffer with no headroom and no
// tailroom — Reserve will grow it on demand.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b, start: 0, end: len(b)}
}

// Len returns the number of readable bytes currently held.
func (b *Buffer) Len() int { return b.end - b.start }

// Headroom returns how many bytes of already-consumed space precede the
// readable region — exactly what Retreat can hand back without moving data.
func (b *Buffer) Headroom() int { return b.start }

// Tailroom returns how many bytes of spare capacity follow the readable
// region — exactly what Append can consume without growing the buffer.
func (b *Buffer) Tailroom() int { return len(b.data) - b.end }

// Bytes returns the current readable region. The returned slice aliases the
// buffer's backing array and is invalidated by the next Reserve/Append/
// Retreat call that triggers a reallocation.
func (b *Buffer) Bytes() []byte { return b.data[b.start:b.end] }

// TrimStart discards n bytes from the front of the readable region,
// converting them to headroom in O(1) — no data is moved.
func (b *Buffer) TrimStart(n int) {
	if n < 0 || n > b.Len() {
		panic("buffer: TrimStart out of range")
	}
	b.start += n
}

// Retreat reclaims up to n bytes of headroom back into the readable region,
// exposing previously-consumed bytes again. Used by decoders that need to
// "push back" an under-read prefix.
func (b *Buffer) Retreat(n int) {
	if n < 0 || n > b.start {
		panic("buffer: Retreat out of range")
	}
	b.start -= n
}

// Reserve ensures at least n bytes of tailroom are available, compacting
// (sliding data down to reclaim headroom) or growing the backing array as
// needed. Both compaction and growth move the readable region to offset 0,
// so Headroom() becomes 0 and bytes trimmed earlier can no longer be
// reclaimed with Retreat.
func (b *Buffer) Reserve(n int) {
	if b.Tailroom() >= n {
		return
	}
	length := b.Len()
	if b.Headroom()+b.Tailroom() >= n {
		copy(b.data, b.data[b.start:b.end])
		b.start = 0
		b.end = length
		return
	}
	newCap := len(b.data)*2 + n
	if newCap < length+n {
		newCap = length + n
	}
	next := make([]byte, newCap)
	copy(next, b.data[b.start:b.end])
	b.data = next
	b.start = 0
	b.end = length
}

// Append copies p into tailroom, growing the buffer first if necessary.
func (b *Buffer) Append(p []byte) {
	b.Reserve(len(p))
	n := copy(b.data[b.end:], p)
	b.end += n
}

// WritableTail returns the tailroom as a slice ready to be written into
// directly (e.g. by a Read syscall), after ensuring at least n bytes are
// available. Callers must follow a successful write with Commit(written).
func (b *Buffer) WritableTail(n int) []byte {
	b.Reserve(n)
	return b.data[b.end:len(b.data)]
}

// Commit advances end by n after the caller has written directly into the
// slice returned by WritableTail.
func (b *Buffer) Commit(n int) {
	if n < 0 || b.end+n > len(b.data) {
		panic("buffer: Commit out of range")
	}
	b.end += n
}

// Unshare is a documented no-op: unlike folly::IOBuf, a Go Buffer's backing
// array is never implicitly shared (copy-on-write) across Buffer values, so
// there is nothing to unshare. It is kept, matching the decode loop's shape
// in the original reference implementation, purely so that loop reads the
// same regardless of which runtime it targets.
func (b *Buffer) Unshare() {}

// Reset discards all readable bytes and headroom, returning the buffer to
// an empty state while keeping its backing array.
func (b *Buffer) Reset() {
	b.start = 0
	b.end = 0
}
