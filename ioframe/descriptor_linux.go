//go:build linux

package ioframe

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/corvid-labs/goflow/reactor"
	"github.com/corvid-labs/goflow/task"
)

// DescriptorChannel adapts a raw, non-blocking file descriptor into a
// ByteChannel, parking on the given Reactor whenever a read or write would
// block. Grounded on the original DescriptorIo: one outstanding read watcher
// and one outstanding write watcher at a time, torn down on Close.
type DescriptorChannel struct {
	fd    int
	react *reactor.Reactor

	mu     sync.Mutex
	closed bool
}

// NewDescriptorChannel takes ownership of fd, switching it to non-blocking
// mode, and wires it to react for readiness notification.
func NewDescriptorChannel(fd int, react *reactor.Reactor) (*DescriptorChannel, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}
	return &DescriptorChannel{fd: fd, react: react}, nil
}

func (c *DescriptorChannel) PollRead(p []byte) task.Poll[int] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return task.Err[int](unix.EBADF)
	}
	c.mu.Unlock()

	n, err := unix.Read(c.fd, p)
	if err == nil {
		return task.Ready(n)
	}
	if err == unix.EAGAIN {
		waker := task.Park()
		if aerr := c.react.AddWatcher(c.fd, reactor.Read, waker); aerr != nil {
			return task.Err[int](aerr)
		}
		return task.NotReady[int]()
	}
	return task.Err[int](err)
}

func (c *DescriptorChannel) PollWrite(p []byte) task.Poll[int] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return task.Err[int](unix.EBADF)
	}
	c.mu.Unlock()

	n, err := unix.Write(c.fd, p)
	if err == nil {
		return task.Ready(n)
	}
	if err == unix.EAGAIN {
		waker := task.Park()
		if aerr := c.react.AddWatcher(c.fd, reactor.Write, waker); aerr != nil {
			return task.Err[int](aerr)
		}
		return task.NotReady[int]()
	}
	return task.Err[int](err)
}

// Close unregisters any outstanding watchers and closes the underlying
// descriptor. Safe to call more than once.
func (c *DescriptorChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	_ = c.react.RemoveWatcher(c.fd, reactor.Read)
	_ = c.react.RemoveWatcher(c.fd, reactor.Write)
	return unix.Close(c.fd)
}
