package future

import "github.com/corvid-labs/goflow/task"

// Spawn drives f to completion on exec, discarding its result value but
// reporting any error via onDone (which may be nil). This is how a
// top-level Future (an RPC server's run loop, say) actually gets polled —
// every other Future/Stream/Sink in this package only makes progress when
// something, eventually, drives it from a Spawn.
func Spawn[T any](exec *task.Executor, f Future[T], onDone func(T, error)) (*task.Task, error) {
	return exec.Spawn(func() task.Poll[struct{}] {
		p := f.Poll()
		switch {
		case p.IsNotReady():
			return task.NotReady[struct{}]()
		case p.IsErr():
			if onDone != nil {
				var zero T
				onDone(zero, p.Error())
			}
			return task.Err[struct{}](p.Error())
		default:
			v, _ := p.Value()
			if onDone != nil {
				onDone(v, nil)
			}
			return task.Ready(struct{}{})
		}
	})
}
