package logging

import (
	"sync"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Event and zerologWriter are this package's logiface.Event/Writer
// implementation — the same shape izerolog uses to bridge logiface onto
// zerolog, adapted here to stay internal to package logging rather than
// being pulled in as a separate dependency: goflow only ever needs one
// concrete Event type.
type Event struct {
	z   *zerolog.Event
	lvl logiface.Level
	msg string
	logiface.UnimplementedEvent
}

type zerologWriter struct {
	z zerolog.Logger
	logiface.UnimplementedArraySupport[*Event, *zerolog.Array]
}

var eventPool = sync.Pool{New: func() any { return new(Event) }}

// WithZerolog configures a logiface.Logger to write through z.
func WithZerolog(z zerolog.Logger) logiface.Option[*Event] {
	w := &zerologWriter{z: z}
	return logiface.WithOptions[*Event](
		logiface.WithWriter[*Event](w),
		logiface.WithEventFactory[*Event](w),
		logiface.WithEventReleaser[*Event](w),
		logiface.WithArraySupport[*Event, *zerolog.Array](w),
	)
}

func (e *Event) Level() logiface.Level { return e.lvl }

func (e *Event) AddField(key string, val any) { e.z.Interface(key, val) }

func (e *Event) AddMessage(msg string) bool { e.msg = msg; return true }

func (e *Event) AddError(err error) bool { e.z.Err(err); return true }

func (e *Event) AddString(key, val string) bool { e.z.Str(key, val); return true }

func (e *Event) AddInt(key string, val int) bool { e.z.Int(key, val); return true }

func (e *Event) AddFloat32(key string, val float32) bool { e.z.Float32(key, val); return true }

func (e *Event) AddFloat64(key string, val float64) bool { e.z.Float64(key, val); return true }

func (e *Event) AddInt64(key string, val int64) bool { e.z.Int64(key, val); return true }

func (e *Event) AddUint64(key string, val uint64) bool { e.z.Uint64(key, val); return true }

func (e *Event) AddBool(key string, val bool) bool { e.z.Bool(key, val); return true }

func (e *Event) AddTime(key string, val time.Time) bool { e.z.Time(key, val); return true }

func (e *Event) AddDuration(key string, val time.Duration) bool { e.z.Dur(key, val); return true }

func (w *zerologWriter) NewEvent(level logiface.Level) *Event {
	z := w.newZerologEvent(level)
	if z == nil {
		return nil
	}
	ev := eventPool.Get().(*Event)
	ev.lvl = level
	ev.z = z
	return ev
}

func (w *zerologWriter) ReleaseEvent(ev *Event) {
	if ev != nil {
		*ev = Event{}
		eventPool.Put(ev)
	}
}

func (w *zerologWriter) Write(ev *Event) error {
	ev.z.Msg(ev.msg)
	return nil
}

// newZerologEvent maps logiface's syslog-derived levels onto zerolog's
// smaller level set, per logiface's own recommended mapping.
func (w *zerologWriter) newZerologEvent(level logiface.Level) *zerolog.Event {
	switch level {
	case logiface.LevelTrace:
		return w.z.Trace()
	case logiface.LevelDebug:
		return w.z.Debug()
	case logiface.LevelInformational:
		return w.z.Info()
	case logiface.LevelNotice, logiface.LevelWarning:
		return w.z.Warn()
	case logiface.LevelError, logiface.LevelCritical:
		return w.z.Error()
	case logiface.LevelAlert:
		return w.z.Fatal()
	case logiface.LevelEmergency:
		return w.z.Panic()
	default:
		return w.z.WithLevel(zerolog.Level(7 - level))
	}
}

func (w *zerologWriter) NewArray() *zerolog.Array { return zerolog.Arr() }

func (w *zerologWriter) AddArray(ev *Event, key string, arr *zerolog.Array) {
	ev.z.Array(key, arr)
}

func (w *zerologWriter) AppendField(arr *zerolog.Array, val any) *zerolog.Array {
	return arr.Interface(val)
}

func (w *zerologWriter) CanAppendString() bool { return true }

func (w *zerologWriter) AppendString(arr *zerolog.Array, val string) *zerolog.Array {
	return arr.Str(val)
}

func (w *zerologWriter) CanAppendBool() bool { return true }

func (w *zerologWriter) AppendBool(arr *zerolog.Array, val bool) *zerolog.Array {
	return arr.Bool(val)
}
