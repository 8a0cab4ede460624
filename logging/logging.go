// Package logging provides the ambient structured-logging layer: a
// category-tagged Logger interface (the same shape task.Logger and rpc's
// server/client expect) backed by github.com/joeycumines/logiface, itself
// writing through github.com/rs/zerolog — the real backend, not a
// hand-rolled os.Stdout writer.
package logging

import (
	"os"

	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the structured sink executors, reactors, codecs and the RPC
// layer report through. Category groups related log sites (matching the
// component names in SPEC_FULL.md's module map: "executor", "reactor",
// "rpc-server", "rpc-client", "codec") so a consumer can filter by
// subsystem without string-matching messages.
type Logger interface {
	Log(category string, msg string, fields map[string]any)
}

// NoOp is the zero-cost default: every executor/reactor/rpc component
// accepts a nil Logger and is expected to treat it exactly like NoOp.
func NoOp() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Log(string, string, map[string]any) {}

// zerologBacked adapts a logiface.Logger[*Event] (itself writing through a
// zerolog.Logger) to the Logger interface.
type zerologBacked struct {
	l *logiface.Logger[*Event]
}

// New constructs a Logger writing through zl, tagging every entry with its
// category field.
func New(zl zerolog.Logger) Logger {
	logger := logiface.New[*Event](
		logiface.WithLevel[*Event](logiface.LevelTrace),
		WithZerolog(zl),
	)
	return &zerologBacked{l: logger}
}

// NewDefault constructs a Logger writing to os.Stderr in zerolog's console
// format — the ambient default a long-running process would actually want,
// grounded on the predecessor runtime's own choice of a writable,
// always-available default stream.
func NewDefault(level zerolog.Level) Logger {
	zl := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	return New(zl)
}

func (z *zerologBacked) Log(category, msg string, fields map[string]any) {
	b := z.l.Build(severityFor(category))
	if b == nil || !b.Enabled() {
		if b != nil {
			b.Release()
		}
		return
	}
	b = b.Str("category", category)
	for k, v := range fields {
		if err, ok := v.(error); ok {
			b = b.Err(err)
			continue
		}
		b = b.Any(k, v)
	}
	b.Log(msg)
}

// severityFor assigns a default level per category; callers that need finer
// control use the logiface.Logger directly instead of this adapter.
func severityFor(category string) logiface.Level {
	switch category {
	case "rpc-server", "rpc-client":
		return logiface.LevelInformational
	case "codec":
		return logiface.LevelDebug
	default:
		return logiface.LevelDebug
	}
}
