// Package-level structured logging, grounded on the teacher event loop's
// logging.go: a small pluggable Logger interface plus a package-level
// default, justified there as "logging is an infrastructure cross-cutting
// concern; queue instances share logging semantics". Unlike the teacher's
// hand-rolled JSON/ANSI formatter, the default implementation here is a thin
// adapter over github.com/joeycumines/logiface (with its zerolog backend,
// github.com/joeycumines/izerolog), the structured logger actually exercised
// by the teacher's own test suite.
package serialqueue

import (
	"os"
	"sync"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// LogLevel is the severity of a LogEvent.
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarn
	LogLevelError
)

// LogEvent is a single structured log record emitted by a Queue.
type LogEvent struct {
	Level   LogLevel
	Queue   string // name given via WithName, may be empty
	Message string
	Err     error
}

// Logger receives LogEvent records emitted by one or more Queue instances.
// Implementations must be safe for concurrent use.
type Logger interface {
	Log(LogEvent)
}

// logifaceLogger adapts a *logiface.Logger[*izerolog.Event] to Logger.
type logifaceLogger struct {
	l *logiface.Logger[*izerolog.Event]
}

// NewLogifaceLogger wraps an existing logiface logger (any backend
// implementing the izerolog.Event shape) as a Logger, for applications that
// want to reuse their own logiface configuration instead of the package
// default.
func NewLogifaceLogger(l *logiface.Logger[*izerolog.Event]) Logger {
	return &logifaceLogger{l: l}
}

func (w *logifaceLogger) Log(e LogEvent) {
	var b *logiface.Builder[*izerolog.Event]
	switch e.Level {
	case LogLevelError:
		b = w.l.Err()
	case LogLevelWarn:
		b = w.l.Warning()
	default:
		b = w.l.Info()
	}
	if e.Queue != "" {
		b = b.Str("queue", e.Queue)
	}
	if e.Err != nil {
		b = b.Err(e.Err)
	}
	b.Log(e.Message)
}

var globalLogger struct {
	sync.RWMutex
	logger Logger
}

func init() {
	globalLogger.logger = NewLogifaceLogger(logiface.New[*izerolog.Event](
		izerolog.L.WithZerolog(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()),
	))
}

// SetLogger installs the package-level default Logger used by queues that
// were not given a WithLogger option of their own. A queue reads the default
// once, when it is constructed, so queues built before the call keep the
// logger they already had.
func SetLogger(logger Logger) {
	globalLogger.Lock()
	defer globalLogger.Unlock()
	globalLogger.logger = logger
}

func getGlobalLogger() Logger {
	globalLogger.RLock()
	defer globalLogger.RUnlock()
	return globalLogger.logger
}
