// Leveled logging for the command line tool.
//
// Messages below the current level are discarded.  Everything else goes to the stderr writer, if
// installed, and to the underlying logger (normally syslog), if installed.

package status

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"sync"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	LogLevelCritical
)

var levelTags = [...]string{"debug", "info", "warning", "error", "critical"}

func (l LogLevel) String() string {
	if l < LogLevelDebug || l > LogLevelCritical {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelTags[l]
}

// Implementations of this must be thread-safe.
type Logger interface {
	// Print only messages at level l or above
	SetLevel(l LogLevel)

	// Lower log level at least to l
	LowerLevelTo(l LogLevel)

	Level() LogLevel

	SetStderr(w io.Writer)
	SetUnderlying(w UnderlyingLogger)

	// None of these exit or panic, the name indicates the log level only.
	Debug(xs ...any)
	Debugf(format string, args ...any)
	Info(xs ...any)
	Infof(format string, args ...any)
	Warning(xs ...any)
	Warningf(format string, args ...any)
	Error(xs ...any)
	Errorf(format string, args ...any)
	Critical(xs ...any)
	Criticalf(format string, args ...any)
}

// log/syslog.Writer implements UnderlyingLogger.  An underlying logger must be thread-safe.
type UnderlyingLogger interface {
	Debug(m string) error
	Info(m string) error
	Warning(m string) error
	Err(m string) error
	Crit(m string) error
}

type StandardLogger struct {
	sync.Mutex
	tag        string
	level      LogLevel
	stderr     io.Writer
	underlying UnderlyingLogger
}

func NewStandardLogger(tag string, level LogLevel, stderr io.Writer) *StandardLogger {
	return &StandardLogger{tag: tag, level: level, stderr: stderr}
}

// MT: Constant after initialization, thread-safe.
var defaultLogger Logger = NewStandardLogger("stdpbench", LogLevelWarning, os.Stderr)

func Default() Logger {
	return defaultLogger
}

func (sl *StandardLogger) SetLevel(l LogLevel) {
	sl.Lock()
	defer sl.Unlock()
	sl.level = l
}

func (sl *StandardLogger) LowerLevelTo(l LogLevel) {
	sl.Lock()
	defer sl.Unlock()
	if l < sl.level {
		sl.level = l
	}
}

func (sl *StandardLogger) Level() LogLevel {
	sl.Lock()
	defer sl.Unlock()
	return sl.level
}

func (sl *StandardLogger) SetStderr(stderr io.Writer) {
	sl.Lock()
	defer sl.Unlock()
	sl.stderr = stderr
}

func (sl *StandardLogger) SetUnderlying(underlying UnderlyingLogger) {
	sl.Lock()
	defer sl.Unlock()
	sl.underlying = underlying
}

func (sl *StandardLogger) emit(l LogLevel, s string) {
	sl.Lock()
	defer sl.Unlock()

	if l < sl.level {
		return
	}
	if sl.stderr != nil {
		if sl.tag != "" {
			fmt.Fprintf(sl.stderr, "%s: %s: %s\n", sl.tag, l, s)
		} else {
			fmt.Fprintf(sl.stderr, "%s: %s\n", l, s)
		}
	}
	if sl.underlying != nil {
		// Errors from the underlying logger are dropped, there is nowhere to report them.
		switch l {
		case LogLevelDebug:
			sl.underlying.Debug(s)
		case LogLevelInfo:
			sl.underlying.Info(s)
		case LogLevelWarning:
			sl.underlying.Warning(s)
		case LogLevelError:
			sl.underlying.Err(s)
		default:
			sl.underlying.Crit(s)
		}
	}
}

func (sl *StandardLogger) Debug(xs ...any) { sl.emit(LogLevelDebug, fmt.Sprint(xs...)) }
func (sl *StandardLogger) Debugf(format string, args ...any) {
	sl.emit(LogLevelDebug, fmt.Sprintf(format, args...))
}

func (sl *StandardLogger) Info(xs ...any) { sl.emit(LogLevelInfo, fmt.Sprint(xs...)) }
func (sl *StandardLogger) Infof(format string, args ...any) {
	sl.emit(LogLevelInfo, fmt.Sprintf(format, args...))
}

func (sl *StandardLogger) Warning(xs ...any) { sl.emit(LogLevelWarning, fmt.Sprint(xs...)) }
func (sl *StandardLogger) Warningf(format string, args ...any) {
	sl.emit(LogLevelWarning, fmt.Sprintf(format, args...))
}

func (sl *StandardLogger) Error(xs ...any) { sl.emit(LogLevelError, fmt.Sprint(xs...)) }
func (sl *StandardLogger) Errorf(format string, args ...any) {
	sl.emit(LogLevelError, fmt.Sprintf(format, args...))
}

func (sl *StandardLogger) Critical(xs ...any) { sl.emit(LogLevelCritical, fmt.Sprint(xs...)) }
func (sl *StandardLogger) Criticalf(format string, args ...any) {
	sl.emit(LogLevelCritical, fmt.Sprintf(format, args...))
}

// Route the default logger to syslog as well, under the given tag.  Runs on the cluster front end
// leave a trace of what was submitted this way.

func StartSyslog(logTag string) error {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, logTag)
	if err != nil {
		return err
	}
	defaultLogger.SetUnderlying(w)
	return nil
}
