// Package util provides low-level helpers shared by all other packages.
package util

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// traceLevel sits below zap's debug level so -vv and -vvv stay distinct.
const traceLevel = zapcore.DebugLevel - 1

// Logger writes levelled messages to stderr with optional timestamps
// and level prefixes.  Formatting and output are delegated to zap.
type Logger struct {
	level      LogLevel
	output     io.Writer
	timestamps bool // if true, prepend wall-clock timestamps

	mu sync.Mutex
	zl *zap.Logger
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	l := &Logger{
		level:      LogLevel(verbosity),
		output:     os.Stderr,
		timestamps: verbosity >= 3, // auto-enable timestamps in debug mode
	}
	l.rebuild()
	return l
}

// Nop returns a quiet logger that discards everything, including errors.
func Nop() *Logger {
	l := &Logger{level: LogQuiet, output: io.Discard}
	l.rebuild()
	return l
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = on
	l.rebuild()
}

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.rebuild()
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// Info prints when verbosity ≥ 1.  Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogNormal {
		l.write(zapcore.InfoLevel, format, args...)
	}
}

// Warn prints when verbosity ≥ 1.  Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogNormal {
		l.write(zapcore.WarnLevel, format, args...)
	}
}

// Verbose prints when verbosity ≥ 2.  Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) {
	if l.level >= LogVerbose {
		l.write(zapcore.DebugLevel, format, args...)
	}
}

// Debug prints when verbosity ≥ 3.  Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogDebug {
		l.write(traceLevel, format, args...)
	}
}

// Error always prints regardless of verbosity.  Prefixed with [ERR].
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(zapcore.ErrorLevel, format, args...)
}

func (l *Logger) write(lvl zapcore.Level, format string, args ...interface{}) {
	l.mu.Lock()
	zl := l.zl
	l.mu.Unlock()

	if ce := zl.Check(lvl, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write()
	}
}

// rebuild recreates the zap core after an output or timestamp change.
// Callers hold l.mu (or own l exclusively).
func (l *Logger) rebuild() {
	enc := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      encodeLevel,
		ConsoleSeparator: " ",
	}
	if l.timestamps {
		enc.TimeKey = "ts"
		enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	}

	// Gating happens in the level methods above, so the core accepts all.
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(zapcore.AddSync(l.output)),
		zap.LevelEnablerFunc(func(zapcore.Level) bool { return true }),
	)
	l.zl = zap.New(core)
}

func encodeLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch {
	case lvl >= zapcore.ErrorLevel:
		enc.AppendString("[ERR]")
	case lvl == zapcore.WarnLevel:
		enc.AppendString("[WRN]")
	case lvl == zapcore.InfoLevel:
		enc.AppendString("[INF]")
	case lvl == zapcore.DebugLevel:
		enc.AppendString("[VRB]")
	default:
		enc.AppendString("[DBG]")
	}
}
