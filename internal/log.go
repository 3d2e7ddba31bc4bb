package internal

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

var levelNames = map[string]LogLevel{
	"ERROR": LogLevelError,
	"WARN":  LogLevelWarn,
	"INFO":  LogLevelInfo,
	"DEBUG": LogLevelDebug,
	"TRACE": LogLevelTrace,
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE (any case) to a level
func ParseLogLevel(s string) (LogLevel, bool) {
	level, ok := levelNames[strings.ToUpper(strings.TrimSpace(s))]
	return level, ok
}

// Logger provides leveled logging
type Logger struct {
	mu    sync.RWMutex
	level LogLevel
	out   *log.Logger
}

// NewLogger creates a new logger with the specified level writing to stderr
func NewLogger(level LogLevel) *Logger {
	return NewLoggerTo(os.Stderr, level)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	level := LogLevelInfo // default
	if parsed, ok := ParseLogLevel(os.Getenv("LOG_LEVEL")); ok {
		level = parsed
	}
	return NewLogger(level)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LogLevelError, "[ERROR] ", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LogLevelWarn, "[WARN] ", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LogLevelInfo, "[INFO] ", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LogLevelDebug, "[DEBUG] ", format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	l.logf(LogLevelTrace, "[TRACE] ", format, args...)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel changes the verbosity, e.g. from a --debug flag
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level LogLevel) bool {
	return l.GetLevel() >= level
}

func (l *Logger) logf(level LogLevel, prefix, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.out.Printf(prefix+format, args...)
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
