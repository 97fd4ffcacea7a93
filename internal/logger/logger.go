// Package logger provides the structured logger used by the vocabprep
// command and tool server. It is a thin layer over log/slog that keeps a
// dotted context path and printf-style messages.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

// Log level constants
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
	DISABLED
)

// LogFormat defines how log messages are formatted
type LogFormat int

// Log format constants
const (
	TEXT LogFormat = iota
	JSON
)

const levelFatal = slog.Level(12)

var slogLevels = map[LogLevel]slog.Level{
	DEBUG:    slog.LevelDebug,
	INFO:     slog.LevelInfo,
	WARN:     slog.LevelWarn,
	ERROR:    slog.LevelError,
	FATAL:    levelFatal,
	DISABLED: slog.Level(1 << 10),
}

// Logger represents a structured logger
type Logger struct {
	base        *slog.Logger
	level       *slog.LevelVar
	contextPath []string
}

// Config holds configuration options for the logger
type Config struct {
	Level       LogLevel
	Format      LogFormat
	Output      io.Writer
	DefaultTags map[string]interface{}
}

// DefaultConfig returns a default logger configuration. Output goes to
// stderr so stdout stays free for the stdio tool transport.
func DefaultConfig() *Config {
	return &Config{
		Level:       INFO,
		Format:      TEXT,
		Output:      os.Stderr,
		DefaultTags: map[string]interface{}{"service": "vocabprep"},
	}
}

// New creates a new logger with the given configuration
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	level := new(slog.LevelVar)
	level.Set(slogLevels[config.Level])

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: renameFatal,
	}

	var handler slog.Handler
	if config.Format == JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	base := slog.New(handler)
	if len(config.DefaultTags) > 0 {
		base = base.With(attrs(config.DefaultTags)...)
	}

	return &Logger{base: base, level: level}
}

func renameFatal(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == levelFatal {
			a.Value = slog.StringValue("FATAL")
		}
	}
	return a
}

func attrs(fields map[string]interface{}) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

// SetLevel sets the logger's minimum log level. Loggers derived with
// WithField or WithContext share the level.
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Set(slogLevels[level])
}

// Slog returns the underlying slog.Logger, carrying the context path and
// fields, for components that take a *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	if len(l.contextPath) == 0 {
		return l.base
	}
	return l.base.With("context", strings.Join(l.contextPath, "."))
}

// WithField returns a new logger with the field added to its context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		base:        l.base.With(key, value),
		level:       l.level,
		contextPath: l.contextPath,
	}
}

// WithFields returns a new logger with multiple fields added to its context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		base:        l.base.With(attrs(fields)...),
		level:       l.level,
		contextPath: l.contextPath,
	}
}

// WithContext returns a new logger with a context path
func (l *Logger) WithContext(contexts ...string) *Logger {
	return &Logger{
		base:        l.base,
		level:       l.level,
		contextPath: append(append([]string{}, l.contextPath...), contexts...),
	}
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args...)
}

// Info logs a message at INFO level
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args...)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args...)
}

// Error logs a message at ERROR level
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args...)
}

// Fatal logs a message at FATAL level and then exits with status code 1
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args...)
	os.Exit(1)
}

// log is the internal logging function. It must be called directly from
// the exported level method so the recorded source is the caller's.
func (l *Logger) log(level slog.Level, msg string, args ...interface{}) {
	ctx := context.Background()
	target := l.Slog()
	if !target.Enabled(ctx, level) {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	_ = target.Handler().Handle(ctx, record)
}

// ParseLevel converts a string level to a LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	case "DISABLED":
		return DISABLED
	default:
		return INFO
	}
}

// ParseFormat converts a string format to a LogFormat
func ParseFormat(format string) LogFormat {
	if strings.EqualFold(format, "json") {
		return JSON
	}
	return TEXT
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(DefaultConfig())
)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}

// GetDefaultLogger returns the global default logger
func GetDefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// GetLogger returns a logger with the given name as a field
func GetLogger(name string) *Logger {
	return GetDefaultLogger().WithField("name", name)
}

// Debug logs to the default logger at DEBUG level
func Debug(msg string, args ...interface{}) {
	GetDefaultLogger().log(slog.LevelDebug, msg, args...)
}

// Info logs to the default logger at INFO level
func Info(msg string, args ...interface{}) {
	GetDefaultLogger().log(slog.LevelInfo, msg, args...)
}

// Warn logs to the default logger at WARN level
func Warn(msg string, args ...interface{}) {
	GetDefaultLogger().log(slog.LevelWarn, msg, args...)
}

// Error logs to the default logger at ERROR level
func Error(msg string, args ...interface{}) {
	GetDefaultLogger().log(slog.LevelError, msg, args...)
}

// Fatal logs to the default logger at FATAL level and then exits
func Fatal(msg string, args ...interface{}) {
	GetDefaultLogger().log(levelFatal, msg, args...)
	os.Exit(1)
}
