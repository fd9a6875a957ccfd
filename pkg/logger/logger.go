// Package logger is the logging backend the engine's worker goroutine
// and public façade log through: chunk retries, failed chunks and
// requests, panic recovery, and rename/cleanup failures all go through
// a Config.Logger
// value rather than directly to stdout, so an embedding host can route
// engine diagnostics wherever its own logging already goes.
package logger

import (
	"fmt"
	"log"
	"os"
)

// Logger is what every engine component logs through: the worker
// goroutine's tick loop, the Completion Router's rename/delete
// failures, and a chunk's retry attempts. Implementations may log to
// console, a file, or discard messages entirely.
type Logger interface {
	// Info logs an informational message (e.g., "worker started").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "chunk 2 of f.bin failed:
	// status=500").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "panic recovered in chunk
	// transfer").
	Error(format string, args ...interface{})

	// Close releases resources held by the logger. The engine calls
	// this once from ShutDown, after the worker goroutine has exited.
	// Safe to call multiple times. Returns nil for loggers without
	// resources to release.
	Close() error
}

// StandardLogger wraps a caller-supplied *log.Logger. It never owns the
// underlying writer, so Close is a no-op — closing it is the caller's
// responsibility, exactly as when an embedding host points it at its
// own os.Stderr or an already-open file.
type StandardLogger struct {
	logger *log.Logger
}

// NewStandardLogger creates a logger that wraps the given *log.Logger.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// Info logs an informational message with [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

// Warning logs a warning message with [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

// Error logs an error message with [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close is a no-op: StandardLogger doesn't own the writer it was built
// with.
func (s *StandardLogger) Close() error {
	return nil
}

// FileLogger is a StandardLogger that owns the *os.File it writes to,
// so unlike StandardLogger its Close actually releases something: an
// embedding host that wants a durable record of a long-running
// download session (surviving past the process that started it) opens
// one with NewFileLogger and the engine flushes/closes it from
// Engine.ShutDown.
type FileLogger struct {
	StandardLogger
	file *os.File
}

// NewFileLogger opens (creating if necessary, appending if it already
// exists) the file at path and returns a Logger backed by it, prefixed
// with engine-style [INFO]/[WARNING]/[ERROR] tags and a timestamp.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return &FileLogger{
		StandardLogger: StandardLogger{logger: log.New(f, "", log.LstdFlags)},
		file:           f,
	}, nil
}

// Close flushes nothing explicitly (the stdlib log.Logger writes
// unbuffered) and closes the underlying file.
func (f *FileLogger) Close() error {
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("logger: close log file: %w", err)
	}
	return nil
}

// NopLogger discards every message. It's the engine's default when a
// Config doesn't set Logger explicitly.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

// Ensure implementations satisfy the Logger interface.
var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger implements Logger for testing purposes.
// It records all log calls for verification in tests.
type MockLogger struct {
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.CloseCalled = true
	return nil
}

// Ensure MockLogger satisfies the Logger interface.
var _ Logger = (*MockLogger)(nil)
