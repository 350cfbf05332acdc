// logging.go: Pluggable logging for the integration core
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"io"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Logger defines the pluggable logging interface used throughout the
// integration core.
//
// Hosts plug in their own logger (zap, slog, charm) through a small adapter.
// Arguments after the message are key-value pairs.
//
// Example usage:
//
//	registry := integrations.NewRegistry(integrations.RegistryConfig{
//	    Logger: integrations.NewCharmLogger(os.Stderr, "info"),
//	})
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs an info message with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs an error message with optional key-value pairs
	Error(msg string, args ...any)

	// With returns a new logger with persistent context key-value pairs
	With(args ...any) Logger
}

// NewLogger creates a Logger from supported logger types.
//
// Supported types:
//   - Logger interface: Used directly
//   - *charmlog.Logger: Wrapped in CharmLogger
//   - nil: Returns NoOpLogger for silent operation
//   - Unsupported types: Panic with descriptive message
func NewLogger(logger any) Logger {
	switch l := logger.(type) {
	case Logger:
		return l
	case *charmlog.Logger:
		return &CharmLogger{logger: l}
	case nil:
		return NewNoOpLogger()
	default:
		panic("unsupported logger type: expected Logger interface, *log.Logger or nil")
	}
}

// NoOpLogger discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-operation logger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Debug implements Logger interface (no-op)
func (n *NoOpLogger) Debug(msg string, args ...any) {}

// Info implements Logger interface (no-op)
func (n *NoOpLogger) Info(msg string, args ...any) {}

// Warn implements Logger interface (no-op)
func (n *NoOpLogger) Warn(msg string, args ...any) {}

// Error implements Logger interface (no-op)
func (n *NoOpLogger) Error(msg string, args ...any) {}

// With implements Logger interface (no-op)
func (n *NoOpLogger) With(args ...any) Logger {
	return n
}

// CharmLogger adapts a charmbracelet logger to the Logger interface.
type CharmLogger struct {
	logger *charmlog.Logger
}

// NewCharmLogger creates a CharmLogger writing to w at the given level.
// Unknown levels fall back to info.
func NewCharmLogger(w io.Writer, level string) *CharmLogger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil {
		lvl = charmlog.InfoLevel
	}
	return &CharmLogger{
		logger: charmlog.NewWithOptions(w, charmlog.Options{
			Prefix: "integrations",
			Level:  lvl,
		}),
	}
}

// Debug implements Logger interface
func (c *CharmLogger) Debug(msg string, args ...any) { c.logger.Debug(msg, args...) }

// Info implements Logger interface
func (c *CharmLogger) Info(msg string, args ...any) { c.logger.Info(msg, args...) }

// Warn implements Logger interface
func (c *CharmLogger) Warn(msg string, args ...any) { c.logger.Warn(msg, args...) }

// Error implements Logger interface
func (c *CharmLogger) Error(msg string, args ...any) { c.logger.Error(msg, args...) }

// With implements Logger interface
func (c *CharmLogger) With(args ...any) Logger {
	return &CharmLogger{logger: c.logger.With(args...)}
}

// TestLogger captures log messages for assertions in tests.
type TestLogger struct {
	mu       *sync.RWMutex
	messages *[]TestLogMessage
	context  []any
}

// TestLogMessage represents a captured log message.
type TestLogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewTestLogger creates a new test logger.
func NewTestLogger() *TestLogger {
	messages := make([]TestLogMessage, 0)
	return &TestLogger{
		mu:       &sync.RWMutex{},
		messages: &messages,
	}
}

func (t *TestLogger) capture(level, msg string, args []any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	all := make([]any, 0, len(t.context)+len(args))
	all = append(all, t.context...)
	all = append(all, args...)
	*t.messages = append(*t.messages, TestLogMessage{Level: level, Message: msg, Args: all})
}

// Debug implements Logger interface (captures message)
func (t *TestLogger) Debug(msg string, args ...any) { t.capture("DEBUG", msg, args) }

// Info implements Logger interface (captures message)
func (t *TestLogger) Info(msg string, args ...any) { t.capture("INFO", msg, args) }

// Warn implements Logger interface (captures message)
func (t *TestLogger) Warn(msg string, args ...any) { t.capture("WARN", msg, args) }

// Error implements Logger interface (captures message)
func (t *TestLogger) Error(msg string, args ...any) { t.capture("ERROR", msg, args) }

// With returns a logger sharing the same capture buffer with extra context.
func (t *TestLogger) With(args ...any) Logger {
	ctx := make([]any, 0, len(t.context)+len(args))
	ctx = append(ctx, t.context...)
	ctx = append(ctx, args...)
	return &TestLogger{mu: t.mu, messages: t.messages, context: ctx}
}

// Messages returns a copy of the captured messages.
func (t *TestLogger) Messages() []TestLogMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TestLogMessage, len(*t.messages))
	copy(out, *t.messages)
	return out
}

// HasMessage checks if the logger captured a message at the given level.
func (t *TestLogger) HasMessage(level, message string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, msg := range *t.messages {
		if msg.Level == level && msg.Message == message {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (t *TestLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	*t.messages = (*t.messages)[:0]
}

// DefaultLogger returns the logger used when none is configured.
func DefaultLogger() Logger {
	return NewNoOpLogger()
}
