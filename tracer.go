// tracer.go: Tracing core collaborator and in-process event bus
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"sync"
	"time"

	"github.com/agilira/go-timecache"
)

// Event is a named instrumentation event emitted by a host library.
type Event struct {
	Name    string
	Payload map[string]any
	Time    time.Time
}

// EventHandler reacts to an event.
type EventHandler func(Event)

// Span is the minimal span shape integrations hand to the tracing core.
type Span struct {
	Name     string
	Service  string
	Resource string
	Start    time.Time
	Duration time.Duration
	Tags     map[string]string
	Error    bool
}

//go:generate mockgen -destination internal/mocks/mock_tracer.go -package mocks github.com/agilira/go-integrations Tracer

// Tracer is the tracing core as seen by integrations.
type Tracer interface {
	// OnEvent subscribes handler to events called name.
	OnEvent(name string, handler EventHandler) error
	// Record hands a finished span to the tracing core.
	Record(span Span)
}

// EventBus is an in-process Tracer. Handlers run synchronously in
// subscription order; a panicking handler is logged and skipped.
type EventBus struct {
	logger Logger

	mu       sync.RWMutex
	handlers map[string][]EventHandler

	spanMu sync.Mutex
	spans  []Span
}

// NewEventBus creates an empty event bus.
func NewEventBus(logger Logger) *EventBus {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &EventBus{
		logger:   logger,
		handlers: make(map[string][]EventHandler),
	}
}

// OnEvent implements Tracer.
func (b *EventBus) OnEvent(name string, handler EventHandler) error {
	if handler == nil {
		return NewInvalidDescriptorError(name, "event handler is required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
	return nil
}

// Record implements Tracer.
func (b *EventBus) Record(span Span) {
	b.spanMu.Lock()
	defer b.spanMu.Unlock()
	b.spans = append(b.spans, span)
}

// Publish delivers an event to every subscriber of name and returns the
// number of handlers invoked.
func (b *EventBus) Publish(name string, payload map[string]any) int {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers[name]))
	copy(handlers, b.handlers[name])
	b.mu.RUnlock()

	event := Event{Name: name, Payload: payload, Time: timecache.CachedTime()}
	for _, h := range handlers {
		b.dispatch(h, event)
	}
	return len(handlers)
}

func (b *EventBus) dispatch(h EventHandler, event Event) {
	defer withStackRecover(b.logger.With("event", event.Name))()
	h(event)
}

// Subscribers returns the number of handlers subscribed to name.
func (b *EventBus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}

// Spans returns a copy of the recorded spans.
func (b *EventBus) Spans() []Span {
	b.spanMu.Lock()
	defer b.spanMu.Unlock()
	out := make([]Span, len(b.spans))
	copy(out, b.spans)
	return out
}
