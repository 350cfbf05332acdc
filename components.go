// components.go: Lifecycle of managed sub-components
//
// A managed component owns a heavyweight resource (for example the
// security-inspection engine). It exists only while its governing setting
// is on and is finalized exactly once when shut down.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	stderrors "errors"
	"sync"
)

// ManagedComponent is an active component instance.
type ManagedComponent interface {
	// Shutdown releases the owned resource. It must be safe to call more
	// than once.
	Shutdown() error
}

// ComponentBuilder creates a component from settings. Build returns a nil
// component and a nil error when the component is disabled.
type ComponentBuilder interface {
	Name() string
	Build(settings Settings) (ManagedComponent, error)
}

// ComponentBuilderFunc adapts a function into a ComponentBuilder.
type ComponentBuilderFunc struct {
	ComponentName string
	Fn            func(Settings) (ManagedComponent, error)
}

// Name implements ComponentBuilder.
func (f ComponentBuilderFunc) Name() string { return f.ComponentName }

// Build implements ComponentBuilder.
func (f ComponentBuilderFunc) Build(settings Settings) (ManagedComponent, error) {
	return f.Fn(settings)
}

// ComponentSet owns the active instances of a fixed set of builders.
//
// Reconfigure and Shutdown hold the same lock, so no shutdown can observe a
// half-built set and no build can race a shutdown.
type ComponentSet struct {
	logger  Logger
	metrics MetricsCollector

	mu       sync.Mutex
	builders []ComponentBuilder
	active   map[string]ManagedComponent
}

// NewComponentSet creates a set for the given builders.
func NewComponentSet(logger Logger, metrics MetricsCollector, builders ...ComponentBuilder) *ComponentSet {
	if logger == nil {
		logger = DefaultLogger()
	}
	if metrics == nil {
		metrics = NewDefaultMetricsCollector()
	}
	return &ComponentSet{
		logger:   logger,
		metrics:  metrics,
		builders: builders,
		active:   make(map[string]ManagedComponent),
	}
}

// Add appends a builder. It takes effect on the next Reconfigure.
func (cs *ComponentSet) Add(builder ComponentBuilder) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.builders = append(cs.builders, builder)
}

// Reconfigure shuts down every active component and builds a fresh set
// from settings. Builder errors are collected; the other builders still
// run.
func (cs *ComponentSet) Reconfigure(settings Settings) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var errs []error
	errs = append(errs, cs.shutdownLocked()...)

	for _, b := range cs.builders {
		component, err := b.Build(settings)
		if err != nil {
			errs = append(errs, NewComponentBuildError(b.Name(), err))
			cs.logger.Error("Component build failed", "component", b.Name(), "error", err)
			continue
		}
		if isNilComponent(component) {
			cs.logger.Debug("Component disabled", "component", b.Name())
			continue
		}
		cs.active[b.Name()] = component
		cs.logger.Info("Component enabled", "component", b.Name())
	}
	cs.metrics.SetGauge(MetricComponentsActive, nil, float64(len(cs.active)))
	return joinComponentErrors(errs)
}

// Shutdown finalizes every active component. Calling it again is a no-op.
func (cs *ComponentSet) Shutdown() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	errs := cs.shutdownLocked()
	cs.metrics.SetGauge(MetricComponentsActive, nil, 0)
	return joinComponentErrors(errs)
}

func (cs *ComponentSet) shutdownLocked() []error {
	var errs []error
	for name, component := range cs.active {
		if err := component.Shutdown(); err != nil {
			errs = append(errs, NewComponentCloseError(name, err))
			cs.logger.Warn("Component shutdown failed", "component", name, "error", err)
		}
		cs.metrics.IncrementCounter(MetricComponentShutdowns, map[string]string{"component": name}, 1)
		delete(cs.active, name)
	}
	return errs
}

// Get returns the active component called name.
func (cs *ComponentSet) Get(name string) (ManagedComponent, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.active[name]
	return c, ok
}

// Active returns the number of active components.
func (cs *ComponentSet) Active() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.active)
}

// isNilComponent catches typed nil pointers stored in the interface.
func isNilComponent(c ManagedComponent) bool {
	if c == nil {
		return true
	}
	if n, ok := c.(interface{ IsNil() bool }); ok {
		return n.IsNil()
	}
	return false
}

// joinComponentErrors keeps every error reachable through errors.Is/As.
func joinComponentErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return stderrors.Join(errs...)
}
