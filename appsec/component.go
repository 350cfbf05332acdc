// component.go: Pluggable security-inspection component
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package appsec provides the security-inspection component managed by the
// integration core. The component exists only while security is enabled in
// the settings and owns a Processor that is finalized exactly once.
package appsec

import (
	"sync"

	integrations "github.com/agilira/go-integrations"
)

// ComponentName identifies the component in logs, metrics and errors.
const ComponentName = "appsec"

// Component wraps the security Processor. All methods are safe on a nil
// *Component, which is what Build returns when security is disabled.
type Component struct {
	logger integrations.Logger

	mu        sync.RWMutex
	processor *Processor
}

// Build returns an active component when settings.SecurityEnabled is true
// and nil otherwise. Disabled is not an error.
func Build(settings integrations.Settings, logger integrations.Logger) (*Component, error) {
	if !settings.SecurityEnabled {
		return nil, nil
	}
	if logger == nil {
		logger = integrations.DefaultLogger()
	}

	processor, err := NewProcessor(settings.Security, logger.With("component", ComponentName))
	if err != nil {
		return nil, integrations.NewComponentBuildError(ComponentName, err)
	}
	return &Component{logger: logger, processor: processor}, nil
}

// Active reports whether the component currently owns a processor.
func (c *Component) Active() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processor != nil
}

// Inspect runs the processor on req. It fails with a not-active error on a
// disabled or shut down component.
func (c *Component) Inspect(req Request) ([]Match, error) {
	if c == nil {
		return nil, integrations.NewNotActiveError(ComponentName)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.processor == nil {
		return nil, integrations.NewNotActiveError(ComponentName)
	}
	return c.processor.Inspect(req), nil
}

// Stats returns the processor's inspection and match counters.
func (c *Component) Stats() (inspections, matches int64, err error) {
	if c == nil {
		return 0, 0, integrations.NewNotActiveError(ComponentName)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.processor == nil {
		return 0, 0, integrations.NewNotActiveError(ComponentName)
	}
	inspections, matches = c.processor.Stats()
	return inspections, matches, nil
}

// Shutdown finalizes the processor and drops the reference to it. It waits
// for in-flight inspections and is a no-op when already shut down.
func (c *Component) Shutdown() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.processor == nil {
		return nil
	}
	err := c.processor.Finalize()
	c.processor = nil
	c.logger.Info("Security component shut down")
	return err
}

// IsNil lets the component set recognize a disabled component stored in an
// interface.
func (c *Component) IsNil() bool {
	return c == nil
}

// Builder builds the component for an integrations.ComponentSet.
type Builder struct {
	logger integrations.Logger
}

// NewBuilder creates a Builder logging through logger.
func NewBuilder(logger integrations.Logger) Builder {
	return Builder{logger: logger}
}

// Name implements integrations.ComponentBuilder.
func (b Builder) Name() string {
	return ComponentName
}

// Build implements integrations.ComponentBuilder.
func (b Builder) Build(settings integrations.Settings) (integrations.ManagedComponent, error) {
	c, err := Build(settings, b.logger)
	if err != nil || c == nil {
		return nil, err
	}
	return c, nil
}
