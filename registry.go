// registry.go: Integration registry and eligibility resolution
//
// The registry holds descriptors in registration order and decides which of
// them should be activated for a given library inventory and settings
// object. It never activates anything itself; callers hand the resulting
// candidates to a Patcher.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"sync"
)

// Skip reasons reported in logs and metrics.
const (
	SkipReasonAbsent        = "absent"
	SkipReasonIncompatible  = "incompatible"
	SkipReasonDisabled      = "disabled"
	SkipReasonInvalidConfig = "invalid_config"
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Environment backs options that declare an EnvKey. Nil disables
	// environment overrides; hosts usually pass OSEnvironment{}.
	Environment Environment
	// Logger defaults to DefaultLogger()
	Logger Logger
	// Metrics defaults to an in-memory collector
	Metrics MetricsCollector
}

type registeredIntegration struct {
	descriptor *Descriptor
	resolution *ResolutionContext
}

// Registry holds every known integration descriptor.
type Registry struct {
	env     Environment
	logger  Logger
	metrics MetricsCollector

	mu        sync.RWMutex
	order     []*registeredIntegration
	byName    map[string]*registeredIntegration
	envClaims map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry(config RegistryConfig) *Registry {
	if config.Logger == nil {
		config.Logger = DefaultLogger()
	}
	if config.Metrics == nil {
		config.Metrics = NewDefaultMetricsCollector()
	}
	return &Registry{
		env:       config.Environment,
		logger:    config.Logger,
		metrics:   config.Metrics,
		byName:    make(map[string]*registeredIntegration),
		envClaims: make(map[string]string),
	}
}

// Register adds a descriptor. Name collisions fail with a duplicate
// integration error; an environment variable already backing another
// option fails with an env key conflict error.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}

	desc := d
	if desc.Options == nil {
		desc.Options = NewOptionSet(desc.Name)
	} else {
		desc.Options = desc.Options.clone()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[desc.Name]; exists {
		return NewDuplicateIntegrationError(desc.Name)
	}

	claims := desc.Options.EnvKeys()
	for key, option := range claims {
		owner := desc.Name + "." + option
		if existing, taken := r.envClaims[key]; taken && existing != owner {
			return NewEnvKeyConflictError(key, existing, owner)
		}
	}

	if !desc.Options.Has(EnabledOption) {
		if err := desc.Options.Define(BoolOption(EnabledOption, true, "")); err != nil {
			return err
		}
	}
	for key, option := range claims {
		r.envClaims[key] = desc.Name + "." + option
	}

	entry := &registeredIntegration{
		descriptor: &desc,
		resolution: desc.Options.NewContext(r.env),
	}
	r.order = append(r.order, entry)
	r.byName[desc.Name] = entry

	r.logger.Debug("Registered integration",
		"integration", desc.Name,
		"library", desc.LibraryName(),
		"constraint", desc.ConstraintString(),
		"resolution_context", entry.resolution.ID())
	return nil
}

// MustRegister registers descriptors and panics on the first error.
func (r *Registry) MustRegister(descriptors ...Descriptor) {
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Descriptor returns the registered descriptor called name.
func (r *Registry) Descriptor(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return entry.descriptor, true
}

// Descriptors returns every descriptor in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.order))
	for i, entry := range r.order {
		out[i] = entry.descriptor
	}
	return out
}

// Len returns the number of registered integrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Resolve returns the effective value of one option of integration name
// under settings.
func (r *Registry) Resolve(name, option string, settings Settings) (any, error) {
	r.mu.RLock()
	entry, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, NewInvalidDescriptorError(name, "integration is not registered")
	}
	return entry.resolution.Resolve(option, settings.OverridesFor(name))
}

// ResetResolution drops memoized lazy defaults of integration name.
func (r *Registry) ResetResolution(name string) error {
	r.mu.RLock()
	entry, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return NewInvalidDescriptorError(name, "integration is not registered")
	}
	entry.resolution.ResetAll()
	return nil
}

// ResolveEligible returns the integrations to activate, in registration
// order. An integration is eligible when its library is installed, the
// installed version satisfies its constraint and its enabled option
// resolves to true. Ineligible integrations are skipped, never reported as
// errors.
func (r *Registry) ResolveEligible(libs Libraries, settings Settings) []Candidate {
	r.mu.RLock()
	entries := make([]*registeredIntegration, len(r.order))
	copy(entries, r.order)
	r.mu.RUnlock()

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		candidate, reason, err := r.evaluate(entry, libs, settings)
		if reason != "" {
			r.skip(entry.descriptor.Name, reason, err)
			continue
		}
		candidates = append(candidates, candidate)
		r.metrics.IncrementCounter(MetricEligibleTotal,
			map[string]string{"integration": entry.descriptor.Name}, 1)
	}
	return candidates
}

// evaluate returns a candidate, or the reason it was skipped.
func (r *Registry) evaluate(entry *registeredIntegration, libs Libraries, settings Settings) (Candidate, string, error) {
	d := entry.descriptor

	version, present := libs.Version(d.LibraryName())
	if !present {
		return Candidate{}, SkipReasonAbsent, nil
	}
	if err := checkVersion(d.Name, d.Constraint, version); err != nil {
		return Candidate{}, SkipReasonIncompatible, err
	}

	overrides := settings.OverridesFor(d.Name)
	for key := range overrides {
		if !d.Options.Has(key) {
			r.logger.Warn("Ignoring unknown integration option", "integration", d.Name, "option", key)
		}
	}

	enabled, err := entry.resolution.Resolve(EnabledOption, overrides)
	if err != nil {
		return Candidate{}, SkipReasonInvalidConfig, err
	}
	if on, _ := enabled.(bool); !on {
		return Candidate{}, SkipReasonDisabled, nil
	}

	snapshot, err := entry.resolution.Snapshot(overrides)
	if err != nil {
		return Candidate{}, SkipReasonInvalidConfig, err
	}
	return Candidate{Descriptor: d, Version: version, Config: snapshot}, "", nil
}

func (r *Registry) skip(name, reason string, err error) {
	r.metrics.IncrementCounter(MetricSkippedTotal,
		map[string]string{"integration": name, "reason": reason}, 1)
	switch reason {
	case SkipReasonInvalidConfig:
		r.logger.Warn("Skipping integration with invalid configuration", "integration", name, "error", err)
	case SkipReasonIncompatible:
		r.logger.Debug("Skipping incompatible integration", "integration", name, "error", err)
	default:
		r.logger.Debug("Skipping integration", "integration", name, "reason", reason)
	}
}
