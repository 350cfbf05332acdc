// agent.go: Host-facing facade over registry, patcher and components
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"sync"

	"github.com/tebeka/atexit"
)

// AgentConfig configures an Agent.
type AgentConfig struct {
	// Environment backs environment-derived options; nil disables them
	Environment Environment
	// Tracer receives hooks from activated integrations
	Tracer Tracer
	// Logger defaults to DefaultLogger()
	Logger Logger
	// Metrics defaults to an in-memory collector
	Metrics MetricsCollector
	// Components are rebuilt from settings on every Start and Reload
	Components []ComponentBuilder
}

// Agent wires the registry, the patcher, the component set and health
// reporting together.
//
// Typical host startup:
//
//	agent := integrations.NewAgent(integrations.AgentConfig{
//	    Environment: integrations.OSEnvironment{},
//	    Tracer:      tracer,
//	    Components:  []integrations.ComponentBuilder{appsec.NewBuilder(logger)},
//	})
//	agent.Registry().MustRegister(mailer.Descriptor(), lograge.Descriptor())
//	agent.RegisterExitHook()
//	report, err := agent.Start(integrations.LibrariesFromBuildInfo(), settings)
type Agent struct {
	logger     Logger
	registry   *Registry
	patcher    *Patcher
	components *ComponentSet
	health     *HealthReporter

	mu        sync.Mutex
	libraries Libraries
	settings  Settings
	started   bool
	exitHook  sync.Once
}

// NewAgent creates an agent with an empty registry.
func NewAgent(config AgentConfig) *Agent {
	if config.Logger == nil {
		config.Logger = DefaultLogger()
	}
	if config.Metrics == nil {
		config.Metrics = NewDefaultMetricsCollector()
	}
	if config.Tracer == nil {
		config.Tracer = NewEventBus(config.Logger)
	}
	return &Agent{
		logger: config.Logger,
		registry: NewRegistry(RegistryConfig{
			Environment: config.Environment,
			Logger:      config.Logger,
			Metrics:     config.Metrics,
		}),
		patcher: NewPatcher(PatcherConfig{
			Tracer:  config.Tracer,
			Logger:  config.Logger,
			Metrics: config.Metrics,
		}),
		components: NewComponentSet(config.Logger, config.Metrics, config.Components...),
		health:     NewHealthReporter(),
	}
}

// Registry returns the agent's integration registry.
func (a *Agent) Registry() *Registry { return a.registry }

// Patcher returns the agent's patcher.
func (a *Agent) Patcher() *Patcher { return a.patcher }

// Components returns the agent's component set.
func (a *Agent) Components() *ComponentSet { return a.components }

// Health returns the agent's health reporter.
func (a *Agent) Health() *HealthReporter { return a.health }

// Start resolves eligible integrations, activates them and rebuilds the
// managed components. It can be called again; integrations already patched
// are not activated twice. The returned error only reports component build
// failures; activation failures are in the report.
func (a *Agent) Start(libs Libraries, settings Settings) (ActivationReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.libraries = libs
	a.settings = settings
	return a.runLocked()
}

// Reload re-runs Start with the last library inventory and new settings.
func (a *Agent) Reload(settings Settings) (ActivationReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.settings = settings
	return a.runLocked()
}

// ReloadFunc adapts Reload for SettingsWatcher callbacks.
func (a *Agent) ReloadFunc() func(Settings) error {
	return func(s Settings) error {
		_, err := a.Reload(s)
		return err
	}
}

func (a *Agent) runLocked() (ActivationReport, error) {
	candidates := a.registry.ResolveEligible(a.libraries, a.settings)
	report := a.patcher.ApplyAll(candidates)

	for _, failure := range report.Failures() {
		a.logger.Warn("Integration not active", "integration", failure.Name, "error", failure.Err)
	}

	err := a.components.Reconfigure(a.settings)
	a.health.Report(a.patcher.Statuses())
	a.started = true

	a.logger.Info("Integrations resolved",
		"registered", a.registry.Len(),
		"eligible", len(candidates),
		"patched", len(report.Patched()),
		"failed", len(report.Failures()))
	return report, err
}

// Shutdown finalizes managed components and marks health NOT_SERVING.
// Patched integrations stay patched; calling Shutdown again is a no-op.
func (a *Agent) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started {
		return nil
	}
	a.started = false
	err := a.components.Shutdown()
	a.health.Shutdown()
	a.logger.Info("Agent shut down")
	return err
}

// RegisterExitHook makes atexit.Exit run Shutdown. Repeated calls register
// the hook once.
func (a *Agent) RegisterExitHook() {
	a.exitHook.Do(func() {
		atexit.Register(func() {
			if err := a.Shutdown(); err != nil {
				a.logger.Error("Shutdown at exit failed", "error", err)
			}
		})
	})
}
