// watcher.go: Settings hot reload powered by Argus
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// SettingsWatcherOptions configures a SettingsWatcher.
type SettingsWatcherOptions struct {
	// PollInterval is how often Argus checks the file (default 1s)
	PollInterval time.Duration
	// CacheTTL bounds stat caching inside Argus (default PollInterval/2)
	CacheTTL time.Duration
	// AuditFile enables the Argus audit trail when set
	AuditFile string
}

// SettingsWatcher reloads Settings whenever the watched file changes.
//
// Example usage:
//
//	watcher := integrations.NewSettingsWatcher("agent.yaml", agent.ReloadFunc(),
//	    integrations.SettingsWatcherOptions{}, logger)
//	if err := watcher.Start(); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
type SettingsWatcher struct {
	path     string
	onChange func(Settings) error
	logger   Logger
	watcher  *argus.Watcher

	mu      sync.Mutex
	running bool
	stopped atomic.Bool
	reloads atomic.Int64
	failed  atomic.Int64
}

// NewSettingsWatcher creates a watcher for path. onChange receives every
// successfully parsed version of the file.
func NewSettingsWatcher(path string, onChange func(Settings) error, options SettingsWatcherOptions, logger Logger) *SettingsWatcher {
	if logger == nil {
		logger = DefaultLogger()
	}
	if options.PollInterval <= 0 {
		options.PollInterval = time.Second
	}
	if options.CacheTTL <= 0 {
		options.CacheTTL = options.PollInterval / 2
	}

	argusConfig := argus.Config{
		PollInterval:         options.PollInterval,
		CacheTTL:             options.CacheTTL,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filepath string) {
			logger.Error("Argus file watching error", "error", err, "file", filepath)
		},
	}
	if options.AuditFile != "" {
		argusConfig.Audit = argus.AuditConfig{
			Enabled:       true,
			OutputFile:    options.AuditFile,
			MinLevel:      argus.AuditInfo,
			BufferSize:    100,
			FlushInterval: 5 * time.Second,
		}
	}

	return &SettingsWatcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
		watcher:  argus.New(argusConfig),
	}
}

// Start begins watching. A stopped watcher cannot be restarted.
func (sw *SettingsWatcher) Start() error {
	if sw.stopped.Load() {
		return NewWatcherError("watcher has been stopped", nil)
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.running {
		return NewWatcherError("watcher is already running", nil)
	}
	if err := sw.watcher.Watch(sw.path, sw.handleChange); err != nil {
		return NewWatcherError("failed to watch settings file", err).WithContext("settings_path", sw.path)
	}
	if err := sw.watcher.Start(); err != nil {
		return NewWatcherError("failed to start watcher", err).WithContext("settings_path", sw.path)
	}
	sw.running = true
	sw.logger.Info("Settings watcher started", "settings_path", sw.path)
	return nil
}

// Stop ends watching. Calling Stop more than once is safe.
func (sw *SettingsWatcher) Stop() error {
	if !sw.stopped.CompareAndSwap(false, true) {
		return nil
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.running {
		return nil
	}
	sw.running = false
	if err := sw.watcher.Stop(); err != nil {
		return NewWatcherError("failed to stop watcher", err)
	}
	sw.logger.Info("Settings watcher stopped", "settings_path", sw.path)
	return nil
}

// Reloads returns the number of successfully applied reloads.
func (sw *SettingsWatcher) Reloads() int64 {
	return sw.reloads.Load()
}

// Failures returns the number of reloads that could not be parsed or
// applied.
func (sw *SettingsWatcher) Failures() int64 {
	return sw.failed.Load()
}

func (sw *SettingsWatcher) handleChange(event argus.ChangeEvent) {
	if event.IsDelete {
		sw.logger.Warn("Settings file was deleted, keeping current settings", "path", event.Path)
		return
	}
	if err := sw.reload(event.Path); err != nil {
		sw.failed.Add(1)
		sw.logger.Error("Settings reload failed", "path", event.Path, "error", err)
		return
	}
	sw.reloads.Add(1)
}

func (sw *SettingsWatcher) reload(path string) error {
	settings, err := LoadSettings(path)
	if err != nil {
		return err
	}
	sw.logger.Info("Settings file changed, reloading", "path", path)
	return sw.onChange(settings)
}
