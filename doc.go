// Package integrations is the instrumentation-integration core of an APM
// agent. It discovers optional libraries present in a process, activates
// tracing and security hooks for each of them at most once, and resolves
// per-integration configuration from defaults, environment and explicit
// overrides.
//
// Key Features:
//   - Typed options with eager or lazy (memoized) defaults and validators
//   - Version-gated eligibility with semver constraints
//   - At-most-once activation with per-integration locking and failure isolation
//   - Managed components with exactly-once finalization
//   - Hot reload of settings files, gRPC health reporting and metrics
//
// Basic Usage:
//
//	registry := integrations.NewRegistry(integrations.RegistryConfig{
//		Environment: integrations.OSEnvironment{},
//	})
//	registry.MustRegister(mailer.Descriptor())
//
//	patcher := integrations.NewPatcher(integrations.PatcherConfig{Tracer: tracer})
//	for _, c := range registry.ResolveEligible(libs, settings) {
//		if err := patcher.Apply(c); err != nil {
//			log.Printf("integration %s not active: %v", c.Name(), err)
//		}
//	}
//
// Most hosts use Agent, which does the above plus component lifecycle and
// health reporting.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package integrations
