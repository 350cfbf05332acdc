// registry_test.go: tests for registration and eligibility resolution
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopActivate(ActivationContext) error { return nil }

func names(candidates []Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Name())
	}
	return out
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry(RegistryConfig{})

	err := r.Register(Descriptor{Activate: noopActivate})
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeInvalidDescriptor))

	err = r.Register(Descriptor{Name: "x"})
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeInvalidDescriptor))

	require.NoError(t, r.Register(Descriptor{Name: "x", Activate: noopActivate}))
	err = r.Register(Descriptor{Name: "x", Activate: noopActivate})
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeDuplicateIntegration))
	assert.Equal(t, 1, r.Len())

	assert.Panics(t, func() { r.MustRegister(Descriptor{Name: "x", Activate: noopActivate}) })
}

func TestRegistry_ImplicitEnabledOption(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	require.NoError(t, r.Register(Descriptor{Name: "x", Activate: noopActivate}))

	d, ok := r.Descriptor("x")
	require.True(t, ok)
	assert.True(t, d.Options.Has(EnabledOption))

	v, err := r.Resolve("x", EnabledOption, Settings{})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = r.Resolve("missing", EnabledOption, Settings{})
	assert.True(t, HasErrorCode(err, ErrCodeInvalidDescriptor))
}

func TestRegistry_EnvKeyConflict(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	require.NoError(t, r.Register(Descriptor{
		Name:     "a",
		Options:  NewOptionSet("a").MustDefine(StringOption("service_name", "", "DD_SERVICE")),
		Activate: noopActivate,
	}))

	err := r.Register(Descriptor{
		Name:     "b",
		Options:  NewOptionSet("b").MustDefine(StringOption("service", "", "DD_SERVICE")),
		Activate: noopActivate,
	})
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeEnvKeyConflict))
	_, ok := r.Descriptor("b")
	assert.False(t, ok)
}

func TestRegistry_RegisterLeavesCallerOptionsUntouched(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.MustRegister(Descriptor{
		Name:     "a",
		Options:  NewOptionSet("a").MustDefine(StringOption("service_name", "", "DD_SERVICE")),
		Activate: noopActivate,
	})

	rejected := NewOptionSet("b").MustDefine(StringOption("s", "", "DD_SERVICE"))
	err := r.Register(Descriptor{Name: "b", Options: rejected, Activate: noopActivate})
	require.Error(t, err)
	assert.Equal(t, []string{"s"}, rejected.Names())

	accepted := NewOptionSet("c").MustDefine(StringOption("s", "", "C_SERVICE"))
	require.NoError(t, r.Register(Descriptor{Name: "c", Options: accepted, Activate: noopActivate}))
	assert.Equal(t, []string{"s"}, accepted.Names())

	d, ok := r.Descriptor("c")
	require.True(t, ok)
	assert.Equal(t, []string{"s", EnabledOption}, d.Options.Names())
}

func TestRegistry_ConflictingRegistrationCanBeRetried(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.MustRegister(Descriptor{
		Name:     "a",
		Options:  NewOptionSet("a").MustDefine(BoolOption(EnabledOption, true, "SHARED_ENABLED")),
		Activate: noopActivate,
	})

	err := r.Register(Descriptor{
		Name:     "b",
		Options:  NewOptionSet("b").MustDefine(BoolOption(EnabledOption, true, "SHARED_ENABLED")),
		Activate: noopActivate,
	})
	assert.True(t, HasErrorCode(err, ErrCodeEnvKeyConflict))

	require.NoError(t, r.Register(Descriptor{
		Name:     "b",
		Options:  NewOptionSet("b").MustDefine(BoolOption(EnabledOption, true, "B_ENABLED")),
		Activate: noopActivate,
	}))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ResolveEligible(t *testing.T) {
	r := NewRegistry(RegistryConfig{
		Environment: MapEnvironment{"GAMMA_ENABLED": "false"},
	})
	r.MustRegister(
		Descriptor{Name: "alpha", Constraint: RequireAtLeast("2.0"), Activate: noopActivate},
		Descriptor{Name: "beta", Library: "beta-lib", Activate: noopActivate},
		Descriptor{
			Name:     "gamma",
			Options:  NewOptionSet("gamma").MustDefine(BoolOption(EnabledOption, true, "GAMMA_ENABLED")),
			Activate: noopActivate,
		},
		Descriptor{Name: "delta", Activate: noopActivate},
		Descriptor{Name: "epsilon", Activate: noopActivate},
	)

	libs := Libraries{
		"alpha":    "2.1.0",
		"beta-lib": "0.1.0",
		"gamma":    "1.0.0",
		"delta":    "1.0.0",
		// epsilon absent
	}
	settings := Settings{}.WithIntegration("delta", IntegrationSettings{Enabled: Bool(false)})

	candidates := r.ResolveEligible(libs, settings)
	assert.Equal(t, []string{"alpha", "beta"}, names(candidates))
	assert.Equal(t, "2.1.0", candidates[0].Version)
	assert.Equal(t, "0.1.0", candidates[1].Version)
	assert.True(t, candidates[0].Config.Enabled())
}

func TestRegistry_VersionGate(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.MustRegister(Descriptor{Name: "x", Constraint: RequireAtLeast("2.0"), Activate: noopActivate})

	assert.Empty(t, r.ResolveEligible(Libraries{"x": "1.9.0"}, Settings{}))
	assert.Len(t, r.ResolveEligible(Libraries{"x": "2.0.0"}, Settings{}), 1)
	assert.Empty(t, r.ResolveEligible(Libraries{"x": "not-a-version"}, Settings{}))
}

func TestRegistry_ResolveEligiblePreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	order := []string{"zeta", "alpha", "mu", "beta"}
	libs := Libraries{}
	for _, n := range order {
		r.MustRegister(Descriptor{Name: n, Activate: noopActivate})
		libs[n] = "1.0.0"
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, order, names(r.ResolveEligible(libs, Settings{})))
	}
}

func TestRegistry_InvalidConfigurationIsSkipped(t *testing.T) {
	logger := NewTestLogger()
	metrics := NewDefaultMetricsCollector()
	r := NewRegistry(RegistryConfig{Logger: logger, Metrics: metrics})
	r.MustRegister(
		Descriptor{Name: "bad", Activate: noopActivate},
		Descriptor{Name: "good", Activate: noopActivate},
	)

	settings := Settings{}.WithIntegration("bad", IntegrationSettings{
		Options: map[string]any{EnabledOption: "definitely", "nonsense": 1},
	})
	candidates := r.ResolveEligible(Libraries{"bad": "1.0.0", "good": "1.0.0"}, settings)

	assert.Equal(t, []string{"good"}, names(candidates))
	assert.True(t, logger.HasMessage("WARN", "Skipping integration with invalid configuration"))
	assert.True(t, logger.HasMessage("WARN", "Ignoring unknown integration option"))
	assert.Equal(t, int64(1), metrics.Counter(MetricSkippedTotal, map[string]string{"integration": "bad", "reason": SkipReasonInvalidConfig}))
	assert.Equal(t, int64(1), metrics.Counter(MetricEligibleTotal, map[string]string{"integration": "good"}))
}

func TestRegistry_DisabledSkipsOtherLazyDefaults(t *testing.T) {
	var evaluated atomic.Int32
	r := NewRegistry(RegistryConfig{})
	r.MustRegister(Descriptor{
		Name: "x",
		Options: NewOptionSet("x").MustDefine(Option{
			Name:        "expensive",
			DefaultFunc: func() any { evaluated.Add(1); return "v" },
			Mode:        Lazy,
		}),
		Activate: noopActivate,
	})

	off := Settings{}.WithIntegration("x", IntegrationSettings{Enabled: Bool(false)})
	assert.Empty(t, r.ResolveEligible(Libraries{"x": "1.0.0"}, off))
	assert.Equal(t, int32(0), evaluated.Load())

	candidates := r.ResolveEligible(Libraries{"x": "1.0.0"}, Settings{})
	require.Len(t, candidates, 1)
	assert.Equal(t, "v", candidates[0].Config.String("expensive"))

	r.ResolveEligible(Libraries{"x": "1.0.0"}, Settings{})
	assert.Equal(t, int32(1), evaluated.Load(), "lazy default is memoized across resolutions")

	require.NoError(t, r.ResetResolution("x"))
	r.ResolveEligible(Libraries{"x": "1.0.0"}, Settings{})
	assert.Equal(t, int32(2), evaluated.Load())

	assert.Error(t, r.ResetResolution("missing"))
}

func TestRegistry_ResolveEligibleThenApply(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry(RegistryConfig{})
	r.MustRegister(Descriptor{
		Name:       "mailer",
		Constraint: RequireAtLeast("5.0.0"),
		Activate: func(ActivationContext) error {
			calls.Add(1)
			return nil
		},
	})
	p := NewPatcher(PatcherConfig{})
	libs := Libraries{"mailer": "5.2.0"}

	for i := 0; i < 3; i++ {
		report := p.ApplyAll(r.ResolveEligible(libs, Settings{}))
		assert.Equal(t, []string{"mailer"}, report.Patched())
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestRegistry_Descriptors(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.MustRegister(
		Descriptor{Name: "b", Activate: noopActivate},
		Descriptor{Name: "a", Library: "liba", Activate: noopActivate},
	)
	ds := r.Descriptors()
	require.Len(t, ds, 2)
	assert.Equal(t, "b", ds[0].Name)
	assert.Equal(t, "b", ds[0].LibraryName())
	assert.Equal(t, "liba", ds[1].LibraryName())
	assert.Equal(t, "n/a", ds[1].ConstraintString())
}
