// mailer_test.go: Tests for the mailer integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package mailer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	integrations "github.com/agilira/go-integrations"
	"github.com/agilira/go-integrations/contrib/mailer"
	"github.com/agilira/go-integrations/internal/mocks"
)

func eligible(t *testing.T, env integrations.Environment, version string, settings integrations.Settings) []integrations.Candidate {
	t.Helper()
	registry := integrations.NewRegistry(integrations.RegistryConfig{Environment: env})
	require.NoError(t, registry.Register(mailer.Descriptor()))
	return registry.ResolveEligible(integrations.Libraries{mailer.Name: version}, settings)
}

func TestDescriptor_VersionGate(t *testing.T) {
	assert.Empty(t, eligible(t, nil, "4.2.1", integrations.Settings{}))

	candidates := eligible(t, nil, "5.0.0", integrations.Settings{})
	require.Len(t, candidates, 1)
	assert.Equal(t, mailer.Name, candidates[0].Name())
	assert.Equal(t, mailer.DefaultServiceName, candidates[0].Config.String(mailer.OptionServiceName))
	assert.False(t, candidates[0].Config.Bool(mailer.OptionAnalyticsEnabled))
}

func TestDescriptor_ServiceNamePrecedence(t *testing.T) {
	env := integrations.MapEnvironment{mailer.EnvServiceName: "mail-from-env"}

	candidates := eligible(t, env, "5.1.0", integrations.Settings{})
	require.Len(t, candidates, 1)
	assert.Equal(t, "mail-from-env", candidates[0].Config.String(mailer.OptionServiceName))

	settings := integrations.Settings{}.WithIntegration(mailer.Name, integrations.IntegrationSettings{
		Options: map[string]any{mailer.OptionServiceName: "mail-explicit"},
	})
	candidates = eligible(t, env, "5.1.0", settings)
	require.Len(t, candidates, 1)
	assert.Equal(t, "mail-explicit", candidates[0].Config.String(mailer.OptionServiceName))
}

func TestDescriptor_DisabledFromEnvironment(t *testing.T) {
	env := integrations.MapEnvironment{mailer.EnvEnabled: "false"}
	assert.Empty(t, eligible(t, env, "6.0.0", integrations.Settings{}))
}

func TestActivate_SubscribesAndRecordsSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)

	handlers := make(map[string]integrations.EventHandler)
	tracer.EXPECT().OnEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(name string, h integrations.EventHandler) error {
			handlers[name] = h
			return nil
		}).Times(2)

	var recorded []integrations.Span
	tracer.EXPECT().Record(gomock.Any()).
		Do(func(span integrations.Span) { recorded = append(recorded, span) }).
		Times(2)

	candidates := eligible(t, nil, "5.2.0", integrations.Settings{})
	require.Len(t, candidates, 1)

	patcher := integrations.NewPatcher(integrations.PatcherConfig{Tracer: tracer})
	require.NoError(t, patcher.Apply(candidates[0]))
	require.Contains(t, handlers, mailer.EventDeliver)
	require.Contains(t, handlers, mailer.EventProcess)

	end := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	handlers[mailer.EventDeliver](integrations.Event{
		Name: mailer.EventDeliver,
		Time: end,
		Payload: map[string]any{
			mailer.PayloadMailer:    "UserMailer",
			mailer.PayloadAction:    "welcome",
			mailer.PayloadMessageID: "abc@example.com",
			mailer.PayloadDuration:  250 * time.Millisecond,
		},
	})
	handlers[mailer.EventProcess](integrations.Event{
		Name:    mailer.EventProcess,
		Time:    end,
		Payload: map[string]any{mailer.PayloadMailer: "UserMailer", mailer.PayloadError: errors.New("smtp down")},
	})

	require.Len(t, recorded, 2)
	deliver := recorded[0]
	assert.Equal(t, mailer.SpanDeliver, deliver.Name)
	assert.Equal(t, mailer.DefaultServiceName, deliver.Service)
	assert.Equal(t, "UserMailer", deliver.Resource)
	assert.Equal(t, 250*time.Millisecond, deliver.Duration)
	assert.Equal(t, end.Add(-250*time.Millisecond), deliver.Start)
	assert.Equal(t, "welcome", deliver.Tags["mailer.action"])
	assert.Equal(t, "abc@example.com", deliver.Tags["mailer.message_id"])
	assert.False(t, deliver.Error)

	process := recorded[1]
	assert.Equal(t, mailer.SpanProcess, process.Name)
	assert.True(t, process.Error)
	assert.Equal(t, "smtp down", process.Tags["error.message"])
}

func TestActivate_SubscriptionFailureMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().OnEvent(gomock.Any(), gomock.Any()).Return(errors.New("bus closed")).Times(1)

	candidates := eligible(t, nil, "5.0.0", integrations.Settings{})
	require.Len(t, candidates, 1)

	patcher := integrations.NewPatcher(integrations.PatcherConfig{Tracer: tracer})
	err := patcher.Apply(candidates[0])
	require.Error(t, err)
	assert.True(t, integrations.HasErrorCode(err, integrations.ErrCodeActivationFailure))
	assert.Equal(t, integrations.StateFailed, patcher.State(mailer.Name))

	// A failed integration is not retried, so OnEvent is not called again.
	require.Error(t, patcher.Apply(candidates[0]))
}

func TestActivate_PartialSubscriptionLeavesNoLiveHook(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)

	var first integrations.EventHandler
	gomock.InOrder(
		tracer.EXPECT().OnEvent(mailer.EventProcess, gomock.Any()).
			DoAndReturn(func(_ string, h integrations.EventHandler) error {
				first = h
				return nil
			}),
		tracer.EXPECT().OnEvent(mailer.EventDeliver, gomock.Any()).Return(errors.New("bus closed")),
	)
	tracer.EXPECT().Record(gomock.Any()).Times(0)

	candidates := eligible(t, nil, "5.0.0", integrations.Settings{})
	require.Len(t, candidates, 1)

	patcher := integrations.NewPatcher(integrations.PatcherConfig{Tracer: tracer})
	require.Error(t, patcher.Apply(candidates[0]))
	assert.Equal(t, integrations.StateFailed, patcher.State(mailer.Name))

	require.NotNil(t, first)
	first(integrations.Event{
		Name:    mailer.EventProcess,
		Time:    time.Now(),
		Payload: map[string]any{mailer.PayloadMailer: "UserMailer"},
	})
}

func TestActivate_WithEventBus(t *testing.T) {
	bus := integrations.NewEventBus(nil)
	candidates := eligible(t, nil, "5.0.0", integrations.Settings{})
	require.Len(t, candidates, 1)

	patcher := integrations.NewPatcher(integrations.PatcherConfig{Tracer: bus})
	require.NoError(t, patcher.Apply(candidates[0]))
	require.NoError(t, patcher.Apply(candidates[0]))

	assert.Equal(t, 1, bus.Subscribers(mailer.EventDeliver))
	assert.Equal(t, 1, bus.Publish(mailer.EventDeliver, map[string]any{mailer.PayloadMailer: "Notifier"}))

	spans := bus.Spans()
	require.Len(t, spans, 1)
	assert.Equal(t, "Notifier", spans[0].Resource)
}
