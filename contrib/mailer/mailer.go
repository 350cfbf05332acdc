// mailer.go: Mail delivery integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package mailer traces mail processing and delivery. It subscribes to the
// events a mailer library emits and records one span per event.
package mailer

import (
	"fmt"
	"sync/atomic"
	"time"

	integrations "github.com/agilira/go-integrations"
)

const (
	// Name is the integration and library name.
	Name = "mailer"
	// MinimumVersion is the oldest supported library release.
	MinimumVersion = "5.0.0"

	EventDeliver = "deliver.mailer"
	EventProcess = "process.mailer"

	SpanDeliver = "mailer.deliver"
	SpanProcess = "mailer.process"

	OptionServiceName      = "service_name"
	OptionAnalyticsEnabled = "analytics_enabled"

	EnvServiceName      = "DD_TRACE_MAILER_SERVICE_NAME"
	EnvAnalyticsEnabled = "DD_TRACE_MAILER_ANALYTICS_ENABLED"
	EnvEnabled          = "DD_TRACE_MAILER_ENABLED"

	DefaultServiceName = "mailer"
)

// Payload keys understood by the event handlers.
const (
	PayloadMailer    = "mailer"
	PayloadAction    = "action"
	PayloadMessageID = "message_id"
	PayloadDuration  = "duration"
	PayloadError     = "error"
)

var events = []struct {
	event string
	span  string
}{
	{EventProcess, SpanProcess},
	{EventDeliver, SpanDeliver},
}

// Descriptor returns a fresh descriptor for the mailer integration.
func Descriptor() integrations.Descriptor {
	options := integrations.NewOptionSet(Name).MustDefine(
		integrations.BoolOption(integrations.EnabledOption, true, EnvEnabled),
		integrations.StringOption(OptionServiceName, DefaultServiceName, EnvServiceName),
		integrations.BoolOption(OptionAnalyticsEnabled, false, EnvAnalyticsEnabled),
	)
	return integrations.Descriptor{
		Name:       Name,
		Constraint: integrations.RequireAtLeast(MinimumVersion),
		Options:    options,
		Activate:   activate,
	}
}

func activate(ctx integrations.ActivationContext) error {
	if ctx.Tracer == nil {
		return fmt.Errorf("no tracer configured")
	}

	service := ctx.Config.String(OptionServiceName)
	analytics := ctx.Config.Bool(OptionAnalyticsEnabled)

	// Handlers are inert until every subscription succeeded.
	var live atomic.Bool
	for _, e := range events {
		spanName := e.span
		err := ctx.Tracer.OnEvent(e.event, func(ev integrations.Event) {
			if !live.Load() {
				return
			}
			ctx.Tracer.Record(spanFor(spanName, service, analytics, ev))
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", e.event, err)
		}
	}
	live.Store(true)
	ctx.Logger.Debug("Mailer events subscribed", "service", service)
	return nil
}

func spanFor(name, service string, analytics bool, ev integrations.Event) integrations.Span {
	span := integrations.Span{
		Name:    name,
		Service: service,
		Start:   ev.Time,
		Tags:    map[string]string{"component": Name},
	}

	if mailer, ok := ev.Payload[PayloadMailer].(string); ok {
		span.Resource = mailer
		span.Tags["mailer.name"] = mailer
	}
	if action, ok := ev.Payload[PayloadAction].(string); ok {
		span.Tags["mailer.action"] = action
	}
	if id, ok := ev.Payload[PayloadMessageID].(string); ok {
		span.Tags["mailer.message_id"] = id
	}
	if d, ok := ev.Payload[PayloadDuration].(time.Duration); ok {
		span.Duration = d
		if !ev.Time.IsZero() {
			span.Start = ev.Time.Add(-d)
		}
	}
	if err, ok := ev.Payload[PayloadError].(error); ok && err != nil {
		span.Error = true
		span.Tags["error.message"] = err.Error()
	}
	if analytics {
		span.Tags["_dd1.sr.eausr"] = "1"
	}
	return span
}
