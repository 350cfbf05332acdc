// semanticlogger.go: Structured logger correlation integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package semanticlogger adds trace correlation fields to structured log
// entries.
package semanticlogger

import (
	"fmt"

	integrations "github.com/agilira/go-integrations"
	"github.com/agilira/go-integrations/contrib/internal/correlation"
)

const (
	// Name is the integration name.
	Name = "semantic_logger"
	// Library is the instrumented library.
	Library = "semantic_logger"
	// MinimumVersion is the oldest supported library release.
	MinimumVersion = "4.0.0"
	// EventLog is emitted for every log entry.
	EventLog = "log.semantic_logger"

	EnvEnabled        = "DD_TRACE_SEMANTIC_LOGGER_ENABLED"
	OptionServiceName = "service_name"
)

// Descriptor returns a fresh descriptor for the semantic_logger integration.
func Descriptor() integrations.Descriptor {
	options := integrations.NewOptionSet(Name).MustDefine(
		integrations.BoolOption(integrations.EnabledOption, true, EnvEnabled),
		integrations.StringOption(OptionServiceName, "", ""),
	)
	return integrations.Descriptor{
		Name:       Name,
		Library:    Library,
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
	if err := ctx.Tracer.OnEvent(EventLog, func(ev integrations.Event) {
		if !correlation.Inject(ev.Payload, service) {
			return
		}
		// Mirror the fields into named tags for structured appenders.
		tags, _ := ev.Payload["named_tags"].(map[string]any)
		if tags == nil {
			tags = make(map[string]any)
		}
		tags[correlation.FieldsKey] = ev.Payload[correlation.FieldsKey]
		ev.Payload["named_tags"] = tags
	}); err != nil {
		return err
	}
	ctx.Logger.Debug("Semantic logger correlation enabled")
	return nil
}
