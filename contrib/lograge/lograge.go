// lograge.go: Request log correlation integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package lograge adds trace correlation fields to single-line request logs.
package lograge

import (
	"fmt"

	integrations "github.com/agilira/go-integrations"
	"github.com/agilira/go-integrations/contrib/internal/correlation"
)

const (
	// Name is the integration and library name.
	Name = "lograge"
	// EventLog is emitted by the library for every request log line.
	EventLog = "log.lograge"
	// EnvEnabled turns the integration off when set to anything but
	// "true" or "1".
	EnvEnabled = "DD_TRACE_LOGRAGE_ENABLED"

	OptionServiceName = "service_name"
)

// Descriptor returns a fresh descriptor for the lograge integration. Any
// library version is accepted.
func Descriptor() integrations.Descriptor {
	options := integrations.NewOptionSet(Name).MustDefine(
		integrations.BoolOption(integrations.EnabledOption, true, EnvEnabled),
		integrations.StringOption(OptionServiceName, "", ""),
	)
	return integrations.Descriptor{
		Name:     Name,
		Options:  options,
		Activate: activate,
	}
}

func activate(ctx integrations.ActivationContext) error {
	if ctx.Tracer == nil {
		return fmt.Errorf("no tracer configured")
	}
	service := ctx.Config.String(OptionServiceName)
	return ctx.Tracer.OnEvent(EventLog, func(ev integrations.Event) {
		correlation.Inject(ev.Payload, service)
	})
}
