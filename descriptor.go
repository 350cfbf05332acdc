// descriptor.go: Integration descriptors and activation context
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

// ActivationFunc installs an integration's hooks. It runs at most once per
// process for a given descriptor.
type ActivationFunc func(ActivationContext) error

// ActivationContext is what an activation routine gets to work with.
type ActivationContext struct {
	// Name of the integration being activated
	Name string
	// Version of the installed library ("" when unknown)
	Version string
	// Config is the configuration resolved for this activation
	Config Snapshot
	// Tracer receives event subscriptions and spans
	Tracer Tracer
	// Logger is scoped to the integration
	Logger Logger
}

// Descriptor describes one pluggable library integration.
//
// New integrations are added by registering a Descriptor; the core never
// reaches into library types itself.
//
// Example:
//
//	options := integrations.NewOptionSet("mailer").MustDefine(
//	    integrations.BoolOption("enabled", true, "DD_TRACE_MAILER_ENABLED"),
//	)
//	registry.MustRegister(integrations.Descriptor{
//	    Name:       "mailer",
//	    Constraint: integrations.RequireAtLeast("5.0.0"),
//	    Options:    options,
//	    Activate:   subscribe,
//	})
type Descriptor struct {
	// Name is unique within a registry
	Name string
	// Library is the installed library this integration targets; defaults
	// to Name
	Library string
	// Constraint gates activation on the installed version; nil means not
	// applicable
	Constraint VersionConstraint
	// Options holds the integration's configuration; an "enabled" option is
	// added on registration when missing
	Options *OptionSet
	// Activate installs the hooks
	Activate ActivationFunc
}

// LibraryName returns Library, falling back to Name.
func (d *Descriptor) LibraryName() string {
	if d.Library != "" {
		return d.Library
	}
	return d.Name
}

// ConstraintString describes the version constraint for logs and reports.
func (d *Descriptor) ConstraintString() string {
	if d.Constraint == nil {
		return "n/a"
	}
	return d.Constraint.String()
}

func (d *Descriptor) validate() error {
	if d.Name == "" {
		return NewInvalidDescriptorError(d.Name, "name is required")
	}
	if d.Activate == nil {
		return NewInvalidDescriptorError(d.Name, "activation routine is required")
	}
	return nil
}

// Candidate is a descriptor selected for activation together with the
// configuration resolved for it.
type Candidate struct {
	Descriptor *Descriptor
	Version    string
	Config     Snapshot
}

// Name is shorthand for the descriptor name.
func (c Candidate) Name() string {
	return c.Descriptor.Name
}
