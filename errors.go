// errors.go: structured error definitions for the integration core
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	stderrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the integration core
const (
	// Configuration option errors (1000-1099)
	ErrCodeDuplicateOption    = "INTEGRATION_1001"
	ErrCodeUnknownOption      = "INTEGRATION_1002"
	ErrCodeInvalidOptionValue = "INTEGRATION_1003"
	ErrCodeEnvKeyConflict     = "INTEGRATION_1004"

	// Registry errors (1100-1199)
	ErrCodeDuplicateIntegration = "INTEGRATION_1101"
	ErrCodeInvalidDescriptor    = "INTEGRATION_1102"
	ErrCodeIncompatibleVersion  = "INTEGRATION_1103"
	ErrCodeInvalidConstraint    = "INTEGRATION_1104"

	// Activation errors (1200-1299)
	ErrCodeActivationFailure = "INTEGRATION_1201"

	// Component lifecycle errors (1300-1399)
	ErrCodeNotActive      = "COMPONENT_1301"
	ErrCodeComponentBuild = "COMPONENT_1302"
	ErrCodeComponentClose = "COMPONENT_1303"

	// Settings errors (1400-1499)
	ErrCodeSettingsNotFound = "SETTINGS_1401"
	ErrCodeSettingsParse    = "SETTINGS_1402"
	ErrCodeSettingsFile     = "SETTINGS_1403"

	// Watcher errors (1500-1599)
	ErrCodeWatcherError = "WATCHER_1501"
)

// Configuration option error constructors

func NewDuplicateOptionError(namespace, name string) *errors.Error {
	return errors.New(ErrCodeDuplicateOption, "Duplicate option").
		WithUserMessage("Option names must be unique within a namespace").
		WithContext("namespace", namespace).
		WithContext("option", name).
		WithSeverity("error")
}

func NewUnknownOptionError(namespace, name string) *errors.Error {
	return errors.New(ErrCodeUnknownOption, "Unknown option").
		WithUserMessage("The requested option is not defined").
		WithContext("namespace", namespace).
		WithContext("option", name).
		WithSeverity("error")
}

func NewInvalidOptionValueError(namespace, name string, value any, cause error) *errors.Error {
	msg := "Invalid option value"
	if cause == nil {
		return errors.New(ErrCodeInvalidOptionValue, msg).
			WithUserMessage("The option value was rejected by its validator").
			WithContext("namespace", namespace).
			WithContext("option", name).
			WithContext("value", value).
			WithSeverity("error")
	}
	return errors.Wrap(cause, ErrCodeInvalidOptionValue, msg).
		WithUserMessage("The option value was rejected by its validator").
		WithContext("namespace", namespace).
		WithContext("option", name).
		WithContext("value", value).
		WithSeverity("error")
}

func NewEnvKeyConflictError(envKey, claimedBy, requestedBy string) *errors.Error {
	return errors.New(ErrCodeEnvKeyConflict, "Environment variable already claimed").
		WithUserMessage("Each environment variable may back only one option").
		WithContext("env_key", envKey).
		WithContext("claimed_by", claimedBy).
		WithContext("requested_by", requestedBy).
		WithSeverity("error")
}

// Registry error constructors

func NewDuplicateIntegrationError(name string) *errors.Error {
	return errors.New(ErrCodeDuplicateIntegration, "Duplicate integration").
		WithUserMessage("Integration names must be unique within the registry").
		WithContext("integration", name).
		WithSeverity("error")
}

func NewInvalidDescriptorError(name, reason string) *errors.Error {
	return errors.New(ErrCodeInvalidDescriptor, "Invalid integration descriptor: "+reason).
		WithUserMessage("The integration descriptor is incomplete").
		WithContext("integration", name).
		WithSeverity("error")
}

// NewIncompatibleVersionError is produced during eligibility checks only.
// The resolver logs it and skips the descriptor.
func NewIncompatibleVersionError(name, version, constraint string) *errors.Error {
	return errors.New(ErrCodeIncompatibleVersion, "Incompatible library version").
		WithUserMessage("The installed library version is not supported").
		WithContext("integration", name).
		WithContext("version", version).
		WithContext("constraint", constraint).
		WithSeverity("info")
}

func NewInvalidConstraintError(constraint string, cause error) *errors.Error {
	if cause == nil {
		return errors.New(ErrCodeInvalidConstraint, "Invalid version constraint").
			WithUserMessage("The version constraint could not be parsed").
			WithContext("constraint", constraint).
			WithSeverity("error")
	}
	return errors.Wrap(cause, ErrCodeInvalidConstraint, "Invalid version constraint").
		WithUserMessage("The version constraint could not be parsed").
		WithContext("constraint", constraint).
		WithSeverity("error")
}

// Activation error constructors

func NewActivationFailure(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeActivationFailure, "Integration activation failed").
		WithUserMessage("The integration could not be activated").
		WithContext("integration", name).
		WithSeverity("warning")
}

// Component lifecycle error constructors

func NewNotActiveError(component string) *errors.Error {
	return errors.New(ErrCodeNotActive, "Component not active").
		WithUserMessage("The component is disabled or has been shut down").
		WithContext("component", component).
		WithSeverity("error")
}

func NewComponentBuildError(component string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeComponentBuild, "Component build failed").
		WithUserMessage("The component could not be created").
		WithContext("component", component).
		WithSeverity("error")
}

func NewComponentCloseError(component string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeComponentClose, "Component shutdown failed").
		WithUserMessage("The component did not release its resources cleanly").
		WithContext("component", component).
		WithSeverity("warning")
}

// Settings error constructors

func NewSettingsNotFoundError(path string) *errors.Error {
	return errors.New(ErrCodeSettingsNotFound, "Settings file not found").
		WithUserMessage("The settings file could not be found").
		WithContext("settings_path", path).
		WithSeverity("error")
}

func NewSettingsParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSettingsParse, "Settings parse error").
		WithUserMessage("Failed to parse settings file").
		WithContext("settings_path", path).
		WithSeverity("error")
}

func NewSettingsFileError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeSettingsFile, "Settings file error").
		WithUserMessage("Settings file access failed").
		WithContext("settings_path", path).
		WithSeverity("error")
}

// Watcher error constructors

func NewWatcherError(message string, cause error) *errors.Error {
	if cause == nil {
		return errors.New(ErrCodeWatcherError, "Settings watcher error: "+message).
			WithUserMessage("Settings monitoring failed").
			WithSeverity("error")
	}
	return errors.Wrap(cause, ErrCodeWatcherError, "Settings watcher error: "+message).
		WithUserMessage("Settings monitoring failed").
		WithSeverity("error")
}

// HasErrorCode reports whether err, or any error it wraps, is a structured
// error carrying the given code.
func HasErrorCode(err error, code errors.ErrorCode) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if HasErrorCode(e, code) {
				return true
			}
		}
		return false
	}
	for err != nil {
		var structured *errors.Error
		if !stderrors.As(err, &structured) {
			return false
		}
		if structured.ErrorCode() == code {
			return true
		}
		err = structured.Cause
	}
	return false
}
