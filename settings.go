// settings.go: Host settings and settings file loading
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"encoding/json"
	"os"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// Settings is the configuration object a host supplies at the boundary.
//
// Example YAML:
//
//	security_enabled: true
//	security:
//	  audit_file: /var/log/agent/security-audit.jsonl
//	  rules:
//	    - id: sqli-001
//	      pattern: "(?i)union\\s+select"
//	integrations:
//	  mailer:
//	    enabled: true
//	    options:
//	      service_name: billing-mailer
type Settings struct {
	SecurityEnabled bool                           `json:"security_enabled" yaml:"security_enabled"`
	Security        SecuritySettings               `json:"security" yaml:"security"`
	Integrations    map[string]IntegrationSettings `json:"integrations" yaml:"integrations"`
}

// SecuritySettings configures the security-inspection component.
type SecuritySettings struct {
	AuditFile string         `json:"audit_file,omitempty" yaml:"audit_file,omitempty"`
	Rules     []SecurityRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// SecurityRule is one inspection rule.
type SecurityRule struct {
	ID      string `json:"id" yaml:"id"`
	Pattern string `json:"pattern" yaml:"pattern"`
	// Targets restricts the rule to the named request attributes; empty
	// means every attribute.
	Targets []string `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// IntegrationSettings holds user configuration for one integration.
type IntegrationSettings struct {
	Enabled *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// OverridesFor returns the explicit overrides for integration name,
// including "enabled" when it was set.
func (s Settings) OverridesFor(name string) map[string]any {
	is, ok := s.Integrations[name]
	if !ok {
		return nil
	}
	overrides := make(map[string]any, len(is.Options)+1)
	for k, v := range is.Options {
		overrides[k] = v
	}
	if is.Enabled != nil {
		overrides[EnabledOption] = *is.Enabled
	}
	return overrides
}

// WithIntegration returns a copy of s with name's settings replaced.
func (s Settings) WithIntegration(name string, is IntegrationSettings) Settings {
	out := s
	out.Integrations = make(map[string]IntegrationSettings, len(s.Integrations)+1)
	for k, v := range s.Integrations {
		out.Integrations[k] = v
	}
	out.Integrations[name] = is
	return out
}

// Bool returns a pointer to b, for IntegrationSettings.Enabled literals.
func Bool(b bool) *bool {
	return &b
}

// LoadSettings reads a YAML or JSON settings file. The format is detected
// from the file extension; anything that is not JSON is parsed as YAML.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the host configuration
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, NewSettingsNotFoundError(path)
		}
		return Settings{}, NewSettingsFileError(path, err)
	}
	return ParseSettings(data, argus.DetectFormat(path), path)
}

// ParseSettings decodes settings bytes in the given format. path is only
// used for error context.
func ParseSettings(data []byte, format argus.ConfigFormat, path string) (Settings, error) {
	var settings Settings
	switch format {
	case argus.FormatJSON:
		if err := json.Unmarshal(data, &settings); err != nil {
			return Settings{}, NewSettingsParseError(path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, NewSettingsParseError(path, err)
		}
	}
	return settings, nil
}
