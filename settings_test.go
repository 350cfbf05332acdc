// settings_test.go: tests for settings loading and overrides
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agilira/argus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSettings = `
security_enabled: true
security:
  audit_file: /tmp/appsec-audit.jsonl
  rules:
    - id: custom-1
      pattern: "(?i)drop\\s+table"
      targets: [http.body]
integrations:
  mailer:
    enabled: false
  lograge:
    options:
      service_name: web
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadSettings_YAML(t *testing.T) {
	s, err := LoadSettings(writeFile(t, "agent.yaml", yamlSettings))
	require.NoError(t, err)

	assert.True(t, s.SecurityEnabled)
	assert.Equal(t, "/tmp/appsec-audit.jsonl", s.Security.AuditFile)
	require.Len(t, s.Security.Rules, 1)
	assert.Equal(t, "custom-1", s.Security.Rules[0].ID)
	assert.Equal(t, []string{"http.body"}, s.Security.Rules[0].Targets)

	assert.Equal(t, map[string]any{EnabledOption: false}, s.OverridesFor("mailer"))
	assert.Equal(t, map[string]any{"service_name": "web"}, s.OverridesFor("lograge"))
	assert.Nil(t, s.OverridesFor("absent"))
}

func TestLoadSettings_JSON(t *testing.T) {
	path := writeFile(t, "agent.json", `{"security_enabled": false, "integrations": {"mailer": {"enabled": true, "options": {"service_name": "mail"}}}}`)
	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.False(t, s.SecurityEnabled)
	assert.Equal(t, map[string]any{EnabledOption: true, "service_name": "mail"}, s.OverridesFor("mailer"))
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeSettingsNotFound))

	_, err = LoadSettings(writeFile(t, "broken.yaml", "integrations: [unterminated"))
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeSettingsParse))

	_, err = ParseSettings([]byte("{"), argus.FormatJSON, "inline.json")
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeSettingsParse))
}

func TestSettings_WithIntegrationCopies(t *testing.T) {
	base := Settings{}.WithIntegration("a", IntegrationSettings{Enabled: Bool(true)})
	derived := base.WithIntegration("b", IntegrationSettings{Enabled: Bool(false)})

	assert.Len(t, base.Integrations, 1)
	assert.Len(t, derived.Integrations, 2)
	assert.Equal(t, map[string]any{EnabledOption: false}, derived.OverridesFor("b"))
}
