// env_test.go: tests for environment sources and boolean parsing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvBool(t *testing.T) {
	for raw, want := range map[string]bool{
		"true": true, "True": true, "1": true, " 1 ": true,
		"false": false, "0": false, "no": false, "on": false, "": false,
	} {
		assert.Equal(t, want, ParseEnvBool(raw), "raw=%q", raw)
	}
}

func TestEnvBool(t *testing.T) {
	env := MapEnvironment{"A": "true", "B": "0", "C": "junk"}
	assert.True(t, EnvBool(env, "A", false))
	assert.False(t, EnvBool(env, "B", true))
	assert.False(t, EnvBool(env, "C", true))
	assert.True(t, EnvBool(env, "MISSING", true))
	assert.False(t, EnvBool(nil, "A", false))
}

func TestLayeredEnvironment(t *testing.T) {
	env := LayeredEnvironment{
		nil,
		MapEnvironment{"A": "first"},
		MapEnvironment{"A": "second", "B": "only-second"},
	}
	v, ok := env.LookupEnv("A")
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = env.LookupEnv("B")
	assert.True(t, ok)
	assert.Equal(t, "only-second", v)

	_, ok = env.LookupEnv("C")
	assert.False(t, ok)
}

func TestOSEnvironment(t *testing.T) {
	t.Setenv("INTEGRATIONS_TEST_VAR", "1")
	v, ok := OSEnvironment{}.LookupEnv("INTEGRATIONS_TEST_VAR")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "base.env")
	second := filepath.Join(dir, "local.env")
	require.NoError(t, os.WriteFile(first, []byte("DD_TRACE_LOGRAGE_ENABLED=false\nSERVICE=web\n"), 0600))
	require.NoError(t, os.WriteFile(second, []byte("# local overrides\nSERVICE=api\n"), 0600))

	env, err := LoadDotenv(first, second)
	require.NoError(t, err)
	assert.Equal(t, MapEnvironment{"DD_TRACE_LOGRAGE_ENABLED": "false", "SERVICE": "api"}, env)

	_, present := os.LookupEnv("SERVICE")
	assert.False(t, present, "dotenv files must not touch the process environment")

	_, err = LoadDotenv(filepath.Join(dir, "missing.env"))
	require.Error(t, err)
	assert.True(t, HasErrorCode(err, ErrCodeSettingsFile))
}
