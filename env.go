// env.go: Environment sources for option resolution
//
// The core never reads ambient process state on its own. Hosts pass an
// Environment explicitly; OSEnvironment is the boundary adapter for the
// real process environment.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment looks up raw environment values by key.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

// OSEnvironment reads from the process environment.
type OSEnvironment struct{}

// LookupEnv implements Environment.
func (OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnvironment is a fixed set of environment values.
type MapEnvironment map[string]string

// LookupEnv implements Environment.
func (m MapEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// LayeredEnvironment consults each layer in order; the first hit wins.
type LayeredEnvironment []Environment

// LookupEnv implements Environment.
func (l LayeredEnvironment) LookupEnv(key string) (string, bool) {
	for _, env := range l {
		if env == nil {
			continue
		}
		if v, ok := env.LookupEnv(key); ok {
			return v, true
		}
	}
	return "", false
}

// LoadDotenv reads one or more dotenv files into a MapEnvironment without
// touching the process environment. Later files override earlier ones.
func LoadDotenv(paths ...string) (MapEnvironment, error) {
	env := make(MapEnvironment)
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, NewSettingsFileError(path, err)
		}
		for k, v := range values {
			env[k] = v
		}
	}
	return env, nil
}

// ParseEnvBool applies the boolean convention for environment overrides:
// "true" and "1" are true, everything else (including "false" and "0") is
// false. Matching is case-insensitive and ignores surrounding whitespace.
func ParseEnvBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// EnvBool reads key from env using ParseEnvBool, returning fallback when the
// key is absent.
func EnvBool(env Environment, key string, fallback bool) bool {
	if env == nil {
		return fallback
	}
	raw, ok := env.LookupEnv(key)
	if !ok {
		return fallback
	}
	return ParseEnvBool(raw)
}
