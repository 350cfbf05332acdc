// session.go: Shared loading of settings, libraries and environment
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"github.com/spf13/viper"

	integrations "github.com/agilira/go-integrations"
	"github.com/agilira/go-integrations/appsec"
	"github.com/agilira/go-integrations/contrib/lograge"
	"github.com/agilira/go-integrations/contrib/mailer"
	"github.com/agilira/go-integrations/contrib/semanticlogger"
)

type session struct {
	v    *viper.Viper
	opts Options
}

func (s *session) logger() integrations.Logger {
	return integrations.NewCharmLogger(s.opts.Err, s.v.GetString("log-level"))
}

func (s *session) environment() (integrations.Environment, error) {
	var base integrations.Environment = integrations.OSEnvironment{}
	if s.opts.Environment != nil {
		base = s.opts.Environment
	}

	path := s.v.GetString("env-file")
	if path == "" {
		return base, nil
	}
	dotenv, err := integrations.LoadDotenv(path)
	if err != nil {
		return nil, err
	}
	return integrations.LayeredEnvironment{base, dotenv}, nil
}

func (s *session) settingsPath() string {
	return s.v.GetString("settings")
}

func (s *session) settings() (integrations.Settings, error) {
	path := s.settingsPath()
	if path == "" {
		return integrations.Settings{}, nil
	}
	return integrations.LoadSettings(path)
}

func (s *session) libraries() (integrations.Libraries, error) {
	path := s.v.GetString("libraries")
	if path == "" {
		return integrations.LibrariesFromBuildInfo(), nil
	}
	return integrations.LoadLibraries(path)
}

// inputs bundles everything a command needs to run the agent.
type inputs struct {
	logger    integrations.Logger
	libraries integrations.Libraries
	settings  integrations.Settings
	agent     *integrations.Agent
}

func (s *session) load() (*inputs, error) {
	logger := s.logger()

	env, err := s.environment()
	if err != nil {
		return nil, err
	}
	settings, err := s.settings()
	if err != nil {
		return nil, err
	}
	libs, err := s.libraries()
	if err != nil {
		return nil, err
	}

	agent := integrations.NewAgent(integrations.AgentConfig{
		Environment: env,
		Tracer:      integrations.NewEventBus(logger),
		Logger:      logger,
		Components:  []integrations.ComponentBuilder{appsec.NewBuilder(logger)},
	})
	if err := agent.Registry().Register(mailer.Descriptor()); err != nil {
		return nil, err
	}
	if err := agent.Registry().Register(lograge.Descriptor()); err != nil {
		return nil, err
	}
	if err := agent.Registry().Register(semanticlogger.Descriptor()); err != nil {
		return nil, err
	}

	return &inputs{logger: logger, libraries: libs, settings: settings, agent: agent}, nil
}
