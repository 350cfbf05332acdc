// root.go: instrumentctl command tree
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Package cli implements the instrumentctl commands.
package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	integrations "github.com/agilira/go-integrations"
)

const envPrefix = "INSTRUMENT"

// Options configures the command tree.
type Options struct {
	Out io.Writer
	Err io.Writer
	// Environment backs integration options; nil means the process
	// environment.
	Environment integrations.Environment
}

// NewRootCommand builds the instrumentctl root command.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	v := viper.New()
	cmd := &cobra.Command{
		Use:           "instrumentctl",
		Short:         "Inspect and activate instrumentation integrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			v.SetEnvPrefix(envPrefix)
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
			v.AutomaticEnv()
		},
	}
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.Err)

	flags := cmd.PersistentFlags()
	flags.String("settings", "", "Settings file (YAML or JSON).")
	flags.String("libraries", "", "Library manifest; defaults to the modules of this binary.")
	flags.String("env-file", "", "Dotenv file consulted after the process environment.")
	flags.String("log-level", "warn", "Logging level: debug|info|warn|error.")
	_ = v.BindPFlag("settings", flags.Lookup("settings"))
	_ = v.BindPFlag("libraries", flags.Lookup("libraries"))
	_ = v.BindPFlag("env-file", flags.Lookup("env-file"))
	_ = v.BindPFlag("log-level", flags.Lookup("log-level"))

	s := &session{v: v, opts: opts}
	cmd.AddCommand(newResolveCmd(s))
	cmd.AddCommand(newActivateCmd(s))
	cmd.AddCommand(newServeHealthCmd(s))
	cmd.AddCommand(newCheckCmd())
	return cmd
}
