// serve.go: instrumentctl serve-health
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	integrations "github.com/agilira/go-integrations"
)

func newServeHealthCmd(s *session) *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve-health",
		Short: "Activate integrations and serve their state over gRPC health checking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := s.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveHealth(ctx, cmd, in, s.settingsPath(), addr, watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:50051", "Listen address of the health service.")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload settings when the settings file changes.")
	return cmd
}

func serveHealth(ctx context.Context, cmd *cobra.Command, in *inputs, settingsPath, addr string, watch bool) error {
	agent := in.agent
	agent.RegisterExitHook()
	defer func() {
		if err := agent.Shutdown(); err != nil {
			in.logger.Warn("Shutdown reported errors", "error", err)
		}
	}()

	report, err := agent.Start(in.libraries, in.settings)
	if err != nil {
		in.logger.Error("Component start failed", "error", err)
	}
	writeReport(cmd.OutOrStdout(), report)

	if watch {
		if settingsPath == "" {
			return fmt.Errorf("--watch requires --settings")
		}
		watcher := integrations.NewSettingsWatcher(settingsPath, agent.ReloadFunc(), integrations.SettingsWatcherOptions{}, in.logger)
		if err := watcher.Start(); err != nil {
			return err
		}
		defer func() { _ = watcher.Stop() }()
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "serving health on %s\n", lis.Addr())
	return agent.Health().Serve(ctx, lis)
}
