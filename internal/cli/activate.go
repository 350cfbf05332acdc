// activate.go: instrumentctl activate
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	integrations "github.com/agilira/go-integrations"
	"github.com/agilira/go-integrations/appsec"
)

func newActivateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Activate eligible integrations and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := s.load()
			if err != nil {
				return err
			}

			report, startErr := in.agent.Start(in.libraries, in.settings)
			out := cmd.OutOrStdout()
			writeReport(out, report)

			component := "inactive"
			if _, ok := in.agent.Components().Get(appsec.ComponentName); ok {
				component = "active"
			}
			fmt.Fprintf(out, "%s: %s\n", appsec.ComponentName, component)

			if err := in.agent.Shutdown(); err != nil {
				in.logger.Warn("Shutdown reported errors", "error", err)
			}
			if startErr != nil {
				return startErr
			}
			if n := len(report.Failures()); n > 0 {
				return fmt.Errorf("%d integration(s) failed to activate", n)
			}
			return nil
		},
	}
}

func writeReport(w io.Writer, report integrations.ActivationReport) {
	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s@%s: %s: %v\n", r.Name, r.Version, r.State, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s@%s: %s\n", r.Name, r.Version, r.State)
	}
}
