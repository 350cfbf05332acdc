// resolve.go: instrumentctl resolve
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	integrations "github.com/agilira/go-integrations"
)

func newResolveCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the integrations eligible for activation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := s.load()
			if err != nil {
				return err
			}
			registry := in.agent.Registry()
			candidates := registry.ResolveEligible(in.libraries, in.settings)
			writeCandidates(cmd.OutOrStdout(), candidates)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d of %d integrations eligible\n", len(candidates), registry.Len())
			return err
		},
	}
}

func writeCandidates(w io.Writer, candidates []integrations.Candidate) {
	for _, c := range candidates {
		fmt.Fprintf(w, "%s@%s (%s)\n", c.Name(), c.Version, c.Descriptor.ConstraintString())
		values := c.Config.Map()
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s = %s\n", name, formatValue(values[name]))
		}
	}
}

func formatValue(v any) string {
	if str, ok := v.(string); ok {
		return fmt.Sprintf("%q", str)
	}
	return fmt.Sprint(v)
}
