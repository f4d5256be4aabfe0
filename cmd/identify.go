// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newIdentifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Determine the frequency variant of the connected radio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			conn, err := a.connect()
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, conn.close()) }()

			p, err := conn.session.Identify(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, p.Name())
			for _, r := range p.FrequencyRanges() {
				fmt.Fprintf(out, "  %s\n", r)
			}
			return nil
		},
	}
}
