// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dforsi/qdmr/models"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [model]",
		Short: "List the supported radio models and their capacities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := models.Keys()
			if len(args) == 1 {
				keys = args
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tNAME\tBLOCK\tIMAGE\tCHANNELS\tZONES\tCONTACTS\tMODES")
			for _, key := range keys {
				d, err := models.Lookup(key)
				if err != nil {
					return err
				}
				f := d.DefaultProfile().Features()
				var modes []string
				if f.HasAnalog {
					modes = append(modes, "analog")
				}
				if f.HasDigital {
					modes = append(modes, "digital")
				}
				if f.HasGPS {
					modes = append(modes, "gps")
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
					key, d.Info(), d.BlockSize(), d.Codeplug().NewImage().Size(),
					f.MaxChannels, f.MaxZones, f.MaxContacts, strings.Join(modes, ","))
			}
			return w.Flush()
		},
	}
}
