// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/internal/document"
	"github.com/dforsi/qdmr/model"
	"github.com/dforsi/qdmr/radio"
)

func newUploadCmd(a *app) *cobra.Command {
	var (
		input    string
		regions  string
		identify bool
		flags    codec.Flags
	)
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Write a YAML configuration to the radio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			mask, err := codec.ParseRegionMask(regions)
			if err != nil {
				return err
			}
			flags.Regions = mask

			cfg, err := readDocument(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			conn, err := a.connect()
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, conn.close()) }()

			if identify {
				if _, err := conn.session.Identify(cmd.Context()); err != nil {
					return err
				}
			}
			return conn.session.Upload(cmd.Context(), radio.Blocking, cfg, flags, &transferObserver{})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Read the configuration from this file")
	cmd.Flags().StringVar(&regions, "regions", "", "Only write these categories, e.g. channels,zones")
	cmd.Flags().BoolVar(&flags.UpdateOnly, "update-only", false, "Keep the radio's content of records that are not described")
	cmd.Flags().BoolVar(&flags.AutoEnableGPS, "auto-gps", false, "Enable the GPS if a channel uses a positioning system")
	cmd.Flags().BoolVar(&identify, "identify", false, "Identify the variant first and check the frequencies against it")
	return cmd
}

func readDocument(path string, stdin io.Reader) (*model.Config, error) {
	if path != "" && path != "-" {
		return document.Load(path)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, err
	}
	return document.Parse(data)
}
