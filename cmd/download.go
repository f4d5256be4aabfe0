// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cmd

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/dforsi/qdmr/internal/document"
	"github.com/dforsi/qdmr/internal/store"
	"github.com/dforsi/qdmr/radio"
)

func newDownloadCmd(a *app) *cobra.Command {
	var output, saveImage string
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Read the codeplug from the radio and write it as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			conn, err := a.connect()
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, conn.close()) }()

			obs := &transferObserver{}
			if err := conn.session.Download(cmd.Context(), radio.Blocking, obs); err != nil {
				return err
			}
			if obs.result == nil {
				return errors.New("download finished without a result")
			}

			if saveImage != "" {
				snap := store.TakeSnapshot(conn.driver.Info().Key, obs.result.Image)
				if err := store.WriteSnapshot(saveImage, snap); err != nil {
					return err
				}
				slog.Info("Saved codeplug image", "path", saveImage)
			}

			data, err := document.Marshal(obs.result.Config)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Write the configuration to this file")
	cmd.Flags().StringVar(&saveImage, "save-image", "", "Also save the raw codeplug image to this file")
	return cmd
}
