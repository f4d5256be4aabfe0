// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package cmd

import (
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dforsi/qdmr/internal/emulator"
	"github.com/dforsi/qdmr/models"
	"github.com/dforsi/qdmr/transport/tcp"
)

func newEmulateCmd(a *app) *cobra.Command {
	var listen []string
	cmd := &cobra.Command{
		Use:   "emulate",
		Short: "Serve an emulated radio to programmers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ec := a.cfg.Emulator
			if ec.Model == "" {
				return errors.New("no radio model given, use --model or emulator.model")
			}
			d, err := models.Lookup(ec.Model)
			if err != nil {
				return err
			}

			var listeners []emulator.Listener
			for _, lc := range ec.Listeners {
				l, err := emulator.NewListener(lc)
				if err != nil {
					return err
				}
				listeners = append(listeners, l)
			}
			for _, addr := range listen {
				listeners = append(listeners, tcp.NewServer(addr))
			}
			if len(listeners) == 0 {
				return errors.New("no listeners configured, use --listen or emulator.listeners")
			}

			dev, err := newDevice(d, ec.Storage)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			slog.Info("Starting radio emulator...", "model", dev.Name(), "listeners", len(listeners))
			err = emulator.New(dev, listeners...).Start(ctx)
			slog.Info("Goodbye.")
			return err
		},
	}
	cmd.Flags().StringSliceVarP(&listen, "listen", "l", nil, "Also listen for programmers on this TCP address")
	return cmd
}
