// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package cmd implements the qdmr command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dforsi/qdmr/internal/config"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	configFile string
	cfg        *config.Config
	logFile    io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "qdmr",
		Short:         "Program the codeplug of DMR radios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logFile = setupLogger(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.logFile != nil {
				return a.logFile.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to config file")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Log to this file instead of stderr")
	flags.StringP("model", "m", "", "Radio model, see the info command")
	flags.StringP("transport", "t", "", "How to reach the radio: serial, tcp, virtual")
	flags.StringP("device", "d", "", "Serial device of the radio")
	flags.Int("baud-rate", 0, "Baud rate of the serial device")
	flags.String("address", "", "Address of the radio for the tcp transport")
	flags.String("image", "", "Image file of the virtual radio")
	flags.Duration("timeout", 0, "Timeout of a single request")

	root.AddCommand(
		newDownloadCmd(a),
		newUploadCmd(a),
		newIdentifyCmd(a),
		newInfoCmd(a),
		newEmulateCmd(a),
	)
	return root
}

// Execute runs the command line and exits on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogger installs the default logger. The returned closer is non-nil if
// a log file was opened.
func setupLogger(cfg config.LogConfig, console io.Writer) io.Closer {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var closer io.Closer
	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(console, "Failed to open log file, falling back to stderr: %v\n", err)
			handler = slog.NewTextHandler(console, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
			closer = f
		}
	} else {
		handler = slog.NewTextHandler(console, opts)
	}
	slog.SetDefault(slog.New(handler))
	return closer
}
