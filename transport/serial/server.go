// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package serial

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dforsi/qdmr/internal/config"
	"github.com/dforsi/qdmr/transport/link"
)

// Server answers programming requests arriving on a serial line, e.g. one
// end of a pseudo terminal pair.
type Server struct {
	Config config.SerialConfig
}

// NewServer creates a new serial Server.
func NewServer(cfg config.SerialConfig) *Server {
	return &Server{Config: cfg}
}

// Start serves requests until ctx is done.
func (s *Server) Start(ctx context.Context, handler link.Handler) error {
	p := newPort(s.Config)
	p.IdleTimeout = 0
	if err := p.open(ctx); err != nil {
		return err
	}
	defer p.Close()
	slog.Info("Serial server listening", "device", s.Config.Device)

	go func() {
		<-ctx.Done()
		p.Close()
	}()

	return link.Serve(ctx, &patientReader{ctx: ctx, port: p}, handler)
}

// patientReader keeps waiting across read timeouts of the port.
type patientReader struct {
	ctx  context.Context
	port *port
}

func (r *patientReader) Read(b []byte) (int, error) {
	for {
		n, err := r.port.Read(b)
		if n > 0 || err == nil || r.ctx.Err() != nil || !isTimeout(err) {
			return n, err
		}
	}
}

func (r *patientReader) Write(b []byte) (int, error) {
	return r.port.Write(b)
}

func isTimeout(err error) bool {
	return strings.Contains(err.Error(), "timeout")
}
