// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package link

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/dforsi/qdmr/protocol"
)

// Handler answers a request. It returns an error response built with
// Frame.Fail on failure.
type Handler func(ctx context.Context, req *protocol.Frame) *protocol.Frame

// Serve answers requests read from rw until the stream ends or ctx is done.
// Frames with a bad CRC are dropped without an answer.
func Serve(ctx context.Context, rw io.ReadWriter, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		raw, err := protocol.ReadRequest(rw)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			var le *protocol.InvalidLengthError
			if errors.As(err, &le) {
				slog.Warn("Dropping request", "err", err)
				continue
			}
			return err
		}

		req, err := protocol.Decode(raw)
		if err != nil {
			slog.Warn("Dropping request", "err", err)
			continue
		}

		resp, err := handler(ctx, req).Encode()
		if err != nil {
			slog.Error("Failed to encode response", "err", err)
			continue
		}
		if _, err := rw.Write(resp); err != nil {
			return err
		}
	}
}
