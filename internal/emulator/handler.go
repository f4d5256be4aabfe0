// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package emulator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/protocol"
)

// Handle executes a protocol request against the device.
func (d *Device) Handle(ctx context.Context, req *protocol.Frame) *protocol.Frame {
	bank := memory.Bank(req.Bank)
	var (
		data []byte
		err  error
	)
	switch req.Command {
	case protocol.CmdIdentify:
		data = []byte(d.name)
	case protocol.CmdReadStart:
		err = d.ReadStart(bank, req.Address)
	case protocol.CmdRead:
		data, err = d.Read(bank, req.Address, int(req.Length))
	case protocol.CmdReadFinish:
		err = d.ReadFinish()
	case protocol.CmdWriteStart:
		err = d.WriteStart(bank, req.Address)
	case protocol.CmdWrite:
		err = d.Write(bank, req.Address, req.Payload)
	case protocol.CmdWriteFinish:
		err = d.WriteFinish()
	case protocol.CmdReboot:
		err = d.Reboot()
	default:
		err = fmt.Errorf("illegal command 0x%02x", req.Command)
	}
	if err != nil {
		slog.Debug("Request failed", "device", d.name, "cmd", protocol.CommandName(req.Command), "bank", bank, "addr", req.Address, "err", err)
		return req.Fail(err)
	}
	return req.Reply(data)
}
