// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package protocol

const (
	HeaderSize = 8
	CRCSize    = 2

	// MaxPayload is the largest block a frame can carry.
	MaxPayload = 1024
	MinSize    = HeaderSize + CRCSize
	MaxSize    = MinSize + MaxPayload
)

// Command codes
const (
	CmdIdentify = 0x01

	CmdReadStart  = 0x10
	CmdRead       = 0x11
	CmdReadFinish = 0x12

	CmdWriteStart  = 0x20
	CmdWrite       = 0x21
	CmdWriteFinish = 0x22

	CmdReboot = 0x30

	// FlagError is set in the command byte of a response that reports a failure.
	// The payload carries the reason as text.
	FlagError = 0x80
)

// CommandName returns a printable name of the command code.
func CommandName(cmd byte) string {
	switch cmd &^ FlagError {
	case CmdIdentify:
		return "identify"
	case CmdReadStart:
		return "read start"
	case CmdRead:
		return "read"
	case CmdReadFinish:
		return "read finish"
	case CmdWriteStart:
		return "write start"
	case CmdWrite:
		return "write"
	case CmdWriteFinish:
		return "write finish"
	case CmdReboot:
		return "reboot"
	}
	return "unknown"
}

// Known reports whether cmd is a valid request command.
func Known(cmd byte) bool {
	return CommandName(cmd) != "unknown" && cmd&FlagError == 0
}
