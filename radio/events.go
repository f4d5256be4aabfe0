// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package radio

import (
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
)

// State of a session.
type State int

const (
	Idle State = iota
	Downloading
	Uploading
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Downloading:
		return "downloading"
	case Uploading:
		return "uploading"
	case Error:
		return "error"
	}
	return "unknown"
}

// Event is reported to the observer of a transfer.
//
// Every transfer reports Started, any number of Progress events and ends with
// either Finished followed by Complete, or a single Failed. The terminal events
// are reported after the session left the transfer state, so an observer may
// start the next transfer from them.
type Event interface {
	event()
}

// Started is the first event of a transfer.
type Started struct {
	Op string // "download" or "upload"
}

// Progress reports the fraction of transferred blocks. It never decreases and
// reaches exactly 1 once.
type Progress struct {
	Fraction float64
	Done     int
	Total    int
}

// Finished reports that the device has been released.
type Finished struct{}

// Complete carries the result of a successful transfer.
type Complete struct {
	Config *model.Config
	Image  *memory.Image
}

// Failed reports the error ending a transfer.
type Failed struct {
	Err error
}

func (Started) event()  {}
func (Progress) event() {}
func (Finished) event() {}
func (Complete) event() {}
func (Failed) event()   {}

// Observer receives the events of a transfer. In concurrent mode it is called
// from the worker goroutine.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

type discard struct{}

func (discard) Notify(Event) {}
