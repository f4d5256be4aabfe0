// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package radio

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/dforsi/qdmr/codec"
	"github.com/dforsi/qdmr/limits"
	"github.com/dforsi/qdmr/memory"
	"github.com/dforsi/qdmr/model"
	"github.com/dforsi/qdmr/transport"
	"go.uber.org/multierr"
)

// Session runs transfers between one radio and the configuration graph.
// Only one transfer runs at a time; the transport is owned by the running
// transfer between open and close.
type Session struct {
	driver    Driver
	transport transport.Transport
	codeplug  *codec.Codeplug
	logger    *slog.Logger

	mu         sync.Mutex
	state      State
	profile    limits.Profile
	identified bool
	job        *job
	err        error

	// connected is owned by the running transfer.
	connected bool
}

// job is one transfer. done is closed after its terminal event was delivered.
type job struct {
	done chan struct{}
	err  error
}

// NewSession creates an idle session.
func NewSession(driver Driver, t transport.Transport, opts ...Option) *Session {
	if driver == nil || t == nil {
		panic("driver and transport cannot be nil")
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{
		driver:    driver,
		transport: t,
		codeplug:  driver.Codeplug(),
		logger:    o.logger.With("radio", driver.Info().String()),
		profile:   driver.DefaultProfile(),
	}
	if o.profile != nil {
		s.profile = *o.profile
		s.identified = true
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Profile returns the capability profile used for uploads.
func (s *Session) Profile() limits.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Err returns the error of the last transfer, nil unless in the error state.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Reset leaves the error state.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Downloading, Uploading:
		return ErrBusy
	case Error:
		s.state = Idle
		s.err = nil
	}
	return nil
}

// Wait blocks until the latest transfer has delivered its terminal event and
// returns its error.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	j := s.job
	s.mu.Unlock()
	if j == nil {
		return nil
	}
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) begin(state State) (*job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return nil, ErrBusy
	}
	s.state = state
	s.err = nil
	s.job = &job{done: make(chan struct{})}
	return s.job, nil
}

// end leaves the transfer state. The session accepts the next transfer
// afterwards, even before the observer saw the terminal event.
func (s *Session) end(j *job, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Error
		s.err = err
	} else {
		s.state = Idle
	}
	j.err = err
}

// run executes fn in the requested mode and reports the terminal events once
// the session left the transfer state. In blocking mode the transfer error is
// returned, in concurrent mode it is available from Wait.
func (s *Session) run(ctx context.Context, j *job, mode Mode, op string, obs Observer,
	fn func(context.Context, Observer) (Complete, error)) error {
	if obs == nil {
		obs = discard{}
	}
	work := func() error {
		defer close(j.done)
		obs.Notify(Started{Op: op})
		result, err := fn(ctx, obs)
		if err != nil {
			err = fmt.Errorf("%s: %w", op, err)
			s.logger.Error(op+" failed", "error", err)
		}
		s.end(j, err)
		if err != nil {
			obs.Notify(Failed{Err: err})
			return err
		}
		obs.Notify(Finished{})
		obs.Notify(result)
		return nil
	}
	if mode == Concurrent {
		go work()
		return nil
	}
	return work()
}

// Download reads the codeplug and decodes it. The result is delivered to obs
// with the Complete event. The first download of a session that was not given
// a profile also classifies the radio from the downloaded image.
func (s *Session) Download(ctx context.Context, mode Mode, obs Observer) error {
	j, err := s.begin(Downloading)
	if err != nil {
		return err
	}
	return s.run(ctx, j, mode, "download", obs, s.download)
}

// Upload encodes cfg and writes it to the radio.
func (s *Session) Upload(ctx context.Context, mode Mode, cfg *model.Config, flags codec.Flags, obs Observer) error {
	if cfg == nil {
		return fmt.Errorf("upload: configuration cannot be nil")
	}
	j, err := s.begin(Uploading)
	if err != nil {
		return err
	}
	return s.run(ctx, j, mode, "upload", obs, func(ctx context.Context, obs Observer) (Complete, error) {
		return s.upload(ctx, cfg, flags, obs)
	})
}

// Identify opens the radio, determines its variant and stores the resulting
// profile for later uploads. It runs in blocking mode and counts as download.
func (s *Session) Identify(ctx context.Context) (limits.Profile, error) {
	j, err := s.begin(Downloading)
	if err != nil {
		return limits.Profile{}, err
	}
	defer close(j.done)
	p, err := func() (limits.Profile, error) {
		if err := s.transport.Open(ctx); err != nil {
			return limits.Profile{}, ioError("open", err)
		}
		defer s.transport.Close()
		return s.identify(ctx, s.transport)
	}()
	if err != nil {
		err = fmt.Errorf("identify: %w", err)
	}
	s.end(j, err)
	return p, err
}

// identify asks the driver for the variant and keeps the result as profile.
func (s *Session) identify(ctx context.Context, t transport.Transport) (limits.Profile, error) {
	p, err := s.driver.Identify(ctx, t, s.logger)
	if err != nil {
		return limits.Profile{}, err
	}
	s.mu.Lock()
	s.profile = p
	s.identified = true
	s.mu.Unlock()
	s.logger.Info("identified radio", "variant", p.Name(), "ranges", len(p.FrequencyRanges()))
	return p, nil
}

type block struct {
	bank memory.Bank
	addr uint32
}

// checkAlignment verifies that every element can be moved in whole blocks.
func (s *Session) checkAlignment(img *memory.Image) error {
	bs := s.driver.BlockSize()
	if tbs := s.transport.BlockSize(); tbs != bs {
		return fmt.Errorf("transport block size %d does not match model block size %d", tbs, bs)
	}
	for _, bank := range img.Banks() {
		for _, e := range img.Elements(bank) {
			if !e.IsAligned(bs) {
				return &AlignmentError{Bank: bank, Address: e.Address(), Size: e.Size(), BlockSize: bs}
			}
		}
	}
	return nil
}

// allBlocks lists every block of the image in bank and address order.
func (s *Session) allBlocks(img *memory.Image) []block {
	bs := s.driver.BlockSize()
	var blocks []block
	for _, bank := range img.Banks() {
		for _, e := range img.Elements(bank) {
			for addr := e.Address(); addr < e.End(); addr += uint32(bs) {
				blocks = append(blocks, block{bank: bank, addr: addr})
			}
		}
	}
	return blocks
}

// regionBlocks lists the blocks covering regions, in bank and address order.
func (s *Session) regionBlocks(img *memory.Image, regions []codec.Region) ([]block, error) {
	bs := s.driver.BlockSize()
	seen := make(map[block]bool)
	var blocks []block
	for _, r := range regions {
		start := memory.AlignAddr(r.Address, bs)
		end := start + uint32(memory.AlignSize(int(r.Address-start)+r.Size, bs))
		for addr := start; addr < end; addr += uint32(bs) {
			b := block{bank: r.Bank, addr: addr}
			if seen[b] {
				continue
			}
			if e, ok := img.Element(r.Bank, addr); !ok || !e.Contains(addr, bs) {
				return nil, fmt.Errorf("region %v is not covered by the image", r)
			}
			seen[b] = true
			blocks = append(blocks, b)
		}
	}
	order := make(map[memory.Bank]int)
	for i, bank := range img.Banks() {
		order[bank] = i
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].bank != blocks[j].bank {
			return order[blocks[i].bank] < order[blocks[j].bank]
		}
		return blocks[i].addr < blocks[j].addr
	})
	return blocks, nil
}

type progress struct {
	obs   Observer
	done  int
	total int
}

func (p *progress) step() {
	p.done++
	p.obs.Notify(Progress{Fraction: float64(p.done) / float64(p.total), Done: p.done, Total: p.total})
}

// finish reports completion for transfers without any block.
func (p *progress) finish() {
	if p.total == 0 {
		p.obs.Notify(Progress{Fraction: 1})
	}
}

// transfer moves blocks in bank groups, framed by start/finish calls. A bank
// interrupted by a failure is still finished before the error is returned.
func (s *Session) transfer(ctx context.Context, img *memory.Image, blocks []block, write bool, p *progress) error {
	bs := s.driver.BlockSize()
	op, start, finish := "read", s.transport.ReadStart, s.transport.ReadFinish
	if write {
		op, start, finish = "write", s.transport.WriteStart, s.transport.WriteFinish
	}
	for i := 0; i < len(blocks); {
		bank := blocks[i].bank
		if err := start(ctx, bank, blocks[i].addr); err != nil {
			return &IoError{Op: op + " start", Bank: bank, Block: int(blocks[i].addr) / bs, Address: blocks[i].addr, Err: err}
		}
		s.logger.Debug(op+" bank", "bank", bank)
		for ; i < len(blocks) && blocks[i].bank == bank; i++ {
			b := blocks[i]
			var err error
			if cerr := ctx.Err(); cerr != nil {
				err = fmt.Errorf("cancelled: %w", cerr)
			} else if berr := s.transferBlock(ctx, img, b, write); berr != nil {
				err = &IoError{Op: op, Bank: b.bank, Block: int(b.addr) / bs, Address: b.addr, Err: berr}
			}
			if err != nil {
				if ferr := finish(context.WithoutCancel(ctx)); ferr != nil {
					s.logger.Debug(op+" finish after failure", "bank", bank, "error", ferr)
				}
				return err
			}
			p.step()
		}
		if err := finish(ctx); err != nil {
			return &IoError{Op: op + " finish", Bank: bank, Block: -1, Err: err}
		}
	}
	return nil
}

func (s *Session) transferBlock(ctx context.Context, img *memory.Image, b block, write bool) error {
	bs := s.driver.BlockSize()
	if write {
		data, err := img.Read(b.bank, b.addr, bs)
		if err != nil {
			return err
		}
		return s.transport.Write(ctx, b.bank, b.addr, data)
	}
	data, err := s.transport.Read(ctx, b.bank, b.addr, bs)
	if err != nil {
		return err
	}
	if len(data) != bs {
		return fmt.Errorf("short read: %d of %d bytes", len(data), bs)
	}
	return img.Write(b.bank, b.addr, data)
}

// open connects the transport and returns a function closing it again if the
// transfer fails before release.
func (s *Session) open(ctx context.Context) (func(*error), error) {
	if err := s.transport.Open(ctx); err != nil {
		return nil, ioError("open", err)
	}
	s.connected = true
	return func(err *error) {
		if *err != nil && s.connected {
			s.connected = false
			s.transport.Close()
		}
	}, nil
}

// release reboots the device and closes the transport.
func (s *Session) release(ctx context.Context) error {
	if err := s.transport.Reboot(ctx); err != nil {
		return ioError("reboot", err)
	}
	s.connected = false
	if err := s.transport.Close(); err != nil {
		return ioError("close", err)
	}
	return nil
}

func (s *Session) download(ctx context.Context, obs Observer) (_ Complete, err error) {
	img := s.codeplug.NewImage()
	if err := s.checkAlignment(img); err != nil {
		return Complete{}, err
	}
	blocks := s.allBlocks(img)

	closeOnError, err := s.open(ctx)
	if err != nil {
		return Complete{}, err
	}
	defer closeOnError(&err)

	s.logger.Info("download started", "blocks", len(blocks), "bytes", img.Size())
	p := &progress{obs: obs, total: len(blocks)}
	if err := s.transfer(ctx, img, blocks, false, p); err != nil {
		return Complete{}, err
	}
	p.finish()
	if err := s.release(ctx); err != nil {
		return Complete{}, err
	}

	cfg, err := s.codeplug.Decode(img)
	if err != nil {
		return Complete{}, err
	}
	s.mu.Lock()
	identified := s.identified
	s.mu.Unlock()
	if !identified {
		if _, err := s.identify(ctx, &replay{img: img, blockSize: s.driver.BlockSize()}); err != nil {
			s.logger.Warn("cannot classify radio from download", "error", err)
		}
	}
	s.logger.Info("download complete", "channels", len(cfg.Channels), "contacts", len(cfg.Contacts))
	return Complete{Config: cfg, Image: img}, nil
}

func (s *Session) upload(ctx context.Context, cfg *model.Config, flags codec.Flags, obs Observer) (_ Complete, err error) {
	profile := s.Profile()
	if err := multierr.Combine(cfg.Validate(), profile.Validate(cfg)); err != nil {
		return Complete{}, fmt.Errorf("validate for %s: %w", profile.Name(), err)
	}
	if err := s.codeplug.Validate(cfg, flags); err != nil {
		return Complete{}, err
	}

	img := s.codeplug.NewImage()
	if err := s.checkAlignment(img); err != nil {
		return Complete{}, err
	}
	blocks := s.allBlocks(img)
	if flags.Regions.Partial() {
		if blocks, err = s.regionBlocks(img, s.codeplug.Regions(flags.Regions)); err != nil {
			return Complete{}, err
		}
	}
	readFirst := flags.UpdateOnly || flags.Regions.Partial()

	closeOnError, err := s.open(ctx)
	if err != nil {
		return Complete{}, err
	}
	defer closeOnError(&err)

	total := len(blocks)
	if readFirst {
		total *= 2
	}
	s.logger.Info("upload started", "blocks", len(blocks), "update", readFirst, "regions", flags.Regions)
	p := &progress{obs: obs, total: total}
	if readFirst {
		if err := s.transfer(ctx, img, blocks, false, p); err != nil {
			return Complete{}, err
		}
	}
	if err := s.codeplug.Encode(cfg, flags, img); err != nil {
		return Complete{}, err
	}
	if err := s.transfer(ctx, img, blocks, true, p); err != nil {
		return Complete{}, err
	}
	p.finish()
	if err := s.release(ctx); err != nil {
		return Complete{}, err
	}

	s.logger.Info("upload complete")
	return Complete{Config: cfg, Image: img}, nil
}
