package optics

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Poller drives periodic epoch flips against a Registry, normalizes
// every live cell's retired slot, and fans the result out to its
// attached backends. Exactly one poller may be active against a
// Registry at a time; the type does not itself guard against concurrent
// sweeps from two goroutines, matching the single-poller contract the
// epoch manager relies on.
type Poller struct {
	reg        *Registry
	host       string
	backends   []Backend
	graceNanos int64

	kb keyBuilder

	running   atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewPoller creates a Poller against reg. If WithHost is never
// supplied, a random host identifier is generated.
func NewPoller(reg *Registry, opts ...PollerOption) *Poller {
	p := &Poller{
		reg:        reg,
		graceNanos: graceInterval,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.host == "" {
		p.host = randomHostID(reg.rng)
	}
	return p
}

// SetHost changes the host identifier attached to subsequent sweeps.
func (p *Poller) SetHost(host string) {
	p.host = host
}

// SetBackend replaces the poller's backend set with a single backend.
// Passing nil clears all backends.
func (p *Poller) SetBackend(b Backend) error {
	for _, old := range p.backends {
		old.OnFree()
	}
	if b == nil {
		p.backends = nil
		return nil
	}
	p.backends = []Backend{b}
	return nil
}

// AddBackend appends b to the poller's backend set, so a sweep fans out
// to every attached backend.
func (p *Poller) AddBackend(b Backend) error {
	if b == nil {
		return ErrNilBackend
	}
	p.backends = append(p.backends, b)
	return nil
}

// Poll runs one sweep using the registry's clock for the current
// timestamp.
func (p *Poller) Poll() error {
	return p.PollAt(p.reg.clock.Now())
}

// PollAt runs one sweep using ts as the current timestamp, following the
// algorithm: flip, compute elapsed (warning and clamping to 1 on clock
// skew), sleep the straggler grace interval, emit begin, traverse and
// normalize every live cell against the retired epoch, emit done.
func (p *Poller) PollAt(ts int64) error {
	retired, prevTs := p.reg.epoch.flip(ts)

	elapsed := int64(1)
	switch {
	case ts > prevTs:
		elapsed = ts - prevTs
	case ts < prevTs:
		logWarnf(p.reg.logger, "optics: poll ts %d precedes previous flip ts %d, clamping elapsed to 1s", ts, prevTs)
	}

	if p.graceNanos > 0 {
		time.Sleep(time.Duration(p.graceNanos))
	}

	p.emit(EventBegin, nil)

	prefix := p.reg.Prefix()
	pv := &PollValue{Host: p.host, Prefix: prefix, Ts: ts, Elapsed: elapsed}

	err := p.reg.ForEach(func(c *Cell) error {
		return p.pollCell(c, retired, pv)
	})

	p.emit(EventDone, nil)
	return err
}

func (p *Poller) pollCell(c *Cell, retired Epoch, pv *PollValue) error {
	value, err := c.read(retired)
	if err != nil {
		if err == ErrBusy {
			logWarnf(p.reg.logger, "optics: cell %q busy, skipping this sweep", c.name)
			return nil
		}
		logErrorf(p.reg.logger, "optics: reading cell %q: %v", c.name, err)
		return nil
	}

	pos := p.kb.push(p.host)
	defer p.kb.pop(pos)
	namePos := p.kb.push(c.name)
	defer p.kb.pop(namePos)

	pv.Type = c.typ
	pv.TypeTag = c.TypeTag()
	pv.Help = c.Describe()["help"]
	pv.Value = value
	pv.Meta = p.reg.Meta(c)
	pv.BaseKey = fmt.Sprintf("%s.%s", pv.Prefix, p.kb.String())

	return Normalize(pv, func(suffix string, val float64) {
		suffixPos := 0
		if suffix != "" {
			suffixPos = p.kb.push(suffix)
		}
		pv.Suffix = suffix
		pv.Key = fmt.Sprintf("%s.%s", pv.Prefix, p.kb.String())
		pv.Value = val
		if suffix != "" {
			p.kb.pop(suffixPos)
		}
		p.emit(EventMetric, pv)
	})
}

func (p *Poller) emit(kind EventKind, pv *PollValue) {
	for _, b := range p.backends {
		b.OnEvent(kind, pv)
	}
}

// Run starts a ticker-driven polling loop that calls Poll every
// interval, until ctx is cancelled or Close is called. It blocks until
// the loop exits.
func (p *Poller) Run(ctx context.Context, interval time.Duration) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("optics: poller already running")
	}
	defer p.running.Store(false)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.wg.Add(1)
	defer p.wg.Done()

	for {
		select {
		case <-ticker.C:
			if err := p.Poll(); err != nil {
				logErrorf(p.reg.logger, "optics: poll sweep failed: %v", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		}
	}
}

// Close stops a running Run loop and releases every attached backend.
// Safe to call more than once and from any goroutine.
func (p *Poller) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
		for _, b := range p.backends {
			b.OnFree()
		}
	})
}
