// Package otel forwards optics poll sweeps through OpenTelemetry
// observable gauge instruments. Because optics cells are registered at
// runtime rather than known at compile time, instruments here are
// created lazily the first time a given normalized key is observed.
package otel

import (
	"context"
	"errors"
	"sync"

	"github.com/opticscore/optics"
	"go.opentelemetry.io/otel/metric"
)

// ErrNilMeter is returned by New when meter is nil.
var ErrNilMeter = errors.New("otel: nil meter")

// Exporter replays the last completed sweep's values through one
// Float64ObservableGauge per distinct normalized key, registering a
// single callback that is rebuilt whenever a new key appears.
type Exporter struct {
	meter metric.Meter

	mu           sync.Mutex
	instruments  map[string]metric.Float64ObservableGauge
	registration metric.Registration
	last         map[string]float64
	pending      map[string]float64
}

// New creates an Exporter that creates instruments against meter.
func New(meter metric.Meter) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	return &Exporter{
		meter:       meter,
		instruments: make(map[string]metric.Float64ObservableGauge),
		last:        make(map[string]float64),
	}, nil
}

// OnEvent implements optics.Backend.
func (e *Exporter) OnEvent(kind optics.EventKind, poll *optics.PollValue) {
	switch kind {
	case optics.EventBegin:
		e.pending = make(map[string]float64)
	case optics.EventMetric:
		value, _ := poll.Value.(float64)
		e.pending[poll.Key] = value
	case optics.EventDone:
		e.commit()
	}
}

func (e *Exporter) commit() {
	e.mu.Lock()
	defer e.mu.Unlock()

	grew := false
	for key := range e.pending {
		if _, ok := e.instruments[key]; ok {
			continue
		}
		ins, err := e.meter.Float64ObservableGauge(key)
		if err != nil {
			continue
		}
		e.instruments[key] = ins
		grew = true
	}

	e.last = e.pending

	if grew || e.registration == nil {
		e.reregisterLocked()
	}
}

// reregisterLocked replaces the callback registration so it observes
// every instrument created so far. Must be called with mu held; the
// callback itself locks mu independently since the SDK invokes it on
// its own collection goroutine, not synchronously here.
func (e *Exporter) reregisterLocked() {
	if e.registration != nil {
		_ = e.registration.Unregister()
		e.registration = nil
	}

	observables := make([]metric.Observable, 0, len(e.instruments))
	for _, ins := range e.instruments {
		observables = append(observables, ins)
	}

	reg, err := e.meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		for key, ins := range e.instruments {
			if v, ok := e.last[key]; ok {
				observer.ObserveFloat64(ins, v)
			}
		}
		return nil
	}, observables...)
	if err != nil {
		return
	}
	e.registration = reg
}

// OnFree implements optics.Backend, unregistering the observable
// callback.
func (e *Exporter) OnFree() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.registration != nil {
		_ = e.registration.Unregister()
		e.registration = nil
	}
}
