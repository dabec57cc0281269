package optics

import (
	"fmt"
	"sync/atomic"
)

// Quantile is a stochastic quantile estimator (a Frank-Wolfe-style
// stepper): each update nudges a shared multiplier up or down depending
// on whether the observation landed above or below the current estimate
// and a Bernoulli trial at probability q. The multiplier is not
// double-buffered — its estimate must evolve continuously across polls,
// unlike every other cell type here.
type Quantile struct {
	*Cell
	q     float64
	base  float64
	delta float64

	multiplier atomic.Int64
	count      [2]atomic.Int64

	rng randSource
}

// QuantileValue is the result of reading a Quantile's retired epoch's
// sample count, alongside the current (continuously evolving) estimate.
type QuantileValue struct {
	Quantile float64
	Sample   float64
	Count    int64
}

func newQuantile(name string, q, base, delta float64, rng randSource) (*Quantile, error) {
	if q <= 0 || q >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidQuantile, q)
	}
	if rng == nil {
		rng = defaultRand{}
	}

	qt := &Quantile{q: q, base: base, delta: delta, rng: rng}
	qt.Cell = &Cell{typ: TypeQuantile, name: name, owner: qt}
	qt.Cell.read = func(epoch Epoch) (any, error) {
		return QuantileValue{
			Quantile: qt.q,
			Sample:   qt.estimate(),
			Count:    qt.count[epoch].Swap(0),
		}, nil
	}
	return qt, nil
}

func (qt *Quantile) estimate() float64 {
	m := qt.multiplier.Load()
	return qt.base + float64(m)*qt.delta
}

// Update feeds one observation into the estimator and increments the
// live epoch's sample count.
func (qt *Quantile) Update(v float64) {
	if qt == nil {
		return
	}
	current := qt.estimate()
	trial := qt.rng.Prob(qt.q)

	switch {
	case v < current && !trial:
		qt.multiplier.Add(-1)
	case v >= current && trial:
		qt.multiplier.Add(1)
	}

	live := qt.Cell.reg.epoch.current()
	qt.count[live].Add(1)
}

// typeTag implements describable.
func (qt *Quantile) typeTag() string { return "gauge" }

// describe implements describable.
func (qt *Quantile) describe() MetricMeta {
	return MetricMeta{"help": fmt.Sprintf("stochastic quantile estimator %q targeting q=%v", qt.name, qt.q)}
}

// Read performs a read-and-reset of the given epoch's sample count
// directly; the returned Sample always reflects the current estimate.
func (qt *Quantile) Read(epoch Epoch) (QuantileValue, error) {
	v, err := qt.Cell.read(epoch)
	if err != nil {
		return QuantileValue{}, err
	}
	return v.(QuantileValue), nil
}

func normalizeQuantile(v QuantileValue, emit func(suffix string, value float64)) {
	emit("", v.Sample)
}
