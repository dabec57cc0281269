package optics

import (
	"fmt"
	"math"
	"sync/atomic"
)

type paddedGauge struct {
	bits atomic.Uint64
	_    [cacheLineSize - 8]byte
}

// Gauge is a last-write-wins instantaneous value: a read always reports
// whatever was most recently Set (0.0 if never Set), unchanged, and
// never clears it. Unlike Counter, reading a Gauge is non-destructive;
// the only way a gauge stops appearing in a poll's output is for its
// cell to be closed.
type Gauge struct {
	*Cell
	slots [2]paddedGauge
}

// GaugeValue is the result of reading a Gauge.
type GaugeValue struct {
	Value float64
	// Set is always true: a Gauge never reads as absent on its own,
	// only a default 0.0 before the first Set. Kept so normalizeGauge
	// shares the same emit-callback shape as every other cell type.
	Set bool
}

// newGauge leaves both slots at their zero value (bit pattern 0, i.e.
// the double 0.0), so a gauge that is created and polled before ever
// being Set reports present with value 0.0.
func newGauge(name string) *Gauge {
	g := &Gauge{}
	g.Cell = &Cell{typ: TypeGauge, name: name, owner: g}
	g.Cell.read = func(epoch Epoch) (any, error) {
		bits := g.slots[epoch].bits.Load()
		return GaugeValue{Value: math.Float64frombits(bits), Set: true}, nil
	}
	return g
}

// Set stores x into both epoch slots. Reads are non-destructive loads
// rather than a read-and-reset, so the two slots only exist to keep the
// cell's body shaped like every other double-buffered metric type;
// broadcasting the write to both means whichever epoch the next poll
// happens to retire still observes x, so a gauge set once keeps
// reporting that same value on every later poll until it is Set again.
func (g *Gauge) Set(x float64) {
	if g == nil {
		return
	}
	bits := math.Float64bits(x)
	for i := range g.slots {
		g.slots[i].bits.Store(bits)
	}
}

// typeTag implements describable.
func (g *Gauge) typeTag() string { return "gauge" }

// describe implements describable.
func (g *Gauge) describe() MetricMeta {
	return MetricMeta{"help": fmt.Sprintf("instantaneous gauge %q, defaulting to 0 until first Set", g.name)}
}

// Read performs a direct, non-destructive read of the given epoch's
// slot, bypassing the poller.
func (g *Gauge) Read(epoch Epoch) (GaugeValue, error) {
	v, err := g.Cell.read(epoch)
	if err != nil {
		return GaugeValue{}, err
	}
	return v.(GaugeValue), nil
}

func normalizeGauge(v GaugeValue, emit func(suffix string, value float64)) {
	if !v.Set {
		return
	}
	emit("", v.Value)
}
