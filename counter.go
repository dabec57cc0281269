package optics

import (
	"fmt"
	"sync/atomic"
)

// paddedCounter cache-line-pads a single atomic accumulator so that two
// epoch slots of the same cell never share a cache line with each other
// or with a neighboring cell's header. Straddling a line costs roughly
// an order of magnitude on the atomic fast path.
type paddedCounter struct {
	value atomic.Int64
	_     [cacheLineSize - 8]byte
}

// Counter is a monotonic rate counter: record adds a delta to the live
// epoch's slot, and a poll reads-and-resets the retired slot.
type Counter struct {
	*Cell
	slots [2]paddedCounter
}

// CounterValue is the result of reading a Counter's retired slot: the
// raw count accumulated since the previous poll.
type CounterValue struct {
	Count int64
}

func newCounter(name string) *Counter {
	c := &Counter{}
	c.Cell = &Cell{typ: TypeCounter, name: name, owner: c}
	c.Cell.read = func(epoch Epoch) (any, error) {
		return CounterValue{Count: c.slots[epoch].value.Swap(0)}, nil
	}
	return c
}

// Inc adds delta to the counter's live-epoch slot. Safe for concurrent
// use; allocation-free.
func (c *Counter) Inc(delta int64) {
	if c == nil {
		return
	}
	live := c.Cell.reg.epoch.current()
	c.slots[live].value.Add(delta)
}

// typeTag implements describable.
func (c *Counter) typeTag() string { return "counter" }

// describe implements describable.
func (c *Counter) describe() MetricMeta {
	return MetricMeta{"help": fmt.Sprintf("rate counter %q, emitted as count/elapsed-seconds", c.name)}
}

// Read performs a read-and-reset of the given epoch's slot directly,
// bypassing the poller. Intended for tests and for backends that read
// outside a Poller sweep.
func (c *Counter) Read(epoch Epoch) (CounterValue, error) {
	v, err := c.Cell.read(epoch)
	if err != nil {
		return CounterValue{}, err
	}
	return v.(CounterValue), nil
}

func normalizeCounter(v CounterValue, elapsed int64, emit func(suffix string, value float64)) {
	emit("", float64(v.Count)/float64(rateElapsed(elapsed)))
}

// rateElapsed enforces the spec's "elapsed seconds, rounded up to 1s
// minimum" rule for rate-scaled emissions.
func rateElapsed(elapsed int64) int64 {
	if elapsed < 1 {
		return 1
	}
	return elapsed
}
