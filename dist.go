package optics

import (
	"fmt"
	"sort"
)

// distSlot is one epoch's reservoir. Every field is guarded by lock;
// there is no atomic access here because contention is bounded to at
// most one straggling recorder racing the poller's read.
type distSlot struct {
	lock    spinlock
	n       int
	max     float64
	samples [reservoirSize]float64
}

// Dist is a reservoir-sampling distribution: it keeps up to
// reservoirSize uniformly-sampled observations per epoch and reports
// exact percentiles when the observation count doesn't exceed the
// reservoir, or approximate ones once sampling kicks in.
type Dist struct {
	*Cell
	slots [2]distSlot
	rng   randSource
}

// DistValue is the result of reading a Dist's retired slot.
type DistValue struct {
	N   int64
	Max float64
	P50 float64
	P90 float64
	P99 float64
}

func newDist(name string, rng randSource) *Dist {
	if rng == nil {
		rng = defaultRand{}
	}
	d := &Dist{rng: rng}
	d.Cell = &Cell{typ: TypeDist, name: name, owner: d}
	d.Cell.read = func(epoch Epoch) (any, error) {
		return d.readEpoch(epoch)
	}
	return d
}

// Record adds v to the reservoir for the live epoch. record is the one
// cell type that takes a lock on the hot path: it's bounded to
// contention among recorders hitting the same cell concurrently, since
// the poller only ever locks the retired slot.
func (d *Dist) Record(v float64) {
	if d == nil {
		return
	}
	live := d.Cell.reg.epoch.current()
	slot := &d.slots[live]

	slot.lock.Lock()
	i := slot.n
	if i >= reservoirSize {
		i = d.rng.IntN(slot.n + 1)
	}
	if i < reservoirSize {
		slot.samples[i] = v
	}
	slot.n++
	if v > slot.max {
		slot.max = v
	}
	slot.lock.Unlock()
}

func (d *Dist) readEpoch(epoch Epoch) (any, error) {
	slot := &d.slots[epoch]

	// The poller only touches the retired slot, so the only possible
	// holder here is a straggling recorder that loaded the epoch just
	// before the flip. Skip rather than block.
	if !slot.lock.TryLock() {
		return nil, ErrBusy
	}

	n := slot.n
	max := slot.max
	toCopy := n
	if toCopy > reservoirSize {
		toCopy = reservoirSize
	}
	var samples [reservoirSize]float64
	copy(samples[:toCopy], slot.samples[:toCopy])

	slot.n = 0
	slot.max = 0
	slot.lock.Unlock()

	if n == 0 {
		return DistValue{}, nil
	}

	sorted := samples[:toCopy]
	sort.Float64s(sorted)

	return DistValue{
		N:   int64(n),
		Max: max,
		P50: sorted[distPercentileIndex(50, toCopy)],
		P90: sorted[distPercentileIndex(90, toCopy)],
		P99: sorted[distPercentileIndex(99, toCopy)],
	}, nil
}

// distPercentileIndex maps a percentile in (0,100) to a 0-based index
// into a sorted slice of length n. The naive floor index ⌊p·n⌋ is
// 1-indexed against the expected percentile values (p50 of 1..100 is
// 50, not the 51st smallest), so the index is taken one below that
// floor and clamped to the slice's bounds.
func distPercentileIndex(percentile, n int) int {
	idx := (n*percentile)/100 - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// typeTag implements describable. Rendered as "summary" by the
// prometheus backend, matching its count/p50/p90/p99/max emissions.
func (d *Dist) typeTag() string { return "summary" }

// describe implements describable.
func (d *Dist) describe() MetricMeta {
	return MetricMeta{"help": fmt.Sprintf("reservoir-sampling distribution %q (R=%d)", d.name, reservoirSize)}
}

// Read performs a read-and-reset of the given epoch's slot directly.
func (d *Dist) Read(epoch Epoch) (DistValue, error) {
	v, err := d.Cell.read(epoch)
	if err != nil {
		return DistValue{}, err
	}
	return v.(DistValue), nil
}

func normalizeDist(v DistValue, elapsed int64, emit func(suffix string, value float64)) {
	emit("count", float64(v.N)/float64(rateElapsed(elapsed)))
	emit("p50", v.P50)
	emit("p90", v.P90)
	emit("p99", v.P99)
	emit("max", v.Max)
}
