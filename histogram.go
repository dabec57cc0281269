package optics

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// histoSlot holds one epoch's bucket counts plus the below/above
// overflow counters. edges is shared across both slots (construction
// time only, never mutated).
type histoSlot struct {
	counts []atomic.Int64
	below  atomic.Int64
	above  atomic.Int64
}

// Histogram buckets values into a fixed, construction-time set of
// half-open intervals [edges[i], edges[i+1]), with below/above overflow
// counters for values outside the full range.
type Histogram struct {
	*Cell
	edges []float64 // len(edges) == bucketCount+1, strictly ascending
	slots [2]histoSlot
}

// HistogramValue is the result of reading a Histogram's retired slot.
// Edges is the same slice for every read of a given histogram (shared,
// set at construction time and never mutated); it rides along so
// normalization can label each bucket without needing the owning
// *Histogram.
type HistogramValue struct {
	Below  int64
	Counts []int64
	Above  int64
	Edges  []float64
}

// newHistogram validates edges and allocates both epoch slots. edges
// must have at least 2 entries (one bucket) and at most
// maxHistogramBuckets+1, strictly ascending.
func newHistogram(name string, edges []float64) (*Histogram, error) {
	if len(edges) < 2 || len(edges)-1 > maxHistogramBuckets {
		return nil, fmt.Errorf("%w: need 2..%d edges, got %d", ErrInvalidBucketEdges, maxHistogramBuckets+1, len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("%w: edges must be strictly ascending", ErrInvalidBucketEdges)
		}
	}

	bucketCount := len(edges) - 1
	h := &Histogram{edges: append([]float64(nil), edges...)}
	h.slots[0].counts = make([]atomic.Int64, bucketCount)
	h.slots[1].counts = make([]atomic.Int64, bucketCount)
	h.Cell = &Cell{typ: TypeHistogram, name: name, owner: h}
	h.Cell.read = func(epoch Epoch) (any, error) {
		return h.readEpoch(epoch), nil
	}
	return h, nil
}

// bucketIndex returns the index j such that value falls in
// [edges[j], edges[j+1]), or -1/bucketCount for below/above overflow.
func (h *Histogram) bucketIndex(value float64) int {
	if value < h.edges[0] {
		return -1
	}
	last := len(h.edges) - 1
	if value >= h.edges[last] {
		return last
	}
	// binary search for the rightmost edge <= value
	i := sort.Search(len(h.edges), func(i int) bool { return h.edges[i] > value })
	return i - 1
}

// Record buckets v into the live epoch's counts, or into below/above if
// it falls outside the configured range.
func (h *Histogram) Record(v float64) {
	if h == nil {
		return
	}
	live := h.Cell.reg.epoch.current()
	slot := &h.slots[live]

	j := h.bucketIndex(v)
	switch {
	case j == -1:
		slot.below.Add(1)
	case j == len(h.edges)-1:
		slot.above.Add(1)
	default:
		slot.counts[j].Add(1)
	}
}

func (h *Histogram) readEpoch(epoch Epoch) HistogramValue {
	slot := &h.slots[epoch]
	counts := make([]int64, len(slot.counts))
	for i := range slot.counts {
		counts[i] = slot.counts[i].Swap(0)
	}
	return HistogramValue{
		Below:  slot.below.Swap(0),
		Counts: counts,
		Above:  slot.above.Swap(0),
		Edges:  h.edges,
	}
}

// Read performs a read-and-reset of the given epoch's slot directly.
func (h *Histogram) Read(epoch Epoch) (HistogramValue, error) {
	v, err := h.Cell.read(epoch)
	if err != nil {
		return HistogramValue{}, err
	}
	return v.(HistogramValue), nil
}

// Edges reports the histogram's bucket boundaries.
func (h *Histogram) Edges() []float64 {
	return append([]float64(nil), h.edges...)
}

// typeTag implements describable.
func (h *Histogram) typeTag() string { return "histogram" }

// describe implements describable.
func (h *Histogram) describe() MetricMeta {
	return MetricMeta{"help": fmt.Sprintf("bucketed histogram %q over %d edges", h.name, len(h.edges))}
}

func normalizeHistogram(v HistogramValue, elapsed int64, emit func(suffix string, value float64)) {
	e := rateElapsed(elapsed)
	emit("below", float64(v.Below)/float64(e))
	for i, c := range v.Counts {
		emit(fmt.Sprintf("<%g>", v.Edges[i+1]), float64(c)/float64(e))
	}
	emit("above", float64(v.Above)/float64(e))
}
