package optics

import "sync/atomic"

// Cell is the common header shared by every metric type: the owning
// registry, the intrusive lock-free list linkage, and identity. The
// type-specific body (two-slot counter/gauge/dist/histogram/quantile
// storage) is held by the concrete wrapper type (Counter, Gauge, ...)
// that embeds *Cell.
//
// Traversal reads next under an acquire load and never touches prev, so
// a stale next pointer during a concurrent remove is harmless: the
// removed cell's body is still valid memory until the epoch manager
// drains it, two flips after removal.
type Cell struct {
	reg  *Registry
	next atomic.Pointer[Cell]
	prev *Cell // guarded by reg.mu; unused by lock-free traversal

	typ  CellType
	name string

	// owner is the concrete wrapper (*Counter, *Gauge, *Dist,
	// *Histogram, *Quantile) that embeds this Cell. Open-style lookups
	// type-assert against it to hand back the right concrete type.
	owner any

	// read performs an epoch-indexed read-and-reset of the concrete
	// body and returns the type-specific value (CounterValue,
	// GaugeValue, DistValue, HistogramValue, or QuantileValue) or
	// ErrBusy if the retired slot couldn't be acquired this sweep.
	read func(epoch Epoch) (any, error)

	closed atomic.Bool
}

// describable is implemented by every concrete metric type (Counter,
// Gauge, Dist, Histogram, Quantile). It is kept separate from CellType
// so that a backend rendering Help text or a type label never needs the
// registry's internal numeric tag.
type describable interface {
	typeTag() string
	describe() MetricMeta
}

// Type reports the metric's kind.
func (c *Cell) Type() CellType { return c.typ }

// Name reports the metric's registered name.
func (c *Cell) Name() string { return c.name }

// TypeTag reports the metric's kind the way an export backend should
// render it (e.g. Prometheus's "counter"/"gauge"/"summary"/"histogram"),
// sourced from the concrete cell type rather than CellType's numeric
// value.
func (c *Cell) TypeTag() string {
	if d, ok := c.owner.(describable); ok {
		return d.typeTag()
	}
	return c.typ.String()
}

// Describe returns the metric's advisory Help/unit metadata, sourced
// from the concrete cell type. It is distinct from the per-cell labels
// stored by Registry.SetMeta: Describe documents the metric itself,
// SetMeta annotates one instance of it.
func (c *Cell) Describe() MetricMeta {
	if d, ok := c.owner.(describable); ok {
		return d.describe()
	}
	return nil
}

// Close unlinks the cell from the registry and schedules it for
// reclamation two epoch flips from now. Safe to call more than once;
// only the first call has an effect.
func (c *Cell) Close() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.reg.close(c)
}

// release clears references so the cell becomes collectible once the
// epoch manager has confirmed no reader can still reach it. Called only
// from epochManager.drain.
func (c *Cell) release() {
	c.reg = nil
	c.next.Store(nil)
	c.prev = nil
	c.read = nil
}

func (c *Cell) setNext(n *Cell) {
	c.next.Store(n)
}

func (c *Cell) loadNext() *Cell {
	return c.next.Load()
}
