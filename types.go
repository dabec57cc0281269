package optics

// Epoch selects which of a cell's two double-buffered slots is live.
// Only 0 and 1 are valid values; arithmetic on an Epoch should use ^1 to
// flip it, never +1, since the underlying counter is allowed to wrap.
type Epoch uint8

// CellType identifies the concrete kind of a registered metric.
type CellType uint8

const (
	// TypeCounter identifies a monotonic rate counter.
	TypeCounter CellType = iota
	// TypeGauge identifies a last-write-wins instantaneous value.
	TypeGauge
	// TypeDist identifies a reservoir-sampling distribution.
	TypeDist
	// TypeHistogram identifies a fixed-edge bucketed histogram.
	TypeHistogram
	// TypeQuantile identifies a stochastic quantile estimator.
	TypeQuantile
)

// String renders the type's short lowercase name. Export backends use
// Cell.TypeTag instead, which can differ (a Dist renders as "summary").
func (t CellType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeDist:
		return "dist"
	case TypeHistogram:
		return "histogram"
	case TypeQuantile:
		return "quantile"
	default:
		return "unknown"
	}
}

const (
	maxNameLen          = 255
	cacheLineSize       = 64
	reservoirSize       = 200
	maxHistogramBuckets = 8
	// graceInterval is the straggler grace interval: a short sleep after the
	// epoch flip, before the poller reads the retired slot.
	graceInterval = 1_000_000 // nanoseconds, i.e. ~1ms
)

// MetricMeta holds advisory labels attached to a cell. Labels never
// participate in name uniqueness or read/record semantics; they are
// surfaced to backends as opaque key/value pairs.
type MetricMeta map[string]string
