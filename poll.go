package optics

import "fmt"

// PollValue is a transient record produced while polling a single cell.
// It is owned solely by the poller for the duration of one sweep;
// backends must not retain it past the metric event it's delivered
// with.
type PollValue struct {
	Host   string
	Prefix string
	// BaseKey is the dotted "prefix.host.name" path shared by every
	// emission from the same cell in this sweep; Key additionally
	// carries the type-specific suffix (§4.B normalization table).
	BaseKey string
	Key     string
	Suffix  string
	Type    CellType
	// TypeTag is the cell's backend-facing type name (e.g. "summary"
	// for a Dist), sourced from the concrete cell type rather than
	// Type's numeric value — see Cell.TypeTag.
	TypeTag string
	// Help is the metric's advisory description, sourced from the
	// concrete cell type's describe() accessor.
	Help    string
	Ts      int64
	Elapsed int64
	Meta    MetricMeta
	Value   any
}

// Normalize maps a poll value's type-specific Value into one or more
// flat (suffix, value) emissions via emit, following the exact table in
// the cell-type normalization rules. emit is called once per scalar
// emission; Normalize builds no intermediate slice.
func Normalize(pv *PollValue, emit func(suffix string, value float64)) error {
	switch v := pv.Value.(type) {
	case CounterValue:
		normalizeCounter(v, pv.Elapsed, emit)
	case GaugeValue:
		normalizeGauge(v, emit)
	case DistValue:
		normalizeDist(v, pv.Elapsed, emit)
	case HistogramValue:
		normalizeHistogram(v, pv.Elapsed, emit)
	case QuantileValue:
		normalizeQuantile(v, emit)
	default:
		return fmt.Errorf("optics: unrecognized poll value type %T", pv.Value)
	}
	return nil
}
