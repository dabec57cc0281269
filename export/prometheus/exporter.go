// Package prometheus renders optics poll sweeps in Prometheus text
// exposition format: counters/gauges as Prometheus counter/gauge,
// distributions as a summary with quantile labels, and histograms as a
// native Prometheus histogram with cumulative buckets. The metric set is
// discovered at runtime from whatever sweep arrives, rather than fixed
// at compile time.
package prometheus

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/opticscore/optics"
)

type sweepEntry struct {
	typeTag string
	help    string
	// labels holds the advisory per-cell labels attached via
	// Registry.SetMeta, copied out of poll.Meta once per cell since the
	// Backend contract forbids retaining anything reachable from a
	// PollValue past OnEvent's return.
	labels optics.MetricMeta
	values map[string]float64
	order  []string
}

// Exporter buffers the last completed sweep and renders it as
// Prometheus text on demand. It implements optics.Backend by
// registering itself with a Poller; Render/Handler read the buffered
// text independently of any in-flight sweep.
type Exporter struct {
	mu       sync.RWMutex
	rendered string

	sweep map[string]*sweepEntry
	order []string
}

// New creates an empty Exporter. Attach it to a Poller via
// optics.WithBackend or (*Poller).AddBackend.
func New() *Exporter {
	return &Exporter{}
}

// OnEvent implements optics.Backend.
func (e *Exporter) OnEvent(kind optics.EventKind, poll *optics.PollValue) {
	switch kind {
	case optics.EventBegin:
		e.sweep = make(map[string]*sweepEntry)
		e.order = nil
	case optics.EventMetric:
		e.accumulate(poll)
	case optics.EventDone:
		e.render()
	}
}

func (e *Exporter) accumulate(poll *optics.PollValue) {
	entry, ok := e.sweep[poll.BaseKey]
	if !ok {
		entry = &sweepEntry{
			typeTag: poll.TypeTag,
			help:    poll.Help,
			labels:  copyMeta(poll.Meta),
			values:  make(map[string]float64),
		}
		e.sweep[poll.BaseKey] = entry
		e.order = append(e.order, poll.BaseKey)
	}
	value, _ := poll.Value.(float64)
	if _, seen := entry.values[poll.Suffix]; !seen {
		entry.order = append(entry.order, poll.Suffix)
	}
	entry.values[poll.Suffix] = value
}

// copyMeta defensively copies an advisory label map: poll.Meta aliases
// the registry's own live map, which a later SetMeta call could mutate
// after OnEvent returns.
func copyMeta(meta optics.MetricMeta) optics.MetricMeta {
	if len(meta) == 0 {
		return nil
	}
	out := make(optics.MetricMeta, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

func (e *Exporter) render() {
	var b strings.Builder
	b.Grow(4096)

	for _, key := range e.order {
		entry := e.sweep[key]
		name := prometheusName(key)
		base := labelPairs(entry.labels, nil)
		switch entry.typeTag {
		case "counter", "gauge":
			writeScalar(&b, name, entry.typeTag, entry.help, base, entry.values[""])
		case "summary":
			writeSummary(&b, name, entry, base)
		case "histogram":
			writeHistogram(&b, name, entry, base)
		}
	}

	e.mu.Lock()
	e.rendered = b.String()
	e.mu.Unlock()
}

func writeScalar(b *strings.Builder, name, typeTag, help string, pairs []string, value float64) {
	writeHelp(b, name, help)
	fmt.Fprintf(b, "# TYPE %s %s\n%s%s %v\n", name, typeTag, name, labelBraces(pairs), value)
}

var summaryQuantiles = []struct{ suffix, label string }{
	{"p50", "0.5"},
	{"p90", "0.9"},
	{"p99", "0.99"},
}

func writeSummary(b *strings.Builder, name string, entry *sweepEntry, base []string) {
	writeHelp(b, name, entry.help)
	fmt.Fprintf(b, "# TYPE %s summary\n", name)
	for _, q := range summaryQuantiles {
		if v, ok := entry.values[q.suffix]; ok {
			pairs := labelPairs(entry.labels, []string{fmt.Sprintf("quantile=%q", q.label)})
			fmt.Fprintf(b, "%s%s %v\n", name, labelBraces(pairs), v)
		}
	}
	if v, ok := entry.values["max"]; ok {
		fmt.Fprintf(b, "%s_max%s %v\n", name, labelBraces(base), v)
	}
	if v, ok := entry.values["count"]; ok {
		fmt.Fprintf(b, "%s_count%s %v\n", name, labelBraces(base), v)
	}
}

// writeHistogram converts the per-bucket counts optics emits into the
// cumulative le-labeled buckets Prometheus expects.
func writeHistogram(b *strings.Builder, name string, entry *sweepEntry, base []string) {
	writeHelp(b, name, entry.help)
	fmt.Fprintf(b, "# TYPE %s histogram\n", name)

	cumulative := entry.values["below"]
	for _, suffix := range entry.order {
		if suffix == "below" || suffix == "above" {
			continue
		}
		cumulative += entry.values[suffix]
		le := strings.TrimSuffix(strings.TrimPrefix(suffix, "<"), ">")
		pairs := labelPairs(entry.labels, []string{fmt.Sprintf("le=%q", le)})
		fmt.Fprintf(b, "%s_bucket%s %v\n", name, labelBraces(pairs), cumulative)
	}
	cumulative += entry.values["above"]
	infPairs := labelPairs(entry.labels, []string{`le="+Inf"`})
	fmt.Fprintf(b, "%s_bucket%s %v\n", name, labelBraces(infPairs), cumulative)
	fmt.Fprintf(b, "%s_count%s %v\n", name, labelBraces(base), cumulative)
}

func writeHelp(b *strings.Builder, name, help string) {
	if help == "" {
		return
	}
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
}

// labelPairs renders meta's advisory labels as sorted "key=\"value\""
// strings, followed by extra (e.g. a quantile or le label specific to
// one series).
func labelPairs(meta optics.MetricMeta, extra []string) []string {
	if len(meta) == 0 {
		return extra
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)+len(extra))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, meta[k]))
	}
	return append(pairs, extra...)
}

func labelBraces(pairs []string) string {
	if len(pairs) == 0 {
		return ""
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

var nameReplacer = strings.NewReplacer(".", "_", "-", "_")

func prometheusName(key string) string {
	return nameReplacer.Replace(key)
}

// Handler returns an http.Handler serving the last completed sweep in
// Prometheus text exposition format.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		e.mu.RLock()
		defer e.mu.RUnlock()
		_, _ = w.Write([]byte(e.rendered))
	})
}

// Render returns the last completed sweep's rendered text directly.
func (e *Exporter) Render() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rendered
}

// OnFree implements optics.Backend; the exporter holds no external
// resources to release.
func (e *Exporter) OnFree() {}
