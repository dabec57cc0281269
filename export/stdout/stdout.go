// Package stdout implements the simplest possible optics.Backend: one
// "ts key value" line per metric emission, written to an io.Writer.
package stdout

import (
	"fmt"
	"io"
	"sync"

	"github.com/opticscore/optics"
)

// Exporter writes each sweep's emissions as plain text lines. It exists
// to exercise the Backend contract without any network dependency, and
// as the default backend for cmd/opticsd.
type Exporter struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates an Exporter writing to w.
func New(w io.Writer) *Exporter {
	return &Exporter{w: w}
}

// OnEvent implements optics.Backend.
func (e *Exporter) OnEvent(kind optics.EventKind, poll *optics.PollValue) {
	if kind != optics.EventMetric {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	value, _ := poll.Value.(float64)
	fmt.Fprintf(e.w, "%d %s %v\n", poll.Ts, poll.Key, value)
}

// OnFree implements optics.Backend; stdout needs no cleanup.
func (e *Exporter) OnFree() {}
