// Package optics provides a lock-free-traversal registry of in-process
// metrics and a poller that drains them into pluggable backends.
//
// The package is designed for concurrent, latency-sensitive server
// workloads: recording a sample costs a few atomic operations at most
// (see the performance contract below), and polling never blocks a
// recorder. Registry and Cell methods are safe to
// call from multiple goroutines after construction.
//
// # Architecture boundaries
//
// optics is the public surface. It exposes [Registry], [Poller], the
// per-type metric cells ([Counter], [Gauge], [Dist], [Histogram],
// [Quantile]), and the [Backend] contract that export packages implement.
// Export backends (prometheus, otel, redis, stdout text rendering) live
// under export/ and are never imported by this package.
//
// # What this package must NOT do
//
//   - Perform network I/O or own a transport.
//   - Block a recorder on anything but a single atomic op (or, for [Dist],
//     a bounded per-epoch spinlock that never contends with steady-state
//     recorders targeting the live slot).
//   - Import any export/ sub-package (no import cycles).
//
// # Performance contract
//
// Record-path calls (Counter.Inc, Gauge.Set, Histogram.Record,
// Quantile.Update) do not allocate and take no lock. Counter.Inc and
// Histogram.Record are one epoch load plus one atomic read-modify-write;
// Gauge.Set is two atomic stores, one per epoch slot; Quantile.Update
// loads the shared multiplier and the epoch and performs at most two
// atomic read-modify-writes (the multiplier step and the sample count).
// Dist.Record is the one exception: it takes a bounded spinlock on the
// live epoch's slot, which the poller only ever try-locks on the
// retired slot.
package optics
