package optics

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*Registry)

// WithClock overrides the Registry's time source. Mainly useful for
// tests driving the epoch manager with synthetic timestamps.
func WithClock(c Clock) RegistryOption {
	return func(r *Registry) { r.clock = c }
}

// WithRand overrides the source of randomness used by Dist's reservoir
// sampling and Quantile's Bernoulli trials.
func WithRand(rng randSource) RegistryOption {
	return func(r *Registry) { r.rng = rng }
}

// WithLogger attaches a Logger that receives warnings and errors
// surfaced from Poll (clock skew, a busy Dist slot, a cell read error,
// a failed sweep in Run).
func WithLogger(l Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// WithLabelInterning turns on label-key interning for SetMeta: each
// distinct key string is stored once and shared across every cell that
// uses it.
func WithLabelInterning() RegistryOption {
	return func(r *Registry) { r.interns = newLabelInterner() }
}

// PollerOption configures a Poller at construction time.
type PollerOption func(*Poller)

// WithHost sets the host identifier attached to every PollValue emitted
// by the poller. If never set, NewPoller assigns a random one.
func WithHost(host string) PollerOption {
	return func(p *Poller) { p.host = host }
}

// WithBackend attaches a Backend the poller fans normalized metrics out
// to. May be called more than once to fan out to several backends.
func WithBackend(b Backend) PollerOption {
	return func(p *Poller) { p.backends = append(p.backends, b) }
}

// WithGraceInterval overrides the straggler grace sleep the poller
// performs between flipping the epoch and reading the retired slot.
// graceNanos is in nanoseconds; the default is graceInterval (~1ms).
func WithGraceInterval(graceNanos int64) PollerOption {
	return func(p *Poller) { p.graceNanos = graceNanos }
}
