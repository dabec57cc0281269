package optics

// EventKind identifies which part of a poll sweep a Backend callback is
// being invoked for.
type EventKind uint8

const (
	// EventBegin brackets the start of a sweep. poll is nil.
	EventBegin EventKind = iota
	// EventMetric delivers one normalized (ts, key, value) tuple. Events
	// within a sweep arrive in arbitrary order.
	EventMetric
	// EventDone brackets the end of a sweep. poll is nil. Exactly one
	// EventDone follows exactly one EventBegin per sweep.
	EventDone
)

// Backend receives the events of a poll sweep. Implementations must not
// retain poll, or any slice/string reachable from it, past OnEvent's
// return — the poller reuses its scratch PollValue across emissions.
type Backend interface {
	OnEvent(kind EventKind, poll *PollValue)
	// OnFree is called once when the poller that owns this backend is
	// closed, so the backend can release any held resources (a
	// connection, a file handle).
	OnFree()
}
