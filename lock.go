package optics

import (
	"runtime"
	"sync/atomic"
)

// spinlock is a small trylock-capable mutex over a single atomic bool.
// The distribution cell's recorders take it with Lock, and its read path
// uses TryLock, so a straggling recorder makes the poller skip the cell
// for one sweep instead of waiting for it. Contention is bounded to at
// most one straggler per cell per sweep, so a bare CAS spin is used
// rather than a channel- or futex-based lock.
type spinlock struct {
	held atomic.Bool
}

// Lock spins until the lock is acquired. Used only on the record path,
// where the only possible holder is another recorder on the same live
// slot — contention is brief.
func (s *spinlock) Lock() {
	for !s.held.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
func (s *spinlock) Unlock() {
	s.held.Store(false)
}

// TryLock attempts to acquire the lock without blocking.
func (s *spinlock) TryLock() bool {
	return s.held.CompareAndSwap(false, true)
}

// IsLocked reports whether the lock is currently held, without
// acquiring it.
func (s *spinlock) IsLocked() bool {
	return s.held.Load()
}
