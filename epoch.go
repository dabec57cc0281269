package optics

import "sync/atomic"

// retireNode links a retired cell into a per-epoch retire list via
// release-CAS. It is freed by the flip that drains the list it sits on.
type retireNode struct {
	cell *Cell
	next *retireNode
}

// epochManager owns the global epoch counter and the two retire lists.
// current() is an acquire-load so that a subsequent cell-body load can't
// be hoisted above the epoch read. flip() frees the other epoch's retire
// list first, then increments the counter, returning the bit it held
// before the increment.
type epochManager struct {
	counter   atomic.Uint64
	lastInc   int64
	retire    [2]atomic.Pointer[retireNode]
}

func (e *epochManager) current() Epoch {
	return Epoch(e.counter.Load() & 1)
}

// flip advances the epoch and drains the retire list belonging to the
// epoch that has been quiescent since the previous flip. It returns the
// epoch that was live before the flip (the one now retired and about to
// be read by the poller) and the timestamp recorded at the previous
// flip.
func (e *epochManager) flip(now int64) (retired Epoch, prevNow int64) {
	freeEpoch := e.current() ^ 1
	e.drain(freeEpoch)

	prevNow = e.lastInc
	e.lastInc = now

	prev := e.counter.Add(1) - 1
	return Epoch(prev & 1), prevNow
}

// retireCell pushes a node onto the currently-live epoch's retire list via a
// release CAS loop. The node becomes visible to drain() only after the
// next flip returns.
func (e *epochManager) retireCell(c *Cell) {
	node := &retireNode{cell: c}
	head := &e.retire[e.current()]
	for {
		old := head.Load()
		node.next = old
		if head.CompareAndSwap(old, node) {
			return
		}
	}
}

// drain frees every node queued on the given epoch's retire list. Called
// only from flip(), which guarantees the epoch being drained has been
// quiescent (no recorder can still be targeting it) for at least one
// full flip-grace cycle.
func (e *epochManager) drain(epoch Epoch) {
	head := &e.retire[epoch]
	node := head.Swap(nil)
	for node != nil {
		node.cell.release()
		node = node.next
	}
}

// pendingRetires reports how many cells are queued for reclamation
// across both epochs. Diagnostic only; never used on a correctness path.
func (e *epochManager) pendingRetires() int {
	n := 0
	for i := range e.retire {
		for node := e.retire[i].Load(); node != nil; node = node.next {
			n++
		}
	}
	return n
}
