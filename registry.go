package optics

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Registry holds a name-indexed set of live metric cells, reachable both
// through the name map (for Create/Open/Get) and through a lock-free
// intrusive list (for Poller traversal). Structural changes (create,
// close) are serialized by a single mutex; list traversal never takes
// it.
type Registry struct {
	mu     sync.Mutex
	prefix string
	cells  map[string]*Cell
	head   atomic.Pointer[Cell]
	closed bool

	epoch epochManager

	clock  Clock
	rng    randSource
	logger Logger

	labelMu sync.Mutex
	labels  map[*Cell]MetricMeta
	interns *labelInterner
}

// New creates a Registry with the given prefix, recording the current
// wall-clock time as the epoch's initial timestamp.
func New(prefix string, opts ...RegistryOption) *Registry {
	return NewAt(prefix, wallClock{}.Now(), opts...)
}

// NewAt creates a Registry the way New does, but with an explicit
// initial timestamp instead of wall-clock time; useful for deterministic
// tests.
func NewAt(prefix string, ts int64, opts ...RegistryOption) *Registry {
	r := &Registry{
		cells:  make(map[string]*Cell),
		clock:  wallClock{},
		rng:    defaultRand{},
		labels: make(map[*Cell]MetricMeta),
	}
	r.epoch.lastInc = ts

	for _, opt := range opts {
		opt(r)
	}

	r.prefix = prefix

	return r
}

// Prefix reports the registry's short human-readable prefix.
func (r *Registry) Prefix() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prefix
}

// SetPrefix changes the registry's prefix.
func (r *Registry) SetPrefix(prefix string) error {
	if len(prefix) > maxNameLen {
		return fmt.Errorf("%w: prefix %q", ErrNameTooLong, prefix)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefix = prefix
	return nil
}

// RegistryStats is a diagnostic snapshot; never used on a correctness
// path.
type RegistryStats struct {
	LiveCells      int
	PendingRetires int
}

// Stats reports the number of live cells and cells still awaiting
// reclamation.
func (r *Registry) Stats() RegistryStats {
	r.mu.Lock()
	live := len(r.cells)
	r.mu.Unlock()
	return RegistryStats{LiveCells: live, PendingRetires: r.epoch.pendingRetires()}
}

// Close closes every live cell and marks the registry closed; further
// Create/Open calls fail with ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	cells := make([]*Cell, 0, len(r.cells))
	for _, c := range r.cells {
		cells = append(cells, c)
	}
	r.mu.Unlock()

	for _, c := range cells {
		c.Close()
	}
}

func validateName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}
	return nil
}

// insert validates and links a newly constructed cell's header into the
// name map and the lock-free list. On failure the cell is left
// unattached to any registry and can be discarded by the caller.
func (r *Registry) insert(cell *Cell) error {
	if err := validateName(cell.name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if _, exists := r.cells[cell.name]; exists {
		return ErrAlreadyExists
	}

	cell.reg = r
	r.cells[cell.name] = cell
	r.pushLocked(cell)

	return nil
}

// pushLocked links cell at the head of the intrusive list. Must be
// called with mu held.
func (r *Registry) pushLocked(cell *Cell) {
	old := r.head.Load()
	cell.setNext(old)
	cell.prev = nil
	if old != nil {
		old.prev = cell
	}
	r.head.Store(cell)
}

// removeLocked unlinks cell from the intrusive list. Must be called
// with mu held.
func (r *Registry) removeLocked(cell *Cell) {
	next := cell.loadNext()
	if next != nil {
		next.prev = cell.prev
	}
	if cell.prev != nil {
		cell.prev.setNext(next)
	} else if r.head.Load() == cell {
		r.head.Store(next)
	}
}

// close unlinks cell from the name map and list under the registry
// mutex, then retires it into the currently-live epoch's retire queue.
func (r *Registry) close(cell *Cell) {
	r.mu.Lock()
	if r.cells[cell.name] == cell {
		delete(r.cells, cell.name)
	}
	r.removeLocked(cell)
	r.mu.Unlock()

	r.labelMu.Lock()
	delete(r.labels, cell)
	r.labelMu.Unlock()

	r.epoch.retireCell(cell)
}

// Get returns the cell registered under name, if any, regardless of
// type.
func (r *Registry) Get(name string) (*Cell, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cells[name]
	return c, ok
}

// ForEach visits every cell reachable from the list head at the start of
// the call, without taking the registry mutex. It may or may not visit
// cells inserted concurrently, but it never visits a cell freed before
// the traversal started, since reclamation is gated on two epoch flips
// after removal. fn returning ErrStopIteration ends the traversal early
// without propagating an error to the caller.
func (r *Registry) ForEach(fn func(*Cell) error) error {
	for c := r.head.Load(); c != nil; c = c.loadNext() {
		if err := fn(c); err != nil {
			if err == ErrStopIteration {
				return nil
			}
			return err
		}
	}
	return nil
}

// SetMeta attaches advisory labels to cell. Labels never affect name
// uniqueness or record/read semantics.
func (r *Registry) SetMeta(cell *Cell, meta MetricMeta) {
	if r.interns != nil {
		interned := make(MetricMeta, len(meta))
		for k, v := range meta {
			interned[r.interns.intern(k)] = v
		}
		meta = interned
	}
	r.labelMu.Lock()
	r.labels[cell] = meta
	r.labelMu.Unlock()
}

// Meta returns the advisory labels attached to cell, if any.
func (r *Registry) Meta(cell *Cell) MetricMeta {
	r.labelMu.Lock()
	defer r.labelMu.Unlock()
	return r.labels[cell]
}
