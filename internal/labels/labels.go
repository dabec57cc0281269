// Package labels provides a small name-to-ID interner for metric label
// keys, so that a registry configured for label interning can store a
// compact ID instead of repeating the same label-key string across many
// cells.
package labels

import (
	"errors"
	"sync"
)

// ErrFrozen is returned by Intern for an unseen name once the interner has been frozen.
var ErrFrozen = errors.New("labels: interner is frozen")

// Interner maps label-key names to small integer IDs. Unlike a plain
// map cache, IDs are stable for the lifetime of the interner and are
// assigned in registration order, so a frozen interner's ID space can be
// sized and iterated ahead of time.
type Interner struct {
	mu        sync.RWMutex
	nameToID  map[string]int
	idToName  []string
	frozen    bool
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{nameToID: make(map[string]int)}
}

// Intern returns the ID for name, registering it if it hasn't been seen
// before. Once frozen, an unseen name returns ErrFrozen instead of
// allocating a new ID.
func (in *Interner) Intern(name string) (int, error) {
	in.mu.RLock()
	if id, ok := in.nameToID[name]; ok {
		in.mu.RUnlock()
		return id, nil
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	if id, ok := in.nameToID[name]; ok {
		return id, nil
	}
	if in.frozen {
		return -1, ErrFrozen
	}

	id := len(in.idToName)
	in.nameToID[name] = id
	in.idToName = append(in.idToName, name)
	return id, nil
}

// Name returns the name registered under id, or false if id is out of
// range.
func (in *Interner) Name(id int) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id < 0 || id >= len(in.idToName) {
		return "", false
	}
	return in.idToName[id], true
}

// ID returns the ID registered for name, or false if it hasn't been
// interned.
func (in *Interner) ID(name string) (int, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	id, ok := in.nameToID[name]
	return id, ok
}

// Freeze prevents further new names from being interned; previously
// interned names keep resolving.
func (in *Interner) Freeze() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.frozen = true
}

// Count returns the number of distinct names interned so far.
func (in *Interner) Count() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.idToName)
}
