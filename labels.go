package optics

import "github.com/opticscore/optics/internal/labels"

// labelInterner deduplicates the label-key strings attached to cells via
// SetMeta, so a registry under WithLabelInterning doesn't keep
// reallocating the same small set of key strings per cell.
type labelInterner struct {
	in *labels.Interner
}

func newLabelInterner() *labelInterner {
	return &labelInterner{in: labels.NewInterner()}
}

// intern returns the canonical, deduplicated copy of key.
func (li *labelInterner) intern(key string) string {
	id, err := li.in.Intern(key)
	if err != nil {
		// Interner is frozen and key is unseen; fall back to the
		// caller's own string rather than dropping the label.
		return key
	}
	name, _ := li.in.Name(id)
	return name
}

// Freeze stops the interner from accepting new label keys. Intended to
// be called once a registry's label schema has stabilized, to catch
// accidental high-cardinality label keys creeping in later.
func (li *labelInterner) Freeze() {
	li.in.Freeze()
}

// Count reports the number of distinct label keys interned so far.
func (li *labelInterner) Count() int {
	return li.in.Count()
}
