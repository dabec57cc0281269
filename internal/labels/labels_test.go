package labels

import "testing"

func TestInternAssignsStableIDs(t *testing.T) {
	in := NewInterner()

	id1, err := in.Intern("region")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	id2, err := in.Intern("shard")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("distinct names should get distinct IDs")
	}

	again, err := in.Intern("region")
	if err != nil {
		t.Fatalf("Intern (repeat): %v", err)
	}
	if again != id1 {
		t.Fatalf("re-interning %q should return the same ID, got %d want %d", "region", again, id1)
	}
}

func TestNameAndIDRoundTrip(t *testing.T) {
	in := NewInterner()
	id, _ := in.Intern("region")

	name, ok := in.Name(id)
	if !ok || name != "region" {
		t.Fatalf("Name(%d) = %q, %v; want %q, true", id, name, ok, "region")
	}

	gotID, ok := in.ID("region")
	if !ok || gotID != id {
		t.Fatalf("ID(%q) = %d, %v; want %d, true", "region", gotID, ok, id)
	}

	if _, ok := in.Name(id + 100); ok {
		t.Fatalf("Name should report false for an out-of-range ID")
	}
	if _, ok := in.ID("unknown"); ok {
		t.Fatalf("ID should report false for a name never interned")
	}
}

func TestFreezeRejectsNewNamesButKeepsOld(t *testing.T) {
	in := NewInterner()
	id, _ := in.Intern("region")

	in.Freeze()

	if _, err := in.Intern("shard"); err != ErrFrozen {
		t.Fatalf("expected ErrFrozen for a new name after Freeze, got %v", err)
	}

	again, err := in.Intern("region")
	if err != nil {
		t.Fatalf("re-interning a name already known before Freeze should still work: %v", err)
	}
	if again != id {
		t.Fatalf("expected the same ID %d for an already-known name, got %d", id, again)
	}
}

func TestCount(t *testing.T) {
	in := NewInterner()
	if in.Count() != 0 {
		t.Fatalf("expected 0 interned names initially, got %d", in.Count())
	}

	in.Intern("a")
	in.Intern("b")
	in.Intern("a")

	if in.Count() != 2 {
		t.Fatalf("expected 2 distinct names, got %d", in.Count())
	}
}
