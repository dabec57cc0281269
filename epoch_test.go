package optics

import "testing"

func TestEpochManagerFlipAlternates(t *testing.T) {
	var e epochManager
	if e.current() != 0 {
		t.Fatalf("expected initial epoch 0, got %v", e.current())
	}

	retired, _ := e.flip(1)
	if retired != 0 {
		t.Fatalf("expected first flip to retire epoch 0, got %v", retired)
	}
	if e.current() != 1 {
		t.Fatalf("expected current epoch 1 after first flip, got %v", e.current())
	}

	retired, _ = e.flip(2)
	if retired != 1 {
		t.Fatalf("expected second flip to retire epoch 1, got %v", retired)
	}
	if e.current() != 0 {
		t.Fatalf("expected current epoch 0 after second flip, got %v", e.current())
	}
}

func TestEpochManagerFlipReturnsPreviousTimestamp(t *testing.T) {
	e := epochManager{lastInc: 10}
	_, prevTs := e.flip(20)
	if prevTs != 10 {
		t.Fatalf("expected previous timestamp 10, got %d", prevTs)
	}
	if e.lastInc != 20 {
		t.Fatalf("expected lastInc updated to 20, got %d", e.lastInc)
	}
}

func TestEpochManagerRetireAndDrainTwoFlipDelay(t *testing.T) {
	var e epochManager
	c := &Cell{typ: TypeCounter, name: "x", reg: &Registry{}}

	e.retireCell(c) // lands on retire[e.current()] == retire[0]

	if n := e.pendingRetires(); n != 1 {
		t.Fatalf("expected 1 pending retire, got %d", n)
	}

	e.flip(1) // drains retire[1] (empty); our node is still on retire[0]
	if n := e.pendingRetires(); n != 1 {
		t.Fatalf("node freed too early: expected 1 pending retire, got %d", n)
	}
	if c.reg == nil {
		t.Fatalf("cell should not be released after only one flip")
	}

	e.flip(2) // drains retire[0], releasing our node
	if n := e.pendingRetires(); n != 0 {
		t.Fatalf("expected 0 pending retires after the second flip, got %d", n)
	}
}
