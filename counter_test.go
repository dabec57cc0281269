package optics

import "testing"

func TestCounterIncAndRead(t *testing.T) {
	r := NewAt("prefix", 0)
	c, err := r.CreateCounter("requests")
	if err != nil {
		t.Fatalf("CreateCounter: %v", err)
	}

	for i := 0; i < 10; i++ {
		c.Inc(1)
	}

	live := r.epoch.current()
	retired, _ := r.epoch.flip(1)
	if retired != live {
		t.Fatalf("flip returned %v, want previous live epoch %v", retired, live)
	}

	v, err := c.Read(retired)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v.Count != 10 {
		t.Fatalf("expected count 10, got %d", v.Count)
	}

	// read-reset idempotence: a second read without intervening
	// records returns zero.
	v2, err := c.Read(retired)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v2.Count != 0 {
		t.Fatalf("expected zero on second read, got %d", v2.Count)
	}
}

func TestCounterDoubleBufferIndependence(t *testing.T) {
	r := NewAt("prefix", 0)
	c, _ := r.CreateCounter("requests")

	c.Inc(5)
	retired, _ := r.epoch.flip(1)
	live := r.epoch.current()
	if live == retired {
		t.Fatalf("live epoch should differ from retired epoch")
	}

	c.Inc(3) // goes to the new live slot

	v, err := c.Read(retired)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v.Count != 5 {
		t.Fatalf("recording into live epoch altered retired read: got %d, want 5", v.Count)
	}
}

func TestNormalizeCounterDividesByElapsed(t *testing.T) {
	var got []float64
	normalizeCounter(CounterValue{Count: 10}, 2, func(suffix string, value float64) {
		if suffix != "" {
			t.Fatalf("counter suffix should be empty, got %q", suffix)
		}
		got = append(got, value)
	})
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("expected single emission of 5, got %v", got)
	}
}

func TestRateElapsedClampsToOne(t *testing.T) {
	if rateElapsed(0) != 1 {
		t.Fatalf("rateElapsed(0) should clamp to 1")
	}
	if rateElapsed(-5) != 1 {
		t.Fatalf("rateElapsed(-5) should clamp to 1")
	}
	if rateElapsed(3) != 3 {
		t.Fatalf("rateElapsed(3) should pass through")
	}
}
