package optics

import "testing"

// TestHistogramBoundaries mirrors the S5 scenario.
func TestHistogramBoundaries(t *testing.T) {
	r := NewAt("prefix", 0)
	h, err := r.CreateHistogram("response_size", []float64{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("CreateHistogram: %v", err)
	}

	for _, v := range []float64{5, 10, 15, 20, 25, 30, 35, 40} {
		h.Record(v)
	}

	retired, _ := r.epoch.flip(1)
	got, err := h.Read(retired)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Below != 1 {
		t.Fatalf("expected below=1, got %d", got.Below)
	}
	want := []int64{2, 2, 2}
	if len(got.Counts) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(got.Counts))
	}
	for i, c := range want {
		if got.Counts[i] != c {
			t.Fatalf("bucket %d: expected %d, got %d", i, c, got.Counts[i])
		}
	}
	if got.Above != 1 {
		t.Fatalf("expected above=1, got %d", got.Above)
	}
}

func TestNewHistogramRejectsInvalidEdges(t *testing.T) {
	r := NewAt("prefix", 0)

	if _, err := r.CreateHistogram("a", []float64{1}); err == nil {
		t.Fatalf("expected error for fewer than 2 edges")
	}
	if _, err := r.CreateHistogram("b", []float64{10, 10, 20}); err == nil {
		t.Fatalf("expected error for non-ascending edges")
	}
	many := make([]float64, maxHistogramBuckets+2)
	for i := range many {
		many[i] = float64(i)
	}
	if _, err := r.CreateHistogram("c", many); err == nil {
		t.Fatalf("expected error for too many buckets")
	}
}

func TestHistogramBucketIndex(t *testing.T) {
	h, err := newHistogram("h", []float64{10, 20, 30})
	if err != nil {
		t.Fatalf("newHistogram: %v", err)
	}

	cases := []struct {
		v    float64
		want int
	}{
		{5, -1},
		{10, 0},
		{15, 0},
		{20, 1},
		{29.999, 1},
		{30, 2},
		{100, 2},
	}
	for _, c := range cases {
		if got := h.bucketIndex(c.v); got != c.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", c.v, got, c.want)
		}
	}
}

func TestNormalizeHistogramKeysUpperEdge(t *testing.T) {
	v := HistogramValue{Below: 1, Counts: []int64{2, 3}, Above: 1, Edges: []float64{10, 20, 30}}
	var suffixes []string
	normalizeHistogram(v, 1, func(suffix string, value float64) {
		suffixes = append(suffixes, suffix)
	})
	want := []string{"below", "<20>", "<30>", "above"}
	if len(suffixes) != len(want) {
		t.Fatalf("expected %d emissions, got %d (%v)", len(want), len(suffixes), suffixes)
	}
	for i, s := range want {
		if suffixes[i] != s {
			t.Fatalf("emission %d: expected %q, got %q", i, s, suffixes[i])
		}
	}
}
