package stdout

import (
	"strings"
	"testing"

	"github.com/opticscore/optics"
)

func TestOnEventWritesMetricLine(t *testing.T) {
	var b strings.Builder
	e := New(&b)

	e.OnEvent(optics.EventBegin, nil)
	e.OnEvent(optics.EventMetric, &optics.PollValue{Ts: 42, Key: "prefix.host.requests", Value: 7.5})
	e.OnEvent(optics.EventDone, nil)

	want := "42 prefix.host.requests 7.5\n"
	if got := b.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestOnEventIgnoresBeginAndDone(t *testing.T) {
	var b strings.Builder
	e := New(&b)

	e.OnEvent(optics.EventBegin, nil)
	e.OnEvent(optics.EventDone, nil)

	if got := b.String(); got != "" {
		t.Fatalf("expected no output from begin/done events, got %q", got)
	}
}

func TestOnEventWritesOneLinePerMetric(t *testing.T) {
	var b strings.Builder
	e := New(&b)

	e.OnEvent(optics.EventBegin, nil)
	e.OnEvent(optics.EventMetric, &optics.PollValue{Ts: 1, Key: "prefix.host.a", Value: 1.0})
	e.OnEvent(optics.EventMetric, &optics.PollValue{Ts: 1, Key: "prefix.host.b", Value: 2.0})
	e.OnEvent(optics.EventDone, nil)

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(lines), lines)
	}
}

func TestOnFreeIsNoop(t *testing.T) {
	var b strings.Builder
	e := New(&b)
	e.OnFree()
	if got := b.String(); got != "" {
		t.Fatalf("OnFree should not write anything, got %q", got)
	}
}
