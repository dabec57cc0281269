package otel

import (
	"context"
	"testing"

	"github.com/opticscore/optics"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectFloat64(t *testing.T, reader *sdkmetric.ManualReader) map[string]float64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := make(map[string]float64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			gauge, ok := m.Data.(metricdata.Gauge[float64])
			if !ok {
				continue
			}
			for _, dp := range gauge.DataPoints {
				out[m.Name] = dp.Value
			}
		}
	}
	return out
}

func TestNewRejectsNilMeter(t *testing.T) {
	if _, err := New(nil); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterReplaysLastSweep(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := New(provider.Meter("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Key: "prefix.host.requests", Value: 5.0})
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Key: "prefix.host.inflight", Value: 2.0})
	exp.OnEvent(optics.EventDone, nil)

	got := collectFloat64(t, reader)
	if got["prefix.host.requests"] != 5.0 {
		t.Fatalf("expected prefix.host.requests=5.0, got %v", got)
	}
	if got["prefix.host.inflight"] != 2.0 {
		t.Fatalf("expected prefix.host.inflight=2.0, got %v", got)
	}

	// A second sweep with a key dropped from the set must not keep
	// reporting the old value: the observed set tracks only what
	// committed in the most recently completed sweep.
	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Key: "prefix.host.requests", Value: 9.0})
	exp.OnEvent(optics.EventDone, nil)

	got = collectFloat64(t, reader)
	if got["prefix.host.requests"] != 9.0 {
		t.Fatalf("expected updated value 9.0, got %v", got)
	}
	if _, present := got["prefix.host.inflight"]; present {
		t.Fatalf("expected inflight to drop out of the observed set, got %v", got)
	}
}

func TestExporterCreatesInstrumentsLazily(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := New(provider.Meter("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Key: "prefix.host.a", Value: 1.0})
	exp.OnEvent(optics.EventDone, nil)

	exp.mu.Lock()
	n := len(exp.instruments)
	exp.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected 1 instrument after the first sweep, got %d", n)
	}

	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Key: "prefix.host.a", Value: 1.0})
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Key: "prefix.host.b", Value: 2.0})
	exp.OnEvent(optics.EventDone, nil)

	exp.mu.Lock()
	n = len(exp.instruments)
	exp.mu.Unlock()
	if n != 2 {
		t.Fatalf("expected 2 instruments after the second sweep introduces a new key, got %d", n)
	}
}

func TestOnFreeUnregistersCallback(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := New(provider.Meter("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Key: "prefix.host.a", Value: 1.0})
	exp.OnEvent(optics.EventDone, nil)

	exp.OnFree()

	exp.mu.Lock()
	reg := exp.registration
	exp.mu.Unlock()
	if reg != nil {
		t.Fatalf("expected registration to be cleared after OnFree")
	}
}
