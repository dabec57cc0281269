package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/opticscore/optics"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestOnEventFlushesPendingOnDone(t *testing.T) {
	_, client := newTestRedis(t)
	exp := New(client, Config{Stream: "test:stream"})

	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Host: "h", Key: "prefix.h.requests", Ts: 10, Value: 5.0})
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Host: "h", Key: "prefix.h.inflight", Ts: 10, Value: 2.0})
	exp.OnEvent(optics.EventDone, nil)

	length, err := client.XLen(context.Background(), "test:stream").Result()
	if err != nil {
		t.Fatalf("XLen: %v", err)
	}
	if length != 2 {
		t.Fatalf("expected 2 entries in the stream, got %d", length)
	}

	entries, err := client.XRange(context.Background(), "test:stream", "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange: %v", err)
	}
	if entries[0].Values["key"] != "prefix.h.requests" {
		t.Fatalf("expected first entry's key field to be %q, got %v", "prefix.h.requests", entries[0].Values["key"])
	}
}

func TestOnEventDefaultsStreamName(t *testing.T) {
	_, client := newTestRedis(t)
	exp := New(client, Config{})

	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventMetric, &optics.PollValue{Host: "h", Key: "prefix.h.requests", Ts: 1, Value: 1.0})
	exp.OnEvent(optics.EventDone, nil)

	length, err := client.XLen(context.Background(), "optics:metrics").Result()
	if err != nil {
		t.Fatalf("XLen: %v", err)
	}
	if length != 1 {
		t.Fatalf("expected 1 entry on the default stream name, got %d", length)
	}
}

func TestOnEventEmptySweepWritesNothing(t *testing.T) {
	_, client := newTestRedis(t)
	exp := New(client, Config{Stream: "test:empty"})

	exp.OnEvent(optics.EventBegin, nil)
	exp.OnEvent(optics.EventDone, nil)

	length, err := client.XLen(context.Background(), "test:empty").Result()
	if err != nil {
		t.Fatalf("XLen: %v", err)
	}
	if length != 0 {
		t.Fatalf("expected no entries from an empty sweep, got %d", length)
	}
}

func TestOnFreeIsNoop(t *testing.T) {
	_, client := newTestRedis(t)
	exp := New(client, Config{})
	exp.OnFree()
}
