// Package redis publishes optics poll sweeps to a Redis stream via
// github.com/redis/go-redis/v9, batching each sweep's emissions into a
// pipelined XADD against a configurable stream key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/opticscore/optics"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the stream write fails.
var ErrRedisUnavailable = errors.New("export/redis: redis unavailable")

// Config holds the Exporter's tunables.
type Config struct {
	// Stream is the Redis stream key every sweep's emissions are
	// XADD'd to. Defaults to "optics:metrics" if empty.
	Stream string
	// MaxLen bounds the stream with XADD MAXLEN ~ if > 0.
	MaxLen int64
}

// Exporter batches one sweep's metric emissions into a pipelined set of
// XADD calls against a configured stream.
type Exporter struct {
	client redis.UniversalClient
	cfg    Config

	mu      sync.Mutex
	pending []*optics.PollValue
}

// New creates an Exporter backed by client.
func New(client redis.UniversalClient, cfg Config) *Exporter {
	if cfg.Stream == "" {
		cfg.Stream = "optics:metrics"
	}
	return &Exporter{client: client, cfg: cfg}
}

// OnEvent implements optics.Backend. Emissions are buffered and flushed
// as a single pipeline on EventDone, since poll's contract forbids
// retaining *PollValue past OnEvent's own return.
func (e *Exporter) OnEvent(kind optics.EventKind, poll *optics.PollValue) {
	switch kind {
	case optics.EventBegin:
		e.mu.Lock()
		e.pending = e.pending[:0]
		e.mu.Unlock()
	case optics.EventMetric:
		value, _ := poll.Value.(float64)
		e.mu.Lock()
		e.pending = append(e.pending, &optics.PollValue{
			Host: poll.Host, Key: poll.Key, Ts: poll.Ts, Value: value,
		})
		e.mu.Unlock()
	case optics.EventDone:
		_ = e.flush(context.Background())
	}
}

func (e *Exporter) flush(ctx context.Context) error {
	e.mu.Lock()
	batch := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	pipe := e.client.Pipeline()
	for _, pv := range batch {
		args := &redis.XAddArgs{
			Stream: e.cfg.Stream,
			Values: map[string]any{
				"host":  pv.Host,
				"key":   pv.Key,
				"ts":    strconv.FormatInt(pv.Ts, 10),
				"value": strconv.FormatFloat(pv.Value.(float64), 'g', -1, 64),
			},
		}
		if e.cfg.MaxLen > 0 {
			args.MaxLen = e.cfg.MaxLen
			args.Approx = true
		}
		pipe.XAdd(ctx, args)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// OnFree implements optics.Backend; the caller owns the redis client's
// lifecycle, so there's nothing to release here.
func (e *Exporter) OnFree() {}
