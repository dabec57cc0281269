// Command opticsd wires a Registry, a demo set of metric cells, and a
// Poller against a backend selected by flag.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/opticscore/optics"
	otelexp "github.com/opticscore/optics/export/otel"
	"github.com/opticscore/optics/export/prometheus"
	"github.com/opticscore/optics/export/redis"
	"github.com/opticscore/optics/export/stdout"
	goredis "github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type stdLogger struct{}

func (stdLogger) Warnf(format string, args ...any)  { fmt.Fprintf(os.Stderr, "WARN "+format+"\n", args...) }
func (stdLogger) Errorf(format string, args ...any) { fmt.Fprintf(os.Stderr, "ERROR "+format+"\n", args...) }

func main() {
	var (
		prefix      = flag.String("prefix", "opticsd", "registry prefix")
		backendFlag = flag.String("backend", "stdout", "backend: stdout, prometheus, otel, or redis")
		interval    = flag.Duration("interval", time.Second, "poll interval")
		promAddr    = flag.String("prometheus-addr", ":9090", "listen address for the prometheus backend")
		redisAddr   = flag.String("redis-addr", "", "redis address; empty uses an in-process miniredis")
		redisStream = flag.String("redis-stream", "optics:metrics", "redis stream name for the redis backend")
		withLabels  = flag.Bool("labels", false, "attach demo advisory labels to every cell and enable label interning")
		debug       = flag.Bool("debug", false, "print registry stats alongside each sweep")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	regOpts := []optics.RegistryOption{optics.WithLogger(stdLogger{})}
	if *withLabels {
		regOpts = append(regOpts, optics.WithLabelInterning())
	}
	reg := optics.New(*prefix, regOpts...)
	poller := optics.NewPoller(reg)

	requests, _ := reg.CreateCounter("requests")
	latency, _ := reg.CreateDist("latency")
	inflight, _ := reg.CreateGauge("inflight")
	sizes, _ := reg.CreateHistogram("response_size", []float64{100, 1000, 10000, 100000})
	p99, _ := reg.CreateQuantile("latency_p99", 0.99, 0, 1)

	if *withLabels {
		demo := optics.MetricMeta{"service": "opticsd", "region": "us-east"}
		reg.SetMeta(requests.Cell, demo)
		reg.SetMeta(latency.Cell, demo)
		reg.SetMeta(inflight.Cell, demo)
		reg.SetMeta(sizes.Cell, demo)
		reg.SetMeta(p99.Cell, demo)
	}

	switch *backendFlag {
	case "stdout":
		_ = poller.AddBackend(stdout.New(os.Stdout))
	case "prometheus":
		exporter := prometheus.New()
		_ = poller.AddBackend(exporter)
		mux := http.NewServeMux()
		mux.Handle("/metrics", exporter.Handler())
		go func() {
			if err := http.ListenAndServe(*promAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "prometheus server: %v\n", err)
			}
		}()
		fmt.Printf("serving prometheus metrics on %s/metrics\n", *promAddr)
	case "otel":
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		exporter, err := otelexp.New(provider.Meter("opticsd"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "otel exporter: %v\n", err)
			os.Exit(1)
		}
		_ = poller.AddBackend(exporter)
		go collectOtel(ctx, reader, *interval)
	case "redis":
		client, cleanup := redisClient(*redisAddr)
		defer cleanup()
		_ = poller.AddBackend(redis.New(client, redis.Config{Stream: *redisStream}))
	default:
		fmt.Fprintf(os.Stderr, "unknown backend %q\n", *backendFlag)
		os.Exit(2)
	}

	stopDemo := make(chan struct{})
	go demoLoad(stopDemo, requests, latency, inflight, sizes, p99)

	if *debug {
		go func() {
			ticker := time.NewTicker(*interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					stats := reg.Stats()
					fmt.Printf("registry: live=%d pending_retires=%d\n", stats.LiveCells, stats.PendingRetires)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	if err := poller.Run(ctx, *interval); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "poller stopped: %v\n", err)
	}

	close(stopDemo)
	poller.Close()
	reg.Close()
}

// collectOtel periodically drains the otel backend's manual reader and
// prints how many instruments it observed, so the otel backend path has
// a visible effect even without a real OTLP collector attached.
func collectOtel(ctx context.Context, reader *sdkmetric.ManualReader, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			var rm metricdata.ResourceMetrics
			if err := reader.Collect(ctx, &rm); err != nil {
				fmt.Fprintf(os.Stderr, "otel collect: %v\n", err)
				continue
			}
			n := 0
			for _, sm := range rm.ScopeMetrics {
				n += len(sm.Metrics)
			}
			fmt.Printf("otel: collected %d instruments\n", n)
		case <-ctx.Done():
			return
		}
	}
}

func redisClient(addr string) (goredis.UniversalClient, func()) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{mr.Addr()}})
		return client, func() { _ = client.Close(); mr.Close() }
	}
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{addr}})
	return client, func() { _ = client.Close() }
}

func demoLoad(stop <-chan struct{}, requests *optics.Counter, latency *optics.Dist, inflight *optics.Gauge, sizes *optics.Histogram, p99 *optics.Quantile) {
	r := rand.New(rand.NewSource(1))
	active := 0.0
	for {
		select {
		case <-stop:
			return
		default:
		}
		requests.Inc(1)
		sample := r.Float64() * 200
		latency.Record(sample)
		p99.Update(sample)
		sizes.Record(r.Float64() * 120000)
		if r.Intn(2) == 0 {
			active++
		} else if active > 0 {
			active--
		}
		inflight.Set(active)
		time.Sleep(5 * time.Millisecond)
	}
}
