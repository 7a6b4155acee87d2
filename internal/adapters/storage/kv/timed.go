package kv

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fitgympro/internal/adapters/http/perf"
)

// DefaultSlowOpMs is the default threshold for slow store operation warnings.
const DefaultSlowOpMs = 50

// TimedStore wraps a KV to log slow operations and record them to a collector.
// Satisfies KV so it can be passed to any accessor constructor.
type TimedStore struct {
	inner     KV
	collector *perf.Collector
	threshold float64
}

var _ KV = (*TimedStore)(nil)

// NewTimedStore wraps inner with timing instrumentation.
// PRE: inner is non-nil; slowMs <= 0 selects DefaultSlowOpMs
// POST: Returns a TimedStore that logs slow ops and records to collector (when non-nil)
func NewTimedStore(inner KV, collector *perf.Collector, slowMs int) *TimedStore {
	if slowMs <= 0 {
		slowMs = DefaultSlowOpMs
	}
	return &TimedStore{inner: inner, collector: collector, threshold: float64(slowMs)}
}

// family trims per-user and per-token suffixes so stats group by key shape.
func family(key string) string {
	for _, p := range []string{"fitgympro_session_", "fitgympro_data_", "fitgympro_cart_", "fitgympro_notifications_", "fitgympro_last_tab_"} {
		if strings.HasPrefix(key, p) {
			return p + "*"
		}
	}
	return key
}

func (t *TimedStore) observe(op, key string, start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	name := "kv." + op + " " + family(key)

	if durationMs >= t.threshold {
		slog.Warn("slow_store_op", "op", op, "key", key, "duration_ms", durationMs)
	} else {
		slog.Debug("store_op", "op", op, "key", key, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindStoreOp,
			Path:       name,
			Failed:     err != nil,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

func (t *TimedStore) Get(ctx context.Context, key string) (Record, bool, error) {
	start := time.Now()
	rec, ok, err := t.inner.Get(ctx, key)
	t.observe("Get", key, start, err)
	return rec, ok, err
}

func (t *TimedStore) Set(ctx context.Context, key string, value any) error {
	start := time.Now()
	err := t.inner.Set(ctx, key, value)
	t.observe("Set", key, start, err)
	return err
}

func (t *TimedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := t.inner.Delete(ctx, key)
	t.observe("Delete", key, start, err)
	return err
}

func (t *TimedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := t.inner.Keys(ctx, prefix)
	t.observe("Keys", prefix, start, err)
	return keys, err
}
