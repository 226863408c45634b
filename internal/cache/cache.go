package cache

import (
	"context"
	"time"
)

// ReportCache memoizes rendered report payloads for a short TTL. Reports are
// pure recomputations over the full order history, so caching is an
// optimization only: every implementation may miss at any time and
// correctness never depends on a hit.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// NoopReportCache never hits. Used when no cache backend is configured.
type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}
