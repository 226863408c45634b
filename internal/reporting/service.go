package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
	"github.com/redprice-lab/redprice-analytics/internal/cache"
	"github.com/redprice-lab/redprice-analytics/internal/core/analytics"
	"github.com/redprice-lab/redprice-analytics/internal/core/storage"
)

const (
	historyBatchSize     = 5000
	maxHistoryIterations = 20 // Limit to prevent timeout/OOM on runaway histories
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid report query")

// Service implements the report query layer. Each report is a pure
// recomputation over a snapshot of the full order history; the service only
// adds snapshot loading, concurrent-request dedup and optional caching on
// top of the analytics functions.
type Service struct {
	store       storage.OrderStore
	cache       cache.ReportCache
	profiles    map[string]analytics.ClassificationProfile
	group       singleflight.Group
	cacheTTL    time.Duration
	batchSize   int
	defaultTopN int
	costRatio   decimal.Decimal
	nowFn       func() time.Time
}

// Options tune the service. Zero values fall back to sane defaults.
type Options struct {
	CacheTTL  time.Duration
	BatchSize int
	TopN      int
	CostRatio decimal.Decimal
}

// NewService creates a new reporting service.
func NewService(
	store storage.OrderStore,
	reportCache cache.ReportCache,
	profiles []analytics.ClassificationProfile,
	opts Options,
) *Service {
	if store == nil {
		panic("reporting: store must not be nil")
	}
	if reportCache == nil {
		reportCache = cache.NoopReportCache{}
	}

	profileMap := make(map[string]analytics.ClassificationProfile, len(profiles))
	for _, p := range profiles {
		profileMap[p.Name] = p
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = historyBatchSize
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if !opts.CostRatio.IsPositive() {
		opts.CostRatio = analytics.DefaultCostRatio
	}

	return &Service{
		store:       store,
		cache:       reportCache,
		profiles:    profileMap,
		cacheTTL:    opts.CacheTTL,
		batchSize:   opts.BatchSize,
		defaultTopN: opts.TopN,
		costRatio:   opts.CostRatio,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// ABCReport builds a classification report for a dimension or a named
// profile.
func (s *Service) ABCReport(ctx context.Context, req ABCQueryRequest) (*ABCReportResponse, error) {
	profile, err := s.resolveProfile(req)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports:abc:%s:%s:%s", profile.Name, profile.Dimension, profile.ValueField)
	var resp ABCReportResponse
	if err := s.withCache(ctx, key, &resp, func() (interface{}, error) {
		return s.buildABCReport(ctx, profile)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TopProducts builds the best-sellers report. limit <= 0 uses the configured
// default.
func (s *Service) TopProducts(ctx context.Context, limit int) (*TopProductsResponse, error) {
	if limit <= 0 {
		limit = s.defaultTopN
	}

	key := fmt.Sprintf("reports:top-products:%d", limit)
	var resp TopProductsResponse
	if err := s.withCache(ctx, key, &resp, func() (interface{}, error) {
		return s.buildTopProducts(ctx, limit)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summary builds the whole-dataset KPI report.
func (s *Service) Summary(ctx context.Context) (*SummaryResponse, error) {
	var resp SummaryResponse
	if err := s.withCache(ctx, "reports:summary", &resp, func() (interface{}, error) {
		return s.buildSummary(ctx)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profitability builds the heuristic margin report for one product.
func (s *Service) Profitability(ctx context.Context, product analytics.ProductRef) (*ProfitabilityResponse, error) {
	if product.Name == "" {
		return nil, invalidQueryf("product name is required")
	}
	if product.Price.IsNegative() {
		return nil, invalidQueryf("product price must not be negative")
	}

	key := fmt.Sprintf("reports:profitability:%s:%s:%s", product.Name, product.SupplierID, product.Price.String())
	var resp ProfitabilityResponse
	if err := s.withCache(ctx, key, &resp, func() (interface{}, error) {
		return s.buildProfitability(ctx, product)
	}); err != nil {
		return nil, err
	}
	return &resp, nil
}

// resolveProfile maps a report name to its classification profile. A name
// matching a built-in dimension gets an ad-hoc default profile (with an
// optional value-field override); anything else must be a configured profile.
func (s *Service) resolveProfile(req ABCQueryRequest) (analytics.ClassificationProfile, error) {
	if analytics.ValidDimension(req.Report) {
		valueField := req.ValueField
		if valueField == "" {
			valueField = analytics.ValueRevenue
		}
		if !analytics.ValidValueField(valueField) {
			return analytics.ClassificationProfile{}, invalidQueryf("unknown value field: %s", req.ValueField)
		}
		return analytics.ClassificationProfile{
			Name:       "abc_" + req.Report,
			Dimension:  req.Report,
			ValueField: valueField,
			Thresholds: analytics.DefaultThresholds,
		}, nil
	}

	profile, ok := s.profiles[req.Report]
	if !ok {
		return analytics.ClassificationProfile{}, invalidQueryf("unknown report: %s", req.Report)
	}
	if req.ValueField != "" && req.ValueField != profile.ValueField {
		return analytics.ClassificationProfile{}, invalidQueryf("profile %s fixes the value field to %s", profile.Name, profile.ValueField)
	}
	return profile, nil
}

func (s *Service) buildABCReport(ctx context.Context, profile analytics.ClassificationProfile) (*ABCReportResponse, error) {
	orders, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	buckets := analytics.Aggregate(orders, analytics.Dimensions[profile.Dimension])
	classified := analytics.Classify(buckets, analytics.Values[profile.ValueField], profile.Thresholds)

	return &ABCReportResponse{
		Profile:     profile.Name,
		Dimension:   profile.Dimension,
		ValueField:  profile.ValueField,
		AThreshold:  profile.Thresholds.A,
		BThreshold:  profile.Thresholds.B,
		GeneratedAt: s.nowFn(),
		TotalOrders: len(orders),
		Buckets:     classified,
	}, nil
}

func (s *Service) buildTopProducts(ctx context.Context, limit int) (*TopProductsResponse, error) {
	orders, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	buckets := analytics.Aggregate(orders, analytics.Dimensions[analytics.DimProduct])

	return &TopProductsResponse{
		Limit:       limit,
		GeneratedAt: s.nowFn(),
		TotalOrders: len(orders),
		Products:    analytics.TopN(buckets, limit),
	}, nil
}

func (s *Service) buildSummary(ctx context.Context) (*SummaryResponse, error) {
	orders, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	return &SummaryResponse{
		GeneratedAt:  s.nowFn(),
		SummaryStats: analytics.Summarize(orders),
	}, nil
}

func (s *Service) buildProfitability(ctx context.Context, product analytics.ProductRef) (*ProfitabilityResponse, error) {
	orders, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	return &ProfitabilityResponse{
		Product:             product,
		CostRatio:           s.costRatio,
		GeneratedAt:         s.nowFn(),
		ProfitabilityReport: analytics.EstimateProfitability(product, orders, s.costRatio),
	}, nil
}

// loadHistory pages through the entire order history in ingest order. The
// engine receives the snapshot by value and never reaches into storage.
func (s *Service) loadHistory(ctx context.Context) ([]v1.Order, error) {
	var orders []v1.Order
	cursor := int64(0)
	iterations := 0

	for {
		// Safety limit: prevent unbounded scanning of a runaway history.
		if iterations >= maxHistoryIterations {
			slog.Warn("Order history scan reached maximum iteration limit",
				"iterations", iterations,
				"orders_loaded", len(orders),
				"max_iterations", maxHistoryIterations,
			)
			return nil, fmt.Errorf("order history scan exceeded maximum iterations (%d batches, %d orders total)",
				maxHistoryIterations, len(orders))
		}

		batch, err := s.store.ListOrdersAfterCursor(ctx, cursor, s.batchSize)
		if err != nil {
			return nil, fmt.Errorf("load order history: %w", err)
		}
		if len(batch) == 0 {
			return orders, nil
		}

		orders = append(orders, batch...)
		iterations++

		cursor = batch[len(batch)-1].IngestSeq
		if len(batch) < s.batchSize {
			return orders, nil
		}
	}
}

// withCache serves out from the cache when possible; otherwise computes the
// report once per key across concurrent callers, stores the rendered payload
// and unmarshals it into out. Cache failures degrade to recomputation.
func (s *Service) withCache(ctx context.Context, key string, out interface{}, compute func() (interface{}, error)) error {
	if payload, hit, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("Report cache read failed", "key", key, "error", err)
	} else if hit {
		if err := json.Unmarshal(payload, out); err == nil {
			return nil
		}
		slog.Warn("Report cache payload corrupt, recomputing", "key", key)
	}

	payload, err, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		rendered, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
		if err := s.cache.Set(ctx, key, rendered, s.cacheTTL); err != nil {
			slog.Warn("Report cache write failed", "key", key, "error", err)
		}
		return rendered, nil
	})
	if err != nil {
		return err
	}

	return json.Unmarshal(payload.([]byte), out)
}

func invalidQueryf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuery, fmt.Sprintf(format, args...))
}
