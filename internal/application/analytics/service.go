package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/domain/shared"
	"github.com/storefront/analytics/internal/infrastructure/telemetry"
)

const serviceName = "analytics"

// MetricsCache stores serialized report payloads for a short time
type MetricsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Recorder receives facet timings and cache outcomes
type Recorder interface {
	RecordFacet(ctx context.Context, facet string, elapsed time.Duration, err error)
	RecordCacheLookup(ctx context.Context, report string, hit bool)
}

type noopRecorder struct{}

func (noopRecorder) RecordFacet(context.Context, string, time.Duration, error) {}
func (noopRecorder) RecordCacheLookup(context.Context, string, bool)           {}

// Service computes the analytics reports on top of an aggregation engine
type Service struct {
	repo         analytics.Repository
	cal          Calibration
	logger       *zap.Logger
	cache        MetricsCache
	dashboardTTL time.Duration
	reportTTL    time.Duration
	recorder     Recorder
	clock        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithCache enables report caching. A zero TTL disables caching for that report family.
func WithCache(cache MetricsCache, dashboardTTL, reportTTL time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.dashboardTTL = dashboardTTL
		s.reportTTL = reportTTL
	}
}

// WithRecorder sets the facet/cache metrics sink
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService creates a new analytics Service
func NewService(repo analytics.Repository, cal Calibration, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:     repo,
		cal:      cal,
		logger:   logger,
		recorder: noopRecorder{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// now is read once per request; every window of the request derives from it
func (s *Service) now() time.Time {
	return s.clock().In(s.cal.location())
}

func (s *Service) resolve(resolver analytics.RangeResolver, token string, now time.Time) (analytics.TimeWindow, error) {
	window, recognized := resolver.Resolve(token, now)
	if !recognized {
		if s.cal.StrictRanges {
			return analytics.TimeWindow{}, errInvalidRange(token, resolver.Tokens())
		}
		s.logger.Debug("Unrecognized range token, using default window",
			zap.String("token", token),
			zap.String("default", resolver.Default()),
		)
	}
	return window, nil
}

// facet runs fn on the group under its own span and records its latency
func (s *Service) facet(ctx context.Context, g *errgroup.Group, name string, fn func(ctx context.Context) error) {
	g.Go(func() error {
		fctx, span := telemetry.StartServiceSpan(ctx, serviceName, "facet."+name)
		defer span.End()

		start := time.Now()
		err := fn(fctx)
		s.recorder.RecordFacet(fctx, name, time.Since(start), err)
		if err != nil {
			telemetry.RecordError(span, err)
			return fmt.Errorf("%s facet: %w", name, err)
		}
		return nil
	})
}

// cached serves key from the cache when present, otherwise builds and stores the value.
// Cache errors never fail the request.
func cached[T any](ctx context.Context, s *Service, report, key string, ttl time.Duration, build func() (*T, error)) (*T, error) {
	if s.cache == nil || ttl <= 0 {
		return build()
	}

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("Metrics cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			s.recorder.RecordCacheLookup(ctx, report, true)
			return &out, nil
		}
		s.logger.Warn("Discarding undecodable cache entry", zap.String("key", key))
	}
	s.recorder.RecordCacheLookup(ctx, report, false)

	out, err := build()
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(out)
	if err == nil {
		err = s.cache.Set(ctx, key, raw, ttl)
	}
	if err != nil {
		s.logger.Warn("Metrics cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}

func minuteKey(t time.Time) string {
	return t.UTC().Truncate(time.Minute).Format("200601021504")
}

func errInvalidRange(token string, accepted []string) error {
	return shared.ErrInvalidRange.WithMessage(
		fmt.Sprintf("Invalid range: %q (expected one of %s)", token, strings.Join(accepted, ", ")))
}
