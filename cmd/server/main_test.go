package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	analyticsapp "github.com/storefront/analytics/internal/application/analytics"
	"github.com/storefront/analytics/internal/infrastructure/cache"
	"github.com/storefront/analytics/internal/infrastructure/config"
	"github.com/storefront/analytics/internal/interfaces/http/middleware"
	"github.com/storefront/analytics/tests/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0", Timezone: "Europe/Berlin"},
		HTTP: config.HTTPConfig{
			MaxBodySize:       1 << 20,
			RateLimitEnabled:  true,
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Store: config.StoreConfig{Driver: config.DriverPostgres, RequestTimeout: time.Second},
		Analytics: config.AnalyticsConfig{
			StrictRanges:            true,
			TopSellersLimit:         5,
			TopProductsLimit:        10,
			TopCustomersLimit:       10,
			ActiveCustomerWindowDay: 30,
			WeightRevenue:           0.4,
			WeightOrders:            0.3,
			WeightAvgOrderValue:     0.2,
			WeightActiveProducts:    0.1,
			DivisorRevenue:          10000,
			DivisorOrders:           100,
			DivisorAvgOrderValue:    100,
			DivisorActiveProducts:   50,
			CostRatio:               0.7,
			ProfitRatio:             0.3,
		},
	}
}

func TestCalibrationFrom(t *testing.T) {
	cal := calibrationFrom(testConfig())

	assert.Equal(t, analyticsapp.ScoreWeights{Revenue: 0.4, Orders: 0.3, AvgOrderValue: 0.2, ActiveProducts: 0.1}, cal.Weights)
	assert.Equal(t, 10000.0, cal.Divisors.Revenue)
	assert.Equal(t, 50.0, cal.Divisors.ActiveProducts)
	assert.Equal(t, 0.7, cal.Profit.Cost)
	assert.Equal(t, 30*24*time.Hour, cal.ActiveCustomerWindow)
	assert.True(t, cal.StrictRanges)
	require.NotNil(t, cal.Location)
	assert.Equal(t, "Europe/Berlin", cal.Location.String())
}

func TestNewEngine_Routes(t *testing.T) {
	repo := new(testutil.MockRepository)
	repo.On("Ping", mock.Anything).Return(nil)

	svc := analyticsapp.NewService(repo, calibrationFrom(testConfig()), zap.NewNop())
	metricsCache := cache.NewInMemoryMetricsCache(time.Minute)
	t.Cleanup(func() { _ = metricsCache.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	engine := newEngine(ctx, testConfig(), zap.NewNop(), nil, svc, metricsCache)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("strict range rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics/sales?range=2w", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
