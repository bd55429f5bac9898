package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/infrastructure/telemetry"
)

// Dashboard returns the headline metrics. Results are cached per minute when a cache is configured.
func (s *Service) Dashboard(ctx context.Context) (*DashboardMetrics, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "dashboard")
	defer span.End()

	now := s.now()
	out, err := cached(ctx, s, "dashboard", "dashboard:"+minuteKey(now), s.dashboardTTL, func() (*DashboardMetrics, error) {
		return s.buildDashboard(ctx, now)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to build dashboard metrics", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *Service) buildDashboard(ctx context.Context, now time.Time) (*DashboardMetrics, error) {
	bounds := analytics.NewMonthBounds(now)
	activeSince := now.Add(-s.cal.ActiveCustomerWindow)

	var (
		revenue    analytics.RevenueFacet
		orders     analytics.OrderFacet
		customers  analytics.CustomerFacet
		activeIDs  []string
		topSellers []analytics.ProductSales
		inventory  analytics.InventoryFacet
	)

	g, gctx := errgroup.WithContext(ctx)
	s.facet(gctx, g, "revenue", func(ctx context.Context) (err error) {
		revenue, err = s.repo.RevenueSummary(ctx, bounds)
		return err
	})
	s.facet(gctx, g, "orders", func(ctx context.Context) (err error) {
		orders, err = s.repo.OrderSummary(ctx, bounds)
		return err
	})
	s.facet(gctx, g, "customers", func(ctx context.Context) (err error) {
		customers, err = s.repo.CustomerSummary(ctx, bounds)
		return err
	})
	s.facet(gctx, g, "active_customers", func(ctx context.Context) (err error) {
		activeIDs, err = s.repo.ActiveCustomerIDs(ctx, activeSince)
		return err
	})
	s.facet(gctx, g, "top_sellers", func(ctx context.Context) (err error) {
		topSellers, err = s.repo.TopSellingProducts(ctx, s.cal.TopSellersLimit)
		return err
	})
	s.facet(gctx, g, "inventory", func(ctx context.Context) (err error) {
		inventory, err = s.repo.InventorySummary(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	active := int64(len(activeIDs))
	top := make([]TopSellingProduct, 0, len(topSellers))
	for _, p := range topSellers {
		top = append(top, TopSellingProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Sold:      p.Sold,
			Revenue:   money(p.Revenue),
		})
	}

	return &DashboardMetrics{
		Revenue: RevenueMetrics{
			Total:     money(revenue.Total),
			ThisMonth: money(revenue.ThisMonth),
			LastMonth: money(revenue.LastMonth),
			Growth:    toFloat64(GrowthRate(revenue.ThisMonth, revenue.LastMonth)),
		},
		Orders: OrderMetrics{
			Total:             orders.Total,
			ThisMonth:         orders.ThisMonth,
			LastMonth:         orders.LastMonth,
			Growth:            toFloat64(GrowthRate(decimalInt(orders.ThisMonth), decimalInt(orders.LastMonth))),
			AverageOrderValue: money(orders.AverageOrderValue),
		},
		Customers: CustomerMetrics{
			Total:         customers.Total,
			NewThisMonth:  customers.NewThisMonth,
			Active:        active,
			RetentionRate: toFloat64(RetentionRate(active, customers.Total)),
		},
		Products: ProductMetrics{
			Total:      inventory.Total,
			LowStock:   inventory.LowStock,
			OutOfStock: inventory.OutOfStock,
			TopSelling: top,
		},
		GeneratedAt: now,
	}, nil
}
