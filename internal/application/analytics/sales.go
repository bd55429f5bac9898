package analytics

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/infrastructure/telemetry"
)

// Sales returns the daily trend, top products, top customers and category breakdown for a range
func (s *Service) Sales(ctx context.Context, rangeToken string) (*SalesAnalytics, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "sales",
		telemetry.WithAttribute(telemetry.AttrRange, rangeToken),
	)
	defer span.End()

	now := s.now()
	window, err := s.resolve(analytics.SalesRanges, rangeToken, now)
	if err != nil {
		return nil, err
	}

	key := "sales:" + window.Token + ":" + minuteKey(now)
	out, err := cached(ctx, s, "sales", key, s.reportTTL, func() (*SalesAnalytics, error) {
		return s.buildSales(ctx, window)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to build sales analytics", zap.String("range", window.Token), zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (s *Service) buildSales(ctx context.Context, window analytics.TimeWindow) (*SalesAnalytics, error) {
	var (
		daily      []analytics.DailySales
		products   []analytics.ProductRevenue
		customers  []analytics.CustomerSpend
		categories []analytics.CategorySales
	)

	g, gctx := errgroup.WithContext(ctx)
	s.facet(gctx, g, "daily_sales", func(ctx context.Context) (err error) {
		daily, err = s.repo.DailySalesTrend(ctx, window)
		return err
	})
	s.facet(gctx, g, "top_products", func(ctx context.Context) (err error) {
		products, err = s.repo.TopProductsByRevenue(ctx, window, s.cal.TopProductsLimit)
		return err
	})
	s.facet(gctx, g, "top_customers", func(ctx context.Context) (err error) {
		customers, err = s.repo.TopCustomers(ctx, window, s.cal.TopCustomersLimit)
		return err
	})
	s.facet(gctx, g, "sales_by_category", func(ctx context.Context) (err error) {
		categories, err = s.repo.SalesByCategory(ctx, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &SalesAnalytics{
		Range:           window.Token,
		Period:          periodOf(window),
		DailySales:      make([]DailySalesPoint, 0, len(daily)),
		TopProducts:     make([]TopProduct, 0, len(products)),
		TopCustomers:    make([]TopCustomer, 0, len(customers)),
		SalesByCategory: make([]CategoryBreakdown, 0, len(categories)),
	}
	for _, d := range daily {
		out.DailySales = append(out.DailySales, DailySalesPoint{
			Date:      d.Date,
			Revenue:   money(d.Revenue),
			Orders:    d.Orders,
			Customers: d.Customers,
		})
	}
	for _, p := range products {
		out.TopProducts = append(out.TopProducts, TopProduct{
			ProductID: p.ProductID,
			Name:      p.Name,
			Category:  p.Category,
			Quantity:  p.Quantity,
			Revenue:   money(p.Revenue),
		})
	}
	for _, c := range customers {
		out.TopCustomers = append(out.TopCustomers, TopCustomer{
			UserID:            c.UserID,
			Name:              c.Name,
			Orders:            c.Orders,
			TotalSpent:        money(c.Spent),
			AverageOrderValue: money(AverageOrderValue(c.Spent, c.Orders)),
		})
	}
	for _, c := range categories {
		category := c.Category
		if category == "" {
			category = analytics.UncategorizedLabel
		}
		out.SalesByCategory = append(out.SalesByCategory, CategoryBreakdown{
			Category: category,
			Revenue:  money(c.Revenue),
			Units:    c.Units,
		})
	}
	return out, nil
}

func periodOf(w analytics.TimeWindow) Period {
	return Period{Start: w.Start, End: w.End}
}
