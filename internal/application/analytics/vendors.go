package analytics

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/infrastructure/telemetry"
)

// Vendors ranks vendors by performance score within a range
func (s *Service) Vendors(ctx context.Context, rangeToken string) (*VendorPerformanceReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "vendors",
		telemetry.WithAttribute(telemetry.AttrRange, rangeToken),
	)
	defer span.End()

	now := s.now()
	window, err := s.resolve(analytics.VendorRanges, rangeToken, now)
	if err != nil {
		return nil, err
	}

	key := "vendors:" + window.Token + ":" + minuteKey(now)
	out, err := cached(ctx, s, "vendors", key, s.reportTTL, func() (*VendorPerformanceReport, error) {
		var rows []analytics.VendorSales
		g, gctx := errgroup.WithContext(ctx)
		s.facet(gctx, g, "vendor_performance", func(ctx context.Context) (err error) {
			rows, err = s.repo.VendorPerformance(ctx, window)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &VendorPerformanceReport{
			Range:   window.Token,
			Period:  periodOf(window),
			Vendors: s.rankVendors(rows),
		}, nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to build vendor performance", zap.String("range", window.Token), zap.Error(err))
		return nil, err
	}
	return out, nil
}

// rankVendors scores each vendor and orders them by score, then revenue, then id
func (s *Service) rankVendors(rows []analytics.VendorSales) []VendorPerformanceEntry {
	type scored struct {
		row   analytics.VendorSales
		entry VendorPerformanceEntry
	}
	list := make([]scored, 0, len(rows))
	for _, v := range rows {
		score := PerformanceScore(v, s.cal)
		list = append(list, scored{
			row: v,
			entry: VendorPerformanceEntry{
				VendorID:          v.VendorID,
				BusinessName:      v.Name,
				Revenue:           money(v.Revenue),
				Orders:            v.Orders,
				Items:             v.Items,
				AverageOrderValue: money(AverageOrderValue(v.Revenue, v.Orders)),
				ActiveProducts:    v.ActiveProducts,
				Score:             toFloat64(score),
			},
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.entry.Score != b.entry.Score {
			return a.entry.Score > b.entry.Score
		}
		if c := a.row.Revenue.Cmp(b.row.Revenue); c != 0 {
			return c > 0
		}
		return a.row.VendorID < b.row.VendorID
	})

	out := make([]VendorPerformanceEntry, len(list))
	for i, item := range list {
		item.entry.Rank = i + 1
		out[i] = item.entry
	}
	return out
}
