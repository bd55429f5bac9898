package analytics

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/analytics/internal/domain/analytics"
	"github.com/storefront/analytics/internal/infrastructure/telemetry"
)

// Financial returns a time-bucketed revenue or profit report.
// The report type is validated before anything else.
func (s *Service) Financial(ctx context.Context, reportType, rangeToken string) (*FinancialReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, "financial",
		telemetry.WithAttribute(telemetry.AttrReportType, reportType),
		telemetry.WithAttribute(telemetry.AttrRange, rangeToken),
	)
	defer span.End()

	rt, err := analytics.ParseReportType(reportType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	window, err := s.resolve(analytics.FinancialRanges, rangeToken, now)
	if err != nil {
		return nil, err
	}

	key := "financial:" + string(rt) + ":" + window.Token + ":" + minuteKey(now)
	out, err := cached(ctx, s, "financial", key, s.reportTTL, func() (*FinancialReport, error) {
		var buckets []analytics.FinancialBucket
		g, gctx := errgroup.WithContext(ctx)
		s.facet(gctx, g, "financial_series", func(ctx context.Context) (err error) {
			buckets, err = s.repo.FinancialSeries(ctx, window)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return s.assembleFinancial(rt, window, buckets), nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to build financial report",
			zap.String("type", string(rt)),
			zap.String("range", window.Token),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

func (s *Service) assembleFinancial(rt analytics.ReportType, window analytics.TimeWindow, buckets []analytics.FinancialBucket) *FinancialReport {
	profit := rt == analytics.ReportTypeProfit
	report := &FinancialReport{
		Type:        string(rt),
		Range:       window.Token,
		Granularity: window.Granularity.String(),
		Period:      periodOf(window),
		Data:        make([]FinancialPoint, 0, len(buckets)),
		IsEstimate:  profit,
	}

	var revenue, tax, shipping, discount decimal.Decimal
	var orders int64
	for _, b := range buckets {
		point := FinancialPoint{
			Period:            b.Period,
			Revenue:           money(b.Revenue),
			Orders:            b.Orders,
			Tax:               money(b.Tax),
			Shipping:          money(b.Shipping),
			Discount:          money(b.Discount),
			AverageOrderValue: money(b.AverageOrderValue),
		}
		if profit {
			costs, est := EstimateProfit(b.Revenue, s.cal.Profit)
			point.EstimatedCosts = floatPtr(money(costs))
			point.EstimatedProfit = floatPtr(money(est))
		}
		report.Data = append(report.Data, point)

		revenue = revenue.Add(b.Revenue)
		tax = tax.Add(b.Tax)
		shipping = shipping.Add(b.Shipping)
		discount = discount.Add(b.Discount)
		orders += b.Orders
	}

	report.Summary = FinancialSummary{
		Revenue:           money(revenue),
		Orders:            orders,
		Tax:               money(tax),
		Shipping:          money(shipping),
		Discount:          money(discount),
		AverageOrderValue: money(AverageOrderValue(revenue, orders)),
	}
	if profit {
		costs, est := EstimateProfit(revenue, s.cal.Profit)
		report.Summary.EstimatedCosts = floatPtr(money(costs))
		report.Summary.EstimatedProfit = floatPtr(money(est))
	}
	return report
}

func floatPtr(f float64) *float64 {
	return &f
}
