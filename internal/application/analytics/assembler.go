package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/storefront/analytics/internal/domain/analytics"
)

var hundred = decimal.NewFromInt(100)

// GrowthRate is (current-previous)/previous*100 rounded to 2 places.
// A zero previous period yields exactly 0.
func GrowthRate(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2)
}

// RetentionRate is active/total*100 rounded to 2 places; 0 when there are no customers
func RetentionRate(active, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(active).Div(decimal.NewFromInt(total)).Mul(hundred).Round(2)
}

// AverageOrderValue divides revenue by order count, 0 for no orders
func AverageOrderValue(revenue decimal.Decimal, orders int64) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(orders))
}

// PerformanceScore computes the weighted vendor score:
//
//	wRev*(revenue/dRev) + wOrd*(orders/dOrd) + wAov*(aov/dAov) + wAct*(active/dAct)
//
// scaled to percentage points, so a vendor sitting exactly on every divisor scores 100.
func PerformanceScore(v analytics.VendorSales, c Calibration) decimal.Decimal {
	aov := AverageOrderValue(v.Revenue, v.Orders)
	score := term(v.Revenue, c.Weights.Revenue, c.Divisors.Revenue).
		Add(term(decimal.NewFromInt(v.Orders), c.Weights.Orders, c.Divisors.Orders)).
		Add(term(aov, c.Weights.AvgOrderValue, c.Divisors.AvgOrderValue)).
		Add(term(decimal.NewFromInt(v.ActiveProducts), c.Weights.ActiveProducts, c.Divisors.ActiveProducts))
	return score.Mul(hundred).Round(2)
}

func term(value decimal.Decimal, weight, divisor float64) decimal.Decimal {
	if divisor == 0 {
		return decimal.Zero
	}
	return value.Div(decimal.NewFromFloat(divisor)).Mul(decimal.NewFromFloat(weight))
}

// EstimateProfit splits total into estimated costs and profit using the configured ratios
func EstimateProfit(total decimal.Decimal, r ProfitRatios) (costs, profit decimal.Decimal) {
	costs = total.Mul(decimal.NewFromFloat(r.Cost)).Round(2)
	profit = total.Mul(decimal.NewFromFloat(r.Profit)).Round(2)
	return costs, profit
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func money(d decimal.Decimal) float64 {
	return toFloat64(d.Round(2))
}

func decimalInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
