package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRangeResolver_Resolve(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		resolver    RangeResolver
		token       string
		wantToken   string
		wantDays    int
		wantGran    Granularity
		wantPresent bool
	}{
		{"sales 7d", SalesRanges, "7d", "7d", 7, GranularityDay, true},
		{"sales 30d", SalesRanges, "30d", "30d", 30, GranularityDay, true},
		{"sales 90d", SalesRanges, "90d", "90d", 90, GranularityDay, true},
		{"sales 1y", SalesRanges, "1y", "1y", 365, GranularityDay, true},
		{"sales empty defaults", SalesRanges, "", "30d", 30, GranularityDay, true},
		{"sales unknown falls back", SalesRanges, "2w", "30d", 30, GranularityDay, false},
		{"financial 1m daily", FinancialRanges, "1m", "1m", 30, GranularityDay, true},
		{"financial 3m weekly", FinancialRanges, "3m", "3m", 90, GranularityWeek, true},
		{"financial 1y monthly", FinancialRanges, "1y", "1y", 365, GranularityMonth, true},
		{"financial unknown", FinancialRanges, "7d", "1m", 30, GranularityDay, false},
		{"vendors 6m", VendorRanges, "6m", "6m", 180, GranularityDay, true},
		{"vendors default", VendorRanges, "", "1m", 30, GranularityDay, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := tt.resolver.Resolve(tt.token, now)
			assert.Equal(t, tt.wantPresent, ok)
			assert.Equal(t, tt.wantToken, w.Token)
			assert.Equal(t, now, w.End)
			assert.Equal(t, now.AddDate(0, 0, -tt.wantDays), w.Start)
			assert.Equal(t, tt.wantGran, w.Granularity)
		})
	}
}

func TestRangeResolver_Tokens(t *testing.T) {
	assert.Equal(t, []string{"7d", "30d", "90d", "1y"}, SalesRanges.Tokens())
	assert.Equal(t, []string{"1m", "3m", "1y"}, FinancialRanges.Tokens())
	assert.Equal(t, []string{"1m", "3m", "6m"}, VendorRanges.Tokens())
}

func TestNewMonthBounds(t *testing.T) {
	t.Run("mid month", func(t *testing.T) {
		now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
		b := NewMonthBounds(now)

		assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), b.ThisMonthStart)
		assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), b.LastMonthStart)
		assert.Equal(t, time.Date(2026, 9, 30, 23, 59, 59, 999999999, time.UTC), b.LastMonthEnd)
	})

	t.Run("january rolls back a year", func(t *testing.T) {
		b := NewMonthBounds(time.Date(2027, 1, 5, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), b.LastMonthStart)
		assert.Equal(t, 31, b.LastMonthEnd.Day())
	})

	t.Run("march after leap february", func(t *testing.T) {
		b := NewMonthBounds(time.Date(2028, 3, 31, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC), b.LastMonthStart)
		assert.Equal(t, 29, b.LastMonthEnd.Day())
	})

	t.Run("last month ends just before this month", func(t *testing.T) {
		b := NewMonthBounds(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
		assert.Equal(t, b.ThisMonthStart, b.LastMonthEnd.Add(time.Nanosecond))
		assert.True(t, b.LastMonthStart.Before(b.LastMonthEnd))
		assert.True(t, b.ThisMonthStart.Before(b.Now))
	})
}

func TestGranularity_BucketStart(t *testing.T) {
	label := func(g Granularity, ts time.Time) string {
		return g.BucketStart(ts).Format(PeriodLayout)
	}
	// Thursday
	ts := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-15", label(GranularityDay, ts))
	assert.Equal(t, "2026-10-12", label(GranularityWeek, ts))
	assert.Equal(t, "2026-10-01", label(GranularityMonth, ts))

	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-12", label(GranularityWeek, sunday))

	assert.Equal(t, "day", GranularityDay.String())
	assert.Equal(t, "week", GranularityWeek.String())
	assert.Equal(t, "month", GranularityMonth.String())
}
