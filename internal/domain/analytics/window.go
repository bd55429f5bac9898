package analytics

import (
	"sort"
	"time"
)

// Granularity controls the calendar bucket size of a time series (day, week, month).
type Granularity int

const (
	GranularityDay   Granularity = 1
	GranularityWeek  Granularity = 2
	GranularityMonth Granularity = 3
)

// String returns the lowercase bucket name used in responses
func (g Granularity) String() string {
	switch g {
	case GranularityWeek:
		return "week"
	case GranularityMonth:
		return "month"
	default:
		return "day"
	}
}

// BucketStart truncates t to the start of its bucket in t's location.
// Weeks start on Monday.
func (g Granularity) BucketStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	switch g {
	case GranularityWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// PeriodLayout is the layout of bucket labels: the bucket start date
const PeriodLayout = "2006-01-02"

// TimeWindow is a resolved reporting window. Start is inclusive, End exclusive.
type TimeWindow struct {
	Token       string
	Start       time.Time
	End         time.Time
	Granularity Granularity
}

type rangeSpec struct {
	days        int
	granularity Granularity
}

// RangeResolver maps range tokens to time windows
type RangeResolver struct {
	ranges       map[string]rangeSpec
	defaultToken string
}

// Resolve returns the window for token ending at now. An empty token resolves to the
// default window and counts as recognized; an unknown token also resolves to the
// default window but reports recognized=false so callers can decide to reject it.
func (r RangeResolver) Resolve(token string, now time.Time) (TimeWindow, bool) {
	recognized := true
	spec, ok := r.ranges[token]
	if !ok {
		recognized = token == ""
		token = r.defaultToken
		spec = r.ranges[token]
	}
	return TimeWindow{
		Token:       token,
		Start:       now.AddDate(0, 0, -spec.days),
		End:         now,
		Granularity: spec.granularity,
	}, recognized
}

// Tokens lists the tokens this resolver accepts, shortest window first
func (r RangeResolver) Tokens() []string {
	out := make([]string, 0, len(r.ranges))
	for k := range r.ranges {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return r.ranges[out[i]].days < r.ranges[out[j]].days
	})
	return out
}

// Default returns the fallback token
func (r RangeResolver) Default() string {
	return r.defaultToken
}

var (
	// SalesRanges resolves the sales analytics range tokens
	SalesRanges = RangeResolver{
		ranges: map[string]rangeSpec{
			"7d":  {7, GranularityDay},
			"30d": {30, GranularityDay},
			"90d": {90, GranularityDay},
			"1y":  {365, GranularityDay},
		},
		defaultToken: "30d",
	}

	// FinancialRanges resolves financial report tokens; granularity widens with the window
	FinancialRanges = RangeResolver{
		ranges: map[string]rangeSpec{
			"1m": {30, GranularityDay},
			"3m": {90, GranularityWeek},
			"1y": {365, GranularityMonth},
		},
		defaultToken: "1m",
	}

	// VendorRanges resolves vendor performance tokens
	VendorRanges = RangeResolver{
		ranges: map[string]rangeSpec{
			"1m": {30, GranularityDay},
			"3m": {90, GranularityDay},
			"6m": {180, GranularityDay},
		},
		defaultToken: "1m",
	}
)

// MonthBounds are the calendar boundaries used by the dashboard facets.
// This month is [ThisMonthStart, Now); last month is [LastMonthStart, ThisMonthStart),
// i.e. through LastMonthEnd inclusive.
type MonthBounds struct {
	Now            time.Time
	ThisMonthStart time.Time
	LastMonthStart time.Time
	LastMonthEnd   time.Time
}

// NewMonthBounds computes month boundaries in now's location
func NewMonthBounds(now time.Time) MonthBounds {
	y, m, _ := now.Date()
	thisStart := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	lastStart := thisStart.AddDate(0, -1, 0)
	return MonthBounds{
		Now:            now,
		ThisMonthStart: thisStart,
		LastMonthStart: lastStart,
		LastMonthEnd:   thisStart.Add(-time.Nanosecond),
	}
}
