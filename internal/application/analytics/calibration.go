package analytics

import "time"

// ScoreWeights are the linear weights of the vendor performance score
type ScoreWeights struct {
	Revenue        float64
	Orders         float64
	AvgOrderValue  float64
	ActiveProducts float64
}

// ScoreDivisors normalize each score input before weighting
type ScoreDivisors struct {
	Revenue        float64
	Orders         float64
	AvgOrderValue  float64
	ActiveProducts float64
}

// ProfitRatios split an order total into estimated cost and profit.
// They are placeholders until real cost data exists.
type ProfitRatios struct {
	Cost   float64
	Profit float64
}

// Calibration holds the tunable constants of the analytics reports
type Calibration struct {
	Weights  ScoreWeights
	Divisors ScoreDivisors
	Profit   ProfitRatios

	TopSellersLimit      int
	TopProductsLimit     int
	TopCustomersLimit    int
	ActiveCustomerWindow time.Duration

	// StrictRanges rejects unknown range tokens instead of falling back to the default window
	StrictRanges bool
	// Location anchors calendar months and buckets; nil means UTC
	Location *time.Location
}

// DefaultCalibration returns the historical calibration
func DefaultCalibration() Calibration {
	return Calibration{
		Weights: ScoreWeights{
			Revenue:        0.40,
			Orders:         0.30,
			AvgOrderValue:  0.20,
			ActiveProducts: 0.10,
		},
		Divisors: ScoreDivisors{
			Revenue:        10000,
			Orders:         100,
			AvgOrderValue:  100,
			ActiveProducts: 50,
		},
		Profit: ProfitRatios{
			Cost:   0.6,
			Profit: 0.4,
		},
		TopSellersLimit:      10,
		TopProductsLimit:     20,
		TopCustomersLimit:    20,
		ActiveCustomerWindow: 30 * 24 * time.Hour,
		Location:             time.UTC,
	}
}

func (c Calibration) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
