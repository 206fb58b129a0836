package engine

import "math"

const (
	// stableGrowthBand is the +-percent band treated as flat consumption.
	stableGrowthBand = 5.0
	// highVolatilityThreshold flags erratic usage (coefficient of variation).
	highVolatilityThreshold = 0.5
	// peakDayFactor marks days well above average usage.
	peakDayFactor = 1.5
	// maxPeakDays caps how many peak days a trend result reports.
	maxPeakDays = 5
)

// AnalyzeTrend computes velocity, growth rate, direction and volatility over
// a daily series. Below two data points the direction is unknown and the
// remaining figures degrade to what the data supports.
func AnalyzeTrend(series DailySeries) TrendResult {
	values := series.Values()
	avg := mean(values)

	result := TrendResult{
		AverageDailyUsage: round2(avg),
		Direction:         TrendUnknown,
	}
	if len(values) < 2 {
		return result
	}

	// Growth rate compares the first half of the window against the second.
	half := len(values) / 2
	firstMean := mean(values[:half])
	secondMean := mean(values[half:])

	var growth float64
	if firstMean != 0 {
		growth = (secondMean - firstMean) / firstMean * 100
	}
	result.GrowthRatePercent = round2(growth)

	switch {
	case math.Abs(growth) < stableGrowthBand:
		result.Direction = TrendStable
	case growth > 0:
		result.Direction = TrendIncreasing
	default:
		result.Direction = TrendDecreasing
	}

	volatility := coefficientOfVariation(values)
	result.Volatility = round2(volatility)
	result.HighVolatility = volatility > highVolatilityThreshold

	result.PeakDays = peakDays(series, avg)
	return result
}

// peakDays returns up to maxPeakDays days whose usage exceeds
// peakDayFactor times the average, highest first.
func peakDays(series DailySeries, avg float64) []PeakDay {
	if avg <= 0 {
		return nil
	}

	threshold := peakDayFactor * avg
	var peaks []PeakDay
	for _, p := range series {
		if p.Quantity > threshold {
			peaks = append(peaks, PeakDay{Date: p.Date, Quantity: round2(p.Quantity)})
		}
	}
	if len(peaks) == 0 {
		return nil
	}

	// Highest usage first; ties keep chronological order.
	for i := 1; i < len(peaks); i++ {
		for j := i; j > 0 && peaks[j].Quantity > peaks[j-1].Quantity; j-- {
			peaks[j], peaks[j-1] = peaks[j-1], peaks[j]
		}
	}
	if len(peaks) > maxPeakDays {
		peaks = peaks[:maxPeakDays]
	}
	return peaks
}
