package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeTrendConstantSeriesIsStable(t *testing.T) {
	trend := AnalyzeTrend(seriesOf(7, 7, 7, 7, 7, 7, 7, 7))

	assert.Equal(t, TrendStable, trend.Direction)
	assert.InDelta(t, 7.0, trend.AverageDailyUsage, 0.001)
	assert.Zero(t, trend.Volatility)
	assert.False(t, trend.HighVolatility)
	assert.Zero(t, trend.GrowthRatePercent)
	assert.Empty(t, trend.PeakDays)
}

func TestAnalyzeTrendGrowthRateFromHalves(t *testing.T) {
	// First half mean 10, second half mean 20 -> +100%.
	trend := AnalyzeTrend(seriesOf(10, 10, 10, 10, 20, 20, 20, 20))

	assert.InDelta(t, 100.0, trend.GrowthRatePercent, 0.001)
	assert.Equal(t, TrendIncreasing, trend.Direction)
}

func TestAnalyzeTrendDecreasingDirection(t *testing.T) {
	trend := AnalyzeTrend(seriesOf(20, 20, 20, 10, 10, 10))

	assert.InDelta(t, -50.0, trend.GrowthRatePercent, 0.001)
	assert.Equal(t, TrendDecreasing, trend.Direction)
}

func TestAnalyzeTrendZeroFirstHalfGuard(t *testing.T) {
	trend := AnalyzeTrend(seriesOf(0, 0, 5, 5))

	assert.Zero(t, trend.GrowthRatePercent)
	assert.Equal(t, TrendStable, trend.Direction)
}

func TestAnalyzeTrendUnknownBelowTwoPoints(t *testing.T) {
	trend := AnalyzeTrend(seriesOf(12))

	assert.Equal(t, TrendUnknown, trend.Direction)
	assert.InDelta(t, 12.0, trend.AverageDailyUsage, 0.001)
}

func TestAnalyzeTrendHighVolatilityFlag(t *testing.T) {
	trend := AnalyzeTrend(seriesOf(1, 30, 1, 30, 1, 30))

	assert.True(t, trend.HighVolatility)
	assert.Greater(t, trend.Volatility, highVolatilityThreshold)
}

func TestAnalyzeTrendPeakDaysTopFiveDescending(t *testing.T) {
	// Average is pulled up by the spikes; days must clear 1.5x the mean.
	trend := AnalyzeTrend(seriesOf(2, 2, 50, 2, 60, 2, 40, 2, 55, 2, 45, 2, 35, 2))

	require.Len(t, trend.PeakDays, 5)
	for i := 1; i < len(trend.PeakDays); i++ {
		assert.GreaterOrEqual(t, trend.PeakDays[i-1].Quantity, trend.PeakDays[i].Quantity)
	}
	assert.InDelta(t, 60.0, trend.PeakDays[0].Quantity, 0.001)
}
