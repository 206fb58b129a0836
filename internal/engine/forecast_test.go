package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSeries(n int, v float64) DailySeries {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return seriesOf(values...)
}

func TestForecastUsageRejectsShortHistory(t *testing.T) {
	eng := NewDefault()

	_, err := eng.ForecastUsage(constantSeries(13, 10), 7)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestForecastUsageRejectsNonPositiveHorizon(t *testing.T) {
	eng := NewDefault()

	_, err := eng.ForecastUsage(constantSeries(30, 10), 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = eng.ForecastUsage(constantSeries(30, 10), -3)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestForecastUsageConstantSeries(t *testing.T) {
	eng := NewDefault()

	forecast, err := eng.ForecastUsage(constantSeries(30, 10), 7)
	require.NoError(t, err)
	require.Len(t, forecast.Days, 7)

	for _, d := range forecast.Days {
		assert.InDelta(t, 10.0, d.EstimatedUsage, 0.01)
		assert.InDelta(t, 10.0, d.Components.SMA, 0.01)
		assert.InDelta(t, 10.0, d.Components.ExponentialSmoothing, 0.01)
		assert.InDelta(t, 10.0, d.Components.LinearTrend, 0.01)
	}
	assert.InDelta(t, 70.0, forecast.TotalEstimatedUsage, 0.1)
}

func TestForecastUsageWeightedCombination(t *testing.T) {
	eng := New(Config{
		SMAWeight:       0.4,
		SmoothingWeight: 0.3,
		TrendWeight:     0.3,
	})

	forecast, err := eng.ForecastUsage(seriesOf(
		4, 6, 5, 7, 6, 8, 7, 9, 8, 10, 9, 11, 10, 12, 11, 13,
	), 5)
	require.NoError(t, err)

	for _, d := range forecast.Days {
		expected := 0.4*d.Components.SMA +
			0.3*d.Components.ExponentialSmoothing +
			0.3*d.Components.LinearTrend
		assert.InDelta(t, expected, d.EstimatedUsage, 0.05)
	}
}

func TestForecastUsageIncreasingSeriesIsMonotonic(t *testing.T) {
	values := make([]float64, 28)
	for i := range values {
		values[i] = float64(i + 1)
	}
	eng := NewDefault()

	forecast, err := eng.ForecastUsage(seriesOf(values...), 14)
	require.NoError(t, err)

	slope, _ := linearRegression(values)
	assert.Greater(t, slope, 0.0)

	for i := 1; i < len(forecast.Days); i++ {
		assert.GreaterOrEqual(t,
			forecast.Days[i].EstimatedUsage, forecast.Days[i-1].EstimatedUsage,
			"forecast must not decrease for a growing series")
	}
}

func TestForecastConfidenceDecaysWithDistance(t *testing.T) {
	eng := NewDefault()

	forecast, err := eng.ForecastUsage(constantSeries(60, 10), 20)
	require.NoError(t, err)
	require.Len(t, forecast.Days, 20)

	assert.Equal(t, ConfidenceHigh, forecast.Days[0].Confidence)
	assert.Equal(t, ConfidenceLow, forecast.Days[19].Confidence)

	rank := func(c ConfidenceLevel) int {
		switch c {
		case ConfidenceHigh:
			return 2
		case ConfidenceMedium:
			return 1
		default:
			return 0
		}
	}
	for i := 1; i < len(forecast.Days); i++ {
		assert.LessOrEqual(t,
			rank(forecast.Days[i].Confidence), rank(forecast.Days[i-1].Confidence))
	}
}

func TestForecastUsageTrimsToTwiceHorizon(t *testing.T) {
	eng := NewDefault()

	forecast, err := eng.ForecastUsage(constantSeries(90, 10), 10)
	require.NoError(t, err)
	assert.Equal(t, 20, forecast.HistoryDays)
}

func TestForecastUsageSmallHorizonKeepsMinimumLookback(t *testing.T) {
	eng := NewDefault()

	// Two months of history must support a 5-day forecast even though twice
	// the horizon is below the 14-day floor.
	forecast, err := eng.ForecastUsage(constantSeries(60, 10), 5)
	require.NoError(t, err)

	require.Len(t, forecast.Days, 5)
	assert.Equal(t, 14, forecast.HistoryDays)
	assert.InDelta(t, 50.0, forecast.TotalEstimatedUsage, 0.5)
}

func TestForecastDatesFollowSeriesEnd(t *testing.T) {
	eng := NewDefault()
	series := constantSeries(30, 5)

	forecast, err := eng.ForecastUsage(series, 3)
	require.NoError(t, err)

	last := series[len(series)-1].Date
	for i, d := range forecast.Days {
		assert.Equal(t, last.AddDate(0, 0, i+1), d.Date)
	}
}
