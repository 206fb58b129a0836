package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAnomaliesSpikeAboveThreshold(t *testing.T) {
	// mean 25, population stddev ~33.54: the spike sits at z ~2.24.
	report := DetectAnomalies(seriesOf(10, 10, 10, 10, 10, 100))

	require.Len(t, report.Isolated, 1)
	a := report.Isolated[0]
	assert.Equal(t, AnomalySpike, a.Type)
	assert.Equal(t, SeverityMedium, a.Severity)
	assert.InDelta(t, 2.24, a.ZScore, 0.01)
	assert.InDelta(t, 100.0, a.ObservedUsage, 0.001)
	assert.Greater(t, a.ExpectedMax, a.ExpectedMin)
	assert.Empty(t, report.Clusters)
}

func TestDetectAnomaliesHighSeverity(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 10
	}
	values[19] = 200 // z ~4.36

	report := DetectAnomalies(seriesOf(values...))
	require.Len(t, report.Isolated, 1)
	assert.Equal(t, SeverityHigh, report.Isolated[0].Severity)
	assert.Greater(t, report.Isolated[0].ZScore, highSeverityZThreshold)
}

func TestDetectAnomaliesDropType(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100
	}
	values[10] = 0

	report := DetectAnomalies(seriesOf(values...))
	require.Len(t, report.Isolated, 1)
	assert.Equal(t, AnomalyDrop, report.Isolated[0].Type)
}

func TestDetectAnomaliesZeroStdDevReportsNothing(t *testing.T) {
	report := DetectAnomalies(seriesOf(5, 5, 5, 5, 5))

	assert.Empty(t, report.Isolated)
	assert.Empty(t, report.Clusters)
	assert.InDelta(t, 100.0, report.StabilityScore, 0.001)
}

func TestDetectAnomaliesClustering(t *testing.T) {
	// Spikes on days 5 and 7 are two days apart (one cluster); the spike on
	// day 20 stands alone.
	values := make([]float64, 30)
	for i := range values {
		values[i] = 10
	}
	values[5], values[7], values[20] = 100, 100, 100

	report := DetectAnomalies(seriesOf(values...))

	require.Len(t, report.Clusters, 1)
	cluster := report.Clusters[0]
	assert.Equal(t, day(5), cluster.StartDate)
	assert.Equal(t, day(7), cluster.EndDate)
	assert.Len(t, cluster.Anomalies, 2)

	require.Len(t, report.Isolated, 1)
	assert.Equal(t, day(20), report.Isolated[0].Date)
}

func TestZeroUsageStreakDetection(t *testing.T) {
	report := DetectAnomalies(seriesOf(5, 0, 0, 0, 5))

	require.Len(t, report.ZeroStreaks, 1)
	streak := report.ZeroStreaks[0]
	assert.Equal(t, 3, streak.DurationDays)
	assert.Equal(t, day(1), streak.StartDate)
	assert.Equal(t, day(3), streak.EndDate)
}

func TestZeroUsageStreakSingleDayExcluded(t *testing.T) {
	report := DetectAnomalies(seriesOf(5, 0, 5))
	assert.Empty(t, report.ZeroStreaks)
}

func TestZeroUsageStreakAtSeriesEnd(t *testing.T) {
	report := DetectAnomalies(seriesOf(5, 5, 0, 0))

	require.Len(t, report.ZeroStreaks, 1)
	assert.Equal(t, 2, report.ZeroStreaks[0].DurationDays)
	assert.Equal(t, day(3), report.ZeroStreaks[0].EndDate)
}

func TestStabilityScoreDegradesWithVolatility(t *testing.T) {
	steady := DetectAnomalies(seriesOf(10, 10, 10, 10))
	erratic := DetectAnomalies(seriesOf(1, 40, 2, 35))

	assert.Greater(t, steady.StabilityScore, erratic.StabilityScore)
	assert.GreaterOrEqual(t, erratic.StabilityScore, 0.0)
}
