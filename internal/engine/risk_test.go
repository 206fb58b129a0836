package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forecastWithTotal(horizon int, total float64) *Forecast {
	days := make([]ForecastDay, horizon)
	per := total / float64(horizon)
	for i := range days {
		days[i] = ForecastDay{Date: day(i + 1), EstimatedUsage: per}
	}
	return &Forecast{Days: days, TotalEstimatedUsage: total, Confidence: ConfidenceMedium}
}

func TestAssessStockoutRiskMediumBoundary(t *testing.T) {
	// 100 units at 10/day leaves 10 days: above the high cutoff (7.5), within
	// the medium cutoff (15).
	risk := AssessStockoutRisk(100, forecastWithTotal(30, 300), testBase)

	assert.InDelta(t, 10.0, risk.DaysRemaining, 0.001)
	assert.Equal(t, RiskMedium, risk.Risk)
	require.NotNil(t, risk.ProjectedStockoutDate)
	assert.Equal(t, testBase.AddDate(0, 0, 10), *risk.ProjectedStockoutDate)
}

func TestAssessStockoutRiskHigh(t *testing.T) {
	risk := AssessStockoutRisk(20, forecastWithTotal(30, 300), testBase)

	assert.InDelta(t, 2.0, risk.DaysRemaining, 0.001)
	assert.Equal(t, RiskHigh, risk.Risk)
}

func TestAssessStockoutRiskLowBeyondHorizon(t *testing.T) {
	risk := AssessStockoutRisk(400, forecastWithTotal(30, 300), testBase)

	assert.Equal(t, RiskLow, risk.Risk)
	assert.Nil(t, risk.ProjectedStockoutDate, "no stockout date beyond the horizon")
}

func TestAssessStockoutRiskZeroUsageFloor(t *testing.T) {
	risk := AssessStockoutRisk(5, forecastWithTotal(30, 0), testBase)

	// The 0.1 floor keeps the division finite: 5 / 0.1 = 50 days.
	assert.InDelta(t, 50.0, risk.DaysRemaining, 0.001)
	assert.Equal(t, RiskLow, risk.Risk)
}

func TestRecommendParLevels(t *testing.T) {
	par := RecommendParLevels(5, 7)

	assert.Equal(t, 53, par.Low)   // ceil(5*7*1.5)
	assert.Equal(t, 105, par.High) // ceil(5*7*3)
}

func TestCompareParLevelsDriftDetection(t *testing.T) {
	recommended := ParLevels{Low: 53, High: 105}

	matching := CompareParLevels(recommended, 50, 100)
	assert.False(t, matching.AdjustLow, "6%% drift is within tolerance")
	assert.False(t, matching.AdjustHigh)

	drifted := CompareParLevels(recommended, 40, 160)
	assert.True(t, drifted.AdjustLow)
	assert.True(t, drifted.AdjustHigh)

	unset := CompareParLevels(recommended, 0, 0)
	assert.True(t, unset.AdjustLow)
	assert.True(t, unset.AdjustHigh)
}

func TestClassifyTurnover(t *testing.T) {
	assert.Equal(t, TurnoverDead, classifyTurnover(0, 50))
	assert.Equal(t, TurnoverFast, classifyTurnover(10, 100))  // 36.5 turns/yr
	assert.Equal(t, TurnoverMedium, classifyTurnover(2, 100)) // 7.3 turns/yr
	assert.Equal(t, TurnoverSlow, classifyTurnover(0.5, 100)) // 1.8 turns/yr
}

func TestProjectedStockoutDateUsesAsOf(t *testing.T) {
	asOf := time.Date(2026, 6, 15, 13, 45, 0, 0, time.UTC)
	risk := AssessStockoutRisk(30, forecastWithTotal(30, 300), asOf)

	require.NotNil(t, risk.ProjectedStockoutDate)
	// 3 days from the as-of calendar day, time-of-day discarded.
	assert.Equal(t, time.Date(2026, 6, 18, 0, 0, 0, 0, time.UTC), *risk.ProjectedStockoutDate)
}
