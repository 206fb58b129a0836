package engine

import (
	"fmt"
	"math"
	"time"
)

const (
	// usageFloor keeps days-remaining finite for items with near-zero usage.
	usageFloor = 0.1
	// safetyFactor and maxFactor scale lead-time demand into par levels.
	safetyFactor = 1.5
	maxFactor    = 3.0
	// parDriftTolerance is the relative difference beyond which a stored par
	// level is considered out of date.
	parDriftTolerance = 0.2
)

// AssessStockoutRisk projects how long current stock lasts against the
// forecast and grades the risk relative to the horizon.
func AssessStockoutRisk(currentStock float64, forecast *Forecast, asOf time.Time) StockoutRisk {
	horizon := len(forecast.Days)
	avgDaily := forecast.TotalEstimatedUsage / float64(horizon)
	daysRemaining := currentStock / math.Max(avgDaily, usageFloor)

	risk := StockoutRisk{
		CurrentStock:         round2(currentStock),
		EstimatedPeriodUsage: forecast.TotalEstimatedUsage,
		DaysRemaining:        round2(daysRemaining),
	}

	switch {
	case daysRemaining <= float64(horizon)*0.25:
		risk.Risk = RiskHigh
	case daysRemaining <= float64(horizon)*0.5:
		risk.Risk = RiskMedium
	default:
		risk.Risk = RiskLow
	}

	if daysRemaining <= float64(horizon) {
		date := dateOnly(asOf).Add(time.Duration(daysRemaining * 24 * float64(time.Hour)))
		risk.ProjectedStockoutDate = &date
	}

	return risk
}

// RecommendParLevels derives low/high par targets from average daily usage
// and supplier lead time.
func RecommendParLevels(avgDailyUsage float64, leadTimeDays int) ParLevels {
	demand := avgDailyUsage * float64(leadTimeDays)
	return ParLevels{
		Low:  int(math.Ceil(demand * safetyFactor)),
		High: int(math.Ceil(demand * maxFactor)),
	}
}

// CompareParLevels flags stored par levels drifting more than the tolerance
// from the recommendation. A zero stored level with a positive
// recommendation always needs adjustment.
func CompareParLevels(recommended ParLevels, storedLow, storedHigh float64) ParRecommendation {
	return ParRecommendation{
		Recommended: recommended,
		StoredLow:   storedLow,
		StoredHigh:  storedHigh,
		AdjustLow:   parDrifted(storedLow, float64(recommended.Low)),
		AdjustHigh:  parDrifted(storedHigh, float64(recommended.High)),
	}
}

func parDrifted(stored, recommended float64) bool {
	if stored == 0 {
		return recommended > 0
	}
	return math.Abs(stored-recommended)/stored > parDriftTolerance
}

// classifyTurnover buckets an item by annualized turns of its current stock.
// Items with no usage at all in the window are dead stock.
func classifyTurnover(avgDailyUsage, currentStock float64) TurnoverClass {
	if avgDailyUsage <= 0 {
		return TurnoverDead
	}
	turns := avgDailyUsage * 365 / math.Max(currentStock, usageFloor)
	switch {
	case turns >= 12:
		return TurnoverFast
	case turns >= 4:
		return TurnoverMedium
	default:
		return TurnoverSlow
	}
}

// buildRecommendations applies the fixed rule set over the computed report
// parts. Wording is free-form; the triggering conditions are not.
func buildRecommendations(report *Report) []string {
	var recs []string

	if report.Risk != nil {
		switch report.Risk.Risk {
		case RiskHigh:
			recs = append(recs, fmt.Sprintf(
				"Urgent reorder: stock covers about %.0f days at forecast usage.", report.Risk.DaysRemaining))
		case RiskMedium:
			recs = append(recs, fmt.Sprintf(
				"Schedule a reorder: stock covers about %.0f days at forecast usage.", report.Risk.DaysRemaining))
		}
	}

	if report.ParRecommendation != nil &&
		(report.ParRecommendation.AdjustLow || report.ParRecommendation.AdjustHigh) {
		recs = append(recs, fmt.Sprintf(
			"Stored par levels differ more than 20%% from the recommended %d/%d; update them.",
			report.ParRecommendation.Recommended.Low, report.ParRecommendation.Recommended.High))
	}

	if report.Seasonality.StrongSeasonality {
		recs = append(recs, "Usage is strongly seasonal; review par levels each season.")
	}

	if report.Trend.HighVolatility {
		recs = append(recs, "Usage is highly volatile; monitor stock levels more frequently.")
	}

	switch report.Trend.Direction {
	case TrendIncreasing:
		recs = append(recs, fmt.Sprintf(
			"Consumption is up %.1f%% over the window; consider raising par levels.", report.Trend.GrowthRatePercent))
	case TrendDecreasing:
		recs = append(recs, fmt.Sprintf(
			"Consumption is down %.1f%% over the window; consider lowering par levels.", report.Trend.GrowthRatePercent))
	}

	if report.Turnover == TurnoverDead {
		recs = append(recs, "No usage recorded in the window; verify the item is still active before reordering.")
	} else if longest := longestStreak(report.Anomalies.ZeroStreaks); longest >= 7 {
		recs = append(recs, fmt.Sprintf(
			"Item went unused for %d consecutive days; check for menu changes or substitutions.", longest))
	}

	return recs
}

func longestStreak(streaks []ZeroUsageStreak) int {
	longest := 0
	for _, s := range streaks {
		if s.DurationDays > longest {
			longest = s.DurationDays
		}
	}
	return longest
}
