// Package export renders batch analysis results as CSV and XLSX files and
// archives them to object storage.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/restoops/backend-go/internal/engine"
	"github.com/restoops/backend-go/internal/service"
)

var summaryHeader = []string{
	"item_id", "name", "history_days", "velocity", "turnover",
	"trend", "growth_rate_percent", "volatility",
	"anomalies", "stability_score",
	"forecast_total", "forecast_confidence",
	"risk", "days_remaining",
	"par_low", "par_high",
	"error",
}

// WriteCSV flattens one row per item into w.
func WriteCSV(w io.Writer, results []service.BatchResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(summaryHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, result := range results {
		if err := cw.Write(summaryRow(result)); err != nil {
			return fmt.Errorf("failed to write csv row for item %d: %w", result.ItemID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func summaryRow(result service.BatchResult) []string {
	row := make([]string, len(summaryHeader))
	row[0] = strconv.FormatInt(result.ItemID, 10)
	row[1] = result.Name

	if result.Error != "" {
		row[len(row)-1] = result.Error
		return row
	}

	report := result.Report
	row[2] = strconv.Itoa(report.HistoryDays)
	row[3] = formatFloat(report.Velocity)
	row[4] = string(report.Turnover)
	row[5] = string(report.Trend.Direction)
	row[6] = formatFloat(report.Trend.GrowthRatePercent)
	row[7] = formatFloat(report.Trend.Volatility)
	row[8] = strconv.Itoa(anomalyTotal(report))
	row[9] = formatFloat(report.Anomalies.StabilityScore)

	if report.Forecast != nil {
		row[10] = formatFloat(report.Forecast.TotalEstimatedUsage)
		row[11] = string(report.Forecast.Confidence)
	}
	if report.Risk != nil {
		row[12] = string(report.Risk.Risk)
		row[13] = formatFloat(report.Risk.DaysRemaining)
	}
	if report.ParRecommendation != nil {
		row[14] = strconv.Itoa(report.ParRecommendation.Recommended.Low)
		row[15] = strconv.Itoa(report.ParRecommendation.Recommended.High)
	}

	return row
}

func anomalyTotal(report *engine.Report) int {
	total := len(report.Anomalies.Isolated)
	for _, cluster := range report.Anomalies.Clusters {
		total += len(cluster.Anomalies)
	}
	return total
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
