// Package engine implements the usage analytics and demand forecasting core:
// daily usage aggregation, trend and seasonality analysis, statistical
// anomaly detection, multi-model forecasting and stockout-risk assessment.
// Every entry point is a pure function of its inputs; the engine keeps no
// state between calls and never reads the wall clock.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/restoops/backend-go/internal/domain"
)

// Engine runs the full analysis pipeline with a fixed configuration. Safe for
// concurrent use; Analyze touches no shared mutable state.
type Engine struct {
	cfg Config
}

// New creates an engine, filling unset config fields with defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// NewDefault creates an engine with the stock configuration.
func NewDefault() *Engine {
	return New(DefaultConfig())
}

// Config returns the effective configuration, defaults applied.
func (e *Engine) Config() Config {
	return e.cfg
}

// Analyze produces the complete analytics report for one item. The stages run
// leaf to root: aggregation, then trend/seasonality/anomalies, then forecast,
// then risk and recommendations. When history is below the hard forecast
// minimum the report still carries trend, seasonality and anomalies, with
// ForecastNote explaining the missing forecast.
func (e *Engine) Analyze(in AnalysisInput) (*Report, error) {
	start := dateOnly(in.WindowStart)
	end := dateOnly(in.WindowEnd)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s after end %s",
			ErrInvalidWindow, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if in.HorizonDays < 0 {
		return nil, fmt.Errorf("%w: negative horizon %d", ErrInvalidWindow, in.HorizonDays)
	}
	if days := windowDays(start, end); days > e.cfg.MaxWindowDays {
		return nil, fmt.Errorf("%w: %d days requested, maximum is %d",
			ErrWindowTooLarge, days, e.cfg.MaxWindowDays)
	}

	horizon := in.HorizonDays
	if horizon == 0 {
		horizon = e.cfg.DefaultHorizon
	}
	leadTime := in.LeadTimeDays
	if leadTime <= 0 {
		leadTime = e.cfg.DefaultLeadTime
	}
	asOf := in.AsOf
	if asOf.IsZero() {
		asOf = end
	}

	series, err := BuildDailySeries(in.Events, start, end)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ItemID:      in.ItemID,
		AsOf:        asOf,
		WindowStart: start,
		WindowEnd:   end,
		HistoryDays: len(series),
	}

	report.Trend = AnalyzeTrend(series)
	report.Velocity = report.Trend.AverageDailyUsage
	report.Turnover = classifyTurnover(report.Trend.AverageDailyUsage, in.CurrentStock)

	seasonalSeries, err := e.seasonalSeries(in.Events, start, end)
	if err != nil {
		return nil, err
	}
	report.Seasonality = ProfileSeasonality(seasonalSeries)

	report.Anomalies = DetectAnomalies(series)

	forecast, err := e.ForecastUsage(series, horizon)
	switch {
	case err == nil:
		report.Forecast = forecast
		risk := AssessStockoutRisk(in.CurrentStock, forecast, asOf)
		report.Risk = &risk
	case errors.Is(err, ErrInsufficientHistory):
		report.ForecastNote = err.Error()
	default:
		return nil, err
	}

	par := RecommendParLevels(report.Trend.AverageDailyUsage, leadTime)
	rec := CompareParLevels(par, in.StoredParLow, in.StoredParHi)
	report.ParRecommendation = &rec

	report.Recommendations = buildRecommendations(report)
	return report, nil
}

// seasonalSeries extends the analysis window backwards to the seasonality
// lookback (180 days) when the supplied events reach that far; otherwise it
// uses whatever history exists. The requested window is never shortened.
func (e *Engine) seasonalSeries(events []UsageEventView, start, end time.Time) (DailySeries, error) {
	lookbackStart := end.AddDate(0, 0, -(seasonalLookbackDays - 1))
	if start.Before(lookbackStart) {
		return BuildDailySeries(events, start, end)
	}

	earliest := earliestOutboundDay(events)
	if earliest.IsZero() || earliest.After(start) {
		// No history beyond the window; nothing to extend with.
		return BuildDailySeries(events, start, end)
	}
	if earliest.After(lookbackStart) {
		lookbackStart = earliest
	}
	return BuildDailySeries(events, lookbackStart, end)
}

func earliestOutboundDay(events []UsageEventView) time.Time {
	var earliest time.Time
	for _, ev := range events {
		if ev.Direction != string(domain.DirectionOut) || ev.Quantity <= 0 {
			continue
		}
		day := dateOnly(ev.OccurredAt)
		if earliest.IsZero() || day.Before(earliest) {
			earliest = day
		}
	}
	return earliest
}
