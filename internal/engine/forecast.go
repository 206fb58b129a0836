package engine

import (
	"fmt"
	"math"
)

// confidence label thresholds and the numeric weights used when averaging
// per-day confidence back into a single label.
const (
	confidenceHighCutoff   = 0.8
	confidenceMediumCutoff = 0.6

	confidenceHighWeight   = 0.9
	confidenceMediumWeight = 0.7
	confidenceLowWeight    = 0.4

	// dataQualityFullDays is the history length at which the data quality
	// factor saturates at 1.
	dataQualityFullDays = 30
	// confidenceDecayDays controls how fast confidence decays with horizon
	// distance (e^(-k/10)).
	confidenceDecayDays = 10
)

// ForecastUsage blends a simple moving average, exponential smoothing and a
// linear trend extrapolation into a per-day demand forecast over the given
// horizon. The series is trimmed to the last 2*horizon days; fewer than 14
// usable days is a hard failure rather than a fabricated forecast.
func (e *Engine) ForecastUsage(series DailySeries, horizon int) (*Forecast, error) {
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidWindow, horizon)
	}

	// Lookback policy: twice the horizon, but never trimmed below the hard
	// minimum so short horizons keep enough history to forecast from.
	lookback := 2 * horizon
	if lookback < forecastMinHistoryDays {
		lookback = forecastMinHistoryDays
	}
	series = series.Tail(lookback)
	if len(series) < forecastMinHistoryDays {
		return nil, fmt.Errorf("%w: need at least %d days, have %d",
			ErrInsufficientHistory, forecastMinHistoryDays, len(series))
	}

	values := series.Values()
	n := len(values)

	sma := mean(values[n-min(e.cfg.SMAWindowDays, n):])
	smoothed := exponentialSmoothing(values, e.cfg.SmoothingAlpha)
	slope, intercept := linearRegression(values)

	dataQuality := math.Min(1, float64(n)/dataQualityFullDays)
	lastDate := series[n-1].Date

	days := make([]ForecastDay, 0, horizon)
	var total float64
	var confidenceSum float64

	for k := 1; k <= horizon; k++ {
		linear := math.Max(0, slope*float64(n-1+k)+intercept)

		estimate := e.cfg.SMAWeight*sma +
			e.cfg.SmoothingWeight*smoothed +
			e.cfg.TrendWeight*linear
		estimate = math.Max(0, estimate)

		confidence := dataQuality * math.Exp(-float64(k)/confidenceDecayDays)
		label := confidenceLabel(confidence)
		confidenceSum += confidenceWeight(label)
		total += estimate

		days = append(days, ForecastDay{
			Date:           lastDate.AddDate(0, 0, k),
			EstimatedUsage: round2(estimate),
			Confidence:     label,
			Components: ComponentEstimates{
				SMA:                  round2(sma),
				ExponentialSmoothing: round2(smoothed),
				LinearTrend:          round2(linear),
			},
		})
	}

	return &Forecast{
		Days:                days,
		TotalEstimatedUsage: round2(total),
		Confidence:          confidenceLabel(confidenceSum / float64(horizon)),
		HistoryDays:         n,
	}, nil
}

// exponentialSmoothing runs single exponential smoothing over the series and
// returns the final smoothed value.
func exponentialSmoothing(values []float64, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}
	s := values[0]
	for _, v := range values[1:] {
		s = alpha*v + (1-alpha)*s
	}
	return s
}

func confidenceLabel(score float64) ConfidenceLevel {
	switch {
	case score > confidenceHighCutoff:
		return ConfidenceHigh
	case score > confidenceMediumCutoff:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func confidenceWeight(level ConfidenceLevel) float64 {
	switch level {
	case ConfidenceHigh:
		return confidenceHighWeight
	case ConfidenceMedium:
		return confidenceMediumWeight
	default:
		return confidenceLowWeight
	}
}
