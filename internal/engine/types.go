package engine

import (
	"errors"
	"time"
)

var (
	// ErrInvalidWindow is returned when the analysis window or forecast
	// horizon is rejected outright (start after end, negative horizon).
	ErrInvalidWindow = errors.New("engine: invalid analysis window")

	// ErrWindowTooLarge is returned when the requested window exceeds the
	// configured maximum number of historical days.
	ErrWindowTooLarge = errors.New("engine: analysis window exceeds maximum")

	// ErrInsufficientHistory is returned by the forecast stage when the
	// series is below the hard minimum of usable history.
	ErrInsufficientHistory = errors.New("engine: insufficient history for forecast")
)

// forecastMinHistoryDays is the hard floor below which no forecast is produced.
const forecastMinHistoryDays = 14

// seasonalLookbackDays is how far seasonality extends beyond the requested
// window when that much history is available.
const seasonalLookbackDays = 180

// Config holds the engine tunables. Zero values fall back to the defaults
// the original dashboards used.
type Config struct {
	SMAWeight       float64
	SmoothingWeight float64
	TrendWeight     float64
	SmoothingAlpha  float64
	SMAWindowDays   int
	DefaultHorizon  int
	DefaultLeadTime int
	MaxWindowDays   int
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		SMAWeight:       0.4,
		SmoothingWeight: 0.3,
		TrendWeight:     0.3,
		SmoothingAlpha:  0.3,
		SMAWindowDays:   7,
		DefaultHorizon:  30,
		DefaultLeadTime: 7,
		MaxWindowDays:   365,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SMAWeight <= 0 && c.SmoothingWeight <= 0 && c.TrendWeight <= 0 {
		c.SMAWeight = def.SMAWeight
		c.SmoothingWeight = def.SmoothingWeight
		c.TrendWeight = def.TrendWeight
	}
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
		c.SmoothingAlpha = def.SmoothingAlpha
	}
	if c.SMAWindowDays <= 0 {
		c.SMAWindowDays = def.SMAWindowDays
	}
	if c.DefaultHorizon <= 0 {
		c.DefaultHorizon = def.DefaultHorizon
	}
	if c.DefaultLeadTime <= 0 {
		c.DefaultLeadTime = def.DefaultLeadTime
	}
	if c.MaxWindowDays <= 0 {
		c.MaxWindowDays = def.MaxWindowDays
	}
	return c
}

// DailyPoint is one calendar day of total outbound usage.
type DailyPoint struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// DailySeries is a contiguous, date-ascending sequence of daily usage totals.
// Days without movements are present with Quantity 0.
type DailySeries []DailyPoint

// Values returns the usage quantities in date order.
func (s DailySeries) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Quantity
	}
	return values
}

// Tail returns the last n points of the series (the whole series when it is
// shorter than n).
func (s DailySeries) Tail(n int) DailySeries {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// TrendDirection labels the overall direction of consumption.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendUnknown    TrendDirection = "unknown"
)

// PeakDay is a day whose usage stands well above the series average.
type PeakDay struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// TrendResult summarizes consumption velocity and direction over a window.
type TrendResult struct {
	AverageDailyUsage float64        `json:"average_daily_usage"`
	GrowthRatePercent float64        `json:"growth_rate_percent"`
	Direction         TrendDirection `json:"direction"`
	Volatility        float64        `json:"volatility"`
	HighVolatility    bool           `json:"high_volatility"`
	PeakDays          []PeakDay      `json:"peak_days,omitempty"`
}

// SeasonalDimension holds per-bucket averages for one calendar dimension.
type SeasonalDimension struct {
	Averages      []float64 `json:"averages"`
	PeakBucket    int       `json:"peak_bucket"`
	PeakAverage   float64   `json:"peak_average"`
	VarianceScore float64   `json:"variance_score"`
}

// SeasonalProfile is usage bucketed by weekday, day of month, month and
// quarter, plus the pattern flags derived from bucket variance.
type SeasonalProfile struct {
	Weekday    SeasonalDimension `json:"weekday"`
	DayOfMonth SeasonalDimension `json:"day_of_month"`
	Month      SeasonalDimension `json:"month"`
	Quarter    SeasonalDimension `json:"quarter"`

	HasWeeklyPattern   bool `json:"has_weekly_pattern"`
	HasSeasonalPattern bool `json:"has_seasonal_pattern"`
	StrongSeasonality  bool `json:"strong_seasonality"`

	WeekdayAverage float64 `json:"weekday_average"`
	WeekendAverage float64 `json:"weekend_average"`

	HistoryDays       int  `json:"history_days"`
	ReducedConfidence bool `json:"reduced_confidence"`
}

// AnomalySeverity classifies how far outside the expected range a day falls.
type AnomalySeverity string

const (
	SeverityMedium AnomalySeverity = "medium"
	SeverityHigh   AnomalySeverity = "high"
)

// AnomalyType distinguishes unusually high usage from unusually low usage.
type AnomalyType string

const (
	AnomalySpike AnomalyType = "spike"
	AnomalyDrop  AnomalyType = "drop"
)

// Anomaly is a single day whose usage deviates beyond the z-score threshold.
type Anomaly struct {
	Date          time.Time       `json:"date"`
	ObservedUsage float64         `json:"observed_usage"`
	ExpectedMin   float64         `json:"expected_min"`
	ExpectedMax   float64         `json:"expected_max"`
	ZScore        float64         `json:"z_score"`
	Severity      AnomalySeverity `json:"severity"`
	Type          AnomalyType     `json:"type"`
}

// AnomalyCluster groups anomalies whose dates fall within three days of each
// other. Only clusters of two or more anomalies are reported.
type AnomalyCluster struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Anomalies []Anomaly `json:"anomalies"`
}

// ZeroUsageStreak is a maximal run of consecutive zero-usage days longer than
// a single day.
type ZeroUsageStreak struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DurationDays int       `json:"duration_days"`
}

// AnomalyReport is the full output of the anomaly detection stage.
type AnomalyReport struct {
	Mean           float64           `json:"mean"`
	StdDev         float64           `json:"std_dev"`
	Isolated       []Anomaly         `json:"isolated,omitempty"`
	Clusters       []AnomalyCluster  `json:"clusters,omitempty"`
	ZeroStreaks    []ZeroUsageStreak `json:"zero_usage_streaks,omitempty"`
	StabilityScore float64           `json:"stability_score"`
}

// ConfidenceLevel labels how much faith to put in a forecast value.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ComponentEstimates are the three model outputs blended into a daily forecast.
type ComponentEstimates struct {
	SMA                  float64 `json:"sma"`
	ExponentialSmoothing float64 `json:"exponential_smoothing"`
	LinearTrend          float64 `json:"linear_trend"`
}

// ForecastDay is the blended usage estimate for one future day.
type ForecastDay struct {
	Date           time.Time          `json:"date"`
	EstimatedUsage float64            `json:"estimated_usage"`
	Confidence     ConfidenceLevel    `json:"confidence"`
	Components     ComponentEstimates `json:"components"`
}

// Forecast is the per-day and aggregate demand forecast for an item.
type Forecast struct {
	Days                []ForecastDay   `json:"days"`
	TotalEstimatedUsage float64         `json:"total_estimated_usage"`
	Confidence          ConfidenceLevel `json:"confidence"`
	HistoryDays         int             `json:"history_days"`
}

// RiskLevel grades the chance of running out of stock within the horizon.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// StockoutRisk projects when current stock runs out against forecast usage.
type StockoutRisk struct {
	CurrentStock          float64    `json:"current_stock"`
	EstimatedPeriodUsage  float64    `json:"estimated_period_usage"`
	DaysRemaining         float64    `json:"days_remaining"`
	Risk                  RiskLevel  `json:"risk"`
	ProjectedStockoutDate *time.Time `json:"projected_stockout_date,omitempty"`
}

// ParLevels are the recommended low/high stock targets for reordering.
type ParLevels struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// ParRecommendation compares computed par levels against the stored ones.
type ParRecommendation struct {
	Recommended ParLevels `json:"recommended"`
	StoredLow   float64   `json:"stored_low"`
	StoredHigh  float64   `json:"stored_high"`
	AdjustLow   bool      `json:"adjust_low"`
	AdjustHigh  bool      `json:"adjust_high"`
}

// TurnoverClass buckets items by how quickly they move.
type TurnoverClass string

const (
	TurnoverFast   TurnoverClass = "fast"
	TurnoverMedium TurnoverClass = "medium"
	TurnoverSlow   TurnoverClass = "slow"
	TurnoverDead   TurnoverClass = "dead"
)

// AnalysisInput is everything the engine needs for one item. Events may be
// unordered and may span more history than the requested window; the engine
// sorts and buckets them itself. AsOf replaces any wall-clock lookup so runs
// are reproducible.
type AnalysisInput struct {
	ItemID       int64
	Events       []UsageEventView
	WindowStart  time.Time
	WindowEnd    time.Time
	AsOf         time.Time
	HorizonDays  int
	LeadTimeDays int
	CurrentStock float64
	StoredParLow float64
	StoredParHi  float64
}

// UsageEventView is the minimal movement shape the engine consumes.
type UsageEventView struct {
	Quantity   float64
	Direction  string
	OccurredAt time.Time
}

// Report is the complete analytics output for one item.
type Report struct {
	ItemID      int64     `json:"item_id"`
	AsOf        time.Time `json:"as_of"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	HistoryDays int       `json:"history_days"`

	Velocity float64       `json:"velocity"`
	Turnover TurnoverClass `json:"turnover"`

	Trend       TrendResult     `json:"trend"`
	Seasonality SeasonalProfile `json:"seasonality"`
	Anomalies   AnomalyReport   `json:"anomalies"`

	// Forecast and risk are omitted when history is below the hard forecast
	// minimum; ForecastNote carries the reason.
	Forecast     *Forecast     `json:"forecast,omitempty"`
	Risk         *StockoutRisk `json:"risk,omitempty"`
	ForecastNote string        `json:"forecast_note,omitempty"`

	ParRecommendation *ParRecommendation `json:"par_recommendation,omitempty"`
	Recommendations   []string           `json:"recommendations"`
}
