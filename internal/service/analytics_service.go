package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/restoops/backend-go/internal/cache"
	"github.com/restoops/backend-go/internal/config"
	"github.com/restoops/backend-go/internal/domain"
	"github.com/restoops/backend-go/internal/engine"
	"github.com/restoops/backend-go/internal/metrics"
	"github.com/restoops/backend-go/internal/repository"
	"github.com/restoops/backend-go/pkg/logger"
)

var log = logger.WithComponent("analytics")

const (
	defaultWindowDays = 90
	// seasonalFetchDays matches how far back the engine extends seasonality,
	// so the movement fetch always covers what the analysis can use.
	seasonalFetchDays = 180
)

type AnalyticsService struct {
	movements repository.MovementRepository
	items     repository.ItemRepository
	cache     cache.ReportCache
	engine    *engine.Engine
	workers   int
}

// ReportRequest selects the item and the analysis parameters. Zero values
// fall back to the configured defaults; a zero AsOf means "now" and a zero
// LeadTimeDays means the item's stored lead time.
type ReportRequest struct {
	ItemID       int64
	WindowDays   int
	HorizonDays  int
	LeadTimeDays int
	AsOf         time.Time
}

// BatchResult pairs one item with its report or its failure.
type BatchResult struct {
	ItemID int64          `json:"item_id"`
	Name   string         `json:"name"`
	Report *engine.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func NewAnalyticsService(
	movements repository.MovementRepository,
	items repository.ItemRepository,
	cacheImpl cache.ReportCache,
	cfg config.EngineConfig,
) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	workers := cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	return &AnalyticsService{
		movements: movements,
		items:     items,
		cache:     cacheImpl,
		engine:    engine.New(engineConfig(cfg)),
		workers:   workers,
	}
}

func engineConfig(cfg config.EngineConfig) engine.Config {
	return engine.Config{
		SMAWeight:       cfg.SMAWeight,
		SmoothingWeight: cfg.SmoothingWeight,
		TrendWeight:     cfg.TrendWeight,
		SmoothingAlpha:  cfg.SmoothingAlpha,
		SMAWindowDays:   cfg.SMAWindowDays,
		DefaultHorizon:  cfg.DefaultHorizonDays,
		DefaultLeadTime: cfg.DefaultLeadTime,
		MaxWindowDays:   cfg.MaxWindowDays,
	}
}

// ItemReport runs the full analysis for one item, serving from the report
// cache when the exact same parameters were computed recently.
func (s *AnalyticsService) ItemReport(ctx context.Context, req ReportRequest) (*engine.Report, error) {
	item, err := s.items.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	return s.reportForItem(ctx, item, req)
}

func (s *AnalyticsService) reportForItem(ctx context.Context, item *domain.Item, req ReportRequest) (*engine.Report, error) {
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	horizon := req.HorizonDays
	if horizon <= 0 {
		horizon = s.engine.Config().DefaultHorizon
	}
	leadTime := req.LeadTimeDays
	if leadTime <= 0 {
		leadTime = item.LeadTimeDays
	}

	end := truncateToDay(asOf)
	start := end.AddDate(0, 0, -(windowDays - 1))

	key := cache.ReportKey{
		ItemID:       item.ID,
		WindowStart:  start,
		WindowEnd:    end,
		AsOf:         asOf,
		HorizonDays:  horizon,
		LeadTimeDays: leadTime,
	}
	if report, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		metrics.CacheHits.Inc()
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Int64("item_id", item.ID).Msg("analytics: report cache get failed")
	}
	metrics.CacheMisses.Inc()

	// Fetch enough history for every stage: the requested window, the
	// seasonality lookback and twice the forecast horizon.
	fetchStart := earliestOf(
		start,
		end.AddDate(0, 0, -(seasonalFetchDays-1)),
		end.AddDate(0, 0, -(2*horizon-1)),
	)

	began := time.Now()
	events, err := s.movements.ListOutbound(ctx, item.ID, fetchStart, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load movement history: %w", err)
	}

	report, err := s.engine.Analyze(engine.AnalysisInput{
		ItemID:       item.ID,
		Events:       engine.FromUsageEvents(events),
		WindowStart:  start,
		WindowEnd:    end,
		AsOf:         asOf,
		HorizonDays:  horizon,
		LeadTimeDays: leadTime,
		CurrentStock: item.CurrentStock,
		StoredParLow: item.ParLow,
		StoredParHi:  item.ParHigh,
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveReport(began, anomalyCount(report))

	if err := s.cache.Set(ctx, key, report); err != nil {
		log.Warn().Err(err).Int64("item_id", item.ID).Msg("analytics: report cache set failed")
	}

	return report, nil
}

// BatchReports analyzes every active item with a fixed-size worker pool.
// Individual item failures are reported per item, not as a batch failure.
func (s *AnalyticsService) BatchReports(ctx context.Context, req ReportRequest) ([]BatchResult, error) {
	items, err := s.items.ListActiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for batch analysis: %w", err)
	}

	began := time.Now()

	jobChan := make(chan *domain.Item, len(items))
	results := make([]BatchResult, len(items))
	index := make(map[int64]int, len(items))
	for i, item := range items {
		index[item.ID] = i
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobChan {
				itemReq := req
				itemReq.ItemID = item.ID
				report, err := s.reportForItem(ctx, item, itemReq)

				result := BatchResult{ItemID: item.ID, Name: item.Name}
				if err != nil {
					log.Warn().Err(err).Int64("item_id", item.ID).Msg("analytics: batch item failed")
					result.Error = err.Error()
				} else {
					result.Report = report
				}

				mu.Lock()
				results[index[item.ID]] = result
				mu.Unlock()
			}
		}()
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- item:
		}
	}
	close(jobChan)
	wg.Wait()

	metrics.BatchDuration.Observe(time.Since(began).Seconds())
	metrics.HighRiskItems.Set(float64(countHighRisk(results)))

	return results, nil
}

// ApplyParLevels computes the current recommendation for one item and writes
// it back as the stored par levels, invalidating that item's cached reports.
func (s *AnalyticsService) ApplyParLevels(ctx context.Context, req ReportRequest) (*engine.ParRecommendation, error) {
	report, err := s.ItemReport(ctx, req)
	if err != nil {
		return nil, err
	}
	if report.ParRecommendation == nil {
		return nil, fmt.Errorf("no par recommendation available for item %d", req.ItemID)
	}

	rec := report.ParRecommendation.Recommended
	if err := s.items.UpdateParLevels(ctx, req.ItemID, float64(rec.Low), float64(rec.High)); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateItem(ctx, req.ItemID); err != nil {
		log.Warn().Err(err).Int64("item_id", req.ItemID).Msg("analytics: cache invalidation failed")
	}

	log.Info().
		Int64("item_id", req.ItemID).
		Int("par_low", rec.Low).
		Int("par_high", rec.High).
		Msg("applied recommended par levels")

	return report.ParRecommendation, nil
}

func anomalyCount(report *engine.Report) int {
	count := len(report.Anomalies.Isolated)
	for _, cluster := range report.Anomalies.Clusters {
		count += len(cluster.Anomalies)
	}
	return count
}

func countHighRisk(results []BatchResult) int {
	high := 0
	for _, r := range results {
		if r.Report != nil && r.Report.Risk != nil && r.Report.Risk.Risk == engine.RiskHigh {
			high++
		}
	}
	return high
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func earliestOf(times ...time.Time) time.Time {
	earliest := times[0]
	for _, t := range times[1:] {
		if t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}
