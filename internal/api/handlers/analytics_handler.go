package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/restoops/backend-go/internal/engine"
	"github.com/restoops/backend-go/internal/repository"
	"github.com/restoops/backend-go/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// parseRequest reads the shared analysis query parameters:
//
//	window_days  size of the analysis window (default 90)
//	horizon_days forecast length (default 30)
//	lead_time    reorder lead time override (default: the item's stored value)
//	as_of        RFC3339 or YYYY-MM-DD reference time (default now)
func (h *AnalyticsHandler) parseRequest(c *gin.Context) (service.ReportRequest, bool) {
	var req service.ReportRequest

	if idParam := c.Param("id"); idParam != "" {
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil || id <= 0 {
			errorResponse(c, http.StatusBadRequest, "invalid item id")
			return req, false
		}
		req.ItemID = id
	}

	if windowDays := strings.TrimSpace(c.Query("window_days")); windowDays != "" {
		days, err := strconv.Atoi(windowDays)
		if err != nil || days <= 0 {
			errorResponse(c, http.StatusBadRequest, "window_days must be a positive integer")
			return req, false
		}
		req.WindowDays = days
	}

	if horizonDays := strings.TrimSpace(c.Query("horizon_days")); horizonDays != "" {
		days, err := strconv.Atoi(horizonDays)
		if err != nil || days <= 0 {
			errorResponse(c, http.StatusBadRequest, "horizon_days must be a positive integer")
			return req, false
		}
		req.HorizonDays = days
	}

	if leadTime := strings.TrimSpace(c.Query("lead_time")); leadTime != "" {
		days, err := strconv.Atoi(leadTime)
		if err != nil || days <= 0 {
			errorResponse(c, http.StatusBadRequest, "lead_time must be a positive integer")
			return req, false
		}
		req.LeadTimeDays = days
	}

	if asOf := strings.TrimSpace(c.Query("as_of")); asOf != "" {
		parsed, err := parseAsOf(asOf)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "as_of must be RFC3339 or YYYY-MM-DD")
			return req, false
		}
		req.AsOf = parsed
	}

	return req, true
}

func parseAsOf(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func (h *AnalyticsHandler) report(c *gin.Context) (*engine.Report, bool) {
	req, ok := h.parseRequest(c)
	if !ok {
		return nil, false
	}

	report, err := h.service.ItemReport(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return report, true
}

// GetReport returns the full analytics report for one item.
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	if report, ok := h.report(c); ok {
		c.JSON(http.StatusOK, report)
	}
}

// GetTrend returns only the trend section of the report.
func (h *AnalyticsHandler) GetTrend(c *gin.Context) {
	if report, ok := h.report(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"item_id":  report.ItemID,
			"velocity": report.Velocity,
			"turnover": report.Turnover,
			"trend":    report.Trend,
		})
	}
}

// GetSeasonality returns only the seasonal profile.
func (h *AnalyticsHandler) GetSeasonality(c *gin.Context) {
	if report, ok := h.report(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"item_id":     report.ItemID,
			"seasonality": report.Seasonality,
		})
	}
}

// GetAnomalies returns only the anomaly section.
func (h *AnalyticsHandler) GetAnomalies(c *gin.Context) {
	if report, ok := h.report(c); ok {
		c.JSON(http.StatusOK, gin.H{
			"item_id":   report.ItemID,
			"anomalies": report.Anomalies,
		})
	}
}

// GetForecast returns the forecast; 422 when history is too short to produce
// one at all.
func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	if report.Forecast == nil {
		errorResponse(c, http.StatusUnprocessableEntity, report.ForecastNote)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_id":  report.ItemID,
		"forecast": report.Forecast,
	})
}

// GetRisk returns the stockout risk assessment.
func (h *AnalyticsHandler) GetRisk(c *gin.Context) {
	report, ok := h.report(c)
	if !ok {
		return
	}
	if report.Risk == nil {
		errorResponse(c, http.StatusUnprocessableEntity, report.ForecastNote)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_id":         report.ItemID,
		"risk":            report.Risk,
		"par_levels":      report.ParRecommendation,
		"recommendations": report.Recommendations,
	})
}

// ApplyParLevels recomputes and persists the recommended par levels.
func (h *AnalyticsHandler) ApplyParLevels(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	rec, err := h.service.ApplyParLevels(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id":    req.ItemID,
		"applied":    rec.Recommended,
		"par_levels": rec,
	})
}

// BatchReports analyzes every active item in one request.
func (h *AnalyticsHandler) BatchReports(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	results, err := h.service.BatchReports(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

func (h *AnalyticsHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		errorResponse(c, http.StatusNotFound, "item not found")
	case errors.Is(err, engine.ErrInvalidWindow), errors.Is(err, engine.ErrWindowTooLarge):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrInsufficientHistory):
		errorResponse(c, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("analytics request failed")
		errorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}
