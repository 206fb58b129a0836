// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/restoops/backend-go/internal/api/handlers"
	"github.com/restoops/backend-go/internal/api/middleware"
	"github.com/restoops/backend-go/internal/service"
)

type Services struct {
	AnalyticsService *service.AnalyticsService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.AnalyticsService != nil {
		analyticsHandler := handlers.NewAnalyticsHandler(services.AnalyticsService)

		itemGroup := apiGroup.Group("/analytics/items/:id")
		{
			itemGroup.GET("/report", analyticsHandler.GetReport)
			itemGroup.GET("/trend", analyticsHandler.GetTrend)
			itemGroup.GET("/seasonality", analyticsHandler.GetSeasonality)
			itemGroup.GET("/anomalies", analyticsHandler.GetAnomalies)
			itemGroup.GET("/forecast", analyticsHandler.GetForecast)
			itemGroup.GET("/risk", analyticsHandler.GetRisk)
			itemGroup.POST("/par_levels/apply", analyticsHandler.ApplyParLevels)
		}

		apiGroup.POST("/analytics/batch", analyticsHandler.BatchReports)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
