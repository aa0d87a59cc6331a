package handlers

import (
	"net/http"

	"github.com/epeers/shortpositions/internal/metrics"
	"github.com/epeers/shortpositions/internal/middleware"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the API router with session and metrics middleware.
func NewRouter(reportHandler *ReportHandler, windowHandler *WindowHandler, compareHandler *CompareHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware(), middleware.Session(), middleware.RequestLogger())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Report loading routes
	api.GET("/fetch-latest-data", reportHandler.FetchLatest)
	api.POST("/fetch-specific-data", reportHandler.FetchSpecific)
	api.POST("/fetch-date", reportHandler.FetchDate)
	api.POST("/upload-csv", reportHandler.UploadCSV)
	api.GET("/report-dates", reportHandler.ReportDates)

	// Window routes
	api.GET("/window", windowHandler.Get)
	api.DELETE("/window/:date", windowHandler.Evict)
	api.DELETE("/window", windowHandler.Clear)

	// Comparison routes
	api.GET("/compare", compareHandler.Compare)
	api.GET("/top-movers", compareHandler.TopMovers)
	api.GET("/top-shorted", compareHandler.TopShorted)
	api.GET("/stocks/:ticker", compareHandler.Stock)

	return router
}
