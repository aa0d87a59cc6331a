package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/epeers/shortpositions/internal/models"
	"github.com/epeers/shortpositions/internal/services"
	"github.com/gin-gonic/gin"
)

// CompareHandler handles trend and ranking endpoints over the session window
type CompareHandler struct {
	comparisonSvc *services.ComparisonService
	sessionSvc    *services.SessionService
}

// NewCompareHandler creates a new CompareHandler
func NewCompareHandler(comparisonSvc *services.ComparisonService, sessionSvc *services.SessionService) *CompareHandler {
	return &CompareHandler{
		comparisonSvc: comparisonSvc,
		sessionSvc:    sessionSvc,
	}
}

// Compare handles GET /api/compare
// @Summary Compare one ticker across loaded reports
// @Description Short percentage of a ticker on each loaded report date, with the change between adjacent dates
// @Tags compare
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param ticker query string true "Ticker"
// @Success 200 {object} models.TickerTrend
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/compare [get]
func (h *CompareHandler) Compare(c *gin.Context) {
	ticker := strings.TrimSpace(c.Query("ticker"))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "ticker is required",
		})
		return
	}

	w := h.sessionSvc.Get(sessionID(c)).Window
	result, err := h.comparisonSvc.TickerTrend(c.Request.Context(), w, ticker)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TopMovers handles GET /api/top-movers
// @Summary Biggest movers across loaded reports
// @Description Tickers present in at least two loaded reports, ranked by the absolute change from first to last
// @Tags compare
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param limit query int false "Maximum entries (1-20)"
// @Success 200 {object} models.TopMoversResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/top-movers [get]
func (h *CompareHandler) TopMovers(c *gin.Context) {
	limit, ok := parseLimit(c, services.DefaultTopMovers)
	if !ok {
		return
	}

	w := h.sessionSvc.Get(sessionID(c)).Window
	c.JSON(http.StatusOK, h.comparisonSvc.TopMovers(c.Request.Context(), w, limit))
}

// TopShorted handles GET /api/top-shorted
// @Summary Most shorted securities
// @Description Securities in the most recent loaded report ranked by short percentage
// @Tags compare
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param limit query int false "Maximum entries (1-50)"
// @Success 200 {object} models.TopShortedResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/top-shorted [get]
func (h *CompareHandler) TopShorted(c *gin.Context) {
	limit, ok := parseLimit(c, services.DefaultTopShorted)
	if !ok {
		return
	}

	latest := h.sessionSvc.Get(sessionID(c)).Window.Latest()
	if latest == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "no report loaded",
		})
		return
	}

	c.JSON(http.StatusOK, h.comparisonSvc.TopShorted(c.Request.Context(), latest, limit))
}

// Stock handles GET /api/stocks/:ticker
// @Summary One security's detail
// @Description The security's record from the most recent loaded report that contains it, with its dated percentages newest first
// @Tags compare
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param ticker path string true "Ticker"
// @Param range query string false "Time range (1m, 3m, 12m, 3y)"
// @Success 200 {object} models.StockResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/stocks/{ticker} [get]
func (h *CompareHandler) Stock(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	timeRange, err := services.ParseTimeRange(c.Query("range"))
	if err != nil {
		respondError(c, err)
		return
	}

	datasets := h.sessionSvc.Get(sessionID(c)).Window.Datasets()
	for i := len(datasets) - 1; i >= 0; i-- {
		rec := datasets[i].Find(ticker)
		if rec == nil {
			continue
		}
		c.JSON(http.StatusOK, models.StockResponse{
			ReportDate: datasets[i].Date,
			Record:     models.ToDTO(rec),
			History:    h.comparisonSvc.StockHistory(rec, timeRange),
		})
		return
	}

	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "ticker not found in loaded reports: " + ticker,
	})
}

// parseLimit reads the optional limit query parameter, capped at ceiling.
func parseLimit(c *gin.Context, ceiling int) (int, bool) {
	s := c.Query("limit")
	if s == "" {
		return ceiling, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > ceiling {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "limit must be between 1 and " + strconv.Itoa(ceiling),
		})
		return 0, false
	}
	return n, true
}
