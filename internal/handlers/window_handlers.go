package handlers

import (
	"net/http"

	"github.com/epeers/shortpositions/internal/models"
	"github.com/epeers/shortpositions/internal/services"
	"github.com/gin-gonic/gin"
)

// WindowHandler handles the session's loaded report window
type WindowHandler struct {
	sessionSvc *services.SessionService
}

// NewWindowHandler creates a new WindowHandler
func NewWindowHandler(sessionSvc *services.SessionService) *WindowHandler {
	return &WindowHandler{
		sessionSvc: sessionSvc,
	}
}

// Get handles GET /api/window
// @Summary Describe the session window
// @Description List the report dates loaded for this session and the tickers they cover
// @Tags window
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Success 200 {object} models.WindowResponse
// @Router /api/window [get]
func (h *WindowHandler) Get(c *gin.Context) {
	id := sessionID(c)
	sess := h.sessionSvc.Get(id)
	c.JSON(http.StatusOK, windowResponse(id, sess.Window, sess.AutoLoaded))
}

// Evict handles DELETE /api/window/:date
// @Summary Remove a report date
// @Tags window
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param date path string true "Report date (YYYYMMDD)"
// @Success 200 {object} models.WindowResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/window/{date} [delete]
func (h *WindowHandler) Evict(c *gin.Context) {
	id := sessionID(c)
	date := c.Param("date")

	if h.sessionSvc.Get(id).Window.Get(date) == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "report date not loaded: " + date,
		})
		return
	}

	w := h.sessionSvc.Evict(id, date)
	c.JSON(http.StatusOK, windowResponse(id, w, h.sessionSvc.Get(id).AutoLoaded))
}

// Clear handles DELETE /api/window
// @Summary Remove every report date
// @Tags window
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Success 200 {object} models.WindowResponse
// @Router /api/window [delete]
func (h *WindowHandler) Clear(c *gin.Context) {
	id := sessionID(c)
	w := h.sessionSvc.Clear(id)
	c.JSON(http.StatusOK, windowResponse(id, w, h.sessionSvc.Get(id).AutoLoaded))
}

func windowResponse(id string, w *services.Window, autoLoaded bool) models.WindowResponse {
	resp := models.WindowResponse{
		SessionID:  id,
		Capacity:   w.Capacity(),
		AutoLoaded: autoLoaded,
		Dates:      []models.LoadedReport{},
		Tickers:    w.Tickers(),
	}
	for _, ds := range w.Datasets() {
		resp.Dates = append(resp.Dates, models.LoadedReport{
			Date:        ds.Date,
			Label:       models.FormatReportDate(ds.Date),
			SourceURL:   ds.Metadata.SourceURL,
			RecordCount: ds.Metadata.RecordCount,
			FetchedAt:   ds.Metadata.FetchedAt,
		})
	}
	return resp
}
