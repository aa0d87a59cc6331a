package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/epeers/shortpositions/internal/middleware"
	"github.com/epeers/shortpositions/internal/models"
	"github.com/epeers/shortpositions/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	maxUploadBytes = 10 << 20
	// anonymousSession is used when the session middleware is not installed.
	anonymousSession = "anonymous"
)

// ReportHandler handles report loading endpoints
type ReportHandler struct {
	reportSvc  *services.ReportService
	sessionSvc *services.SessionService
	dateDays   int
}

// NewReportHandler creates a new ReportHandler. dateDays is how many calendar
// days the report date picker offers.
func NewReportHandler(reportSvc *services.ReportService, sessionSvc *services.SessionService, dateDays int) *ReportHandler {
	return &ReportHandler{
		reportSvc:  reportSvc,
		sessionSvc: sessionSvc,
		dateDays:   dateDays,
	}
}

func sessionID(c *gin.Context) string {
	if id, ok := middleware.GetSessionID(c); ok {
		return id
	}
	return anonymousSession
}

// FetchLatest handles GET /api/fetch-latest-data
// @Summary Load the latest report
// @Description Locate the most recent daily short position report, parse it and add it to the session window
// @Tags reports
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Success 200 {object} models.ReportResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/fetch-latest-data [get]
func (h *ReportHandler) FetchLatest(c *gin.Context) {
	ctx, wc := services.NewWarningContext(c.Request.Context())
	id := sessionID(c)

	ds, err := h.reportSvc.FetchLatest(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sessionSvc.Upsert(ctx, id, ds)
	h.sessionSvc.MarkAutoLoaded(id)

	c.JSON(http.StatusOK, reportResponse(ds, wc))
}

// FetchSpecific handles POST /api/fetch-specific-data
// @Summary Load a report by URL
// @Description Download and parse the report at the given official URL and add it to the session window
// @Tags reports
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param request body models.FetchSpecificRequest true "Report URL"
// @Success 200 {object} models.ReportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/fetch-specific-data [post]
func (h *ReportHandler) FetchSpecific(c *gin.Context) {
	var req models.FetchSpecificRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_url",
			Message: "No URL provided",
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	ds, err := h.reportSvc.FetchURL(ctx, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sessionSvc.Upsert(ctx, sessionID(c), ds)
	c.JSON(http.StatusOK, reportResponse(ds, wc))
}

// FetchDate handles POST /api/fetch-date
// @Summary Load the report for a date
// @Description Build the official URL for a YYYYMMDD date, then load it like fetch-specific-data
// @Tags reports
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param request body models.FetchDateRequest true "Report date"
// @Success 200 {object} models.ReportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/fetch-date [post]
func (h *ReportHandler) FetchDate(c *gin.Context) {
	var req models.FetchDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	ds, err := h.reportSvc.FetchDate(ctx, req.Date)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sessionSvc.Upsert(ctx, sessionID(c), ds)
	c.JSON(http.StatusOK, reportResponse(ds, wc))
}

// UploadCSV handles POST /api/upload-csv
// @Summary Parse an uploaded report
// @Description Parse a report CSV in either layout. When a YYYYMMDD date is given the report is also added to the session window.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param file formData file true "Report CSV"
// @Param date formData string false "Report date (YYYYMMDD)"
// @Success 200 {object} models.ReportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /api/upload-csv [post]
func (h *ReportHandler) UploadCSV(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "No file provided",
		})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "failed to open uploaded file: " + err.Error(),
		})
		return
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "failed to read uploaded file: " + err.Error(),
		})
		return
	}
	if len(body) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "file exceeds the 10 MB upload limit",
		})
		return
	}
	log.Debugf("Uploaded %s, %d bytes", fh.Filename, len(body))

	ctx, wc := services.NewWarningContext(c.Request.Context())
	date := c.PostForm("date")
	ds, err := h.reportSvc.ParseUpload(ctx, string(body), date)
	if err != nil {
		if errors.Is(err, services.ErrParseFailure) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "parse_failure",
				Message: "No valid data found in the CSV file",
			})
			return
		}
		respondError(c, err)
		return
	}

	if date != "" {
		h.sessionSvc.Upsert(ctx, sessionID(c), ds)
	}
	c.JSON(http.StatusOK, reportResponse(ds, wc))
}

// ReportDates handles GET /api/report-dates
// @Summary List recent report dates
// @Description List recent weekdays with their official report URLs, most recent first
// @Tags reports
// @Produce json
// @Param X-Session-ID header string false "Session ID"
// @Param days query int false "Calendar days to cover"
// @Success 200 {array} models.ReportDateOption
// @Failure 400 {object} models.ErrorResponse
// @Router /api/report-dates [get]
func (h *ReportHandler) ReportDates(c *gin.Context) {
	days := h.dateDays
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 366 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "days must be between 1 and 366",
			})
			return
		}
		days = n
	}

	window := h.sessionSvc.Get(sessionID(c)).Window
	options := h.reportSvc.ReportDates(days)
	for i := range options {
		options[i].Loaded = window.Get(options[i].Date) != nil
	}
	c.JSON(http.StatusOK, options)
}

func reportResponse(ds *models.ReportDataset, wc *services.WarningCollector) models.ReportResponse {
	meta := ds.Metadata
	return models.ReportResponse{
		Data:     models.ToDTOs(ds.Records),
		Metadata: &meta,
		Warnings: wc.GetWarnings(),
	}
}
