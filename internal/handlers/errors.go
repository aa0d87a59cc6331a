package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/epeers/shortpositions/internal/asic"
	"github.com/epeers/shortpositions/internal/models"
	"github.com/epeers/shortpositions/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const notFoundMessage = "CSV file not found. This date may not have data available from official sources, or the file may not exist yet."

// respondError maps a service error to its status and error code.
func respondError(c *gin.Context, err error) {
	var fetchErr *asic.FetchError

	switch {
	case errors.Is(err, services.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_url", Message: err.Error()})
	case errors.Is(err, services.ErrInvalidDate), errors.Is(err, services.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid_request", Message: err.Error()})
	case errors.Is(err, services.ErrParseFailure):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "parse_failure", Message: err.Error()})
	case errors.Is(err, services.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: "insufficient_data", Message: err.Error()})
	case errors.Is(err, asic.ErrSourceNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "source_not_found", Message: err.Error()})
	case errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound && strings.HasSuffix(fetchErr.URL, asic.ReportFileSuffix):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "fetch_failed", Message: notFoundMessage})
	case errors.Is(err, asic.ErrFetchFailed):
		log.Warnf("Upstream fetch failed: %v", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "fetch_failed", Message: err.Error()})
	default:
		log.Errorf("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}
