package handlers

import (
	"errors"
	"net/http"

	"field-dash/internal/api/models"
	"field-dash/internal/dashboard"
	"field-dash/internal/data"
	"field-dash/internal/render"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
}

// respondFailure maps dashboard, provider and render errors onto the error
// envelope.
func respondFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, dashboard.ErrInvalidRequest) {
		badRequest(c, err)
		return
	}
	if errors.Is(err, render.ErrNoData) {
		respondError(c, http.StatusNotFound, "NO_DATA", "nothing to plot for the current selection", nil)
		return
	}
	if pe, ok := data.AsProviderError(err); ok {
		status := http.StatusBadGateway
		switch pe.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			status = http.StatusUnauthorized
		case http.StatusTooManyRequests:
			status = http.StatusTooManyRequests
			if pe.RetryAfter != "" {
				c.Header("Retry-After", pe.RetryAfter)
			}
		case http.StatusNotFound:
			status = http.StatusNotFound
		}
		respondError(c, status, pe.Code, err.Error(), map[string]interface{}{
			"status_code": pe.StatusCode,
			"retry_after": pe.RetryAfter,
		})
		return
	}
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
}
