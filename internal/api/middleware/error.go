package middleware

import (
	"log/slog"
	"net/http"

	"field-dash/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware handles panics and errors
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			"path", c.Request.URL.Path,
			"request_id", c.GetString(RequestIDKey),
			"panic", recovered,
		)
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: message,
			},
		})
	})
}

// NotFound answers unknown API routes with the JSON error envelope.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "no route for " + c.Request.Method + " " + c.Request.URL.Path,
			},
		})
	}
}
