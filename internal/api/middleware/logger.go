package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"field-dash/internal/observability"

	"github.com/gin-gonic/gin"
)

// Logger logs one line per request and records request metrics. Metrics are
// labelled by route template so that path parameters do not explode the
// label space.
func Logger(logger *slog.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if metrics != nil {
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", elapsed,
			"request_id", c.GetString(RequestIDKey),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		logger.Log(c.Request.Context(), level, "http request", attrs...)
	}
}
