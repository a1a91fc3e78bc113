package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reelcast/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags every request with an id and logs its outcome.
func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals("requestid", requestID)
		c.Set(requestIDHeader, requestID)

		err := c.Next()
		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		attrs := []logging.Attr{
			logging.String(logging.FieldCorrelationID, requestID),
			logging.String("method", c.Method()),
			logging.String("path", c.Path()),
			logging.Int("status", status),
			logging.Duration("latency", time.Since(start)),
		}
		if status >= fiber.StatusBadRequest {
			logger.Warn("request completed with error", logging.Args(attrs...)...)
		} else {
			logger.Debug("request completed", logging.Args(attrs...)...)
		}
		return err
	}
}
