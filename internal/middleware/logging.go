package middleware

import (
	"errors"
	"strconv"
	"time"

	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	CtxRequestIDKey = "request_id"
)

// RequestLogger her isteği loglar ve HTTP metriklerini günceller.
func RequestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(CtxRequestIDKey, reqID)
		c.Set(HeaderRequestID, reqID)

		err := c.Next()

		// Hata ErrorHandler tarafından henüz yazılmadı, durum kodunu hatadan al
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		route := c.Route().Path
		duration := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(duration.Seconds())

		fields := map[string]interface{}{
			"request_id":  reqID,
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": float64(duration.Microseconds()) / 1000,
			"ip":          c.IP(),
		}
		switch {
		case status >= 500:
			log.WithFields(fields).Error("[HTTP] request failed", nil)
		case status >= 400:
			log.WithFields(fields).Warn("[HTTP] request rejected", nil)
		default:
			log.Info("[HTTP] request", fields)
		}

		return err
	}
}
