package web

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"postmetrics/pkg/log"
)

const requestIDKey = "requestid"

// RequestIDConfig reuses an incoming X-Request-ID or generates a UUIDv4.
func RequestIDConfig() requestid.Config {
	return requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: requestIDKey,
		Generator:  func() string { return uuid.NewString() },
	}
}

// RequestIDToContextMiddleware copies the request ID into the user context
// so every log line of the request carries it. Install after requestid.New.
func RequestIDToContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestIDKey).(string); ok && id != "" {
			c.SetUserContext(log.WithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}

// RequestLoggerMiddleware writes one structured line per request, at WARN
// for 4xx and ERROR for 5xx.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"ip", c.IP(),
		}
		if err != nil {
			fields = append(fields, "error", err)
		}

		ctx := c.UserContext()
		switch {
		case status >= fiber.StatusInternalServerError:
			log.GlobalErrorCtx(ctx, "request completed", fields...)
		case status >= fiber.StatusBadRequest:
			log.GlobalWarnCtx(ctx, "request completed", fields...)
		default:
			log.GlobalInfoCtx(ctx, "request completed", fields...)
		}
		return err
	}
}
