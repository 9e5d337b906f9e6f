package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/zenstudio/internal/logger"
)

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Logger defaults to the "http" component logger.
	Logger *zerolog.Logger
}

// NewLogger logs one line per request. Server errors are logged at error
// level, client errors at warn and everything else at debug.
func NewLogger(config ...LoggerConfig) fiber.Handler {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Logger == nil {
		l := logger.Component("http")
		cfg.Logger = &l
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = cfg.Logger.Error()
		case status >= fiber.StatusBadRequest:
			event = cfg.Logger.Warn()
		default:
			event = cfg.Logger.Debug()
		}

		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("project", c.Query("project")).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Err(err).
			Msg("request")

		return err
	}
}

// RequestLogger is NewLogger with the default config.
func RequestLogger() fiber.Handler {
	return NewLogger()
}
