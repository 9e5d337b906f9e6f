package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/zenstudio/internal/logger"
)

// AuthConfig defines the config for the auth middleware
type AuthConfig struct {
	// Next skips the middleware when it returns true.
	Next func(c *fiber.Ctx) bool

	// Token is the expected API token. An empty token disables the check.
	Token string

	// Header carries the token. Default: "X-API-Key"
	Header string
}

const defaultAuthHeader = "X-API-Key"

// NewAuth guards a route group with a static API token. Both the raw token
// and a "Bearer " prefixed value are accepted.
func NewAuth(cfg AuthConfig) fiber.Handler {
	if cfg.Header == "" {
		cfg.Header = defaultAuthHeader
	}
	log := logger.Component("auth")

	return func(c *fiber.Ctx) error {
		if cfg.Token == "" || (cfg.Next != nil && cfg.Next(c)) {
			return c.Next()
		}

		token := strings.TrimPrefix(c.Get(cfg.Header), "Bearer ")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
			log.Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("rejected request with missing or invalid API key")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or missing API Key",
			})
		}
		return c.Next()
	}
}
