package auth

import "github.com/gofiber/fiber/v2"

// Config holds settings for the API key middleware.
type Config struct {
	// ApiKey is the expected key. When empty, authentication is disabled
	// (local development).
	ApiKey string
}

// HeaderName is the request header carrying the API key.
const HeaderName = "X-API-Key"

// New returns a middleware validating the API key on every request.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}

		if c.Get(HeaderName) != cfg.ApiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}

		return c.Next()
	}
}
