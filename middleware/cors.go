// middleware/cors.go
package middleware

import (
	"github.com/gofiber/fiber/v2"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// CORSMiddleware stamps the same cross-origin headers on every response for a
// single allowed origin and answers any OPTIONS request with an empty 204.
func CORSMiddleware(allowedOrigin string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		SetCORSHeaders(c, allowedOrigin)

		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusNoContent)
			return nil
		}
		return c.Next()
	}
}

// SetCORSHeaders is also called from the app's error handler, which serves
// server-level rejections (oversized body) that never reach middleware.
func SetCORSHeaders(c *fiber.Ctx, allowedOrigin string) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, allowedOrigin)
	c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
}
