// handlers/leaderboard.go
package handlers

import (
	"errors"

	"leaderboard-service/middleware"
	"leaderboard-service/services"

	"github.com/gofiber/fiber/v2"
)

type AppConfig struct {
	AllowedOrigin string
	BodyLimit     int
}

// NewApp builds the Fiber app with CORS, request tagging and all routes.
// Paths match exactly: case-sensitive, no trailing-slash aliases.
func NewApp(cfg AppConfig, leaderboardService *services.LeaderboardService) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.BodyLimit,
		CaseSensitive:         true,
		StrictRouting:         true,
		DisableStartupMessage: true,
		ErrorHandler:          newErrorHandler(cfg.AllowedOrigin),
	})

	app.Use(middleware.RequestContextMiddleware())
	app.Use(middleware.CORSMiddleware(cfg.AllowedOrigin))

	SetupLeaderboardRoutes(app, leaderboardService)
	return app
}

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	// 🔓 Public reads. app.Add instead of app.Get so HEAD is not registered alongside.
	app.Add(fiber.MethodGet, "/leaderboard", leaderboardService.GetLeaderboard)
	app.Add(fiber.MethodGet, "/session", leaderboardService.IssueSession)
	app.Add(fiber.MethodGet, "/healthz", leaderboardService.Health)

	// 🔐 Writes: session token + Turnstile checked inside the handler
	app.Add(fiber.MethodPost, "/score", leaderboardService.SubmitScore)

	// Anything else, including a known path with the wrong method
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
}

// newErrorHandler also serves fasthttp-level rejections such as 413, which
// bypass middleware, so it stamps the CORS headers itself.
func newErrorHandler(allowedOrigin string) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		}
		middleware.SetCORSHeaders(c, allowedOrigin)
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
