package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/judge-go-api/internal/config"
	"github.com/noah-isme/judge-go-api/internal/handler"
	"github.com/noah-isme/judge-go-api/internal/middleware"
	"github.com/noah-isme/judge-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	JudgeHandler      *handler.JudgeHandler
	SubmissionHandler *handler.SubmissionHandler
	LanguageHandler   *handler.LanguageHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil.
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.JudgeHandler != nil {
		judgeGroup := api.Group("/judge", jwtMiddleware,
			middleware.RateLimit("judge", 10, time.Minute))
		deps.JudgeHandler.Register(judgeGroup)
	}

	if deps.SubmissionHandler != nil {
		submissionGroup := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissionGroup)
	}

	if deps.LanguageHandler != nil {
		languageGroup := api.Group("/languages")
		deps.LanguageHandler.Register(languageGroup)
	}
}
