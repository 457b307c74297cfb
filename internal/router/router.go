package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quizhub/quiz-go-api/internal/config"
	"github.com/quizhub/quiz-go-api/internal/handler"
	"github.com/quizhub/quiz-go-api/internal/middleware"
	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	ProblemHandler    *handler.ProblemHandler
	SubmissionHandler *handler.SubmissionHandler
	ProblemSetHandler *handler.ProblemSetHandler
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

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"))
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ProblemHandler != nil {
		deps.ProblemHandler.Register(api.Group("/problems", jwtMiddleware))
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		submissions.Use(middleware.RateLimit("submissions", cfg.SubmitRateLimit, time.Minute))
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.ProblemSetHandler != nil {
		deps.ProblemSetHandler.Register(api.Group("/problem-sets", jwtMiddleware))
	}

	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
	if deps.ProblemHandler != nil {
		deps.ProblemHandler.RegisterAdmin(admin.Group("/problems"))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterAdmin(admin.Group("/submissions"))
	}
	if deps.ProblemSetHandler != nil {
		deps.ProblemSetHandler.RegisterAdmin(admin.Group("/problem-sets"))
	}
}
