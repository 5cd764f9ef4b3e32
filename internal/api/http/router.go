package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/credit-ledger/internal/api/http/handlers"
	"github.com/spec-kit/credit-ledger/internal/identity"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Profile  *handlers.ProfileHandler
	Analysis *handlers.AnalysisHandler
	Session  *identity.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. Profile and analysis routes require a
// bearer session token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/signout", cfg.Auth.SignOut)
	authGroup.Get("/session", cfg.Auth.Session)

	app.Get("/profile", cfg.Session.Handle, cfg.Profile.Get)

	analysisGroup := app.Group("/analysis", cfg.Session.Handle)
	analysisGroup.Post("/file", cfg.Analysis.AnalyzeFile)
	analysisGroup.Post("/isomers", cfg.Analysis.GenerateIsomers)
	analysisGroup.Post("/render/2d", cfg.Analysis.Render2D)
	analysisGroup.Post("/render/3d", cfg.Analysis.Render3D)
}
