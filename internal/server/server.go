package server

import (
	"quiknote-be/internal/bootstrap"
	"quiknote-be/internal/config"
	"quiknote-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB, avatars are capped lower by the session
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (no-op until a provider is installed)
	app.Use(otelfiber.Middleware())

	if container.Metrics != nil {
		app.Use(container.Metrics.Middleware())
		app.Get("/metrics", container.Metrics.Handler())
	}

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger, statusRules()...))

	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{
			"workspaces": container.Registry.Count(),
		}))
	})

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Server is running", map[string]interface{}{
		"url": "http://localhost:" + s.cfg.App.Port,
	})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")
	auth := serverutils.JwtMiddleware(c.Issuer)

	c.AuthController.RegisterRoutes(api, auth)
	c.ProfileController.RegisterRoutes(api, auth)

	c.NotebookController.RegisterRoutes(api, auth)
	c.NoteController.RegisterRoutes(api, auth)
	c.TrashController.RegisterRoutes(api, auth)
	c.SyncController.RegisterRoutes(api, auth)
	c.BoardController.RegisterRoutes(api, auth)

	c.RealtimeHandler.RegisterRoutes(api)
}
