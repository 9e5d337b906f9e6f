package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bilgisen/zenstudio/internal/middleware"
)

// RouteOptions configure SetupRoutes.
type RouteOptions struct {
	// APIToken guards /api/v1 when set.
	APIToken string
	// Gatherer serves /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, opts RouteOptions) {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api/v1", middleware.NewAuth(middleware.AuthConfig{Token: opts.APIToken}))

	api.Get("/health", h.HealthCheck)

	cfg := api.Group("/config")
	{
		cfg.Get("", h.GetConfig)
		cfg.Put("/last-project", h.SetLastProject)
		cfg.Delete("/recent-projects", h.RemoveRecentProject)
		cfg.Post("/bootstrap-notice", h.MarkBootstrapNotice)
	}

	schedule := api.Group("/schedule")
	{
		schedule.Get("", h.GetSchedule)
		schedule.Put("", h.PutSchedule)
		schedule.Post("/auto", h.AutoSchedule)
		schedule.Get("/stats", h.GetStats)
	}

	posts := api.Group("/posts")
	{
		posts.Patch("/:id", h.UpdatePost)
		posts.Delete("/:id", h.DeletePost)
		posts.Post("/:id/archive", h.ArchivePost)
	}

	articles := api.Group("/articles")
	{
		articles.Get("", h.ListArticles)
		articles.Get("/:id", h.GetArticle)
		articles.Post("", h.SaveArticle)
		articles.Delete("/:id", h.DeleteArticle)
	}

	api.Get("/checklist", h.GetChecklist)
	api.Put("/checklist", h.PutChecklist)
	api.Get("/checklist/export", h.ExportChecklist)

	exports := api.Group("/export")
	{
		exports.Get("/calendar", h.ExportCalendar)
		exports.Post("/:format", h.ExportPayload)
	}

	// 404 Handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
