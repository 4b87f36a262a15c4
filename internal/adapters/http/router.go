package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/adeelhaq/sinchai/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Post("/farms", timeout.NewWithContext(CreateFarmHandler(deps), 15*time.Second))
	v1.Get("/farms", timeout.NewWithContext(ListFarmsHandler(deps), 15*time.Second))
	v1.Get("/farms/:id", timeout.NewWithContext(GetFarmHandler(deps), 15*time.Second))
	v1.Get("/farms/:id/fields", timeout.NewWithContext(FarmFieldsHandler(deps), 15*time.Second))

	v1.Post("/fields", timeout.NewWithContext(CreateFieldHandler(deps), 15*time.Second))
	v1.Post("/fields/measure", timeout.NewWithContext(MeasureBoundaryHandler(deps), 15*time.Second))
	v1.Get("/fields", timeout.NewWithContext(ListFieldsHandler(deps), 15*time.Second))
	v1.Get("/fields/nearby", timeout.NewWithContext(NearbyFieldsHandler(deps), 15*time.Second))
	v1.Get("/fields/:id", timeout.NewWithContext(GetFieldHandler(deps), 15*time.Second))
	v1.Patch("/fields/:id", timeout.NewWithContext(PatchFieldHandler(deps), 15*time.Second))

	// Recommendation is slower: it fans out to two upstream APIs
	v1.Get("/fields/:id/recommendation", timeout.NewWithContext(FieldRecommendationHandler(deps), 30*time.Second))
	v1.Post("/fields/:id/recommendation/confirm", timeout.NewWithContext(ConfirmRecommendationHandler(deps), 15*time.Second))

	v1.Post("/fields/:id/schedule/seed", timeout.NewWithContext(SeedScheduleHandler(deps), 15*time.Second))
	v1.Post("/fields/:id/schedules", timeout.NewWithContext(SaveScheduleHandler(deps), 15*time.Second))
	v1.Get("/fields/:id/schedules", timeout.NewWithContext(ListSchedulesHandler(deps), 15*time.Second))
	v1.Get("/fields/:id/stats", timeout.NewWithContext(FieldSceneStatsHandler(deps), 15*time.Second))

	v1.Get("/stats", timeout.NewWithContext(PlatformStatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
