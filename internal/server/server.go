// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "pollshare/docs" // swagger docs
	"pollshare/internal/bootstrap"
	"pollshare/internal/config"
	"pollshare/internal/database"
	"pollshare/internal/events"
	"pollshare/internal/featureflags"
	"pollshare/internal/middleware"
	"pollshare/internal/models"
	"pollshare/internal/notifications"
	"pollshare/internal/repository"
	"pollshare/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo      repository.UserRepository
	followRepo    repository.FollowRepository
	savedPostRepo repository.SavedPostRepository
	pollRepo      repository.PollRepository
	commentRepo   repository.CommentRepository

	publisher    events.Publisher
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	userService      *service.UserService
	followService    *service.FollowService
	savedPostService *service.SavedPostService
	pollService      *service.PollService
	commentService   *service.CommentService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: cfg.SeedDemoData})
	if err != nil {
		return nil, err
	}
	publisher := events.NewPublisher(cfg.KafkaBrokerList(), cfg.KafkaTopic)

	return NewServerWithDeps(cfg, db, redisClient, publisher)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient and publisher may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, publisher events.Publisher) (*Server, error) {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("pollshare-api"),
		userRepo:       repository.NewUserRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		savedPostRepo:  repository.NewSavedPostRepository(db),
		pollRepo:       repository.NewPollRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		publisher:      publisher,
		notifier:       notifications.NewNotifier(redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	s.hub = notifications.NewHub(s.notifier)

	activity := service.NewActivity(s.publisher, s.hub)
	s.userService = service.NewUserService(s.userRepo)
	s.followService = service.NewFollowService(s.followRepo, s.userRepo, activity)
	s.savedPostService = service.NewSavedPostService(s.savedPostRepo, s.userRepo, s.pollRepo, activity)
	s.pollService = service.NewPollService(s.pollRepo, s.userRepo, activity)
	s.commentService = service.NewCommentService(s.commentRepo, s.pollRepo, s.userRepo, activity)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Propagate request ID and subject into the user context
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// mutating guards write routes with bearer auth when AUTH_ENABLED is set.
func (s *Server) mutating() fiber.Handler {
	if s.config.AuthEnabled {
		return middleware.AuthRequired
	}
	return func(c *fiber.Ctx) error { return c.Next() }
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.HealthCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Pollshare Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/feature-flags", s.GetFeatureFlags)

	auth := s.mutating()

	users := api.Group("/users")
	users.Post("/", auth, middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.CreateUser)
	// Define specific routes BEFORE generic /:id route
	users.Get("/check-handle", s.CheckHandle)
	users.Get("/handle/:handle", s.GetUserByHandle)
	users.Get("/saved-posts/:userId", s.GetSavedPosts)
	users.Post("/suggestions", s.GetSuggestions)
	users.Post("/search-users", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.SearchUsers)
	users.Post("/follow", auth, middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.FollowUser)
	users.Post("/unfollow", auth, s.UnfollowUser)
	users.Post("/save-post", auth, s.SavePost)
	users.Post("/unsave-post", auth, s.UnsavePost)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", auth, s.UpdateUser)

	polls := api.Group("/polls")
	polls.Post("/", auth, middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_poll"), s.CreatePoll)
	polls.Get("/:id/comments", s.GetComments)
	polls.Post("/:id/comments", auth, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	polls.Delete("/:id/comments/:commentId", auth, s.DeleteComment)
	polls.Post("/:id/vote", auth, middleware.RateLimit(s.redis, 20, time.Minute, "vote"), s.VotePoll)
	polls.Get("/:id", s.GetPoll)

	ws := api.Group("/ws")
	if s.config.AuthEnabled {
		ws.Use(middleware.WebSocketAuthRequired)
	}
	ws.Get("/polls/:id", s.PollStreamUpgrade, s.PollStreamHandler())
}

// App builds the Fiber application without listening.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Pollshare API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// missing client reports "unavailable" without failing readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, wires live updates and listens on the configured port.
func (s *Server) Start() error {
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	s.app = s.App()

	if err := s.hub.StartWiring(s.shutdownCtx); err != nil {
		middleware.Logger.Warn("live poll updates limited to this instance", slog.String("error", err.Error()))
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down poll hub", slog.String("error", err.Error()))
	}

	if err := s.publisher.Close(); err != nil {
		middleware.Logger.Error("error closing event publisher", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
