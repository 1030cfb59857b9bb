// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "snapshare/docs" // swagger docs
	"snapshare/internal/cache"
	"snapshare/internal/config"
	"snapshare/internal/database"
	"snapshare/internal/middleware"
	"snapshare/internal/models"
	"snapshare/internal/repository"
	"snapshare/internal/service"
	"snapshare/internal/session"
	"snapshare/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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
	sessions       session.Store
	blobs          storage.Blob
	promMiddleware *fiberprometheus.FiberPrometheus

	identity   *service.IdentityService
	content    *service.ContentService
	aggregator *service.Aggregator
	navigation *service.NavigationService
}

// NewServer connects the database, Redis and blob storage described by cfg and
// builds a server on top of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob storage init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), blobs)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient selects the in-process session store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs storage.Blob) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob storage is required")
	}

	var sessions session.Store
	if redisClient != nil {
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL())
	} else {
		log.Println("Redis unavailable, using in-memory session store")
		sessions = session.NewMemoryStore(cfg.SessionTTL())
	}

	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	auditRepo := repository.NewAuditRepository(db, cfg.AuditLogMaxEntries)

	aggregator := service.NewAggregator(accountRepo, profileRepo, postRepo, commentRepo, auditRepo)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		sessions:       sessions,
		blobs:          blobs,
		promMiddleware: middleware.InitMetrics("snapshare-api"),
		identity:       service.NewIdentityService(accountRepo, sessions, cfg),
		content:        service.NewContentService(profileRepo, postRepo, blobs, cfg),
		aggregator:     aggregator,
		navigation:     service.NewNavigationService(sessions, postRepo, commentRepo, auditRepo, aggregator),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  models.CodeRateLimited,
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/media/*", s.ServeMedia)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRequired := middleware.AuthRequired(s.identity.ResolveToken)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", authRequired, s.Logout)

	// Profiles
	api.Get("/profile", authRequired, s.GetMyProfile)
	api.Post("/profile/image", authRequired, s.UploadProfileImage)
	api.Get("/profiles/:username", s.GetProfileByUsername)

	api.Post("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.Search)

	// Feed and navigation
	api.Get("/feed", s.GetFeed)
	api.Post("/feed/select", authRequired, s.SelectPost)

	posts := api.Group("/posts")
	posts.Post("/", authRequired, middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	// Specific /current routes; there is no generic /:id route.
	posts.Get("/current", authRequired, s.GetCurrentPost)
	posts.Delete("/current", authRequired, s.ClosePost)
	posts.Post("/current/comments", authRequired, middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Sessions fall back to memory without Redis, so its absence is degraded, not fatal.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

// Shutdown releases the database and Redis connections.
func (s *Server) Shutdown(_ context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
