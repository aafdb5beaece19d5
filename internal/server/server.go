// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	_ "propmatch/docs" // swagger docs
	"propmatch/internal/cache"
	"propmatch/internal/config"
	"propmatch/internal/database"
	"propmatch/internal/featureflags"
	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/notifications"
	"propmatch/internal/repository"
	"propmatch/internal/service"
	"propmatch/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
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
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	notifier     *notifications.Notifier
	threads      *threadHub
	featureFlags *featureflags.Manager

	auth          *service.AuthService
	catalog       *service.CatalogService
	interests     *service.InterestService
	invitations   *service.InvitationService
	messaging     *service.MessagingService
	opportunities *service.OpportunityService
	wizards       *service.WizardService
	dashboard     *service.DashboardService
	poller        *service.ThreadPoller
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, revocation and push nudges are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	properties := repository.NewPropertyRepository(db)
	interests := repository.NewInterestRepository(db)
	groups := repository.NewGroupRepository(db)
	conversations := repository.NewConversationRepository(db)
	invitations := repository.NewInvitationRepository(db)
	messages := repository.NewMessageRepository(db)
	opportunities := repository.NewOpportunityRepository(db)
	drafts := repository.NewWizardRepository(db)

	var photos service.PhotoUploader
	if cfg.StorageDir != "" {
		store, err := storage.NewLocalStore(cfg.StorageDir, cfg.StoragePublicURL)
		if err != nil {
			return nil, fmt.Errorf("photo storage: %w", err)
		}
		photos = storage.NewPhotoUploader(store, cfg.StorageBucket, cfg.MaxUploadSizeMB)
	}

	notifier := notifications.NewNotifier(redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("propmatch-api"),
		notifier:       notifier,
		threads:        newThreadHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.auth = service.NewAuthService(users, cfg.JWTSecret, redisClient)
	s.catalog = service.NewCatalogService(properties, photos, cfg.PropertyCacheTTL)
	s.interests = service.NewInterestService(properties, interests, profiles, groups)
	s.invitations = service.NewInvitationService(properties, users, conversations, invitations, notifier)
	s.messaging = service.NewMessagingService(messages, conversations, groups, properties, interests, profiles, notifier)
	s.opportunities = service.NewOpportunityService(opportunities, conversations, s.messaging)
	s.wizards = service.NewWizardService(drafts, profiles, s.catalog, s.interests)
	s.dashboard = service.NewDashboardService(properties, interests, groups, invitations, profiles)
	s.poller = service.NewThreadPoller(s.messaging, cfg.PollInterval)

	return s, nil
}

// App builds the Fiber application with middleware and routes. Start calls it;
// tests use it with app.Test.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "propmatch API",
		BodyLimit:    (s.uploadLimitMB() + 1) << 20,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) uploadLimitMB() int {
	if s.config != nil && s.config.MaxUploadSizeMB > 0 {
		return s.config.MaxUploadSizeMB
	}
	return 10
}

// errorHandler maps errors that escape a handler to the JSON error envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		appErr := &models.AppError{Code: models.CodeInternal, Message: fe.Message}
		switch fe.Code {
		case fiber.StatusNotFound:
			appErr.Code = models.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
			appErr.Code = models.CodeValidation
		}
		return models.RespondWithError(c, fe.Code, appErr)
	}
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	}
	return models.RespondWithError(c, status, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Listing photos are served from /uploads to the web client's origin.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := ""
	if s.config != nil {
		origins = s.config.AllowedOrigins
	}
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(compress.New(compress.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderUpgrade) != ""
		},
	}))

	// 300 requests per minute per IP; thread refresh runs every few seconds per open chat.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
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

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if s.config != nil && s.config.StorageDir != "" {
		app.Static("/uploads", s.config.StorageDir, fiber.Static{MaxAge: 3600})
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Listings are public to browse.
	api.Get("/properties", s.ListProperties)
	api.Get("/properties/:id", s.GetProperty)

	protected := api.Group("", s.AuthRequired())
	protected.Get("/me", s.Me)
	protected.Get("/dashboard", s.Dashboard)

	properties := protected.Group("/properties")
	properties.Post("/", middleware.RateLimit(s.redis, 20, time.Hour, "create_property"), s.CreateProperty)
	properties.Post("/:id/lock", s.LockProperty)
	properties.Post("/:id/interests", s.SubmitInterest)
	properties.Get("/:id/interests", s.ListInterests)
	properties.Get("/:id/candidates", s.ListCandidates)
	properties.Post("/:id/groups", s.CreateGroup)
	properties.Get("/:id/chat", s.GetPropertyChat)
	properties.Post("/:id/chat", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendPropertyChat)
	properties.Post("/:id/direct", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.DirectMessageBuilder)
	properties.Post("/:id/group-chat", s.JoinPropertyGroupChat)
	properties.Post("/:id/contact", s.ContactUser)
	properties.Post("/:id/invitations", middleware.RateLimit(s.redis, 20, time.Minute, "invite"), s.Invite)
	properties.Delete("/:id", s.DeleteProperty)

	protected.Get("/interests", s.ListMyInterests)

	groups := protected.Group("/groups")
	groups.Get("/", s.ListMyGroups)
	groups.Get("/:id/messages", s.GetGroupMessages)
	groups.Post("/:id/messages", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendGroupMessage)

	invitations := protected.Group("/invitations")
	invitations.Get("/", s.ListInvitations)
	invitations.Get("/unread-count", s.UnreadInvitations)
	invitations.Post("/:id/accept", s.AcceptInvitation)
	invitations.Post("/:id/decline", s.DeclineInvitation)

	conversations := protected.Group("/conversations")
	conversations.Get("/", s.ListConversations)
	conversations.Get("/:id/messages", s.GetConversationMessages)
	conversations.Post("/:id/messages", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendConversationMessage)
	conversations.Get("/:id", s.GetConversation)

	opportunities := protected.Group("/opportunities")
	opportunities.Get("/", s.ListOpportunities)
	opportunities.Post("/", s.PostOpportunity)
	opportunities.Get("/:id/comments", s.ListOpportunityComments)
	opportunities.Post("/:id/comments", s.CommentOnOpportunity)
	opportunities.Post("/:id/message", s.MessageOpportunityCreator)

	wizards := protected.Group("/wizards")
	wizards.Get("/:name", s.GetWizard)
	wizards.Put("/:name/steps/:step", s.SaveWizardStep)
	wizards.Post("/:name/back", s.WizardBack)
	wizards.Post("/:name/complete", s.CompleteWizard)
	wizards.Delete("/:name", s.DiscardWizard)

	ws := api.Group("/ws", s.AuthRequired(), s.featureFlags.Require(featureflags.ThreadStream), requireUpgrade)
	ws.Get("/threads/:scope/:id", s.ThreadStream())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only
// the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil || database.Ping(ctx, s.db) != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus != "healthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the thread subscriber and listens until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if err := s.notifier.StartThreadSubscriber(ctx, func(thread models.Thread, _ string) {
		s.threads.nudge(thread)
	}); err != nil {
		middleware.Logger.Warn("thread subscriber unavailable, streams fall back to polling", "error", err)
	}

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", "error", cerr)
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
