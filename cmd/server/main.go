package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/cache"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/caselaw"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/config"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/handlers"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/handlers/ws"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/repository"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/service"
	"github.com/harshmohite04/Firm-Connect-sub000/internal/storage"
	"github.com/harshmohite04/Firm-Connect-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	// Initialize database connection
	db, err := repository.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(); err != nil {
		logger.Warn("Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		logger.Info("Redis cache connected successfully")
	}

	messageCache := cache.NewMessageCache(redisCache)
	userCache := cache.NewUserCache(redisCache)
	documentCache := cache.NewDocumentCache(redisCache, cfg.CaseLaw.CacheTTL)

	// Initialize S3/MinIO storage (best-effort; bookmarks are kept without snapshots if missing)
	var snapshots service.SnapshotArchiver
	if st, err := storage.NewS3Storage(cfg.Storage); err != nil {
		logger.Warn("S3 storage not configured: %v", err)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := st.EnsureBucket(ctx); err != nil {
			logger.Warn("S3 bucket %s unavailable: %v", cfg.Storage.Bucket, err)
		} else {
			snapshots = storage.NewSnapshotStore(st)
			logger.Info("S3 storage initialized successfully (bucket=%s)", cfg.Storage.Bucket)
		}
		cancel()
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	pendingMessageRepo := repository.NewPendingMessageRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, userCache)
	hub := ws.NewHub(pendingMessageRepo, userService)
	hub.SetPendingRetention(cfg.Server.PendingRetention)
	defer hub.Close()

	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg.JWT)
	messageService := service.NewMessageService(messageRepo, userRepo, messageCache, hub, cfg.Server.MaxMessageLength)

	var suggester service.PrecedentSuggester
	if cfg.CaseLaw.SuggestURL != "" {
		suggester = caselaw.NewSuggestClient(cfg.CaseLaw.SuggestURL)
	} else {
		logger.Warn("CASELAW_SUGGEST_URL not set; precedent suggestions disabled")
	}
	provider := caselaw.NewProviderClient(cfg.CaseLaw.ProviderURL, cfg.CaseLaw.ProviderKey).WithTimeout(cfg.CaseLaw.Timeout)
	caseLawService := service.NewCaseLawService(provider, suggester, documentCache, cfg.CaseLaw)
	bookmarkService := service.NewBookmarkService(bookmarkRepo, snapshots, caseLawService)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "FirmConnect Portal",
		BodyLimit: cfg.Server.BodyLimit,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: cfg.Server.AllowedOrigins != "" && cfg.Server.AllowedOrigins != "*",
	}))

	routes := &handlers.Routes{
		Auth:           handlers.NewAuthHandler(authService),
		User:           handlers.NewUserHandler(userService),
		Message:        handlers.NewMessageHandler(messageService),
		CaseLaw:        handlers.NewCaseLawHandler(caseLawService, bookmarkService),
		Admin:          handlers.NewAdminHandler(userService, hub),
		WebSocket:      handlers.NewWebSocketHandler(hub),
		JWTSecret:      cfg.JWT.Secret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthRateLimit:  20,
	}
	routes.Mount(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("Shutdown: %v", err)
		}
	}()

	logger.Info("Server starting on port %s...", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
