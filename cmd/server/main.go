package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/appgrid/marketplace-backend/internal/cache"
	"github.com/appgrid/marketplace-backend/internal/handlers"
	"github.com/appgrid/marketplace-backend/internal/middleware"
	"github.com/appgrid/marketplace-backend/internal/notify"
	"github.com/appgrid/marketplace-backend/internal/repository"
	"github.com/appgrid/marketplace-backend/internal/service"
	"github.com/appgrid/marketplace-backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	zlog := zerolog.New(os.Stderr).With().Timestamp().Str("service", "marketplace").Logger()

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "AppGrid Marketplace Backend",
		// Support package uploads plus multipart overhead.
		BodyLimit: 260 * 1024 * 1024,
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	catalogCache := cache.NewCatalogCache(redisCache)

	// Initialize repositories
	appRepo := repository.NewAppRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	developerRepo := repository.NewDeveloperRepository(db)
	installRepo := repository.NewInstallRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Outbound submission notifications (optional).
	var notifier service.SubmissionNotifier
	if wh := notify.FromEnv(zlog); wh != nil {
		notifier = wh
		log.Println("Submission webhook notifier enabled")
	}

	// Initialize services
	catalogService := service.NewCatalogService(appRepo, versionRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, appRepo)
	developerService := service.NewDeveloperService(developerRepo)
	installService := service.NewInstallService(installRepo, appRepo, catalogService, analyticsService)
	reviewService := service.NewReviewService(reviewRepo, appRepo, installRepo, developerRepo)
	submissionService := service.NewSubmissionService(appRepo, versionRepo, submissionRepo, developerRepo, notifier)

	// Initialize S3/MinIO storage (best-effort; upload endpoints return 503 if missing)
	var s3Store *storage.S3Storage
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		log.Printf("WARNING: S3 storage not configured: %v", err)
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		log.Printf("WARNING: Failed to initialize S3 storage: %v", err)
	} else {
		s3Store = st
		log.Printf("S3 storage initialized successfully (bucket=%s)", cfg.Bucket)
	}

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService, catalogCache)
	installHandler := handlers.NewInstallHandler(installService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, catalogCache)
	developerHandler := handlers.NewDeveloperHandler(developerService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	uploadHandler := handlers.NewUploadHandler(submissionService, catalogService, s3Store)
	mediaHandler := handlers.NewMediaHandler(s3Store)

	// Public storefront routes
	api := app.Group("/api", middleware.OriginAllowed())
	api.Get("/apps", catalogHandler.SearchApps)
	api.Get("/apps/featured", catalogHandler.ListFeatured)
	api.Get("/apps/trending", catalogHandler.ListTrending)
	api.Get("/apps/new", catalogHandler.ListNew)
	api.Get("/apps/:slug", catalogHandler.GetAppBySlug)
	api.Get("/apps/:slug/versions", catalogHandler.GetVersionHistory)
	api.Get("/apps/:app_id/reviews", reviewHandler.ListReviews)
	api.Get("/apps/:app_id/reviews/stats", reviewHandler.GetReviewStats)
	api.Get("/categories", catalogHandler.CategoryCounts)
	api.Get("/categories/:category/apps", catalogHandler.ListByCategory)
	api.Get("/stats", catalogHandler.MarketplaceStats)
	api.Get("/media/icons/*", mediaHandler.GetListingImage(storage.PrefixIcons))
	api.Get("/media/screenshots/*", mediaHandler.GetListingImage(storage.PrefixScreenshots))

	// Telemetry ingest from platform clients (rate limited per IP).
	telemetry := api.Group("/apps/:app_id", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	telemetry.Post("/events", analyticsHandler.RecordEvent)
	telemetry.Post("/revenue", analyticsHandler.RecordRevenue)
	telemetry.Post("/sessions", analyticsHandler.RecordSession)
	telemetry.Post("/active-users", analyticsHandler.ReportActiveUsers)

	// Authenticated user routes
	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/apps/:app_id/package-url", uploadHandler.GetPackageURL)
	protected.Post("/apps/:app_id/reviews", reviewHandler.CreateReview)
	protected.Put("/reviews/:id", reviewHandler.UpdateReview)
	protected.Delete("/reviews/:id", reviewHandler.DeleteReview)
	protected.Post("/reviews/:id/helpful", reviewHandler.MarkHelpful)
	protected.Post("/reviews/:id/response", reviewHandler.AddDeveloperResponse)

	protected.Get("/installs", installHandler.ListInstalled)
	protected.Get("/installs/updates", installHandler.CheckForUpdates)
	protected.Post("/installs/:app_id", installHandler.Install)
	protected.Post("/installs/:app_id/update", installHandler.Update)
	protected.Delete("/installs/:app_id", installHandler.Uninstall)
	protected.Post("/installs/:app_id/launch", installHandler.Launch)
	protected.Post("/installs/:app_id/pin", installHandler.TogglePin)
	protected.Put("/installs/:app_id/settings", installHandler.UpdateSettings)
	protected.Put("/installs/:app_id/sort-order", installHandler.SetSortOrder)
	protected.Get("/installs/:app_id/history", installHandler.UpdateHistory)

	// Developer console routes
	developer := protected.Group("/developer")
	developer.Post("/register", limiter.New(limiter.Config{
		Max:        5,
		Expiration: time.Minute,
	}), developerHandler.Register)
	developer.Get("/me", developerHandler.GetMe)
	developer.Post("/payment", developerHandler.SetupPayment)
	developer.Post("/apps", submissionHandler.CreateApp)
	developer.Get("/apps", submissionHandler.ListDeveloperApps)
	developer.Put("/apps/:app_id", submissionHandler.UpdateAppDetails)
	developer.Delete("/apps/:app_id", submissionHandler.DeleteApp)
	developer.Post("/apps/:app_id/versions", submissionHandler.SubmitVersion)
	developer.Post("/apps/:app_id/publish", submissionHandler.PublishApp)
	developer.Get("/apps/:app_id/submissions", submissionHandler.ListSubmissionsByApp)
	developer.Get("/apps/:app_id/analytics", analyticsHandler.GetSummary)
	developer.Get("/apps/:app_id/analytics/daily", analyticsHandler.GetDailySeries)
	developer.Post("/apps/:app_id/icon", uploadHandler.UploadIcon)
	developer.Post("/apps/:app_id/screenshots", uploadHandler.UploadScreenshot)
	developer.Post("/apps/:app_id/package", uploadHandler.UploadPackage)
	developer.Get("/submissions", submissionHandler.ListMySubmissions)
	developer.Post("/submissions/:id/withdraw", submissionHandler.WithdrawSubmission)
	api.Get("/developers/:id", developerHandler.GetDeveloper)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireRole("admin"))
	admin.Get("/submissions", submissionHandler.ReviewQueue)
	admin.Post("/submissions/:id/start", submissionHandler.StartReview)
	admin.Post("/submissions/:id/approve", submissionHandler.ApproveSubmission)
	admin.Post("/submissions/:id/reject", submissionHandler.RejectSubmission)
	admin.Post("/developers/:id/verify", developerHandler.Verify)
	admin.Post("/developers/:id/suspend", developerHandler.Suspend)
	admin.Put("/apps/:id/featured", catalogHandler.SetFeatured)
	admin.Put("/apps/:id/trending", catalogHandler.SetTrending)

	// WebSocket install stream (websocket upgrade needs special handling)
	app.Use(
		"/ws/install",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws/install", websocket.New(installHandler.StreamInstall))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Marketplace is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
