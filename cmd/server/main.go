package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/contentdesk/configs"
	"github.com/maheshrc27/contentdesk/internal/api/handlers"
	"github.com/maheshrc27/contentdesk/internal/api/middleware"
	"github.com/maheshrc27/contentdesk/internal/cache"
	job "github.com/maheshrc27/contentdesk/internal/jobs"
	"github.com/maheshrc27/contentdesk/internal/queue"
	"github.com/maheshrc27/contentdesk/internal/repository"
	"github.com/maheshrc27/contentdesk/internal/service"
	"github.com/maheshrc27/contentdesk/internal/transcode"
	"github.com/maheshrc27/contentdesk/migrations"
	"github.com/maheshrc27/contentdesk/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	if cfg.OperatorKey == "" {
		key, err := utils.GenerateRandomKey(32)
		if err != nil {
			log.Fatalf("Failed to generate operator key: %v", err)
		}
		cfg.OperatorKey = key
		log.Printf("OPERATOR_KEY not set, using a temporary key for this run: %s", key)
	}
	if cfg.SecretKey == "" {
		key, err := utils.GenerateRandomKey(32)
		if err != nil {
			log.Fatalf("Failed to generate secret key: %v", err)
		}
		cfg.SecretKey = key
		log.Println("SECRET_KEY not set, sessions will not survive a restart")
	}

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if cfg.AutoMigrate {
		if err := migrations.Up(db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	store := cache.NewStore(cfg.RedisURI)
	defer store.Close()

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	effects, err := transcode.LoadEffects(cfg.Transcoder.EffectsFile)
	if err != nil {
		log.Fatalf("Failed to load effects: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	contentRepo := repository.NewContentRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	publicationLogRepo := repository.NewPublicationLogRepository(db)

	preferenceService := service.NewPreferenceService(preferenceRepo, contentRepo, store, cfg.CacheTTL)
	r2Service := service.NewR2Service(*cfg)
	contentService := service.NewContentService(service.ContentDeps{
		Content:     contentRepo,
		Assets:      mediaAssetRepo,
		Logs:        publicationLogRepo,
		Preferences: preferenceService,
		R2:          r2Service,
		Generator:   service.NewGeneratorService(cfg.OpenAI, nil),
		Automation:  service.NewAutomationService(cfg.AutomationWebhook, &http.Client{Timeout: 30 * time.Second}),
		Youtube:     service.NewYoutubeService(cfg.Youtube),
		Cache:       store,
		Scheduler:   queue.NewScheduler(client),
		Retention:   time.Duration(cfg.RetentionDays) * 24 * time.Hour,
	})
	compositor := transcode.NewCompositor(cfg.Transcoder.Binary, cfg.Transcoder.Timeout, effects, nil)
	clipService := service.NewClipService(compositor, cfg.Transcoder.WorkDir, r2Service, mediaAssetRepo, contentService)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := preferenceService.EnsureSeeded(seedCtx); err != nil {
		log.Printf("Failed to seed weekday preferences: %v", err)
	}
	cancel()

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/login", auth.Login)
	app.Post("/logout", auth.Logout)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	content := handlers.NewContentHandler(contentService)
	api.Get("/content", content.List)
	api.Post("/content/generate", content.Generate)
	api.Post("/content/upload", content.Upload)
	api.Get("/content/:id", content.Get)
	api.Get("/content/:id/history", content.History)
	api.Patch("/content/:id/caption", content.UpdateCaption)
	api.Post("/content/:id/schedule", content.Schedule)
	api.Post("/content/:id/reschedule", content.Reschedule)
	api.Post("/content/:id/cancel", content.Cancel)
	api.Post("/content/:id/dispatch", content.Dispatch)
	api.Post("/content/:id/youtube", content.PublishVideo)

	preferences := handlers.NewPreferenceHandler(preferenceService)
	api.Get("/preferences", preferences.List)
	api.Get("/preferences/best-hour", preferences.BestHour)
	api.Put("/preferences/:weekday", preferences.Set)
	api.Post("/preferences/recompute", preferences.Recompute)

	clips := handlers.NewClipHandler(clipService)
	api.Get("/clips/effects", clips.Effects)
	api.Post("/clips/render", clips.Render)

	maintenance := handlers.NewMaintenanceHandler(contentService)
	api.Post("/maintenance/purge", maintenance.Purge)
	api.Post("/maintenance/sync", maintenance.Sync)
	api.Post("/maintenance/dispatch", maintenance.DispatchDue)

	// cron jobs
	dispatchJob := job.NewDispatchJob(contentService)
	engagementJob := job.NewEngagementJob(contentService, preferenceService)

	c := cron.New()
	c.AddFunc("@every 00h05m00s", dispatchJob.DispatchDue)
	c.AddFunc("@daily", engagementJob.Run)
	c.Start()
	defer c.Stop()

	//queue
	queueW := queue.NewQueue(contentService)
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})

	go func() {
		log.Println("Starting the Asynq server...")
		if err := server.Run(queueW.ServeMux()); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.HTTPAddr)

	gracefulShutdown(app, server)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	server.Shutdown()

	log.Println("Server shutdown complete.")
}
