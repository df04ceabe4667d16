package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-learnpath-api/internal/config"
	"github.com/noah-isme/gema-learnpath-api/internal/database"
	"github.com/noah-isme/gema-learnpath-api/internal/handler"
	"github.com/noah-isme/gema-learnpath-api/internal/middleware"
	"github.com/noah-isme/gema-learnpath-api/internal/models"
	"github.com/noah-isme/gema-learnpath-api/internal/repository"
	"github.com/noah-isme/gema-learnpath-api/internal/router"
	"github.com/noah-isme/gema-learnpath-api/internal/service"
	"github.com/noah-isme/gema-learnpath-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, driver, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	logger.Info().Str("driver", driver).Msg("database connected")

	if err := db.AutoMigrate(
		&models.LearnerProfile{},
		&models.LearningPlan{},
		&models.PlanDayProgress{},
		&models.LessonContent{},
		&models.QuizAttempt{},
		&models.TutorExchange{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured; plan listings are not cached")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	// Leave the interface nil without credentials so generation takes the offline path.
	var client ai.Client
	if cfg.AIEnabled() {
		openAI, err := ai.NewOpenAIClient(ai.OpenAIConfig{
			APIKey:   cfg.OpenAIAPIKey,
			Model:    cfg.AIModel,
			BaseURL:  cfg.AIBaseURL,
			Timeout:  cfg.AITimeout,
			JSONMode: cfg.AIJSONMode,
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai client: %v", err)
		}
		client = openAI
	} else {
		logger.Warn().Msg("openai api key not configured; serving fallback content")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	planRepo := repository.NewLearningPlanRepository(db)
	profileRepo := repository.NewLearnerProfileRepository(db)
	lessonRepo := repository.NewLessonRepository(db)

	generator := service.NewGenerationService(client, cfg.AIModel, logger)
	profileService := service.NewProfileService(profileRepo, validate, logger)
	events := service.NewPlanEventPublisher(natsConn, cfg.NATSSubjectPrefix, logger)
	planService := service.NewLearningPlanService(planRepo, profileService, generator, events, redisClient, validate, service.LearningPlanConfig{
		MaxDays:  cfg.PlanMaxDays,
		CacheTTL: cfg.PlanCacheTTL,
	}, logger)
	lessonService := service.NewLessonService(planRepo, lessonRepo, profileService, generator, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		PlanHandler:    handler.NewPlanHandler(planService, logger),
		LessonHandler:  handler.NewLessonHandler(lessonService, logger),
		ProfileHandler: handler.NewProfileHandler(profileService, logger),
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
