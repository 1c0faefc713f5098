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

	"github.com/noah-isme/judge-go-api/internal/config"
	"github.com/noah-isme/judge-go-api/internal/database"
	"github.com/noah-isme/judge-go-api/internal/handler"
	"github.com/noah-isme/judge-go-api/internal/middleware"
	"github.com/noah-isme/judge-go-api/internal/models"
	"github.com/noah-isme/judge-go-api/internal/repository"
	"github.com/noah-isme/judge-go-api/internal/router"
	"github.com/noah-isme/judge-go-api/internal/service"
	"github.com/noah-isme/judge-go-api/pkg/ai"
	"github.com/noah-isme/judge-go-api/pkg/judge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Submission{}); err != nil {
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
		logger.Warn().Msg("redis not configured, report cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats not configured, completion events disabled")
	}

	feedback := buildFeedbackGenerator(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	runner := judge.NewProcessRunner(cfg.WorkRoot, logger)
	engine := judge.NewJudge(runner, cfg.Workers, logger)

	submissionRepo := repository.NewSubmissionRepository(db)
	judgeService := service.NewJudgeService(engine, submissionRepo, redisClient, natsConn, feedback, validate, logger, service.JudgeServiceConfig{
		CacheTTL: cfg.ReportCacheTTL,
	})

	judgeHandler := handler.NewJudgeHandler(judgeService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(judgeService, validate, logger)
	languageHandler := handler.NewLanguageHandler(judgeService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})

	var jwtMiddleware fiber.Handler
	if cfg.AuthEnabled() {
		jwtMiddleware = middleware.JWTProtected(cfg.JWTSecret)
	}

	router.Register(app, cfg, router.Dependencies{
		JudgeHandler:      judgeHandler,
		SubmissionHandler: submissionHandler,
		LanguageHandler:   languageHandler,
		JWTMiddleware:     jwtMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildFeedbackGenerator(cfg config.Config, logger zerolog.Logger) ai.Generator {
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn().Msg("openai api key missing, ai feedback disabled")
			return nil
		}
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Logger: logger})
		if err != nil {
			logger.Warn().Err(err).Msg("openai generator unavailable, ai feedback disabled")
			return nil
		}
		return generator
	case "anthropic":
		generator, err := ai.NewAnthropicGenerator(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey})
		if err != nil {
			logger.Warn().Err(err).Msg("anthropic generator unavailable, ai feedback disabled")
			return nil
		}
		return generator
	default:
		logger.Warn().Str("provider", cfg.AIProvider).Msg("unknown ai provider, ai feedback disabled")
		return nil
	}
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
