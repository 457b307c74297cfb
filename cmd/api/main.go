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
	"github.com/rs/zerolog"

	"github.com/quizhub/quiz-go-api/internal/config"
	"github.com/quizhub/quiz-go-api/internal/database"
	"github.com/quizhub/quiz-go-api/internal/handler"
	"github.com/quizhub/quiz-go-api/internal/middleware"
	"github.com/quizhub/quiz-go-api/internal/repository"
	"github.com/quizhub/quiz-go-api/internal/router"
	"github.com/quizhub/quiz-go-api/internal/service"
	"github.com/quizhub/quiz-go-api/pkg/events"
	"github.com/quizhub/quiz-go-api/pkg/judge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		natsConn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, verdict events disabled")
		} else {
			defer natsConn.Drain()
			publisher = events.NewNATSPublisher(natsConn, events.DefaultSubject, logger)
		}
	}

	judgeClient, err := judge.NewClient(judge.Config{
		BaseURL:  cfg.JudgeBaseURL,
		Username: cfg.JudgeUsername,
		Password: cfg.JudgePassword,
		Timeout:  cfg.JudgeTimeout,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("failed to create judge client: %v", err)
	}
	defer judgeClient.Close()

	coordinator := judge.NewCoordinator(judgeClient, judge.CoordinatorConfig{
		PollInterval: cfg.JudgePollInterval,
		MaxAttempts:  cfg.JudgeMaxAttempts,
		Language:     cfg.JudgeLanguage,
		Logger:       logger,
	})

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	problemSetRepo := repository.NewProblemSetRepository(db)
	completionRepo := repository.NewCompletionRepository(db)

	tracker := service.NewCompletionTracker(problemSetRepo, submissionRepo, completionRepo, redisClient, logger)

	authService := service.NewAuthService(userRepo, service.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		AdminName: cfg.AdminName,
	}, validate, logger)
	problemService := service.NewProblemService(problemRepo, judgeClient, validate, logger)
	submissionService := service.NewSubmissionService(
		submissionRepo,
		problemRepo,
		coordinator,
		tracker,
		publisher,
		validate,
		logger,
		service.SubmissionConfig{JudgeDeadline: cfg.JudgeDeadline},
	)
	problemSetService := service.NewProblemSetService(
		problemSetRepo,
		problemRepo,
		submissionRepo,
		completionRepo,
		userRepo,
		redisClient,
		cfg.StatusCacheTTL,
		validate,
		logger,
	)

	authHandler := handler.NewAuthHandler(authService, logger)
	problemHandler := handler.NewProblemHandler(problemService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	problemSetHandler := handler.NewProblemSetHandler(problemSetService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		ProblemHandler:    problemHandler,
		SubmissionHandler: submissionHandler,
		ProblemSetHandler: problemSetHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, submissionService)
}

func waitForShutdown(app *fiber.App, submissions service.SubmissionService) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	// Let in-flight judgements resolve so no submission stays pending.
	submissions.Wait()

	log.Println("server stopped")
}
