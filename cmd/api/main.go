package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nutriclinic/backoffice/internal/cache"
	"github.com/nutriclinic/backoffice/internal/config"
	"github.com/nutriclinic/backoffice/internal/email"
	authhandler "github.com/nutriclinic/backoffice/internal/handler/auth"
	consultationhandler "github.com/nutriclinic/backoffice/internal/handler/consultation"
	patienthandler "github.com/nutriclinic/backoffice/internal/handler/patient"
	"github.com/nutriclinic/backoffice/internal/middleware"
	"github.com/nutriclinic/backoffice/internal/repository/postgres"
	"github.com/nutriclinic/backoffice/internal/router"
	authservice "github.com/nutriclinic/backoffice/internal/service/auth"
	consultationservice "github.com/nutriclinic/backoffice/internal/service/consultation"
	eventservice "github.com/nutriclinic/backoffice/internal/service/event"
	extractionservice "github.com/nutriclinic/backoffice/internal/service/extraction"
	patientservice "github.com/nutriclinic/backoffice/internal/service/patient"
	transcriptionservice "github.com/nutriclinic/backoffice/internal/service/transcription"
	"github.com/nutriclinic/backoffice/pkg/ai"
	"github.com/nutriclinic/backoffice/pkg/auth"
	"github.com/nutriclinic/backoffice/pkg/logger"
	"github.com/nutriclinic/backoffice/pkg/messaging/redis"
	"github.com/nutriclinic/backoffice/pkg/metrics"
	"github.com/nutriclinic/backoffice/pkg/security"
	"github.com/nutriclinic/backoffice/pkg/worker"
)

const viewCacheTTL = 5 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.NewMetrics("backoffice", "api")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	brokerLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.Redis.URL}, &brokerLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	// Repositories
	store := postgres.NewStore(db)
	operatorRepo := postgres.NewOperatorRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	// View cache with cross-instance invalidation fanout
	views := cache.NewViewCache(viewCacheTTL, 10*time.Minute, broker, appLogger)

	// Capability provider
	openaiClient := ai.NewOpenAIClient(ai.Config{
		APIKey:             cfg.OpenAI.APIKey,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
		CompletionModel:    cfg.OpenAI.CompletionModel,
	}, m)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(12)
	authSvc := authservice.NewService(operatorRepo, jwtSvc, hasher)
	patientSvc := patientservice.NewService(patientRepo, views)
	eventSvc := eventservice.NewService(outboxRepo)
	transcriptionSvc := transcriptionservice.NewService(openaiClient, openaiClient, cfg.OpenAI.Language, appLogger)
	extractionSvc := extractionservice.NewService(openaiClient, appLogger)
	consultationSvc := consultationservice.NewService(store, extractionSvc, views, eventSvc, cfg.Pipeline.Atomic, appLogger, m)
	emailSvc := email.NewService(&cfg.SMTP, appLogger)

	// Handlers
	authHandler := authhandler.NewHandler(authSvc)
	patientHandler := patienthandler.NewHandler(patientSvc)
	consultationHandler := consultationhandler.NewHandler(transcriptionSvc, consultationSvc, emailSvc, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(authMiddleware, authHandler, patientHandler, consultationHandler, router.DefaultConfig())
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Background workers
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.DefaultOutboxProcessorConfig(), appLogger, m)
	go outboxProcessor.Start(workerCtx)

	go func() {
		if err := views.Listen(workerCtx); err != nil && workerCtx.Err() == nil {
			appLogger.Error(err, "view invalidation listener stopped")
		}
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
