package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"alcyxob/coach-core/internal/api"
	"alcyxob/coach-core/internal/config"
	"alcyxob/coach-core/internal/jobs"
	"alcyxob/coach-core/internal/llm"
	"alcyxob/coach-core/internal/logger"
	"alcyxob/coach-core/internal/observability"
	"alcyxob/coach-core/internal/repository/mongo"
	"alcyxob/coach-core/internal/service"
	"alcyxob/coach-core/internal/storage"
)

// @title Coach Core API
// @version 1.0
// @description Training programs, calendar, live workout sessions and weekly program reviews.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting coach-core", "address", cfg.Server.Address, "mode", cfg.Server.Mode)

	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret is required")
	}
	if cfg.LLM.APIKey == "" {
		log.Warn("llm.api_key is empty, generation and reviews will fail")
	}

	// --- Tracing ---
	shutdownTracing := observability.InitTracing(context.Background(), log, cfg.Otel)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	// --- Ensure Indexes ---
	indexCtx, indexCancel := context.WithTimeout(context.Background(), time.Minute)
	if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
		indexCancel()
		log.Fatal("could not ensure indexes", "error", err)
	}
	indexCancel()

	// --- Initialize Storage ---
	archive := storage.Disabled()
	if cfg.S3.Enabled {
		archive, err = storage.NewS3Storage(context.Background(), cfg.S3, log)
		if err != nil {
			log.Fatal("failed to initialize S3 storage", "error", err)
		}
	}

	// --- Initialize Repositories ---
	programRepo := mongo.NewMongoProgramRepository(appDB, cfg.Database.Timeout)
	profileRepo := mongo.NewMongoWeightsProfileRepository(appDB, cfg.Database.Timeout)
	calendarRepo := mongo.NewMongoCalendarEventRepository(appDB, cfg.Database.Timeout)
	instanceRepo := mongo.NewMongoWorkoutInstanceRepository(appDB, cfg.Database.Timeout)
	sessionRepo := mongo.NewMongoSessionRepository(appDB, cfg.Database.Timeout)
	eventRepo := mongo.NewMongoSessionEventRepository(appDB, cfg.Database.Timeout)
	reviewRunRepo := mongo.NewMongoReviewRunRepository(appDB, cfg.Database.Timeout)

	// --- Initialize Services ---
	llmClient := llm.NewHTTPClient(cfg.LLM, log)
	generator := service.NewWorkoutGenerator(llmClient)

	programService := service.NewProgramService(programRepo, log)
	profileService := service.NewProfileService(profileRepo, log)
	calendarService := service.NewCalendarService(calendarRepo, programService, cfg.Calendar, log)
	sessionService := service.NewSessionService(sessionRepo, instanceRepo, eventRepo, calendarRepo, profileService, generator, log)
	actionService := service.NewActionService(sessionRepo, instanceRepo, eventRepo, profileService, generator, log)
	statsService := service.NewStatsService(sessionRepo, instanceRepo, eventRepo, calendarRepo)
	reviewService := service.NewReviewService(
		programService, profileService, statsService, calendarService,
		reviewRunRepo, llmClient, archive, cfg.Review, log,
	)

	// --- Scheduled Jobs ---
	var locker jobs.Locker
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		locker, rdb, err = jobs.NewRedisLocker(context.Background(), cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", "error", err)
		}
		defer rdb.Close()
	}
	scheduler, err := jobs.NewScheduler(reviewService, locker, cfg.Review, log)
	if err != nil {
		log.Fatal("invalid review schedule", "error", err)
	}
	scheduler.Start()

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(cfg.Otel.ServiceName),
		api.RequestID(),
		api.RequestLogger(log),
		api.CORS(cfg.Server.CORSOrigins),
	)

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, api.Services{
		Program:  programService,
		Profile:  profileService,
		Calendar: calendarService,
		Session:  sessionService,
		Action:   actionService,
		Stats:    statsService,
		Review:   reviewService,
	})

	// --- Start HTTP Server ---
	// WriteTimeout leaves room for a workout generation round trip.
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	scheduler.Stop()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exiting")
}
