package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtside/config"
	"courtside/cron"
	"courtside/database"
	"courtside/database/repository"
	"courtside/handlers"
	"courtside/middleware"
	"courtside/routes"
	"courtside/services/availability"
	"courtside/services/booking"
	"courtside/services/tasks"
	"courtside/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	utils.SetJWTSecret(cfg.JWTSecret)

	logger := utils.GetLogger()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	database.InitDB()
	utils.InitCache()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// repositories.
	db := database.DB()
	bookingRepo := repository.NewMongoBookingRepo(db)
	blockedRepo := repository.NewMongoBlockedRepo(db)
	courtRepo := repository.NewMongoCourtRepo(db)
	facilityRepo := repository.NewMongoFacilityRepo(db)
	for name, ensure := range map[string]func(context.Context) error{
		"bookings": bookingRepo.EnsureIndexes,
		"blocked":  blockedRepo.EnsureIndexes,
		"courts":   courtRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			logger.Fatal("main: failed to ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}

	// completion queue.
	queueClient := asynq.NewClient(cron.RedisOpt())
	defer queueClient.Close()

	// services.
	index, err := availability.NewIndex(cfg.BookingStepMinutes, utils.RealClock{}, logger.Named("index"))
	if err != nil {
		logger.Fatal("main: invalid booking step", zap.Error(err))
	}
	bookingService, err := booking.NewBookingService(booking.Dependencies{
		Index:     index,
		Ledger:    bookingRepo,
		Blocks:    blockedRepo,
		Courts:    courtRepo,
		Cache:     booking.NewRedisAvailabilityCache(utils.GetCacheClient(), cfg.AvailabilityCacheTTL(), logger),
		Scheduler: tasks.NewCompletionScheduler(queueClient),
		Logger:    logger.Named("booking"),
	}, booking.OptionsFromConfig(cfg))
	if err != nil {
		logger.Fatal("main: failed to build booking service", zap.Error(err))
	}
	if err := bookingService.Rebuild(ctx); err != nil {
		logger.Fatal("main: failed to rebuild availability index", zap.Error(err))
	}

	// background jobs.
	go index.Run(ctx, cfg.HoldSweepInterval())
	go bookingService.RunMaintenance(ctx, cfg.CompletionSweepInterval())
	worker := cron.InitCompletionWorker(bookingService, logger.Named("worker"))
	utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetCacheClient()}, database.MongoClient)

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterRoutes(router, handlers.NewHandlerBundle(bookingService, facilityRepo, logger.Named("http")))

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stop()
	worker.Shutdown()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
