package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediiq/mediiq-api/internal/analysis"
	"github.com/mediiq/mediiq-api/internal/config"
	"github.com/mediiq/mediiq-api/internal/email"
	"github.com/mediiq/mediiq-api/internal/handler"
	alarmHandler "github.com/mediiq/mediiq-api/internal/handler/alarm"
	authHandler "github.com/mediiq/mediiq-api/internal/handler/auth"
	chatHandler "github.com/mediiq/mediiq-api/internal/handler/chat"
	familyHandler "github.com/mediiq/mediiq-api/internal/handler/family"
	profileHandler "github.com/mediiq/mediiq-api/internal/handler/profile"
	reminderHandler "github.com/mediiq/mediiq-api/internal/handler/reminder"
	scanHandler "github.com/mediiq/mediiq-api/internal/handler/scan"
	"github.com/mediiq/mediiq-api/internal/identity"
	"github.com/mediiq/mediiq-api/internal/middleware"
	"github.com/mediiq/mediiq-api/internal/repository/postgres"
	"github.com/mediiq/mediiq-api/internal/router"
	alarmService "github.com/mediiq/mediiq-api/internal/service/alarm"
	authService "github.com/mediiq/mediiq-api/internal/service/auth"
	chatService "github.com/mediiq/mediiq-api/internal/service/chat"
	familyService "github.com/mediiq/mediiq-api/internal/service/family"
	profileService "github.com/mediiq/mediiq-api/internal/service/profile"
	reminderService "github.com/mediiq/mediiq-api/internal/service/reminder"
	scanService "github.com/mediiq/mediiq-api/internal/service/scan"
	"github.com/mediiq/mediiq-api/internal/service/scheduler"
	pkgauth "github.com/mediiq/mediiq-api/pkg/auth"
	"github.com/mediiq/mediiq-api/pkg/logger"
	redisbroker "github.com/mediiq/mediiq-api/pkg/messaging/redis"
	"github.com/mediiq/mediiq-api/pkg/metrics"
	"github.com/mediiq/mediiq-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Server.LogLevel),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     os.Getenv("MEDIIQ_PRETTY_LOGS") == "1",
	})
	appMetrics := metrics.New("mediiq")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	provider, err := analysis.NewDeepseekProvider(cfg.Analysis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init analysis provider")
	}

	// Repositories
	reminderRepo := postgres.NewReminderRepository(db)
	scanRepo := postgres.NewScanRepository(db)
	familyRepo := postgres.NewFamilyRepository(db)
	userRepo := postgres.NewUserRepository(db)
	chatRepo := postgres.NewChatRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Collaborators
	emailSvc := email.NewService(cfg.Email)
	identityProvider := identity.NewHTTPProvider(cfg.Identity)
	jwtSvc := pkgauth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)

	// Services
	reminderSvc := reminderService.NewService(reminderRepo)
	alarmSvc := alarmService.NewService(reminderRepo, userRepo, outboxRepo, broker, emailSvc, appLogger, appMetrics)
	scanSvc := scanService.NewService(scanRepo, familyRepo, provider, appLogger, appMetrics)
	familySvc := familyService.NewService(familyRepo, appLogger)
	chatSvc := chatService.NewService(chatRepo, familyRepo, provider,
		cfg.Chat.DailyQuota, cfg.Chat.HistoryWindow, appLogger, appMetrics)
	profileSvc := profileService.NewService(userRepo, appLogger)
	authSvc := authService.NewService(identityProvider, userRepo, jwtSvc, appLogger)

	sched := scheduler.NewScheduler(reminderRepo, alarmSvc, cfg.Scheduler.Tick(), appLogger, appMetrics)

	// HTTP wiring
	authMiddleware := middleware.NewAuthMiddleware(authSvc, profileSvc)
	h := handler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		reminderHandler.NewHandler(reminderSvc),
		alarmHandler.NewHandler(alarmSvc),
		scanHandler.NewHandler(scanSvc),
		familyHandler.NewHandler(familySvc),
		chatHandler.NewHandler(chatSvc),
		profileHandler.NewHandler(profileSvc),
		h,
		hasher,
		router.Config{
			RateLimitRPS:  100,
			RateBurst:     200,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "mediiq_api",
			AdminKeyHash:  cfg.Admin.KeyHash,
		},
	)
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "forced shutdown")
	}

	// Stop presenting alarms after the listener is drained so in-flight
	// dismissals still find their sessions.
	alarmSvc.Shutdown()
}
