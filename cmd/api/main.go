package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rentmimi/internal/api"
	"rentmimi/internal/config"
	"rentmimi/internal/database"
	"rentmimi/internal/domain"
	"rentmimi/internal/events"
	"rentmimi/internal/export"
	"rentmimi/internal/google"
	"rentmimi/internal/logging"
	"rentmimi/internal/metrics"
	"rentmimi/internal/models"
	"rentmimi/internal/notify"
	"rentmimi/internal/repository"
	"rentmimi/internal/service"
	"rentmimi/internal/worker"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.Open(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedRoster(ctx, cfg, db, &logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessions := initSessions(redisClient, &logger)

	eventBus := events.NewEventBus()

	var syncWorker domain.SyncWorker
	sheetsService := initGoogleSheets(cfg, &logger)
	if sheetsService != nil {
		workerLogger := logging.Component(&logger, "sheets-worker")
		sw := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.DefaultPolicy(), &workerLogger)
		go sw.Start(ctx)
		syncWorker = sw
	}

	bookingService := service.NewBookingService(db, eventBus, syncWorker, &logger)
	partnerService := service.NewPartnerService(db, &logger)
	userService := service.NewUserService(db, cfg.Admins, &logger)
	storyService := service.NewStoryService(db, eventBus, &logger)

	initNotifier(cfg, eventBus, &logger)

	if cfg.Backup.Enabled {
		backup := database.NewBackupService(
			cfg.Database.Path,
			cfg.Backup.StoragePath,
			24*time.Hour,
			cfg.Backup.RetentionDays,
			&logger,
		)
		go backup.Start(ctx)
	}

	exporter := export.NewExporter(cfg.Exports.Path, &logger)

	httpServer := api.NewHTTPServer(
		cfg.API,
		cfg.Booking,
		bookingService,
		partnerService,
		userService,
		storyService,
		sessions,
		exporter,
		&logger,
	)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("create database directory")
		return err
	}
	if cfg.Exports.Path != "" {
		if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
			logger.Error().Err(err).Msg("create export directory")
			return err
		}
	}
	return nil
}

// seedRoster pre-populates partner applications from the roster file when
// the collection is empty.
func seedRoster(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	seed, err := config.LoadRoster(cfg.Seed.RosterPath)
	if err != nil {
		logger.Error().Err(err).Str("roster_path", cfg.Seed.RosterPath).Msg("load roster seed")
		return err
	}
	if len(seed.Partners) == 0 {
		return nil
	}

	existing, err := db.Applications(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, entry := range seed.Partners {
		user := models.User{
			Phone:    entry.Phone,
			Nickname: entry.Nickname,
			Region:   entry.Region,
			Roles:    []models.Role{models.RoleClient, models.RolePartner},
		}
		if err := db.UpsertUser(ctx, &user); err != nil {
			return err
		}

		form := entry.Form
		if form.Grade == "" {
			form.Grade = models.GradeBronze
		}
		app := models.PartnerApplication{
			ID:        uuid.NewString(),
			Applicant: user,
			Form:      form,
		}
		if err := db.UpsertApplication(ctx, &app); err != nil {
			return err
		}
	}

	logger.Info().Int("partners", len(seed.Partners)).Msg("roster seeded")
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)

	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSessions(redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	memory := repository.NewMemorySessionRepository(24 * time.Hour)
	if redisClient == nil {
		return memory
	}
	redisSessions := repository.NewRedisSessionRepository(redisClient, 24*time.Hour)
	return repository.NewFailoverSessionRepository(redisSessions, memory, logger)
}

func initGoogleSheets(cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.GoogleCredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(
		cfg.Google.GoogleCredentialsFile,
		cfg.Google.BookingSpreadSheetID,
		cfg.Google.PayoutSpreadSheetID,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initNotifier(cfg *config.Config, eventBus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.AdminChatID == 0 {
		return
	}

	bot, err := notify.NewBot(cfg.Telegram.BotToken, cfg.Telegram.Debug)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifierLogger := logging.Component(logger, "notifier")
	notifier := notify.New(bot, cfg.Telegram.AdminChatID, &notifierLogger)
	notifier.Subscribe(eventBus)
	logger.Info().Msg("telegram notifications enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
