// @title                       Therapy Practice API
// @version                     1.0
// @description                 Scheduling, therapy and session management for a psychology practice.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	_ "github.com/terapia/practice-api/docs"
	"github.com/terapia/practice-api/internal/api"
	"github.com/terapia/practice-api/internal/api/handler"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/core/service"
	"github.com/terapia/practice-api/internal/infrastructure/config"
	"github.com/terapia/practice-api/internal/infrastructure/db/mongo"
	"github.com/terapia/practice-api/internal/infrastructure/db/postgres"
	"github.com/terapia/practice-api/internal/infrastructure/db/redis"
	"github.com/terapia/practice-api/internal/infrastructure/mail"
	"github.com/terapia/practice-api/internal/infrastructure/queue"
	"github.com/terapia/practice-api/internal/infrastructure/storage"
	"github.com/terapia/practice-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "practice-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "practice-api",
	})

	// --- Relational store ---
	db, err := openDatabase(ctx, cfg.DB)
	if err != nil {
		return err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	store := postgres.NewStore(db)
	log.Info().Str("driver", cfg.DB.Driver).Msg("relational store ready")

	// --- Document store ---
	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongo.EnsureIndexes(ctx, mongoDB); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}

	// --- Redis ---
	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Notifications ---
	notifications := service.NewNotificationService(
		mongo.NewNotificationRepository(mongoDB),
		redis.NewDebouncer(rdb),
		logger.Component("notifications"),
	)
	dispatcher := queue.NewDispatcher(cfg.Workers.NotificationWorkers, notifications, logger.Component("dispatcher"))
	// Workers outlive the signal context so that Stop can drain queued notifications.
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Stop()

	// --- Side channels ---
	mailer := newMailer(cfg.SMTP, log)
	uploader, err := newUploader(cfg.Cloudinary, log)
	if err != nil {
		return err
	}

	svc := api.Services{
		Auth: service.NewAuthService(store, redis.NewRefreshTokenStore(rdb), service.TokenConfig{
			AccessSecret:  cfg.JWT.Secret,
			RefreshSecret: cfg.JWT.RefreshSecret,
			AccessTTL:     cfg.JWT.AccessTTL,
			RefreshTTL:    cfg.JWT.RefreshTTL,
		}, logger.Component("auth")),
		Psychologists:   service.NewPsychologistService(store, logger.Component("psychologists")),
		Consultants:     service.NewConsultantService(store, dispatcher, logger.Component("consultants")),
		Therapies:       service.NewTherapyService(store, dispatcher, mailer, logger.Component("therapies")),
		Recurrence:      service.NewRecurrenceService(store, dispatcher, logger.Component("recurrence")),
		TherapyRequests: service.NewTherapyRequestService(store, dispatcher, logger.Component("therapy_requests")),
		Propositions:    service.NewPropositionService(store, dispatcher, logger.Component("propositions")),
		SessionRequests: service.NewSessionRequestService(store, dispatcher, logger.Component("session_requests")),
		Sessions:        service.NewSessionService(store, dispatcher, logger.Component("sessions")),
		Notes:           service.NewNoteService(store, dispatcher, logger.Component("notes")),
		Payments:        service.NewPaymentService(store, dispatcher, logger.Component("payments")),
		Messages:        service.NewMessageService(store, mongo.NewMessageRepository(mongoDB), dispatcher, logger.Component("messages")),
		Notifications:   notifications,
		Uploads:         service.NewUploadService(store, uploader, logger.Component("uploads")),
	}

	e := api.NewRouter(api.RouterConfig{
		JWTSecret: cfg.JWT.Secret,
		Log:       logger.Component("http"),
		Checks: map[string]handler.Check{
			"postgres": store.Ping,
			"mongodb":  func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	}, svc)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}

func openDatabase(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	if cfg.Driver == config.DriverSQLite {
		return postgres.OpenSQLite(cfg.SQLitePath, logger.Component("gorm"))
	}
	return postgres.Connect(ctx, postgres.Config{
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		Log:             logger.Component("gorm"),
	})
}

func newMailer(cfg config.SMTPConfig, log zerolog.Logger) ports.InviteMailer {
	if !cfg.Enabled() {
		log.Warn().Msg("SMTP_HOST not set, invite emails are only logged")
		return mail.NewLogMailer(logger.Component("mail"))
	}
	return mail.NewSMTPMailer(mail.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.User,
		Password: cfg.Password,
		From:     cfg.From,
		LoginURL: cfg.LoginURL,
	})
}

func newUploader(cfg config.CloudinaryConfig, log zerolog.Logger) (ports.FileUploader, error) {
	sc := storage.Config{
		CloudName:  cfg.CloudName,
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		RootFolder: cfg.RootFolder,
	}
	if !sc.Enabled() {
		log.Warn().Msg("cloudinary not configured, uploads are disabled")
		return storage.Disabled{}, nil
	}
	return storage.NewCloudinaryUploader(sc)
}
