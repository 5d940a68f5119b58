// Package lms собирает HTTP-приложение: хранилище, кэш, брокер,
// платёжный шлюз, сервисы и маршруты.
package lms

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/brainxcel/lms-backend/internal/cache"
	"github.com/brainxcel/lms-backend/internal/config"
	"github.com/brainxcel/lms-backend/internal/lib/jwt"
	"github.com/brainxcel/lms-backend/internal/lib/rabbitmq"
	"github.com/brainxcel/lms-backend/internal/migrations"
	"github.com/brainxcel/lms-backend/internal/paymentgateway"
	authservice "github.com/brainxcel/lms-backend/internal/services/auth"
	entitlementservice "github.com/brainxcel/lms-backend/internal/services/entitlement"
	resetservice "github.com/brainxcel/lms-backend/internal/services/reset"
	"github.com/brainxcel/lms-backend/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	amqp   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	emailPublisher := rabbitmq.NewEmailPublisher(ch)

	tokenMaker := jwt.NewMaker(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	gateway := paymentgateway.NewClient(cfg.KeyID, cfg.KeySecret, cfg.APIURL)

	authService := authservice.New(db, tokenMaker, cfg.GuestEmail, logger)
	entitlementService := entitlementservice.New(db, gateway, cacheRedis, emailPublisher,
		cfg.KeySecret, cfg.PlanID, cfg.PlanDuration, logger)
	resetService := resetservice.New(db, emailPublisher, cfg.ResetTTL, cfg.AppBaseURL, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService, entitlementService, resetService, cacheRedis)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.amqp.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
