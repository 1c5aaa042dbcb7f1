// Package imagehub собирает основное HTTP-приложение: хранилище, кеш,
// объектное хранилище, биллинг-провайдер и брокер уведомлений.
package imagehub

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/cache"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/captcha"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/config"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/jwt"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/migrations"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/objectstore"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/rabbitmq"
	authservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/auth"
	billingservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/billing"
	libraryservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/library"
	userservice "github.com/Chandan-Choudhury/ImageHub-Backend/internal/services/user"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/storage/repository"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/stripeclient"
)

// App инкапсулирует HTTP-сервер и соединения с внешними системами.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	rabbit *amqp.Connection
}

// New создает приложение целиком: подключения, миграции, сервисы, маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
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

	store, err := objectstore.New(cfg.ObjectStore)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		rabbitConn.Close()
		return nil, err
	}
	publisher := &rabbitmq.ChannelPublisher{Ch: ch}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	captchaClient := captcha.NewClient(cfg.Recaptcha)
	provider := stripeclient.New(cfg.Stripe.SecretKey, logger)

	authService := authservice.NewAuthService(db, captchaClient, jwtMaker)
	userService := userservice.NewUserService(db, cacheRedis, logger)
	libraryService := libraryservice.NewLibraryService(db, store, cacheRedis, logger)
	billingService := billingservice.NewBillingService(db, provider, cacheRedis, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, userService, libraryService, billingService)

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
		rabbit: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и ждет либо ошибки, либо отмены контекста.
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
		if closeErr := a.rabbit.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
