// Package app assembles the library services from configuration. Both the
// API server and the admin CLI start from here.
package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
	"github.com/campusshelf/library-system/internal/core/service"
	"github.com/campusshelf/library-system/internal/infrastructure/config"
	"github.com/campusshelf/library-system/internal/infrastructure/db/memory"
	"github.com/campusshelf/library-system/internal/infrastructure/db/mongo"
	"github.com/campusshelf/library-system/internal/infrastructure/db/redis"
	"github.com/campusshelf/library-system/internal/infrastructure/mail"
	"github.com/campusshelf/library-system/internal/infrastructure/queue"
)

// devJWTSecret signs tokens when JWT_SECRET is unset in development.
const devJWTSecret = "library-dev-secret"

// App holds the running services and the resources behind them.
type App struct {
	Store     ports.Store
	Blocklist ports.TokenBlocklist
	Resets    ports.ResetCodeStore
	Redis     *goredis.Client
	Executor  *queue.Serializer
	JWTSecret string

	Catalog       *service.CatalogService
	Circulation   *service.CirculationService
	Users         *service.UserService
	Auth          *service.AuthService
	Notifications *service.NotificationService
	Fines         *service.FineService

	closers []func(ctx context.Context) error
}

// New opens the configured store and blocklist, starts the command
// serializer and builds every service. Call Close when done.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{JWTSecret: cfg.JWTSecret}
	if a.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
		a.JWTSecret = devJWTSecret
	}

	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, err := mongo.Open(ctx, mongo.Config{
			URI:          cfg.Mongo.URI,
			Database:     cfg.Mongo.Database,
			Transactions: cfg.Mongo.Transactions,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		a.Store = store
		a.closers = append(a.closers, store.Close)
		log.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).Msg("using mongo store")
	default:
		a.Store = memory.NewStore()
		log.Info().Msg("using in-memory store")
	}

	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = client
		a.Blocklist = redis.NewBlocklist(client)
		a.Resets = redis.NewResetCodes(client)
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	} else {
		a.Blocklist = memory.NewBlocklist()
		a.Resets = memory.NewResetCodes()
	}

	a.Executor = queue.NewSerializer(log.With().Str("component", "serializer").Logger())
	// The serializer outlives ctx so writes still in flight during a graceful
	// shutdown complete. Close stops it.
	a.Executor.Start(context.WithoutCancel(ctx))
	a.closers = append(a.closers, func(context.Context) error {
		a.Executor.Stop()
		return nil
	})

	opts := service.Options{
		LoanPeriodDays:  cfg.Circulation.LoanPeriodDays,
		FinePolicy:      domain.FinePolicy{RatePerDay: domain.Amount(cfg.Circulation.FineRatePerDay)},
		DueReminderDays: cfg.Circulation.DueReminderDays,
	}
	component := func(name string) zerolog.Logger {
		return log.With().Str("component", name).Logger()
	}
	a.Catalog = service.NewCatalogService(a.Store, a.Executor, component("catalog"))
	a.Circulation = service.NewCirculationService(a.Store, a.Executor, opts, component("circulation"))
	a.Users = service.NewUserService(a.Store, a.Executor, component("users"))
	a.Auth = service.NewAuthService(a.Store, a.Executor, a.Blocklist, a.Resets, mail.NewLogMailer(component("mail")), service.AuthOptions{
		JWTSecret:    a.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		ResetCodeTTL: cfg.ResetCodeTTL,
	}, component("auth"))
	a.Notifications = service.NewNotificationService(a.Store, a.Executor, opts, component("notifications"))
	a.Fines = service.NewFineService(a.Store, a.Executor, opts, component("fines"))

	return a, nil
}

// Close releases resources in reverse order of acquisition. The serializer
// is stopped before the store is disconnected.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
