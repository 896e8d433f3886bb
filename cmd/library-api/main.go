// Command library-api serves the library HTTP API.
//
// @title                       Library API
// @version                     1.0
// @description                 Catalog, borrow requests, loans, fines and notifications for a campus library.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/campusshelf/library-system/docs"
	"github.com/campusshelf/library-system/internal/api"
	"github.com/campusshelf/library-system/internal/app"
	"github.com/campusshelf/library-system/internal/infrastructure/config"
	"github.com/campusshelf/library-system/internal/infrastructure/seed"
	"github.com/campusshelf/library-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "library-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("library-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			log.Error().Err(err).Msg("release resources")
		}
	}()

	if cfg.SeedDemoData {
		if _, err := seed.NewSeeder(a.Store, a.Executor, logger.Component("seed")).Run(ctx); err != nil {
			return err
		}
	}

	go remindDueLoans(ctx, a, cfg.Circulation.ReminderInterval, logger.Component("reminders"))

	e := api.NewRouter(api.Deps{
		Catalog:       a.Catalog,
		Circulation:   a.Circulation,
		Users:         a.Users,
		Auth:          a.Auth,
		Notifications: a.Notifications,
		Fines:         a.Fines,
		Store:         a.Store,
		Blocklist:     a.Blocklist,
		Redis:         a.Redis,
		JWTSecret:     a.JWTSecret,
		Logger:        logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// remindDueLoans sends due-date reminders at start-up and then every interval
// until ctx is cancelled. A non-positive interval disables it.
func remindDueLoans(ctx context.Context, a *app.App, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		log.Info().Msg("due reminders disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := a.Notifications.SendDueReminders(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error().Err(err).Msg("send due reminders")
		case n > 0:
			log.Info().Int("sent", n).Msg("due reminders sent")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
