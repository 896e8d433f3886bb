package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/api/metrics"
	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/policy"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// Defaults applied by the constructors when Options leaves a field zero.
const (
	DefaultLoanPeriodDays  = 30
	DefaultDueReminderDays = 3
)

// Options holds the circulation settings shared by the services.
type Options struct {
	LoanPeriodDays  int
	FinePolicy      domain.FinePolicy
	DueReminderDays int
}

func (o Options) withDefaults() Options {
	if o.LoanPeriodDays <= 0 {
		o.LoanPeriodDays = DefaultLoanPeriodDays
	}
	if o.FinePolicy.RatePerDay <= 0 {
		o.FinePolicy = domain.DefaultFinePolicy()
	}
	if o.DueReminderDays <= 0 {
		o.DueReminderDays = DefaultDueReminderDays
	}
	return o
}

// base carries what every service needs: the store for reads, the executor
// that serializes writes, a logger and a clock.
type base struct {
	store  ports.Store
	exec   ports.Executor
	logger zerolog.Logger
	now    func() time.Time
}

func newBase(store ports.Store, exec ports.Executor, logger zerolog.Logger) base {
	return base{store: store, exec: exec, logger: logger, now: time.Now}
}

func (b base) today() time.Time {
	return domain.Day(b.now())
}

// authorize reloads the caller's account and checks it may perform action.
// The role carried by the token is never trusted on its own.
func (b base) authorize(ctx context.Context, actor ports.Actor, action policy.Action) (*domain.User, error) {
	u, err := b.store.Users().FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load actor: %w", err)
	}
	if err := policy.Authorize(u, action); err != nil {
		return nil, err
	}
	return u, nil
}

// mutate runs fn on the single writer inside one store transaction.
func (b base) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.exec.Do(ctx, func(ctx context.Context) error {
		return b.store.WithinTx(ctx, fn)
	})
}

// notify stores n and reports whether it was new.
func (b base) notify(ctx context.Context, n *domain.Notification) (bool, error) {
	if n.Date.IsZero() {
		n.Date = b.now().UTC()
	}
	created, err := b.store.Notifications().Create(ctx, n)
	if err != nil {
		return false, fmt.Errorf("create notification: %w", err)
	}
	if created {
		metrics.NotificationsSentTotal.WithLabelValues(string(n.Type)).Inc()
	}
	return created, nil
}

// required returns a validation error naming the first empty field.
func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return domain.Invalid("%s is required", f[0])
		}
	}
	return nil
}
