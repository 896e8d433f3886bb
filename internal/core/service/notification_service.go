package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/policy"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// NotificationService serves each user's inbox and generates due-date
// reminders.
type NotificationService struct {
	base
	opts Options
}

func NewNotificationService(store ports.Store, exec ports.Executor, opts Options, logger zerolog.Logger) *NotificationService {
	return &NotificationService{base: newBase(store, exec, logger), opts: opts.withDefaults()}
}

func (s *NotificationService) ListNotifications(ctx context.Context, actor ports.Actor) ([]*domain.Notification, error) {
	user, err := s.authorize(ctx, actor, policy.ViewNotifications)
	if err != nil {
		return nil, err
	}
	return s.store.Notifications().ListByUser(ctx, user.ID)
}

// MarkNotificationRead marks one of the caller's notifications as read.
// Other users' notifications are reported as not found.
func (s *NotificationService) MarkNotificationRead(ctx context.Context, actor ports.Actor, notificationID string) (*domain.Notification, error) {
	user, err := s.authorize(ctx, actor, policy.ViewNotifications)
	if err != nil {
		return nil, err
	}

	var updated *domain.Notification
	err = s.mutate(ctx, func(ctx context.Context) error {
		n, err := s.store.Notifications().FindByID(ctx, notificationID)
		if err != nil {
			return err
		}
		if n.UserID != user.ID {
			return domain.ErrNotificationNotFound
		}
		if !n.Read {
			n.Read = true
			if err := s.store.Notifications().Update(ctx, n); err != nil {
				return err
			}
		}
		updated = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *NotificationService) MarkAllNotificationsRead(ctx context.Context, actor ports.Actor) (int, error) {
	user, err := s.authorize(ctx, actor, policy.ViewNotifications)
	if err != nil {
		return 0, err
	}

	var changed int
	err = s.mutate(ctx, func(ctx context.Context) error {
		n, err := s.store.Notifications().MarkAllRead(ctx, user.ID)
		changed = n
		return err
	})
	return changed, err
}

// SendDueReminders notifies the borrower of every open loan that is overdue
// or due within the reminder window. A loan gets at most one reminder per
// calendar day, however often this runs.
func (s *NotificationService) SendDueReminders(ctx context.Context) (int, error) {
	today := s.today()
	sent := 0

	err := s.mutate(ctx, func(ctx context.Context) error {
		sent = 0
		open := false
		loans, err := s.store.Loans().List(ctx, ports.LoanFilter{Returned: &open})
		if err != nil {
			return fmt.Errorf("list open loans: %w", err)
		}

		for _, l := range loans {
			left := domain.DaysBetween(today, l.DueDate)
			if left > s.opts.DueReminderDays {
				continue
			}

			var title, msg string
			switch {
			case left < 0:
				title = "Book overdue"
				msg = fmt.Sprintf("%q was due on %s and is %d day(s) overdue.",
					l.BookTitle, l.DueDate.Format("2006-01-02"), -left)
				if fine := l.Accrued(today, s.opts.FinePolicy); fine > 0 {
					msg += fmt.Sprintf(" Current fine: %d.", fine)
				}
			case left == 0:
				title = "Book due today"
				msg = fmt.Sprintf("%q is due today.", l.BookTitle)
			default:
				title = "Book due soon"
				msg = fmt.Sprintf("%q is due in %d day(s), on %s.", l.BookTitle, left, l.DueDate.Format("2006-01-02"))
			}

			created, err := s.notify(ctx, &domain.Notification{
				UserID:   l.UserID,
				Type:     domain.NotificationDueDate,
				Title:    title,
				Message:  msg,
				DedupKey: "due:" + l.ID + ":" + today.Format("2006-01-02"),
			})
			if err != nil {
				return err
			}
			if created {
				sent++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if sent > 0 {
		s.logger.Info().Int("sent", sent).Msg("due reminders sent")
	}
	return sent, nil
}

var _ ports.NotificationService = (*NotificationService)(nil)
