package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/api/metrics"
	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/policy"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// FineService reports and settles overdue fines. Only fines fixed on
// returned loans can be paid; open loans keep accruing until they come back.
type FineService struct {
	base
	opts Options
}

func NewFineService(store ports.Store, exec ports.Executor, opts Options, logger zerolog.Logger) *FineService {
	return &FineService{base: newBase(store, exec, logger), opts: opts.withDefaults()}
}

func (s *FineService) FineSummary(ctx context.Context, actor ports.Actor) (*ports.FineSummary, error) {
	user, err := s.authorize(ctx, actor, policy.PayFines)
	if err != nil {
		return nil, err
	}
	loans, err := s.store.Loans().List(ctx, ports.LoanFilter{UserID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	today := s.today()
	sum := &ports.FineSummary{Loans: []*domain.Loan{}}
	for _, l := range loans {
		switch {
		case !l.Returned:
			fine := l.Accrued(today, s.opts.FinePolicy)
			if fine == 0 {
				continue
			}
			l.Fine = fine
			sum.Accruing += fine
		case l.Outstanding() > 0:
			sum.Payable += l.Outstanding()
		default:
			continue
		}
		sum.Loans = append(sum.Loans, l)
	}
	sum.Total = sum.Accruing + sum.Payable
	return sum, nil
}

// PayFines settles every unpaid fine on the caller's returned loans and
// records a single payment for them.
func (s *FineService) PayFines(ctx context.Context, actor ports.Actor, reference string) (*domain.Payment, error) {
	user, err := s.authorize(ctx, actor, policy.PayFines)
	if err != nil {
		return nil, err
	}

	var payment *domain.Payment
	err = s.mutate(ctx, func(ctx context.Context) error {
		returned := true
		loans, err := s.store.Loans().List(ctx, ports.LoanFilter{UserID: user.ID, Returned: &returned})
		if err != nil {
			return fmt.Errorf("list returned loans: %w", err)
		}

		p := &domain.Payment{
			UserID:    user.ID,
			LoanIDs:   []string{},
			Reference: strings.TrimSpace(reference),
			PaidAt:    s.now().UTC(),
		}
		for _, l := range loans {
			owed := l.Outstanding()
			if owed == 0 {
				continue
			}
			l.FinePaid = true
			if err := s.store.Loans().Update(ctx, l); err != nil {
				return err
			}
			p.Amount += owed
			p.LoanIDs = append(p.LoanIDs, l.ID)
		}
		if p.Amount == 0 {
			return domain.ErrNothingDue
		}
		if err := s.store.Payments().Create(ctx, p); err != nil {
			return err
		}
		payment = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.FinesPaidTotal.Add(float64(payment.Amount))
	s.logger.Info().Str("user_id", user.ID).Int64("amount", int64(payment.Amount)).Int("loans", len(payment.LoanIDs)).Msg("fines paid")
	return payment, nil
}

var _ ports.FineService = (*FineService)(nil)
