package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/api/metrics"
	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/policy"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// CirculationService drives borrow requests through review into loans and
// back through returns.
type CirculationService struct {
	base
	opts Options
}

func NewCirculationService(store ports.Store, exec ports.Executor, opts Options, logger zerolog.Logger) *CirculationService {
	return &CirculationService{base: newBase(store, exec, logger), opts: opts.withDefaults()}
}

// CreateBorrowRequest files a pending request for bookID on behalf of the
// caller. Availability is checked but not reserved; copies only leave the
// shelf on approval.
func (s *CirculationService) CreateBorrowRequest(ctx context.Context, actor ports.Actor, bookID string) (*domain.BorrowRequest, error) {
	user, err := s.store.Users().FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleGuest {
		return nil, domain.ErrGuestCannotBorrow
	}
	if err := policy.Authorize(user, policy.Borrow); err != nil {
		return nil, err
	}

	var req *domain.BorrowRequest
	err = s.mutate(ctx, func(ctx context.Context) error {
		book, err := s.store.Books().FindByID(ctx, bookID)
		if err != nil {
			return err
		}
		if !book.Available() {
			return domain.ErrBookUnavailable
		}

		pending, err := s.store.Requests().List(ctx, ports.RequestFilter{
			UserID: user.ID,
			BookID: book.ID,
			Status: domain.RequestPending,
		})
		if err != nil {
			return fmt.Errorf("list pending requests: %w", err)
		}
		if len(pending) > 0 {
			return domain.ErrDuplicateRequest
		}

		req = &domain.BorrowRequest{
			UserID:      user.ID,
			UserName:    user.Name,
			UserRole:    user.Role,
			BookID:      book.ID,
			BookTitle:   book.Title,
			RequestDate: s.now().UTC(),
			Status:      domain.RequestPending,
		}
		if user.Role.AccruesFines() {
			due, err := s.accruedOnOpenLoans(ctx, user.ID)
			if err != nil {
				return err
			}
			req.DueAmount = &due
		}
		return s.store.Requests().Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	metrics.BorrowRequestsTotal.WithLabelValues(string(user.Role)).Inc()
	s.logger.Info().Str("request_id", req.ID).Str("user_id", user.ID).Str("book_id", req.BookID).Msg("borrow request created")
	return req, nil
}

// accruedOnOpenLoans sums what the user's unreturned loans would be fined
// if they came back today.
func (s *CirculationService) accruedOnOpenLoans(ctx context.Context, userID string) (domain.Amount, error) {
	open := false
	loans, err := s.store.Loans().List(ctx, ports.LoanFilter{UserID: userID, Returned: &open})
	if err != nil {
		return 0, fmt.Errorf("list open loans: %w", err)
	}
	today := s.today()
	var total domain.Amount
	for _, l := range loans {
		total += l.Accrued(today, s.opts.FinePolicy)
	}
	return total, nil
}

// ListBorrowRequests returns every matching request to reviewers and only
// the caller's own requests to borrowers.
func (s *CirculationService) ListBorrowRequests(ctx context.Context, actor ports.Actor, filter ports.RequestFilter) ([]*domain.BorrowRequest, error) {
	user, err := s.authorize(ctx, actor, policy.ViewCatalog)
	if err != nil {
		return nil, err
	}
	switch {
	case policy.Can(user.Role, policy.ApproveRequests):
	case policy.Can(user.Role, policy.ViewOwnLoans):
		filter.UserID = user.ID
	default:
		return nil, domain.Forbidden("list borrow requests")
	}
	return s.store.Requests().List(ctx, filter)
}

// ReviewBorrowRequest approves or rejects a pending request. Approval takes a
// copy off the shelf and opens exactly one loan, atomically.
func (s *CirculationService) ReviewBorrowRequest(ctx context.Context, actor ports.Actor, in ports.ReviewInput) (*domain.BorrowRequest, error) {
	reviewer, err := s.authorize(ctx, actor, policy.ApproveRequests)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ParseDecision(string(in.Decision)); err != nil {
		return nil, err
	}

	var req *domain.BorrowRequest
	err = s.mutate(ctx, func(ctx context.Context) error {
		r, err := s.store.Requests().FindByID(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if err := r.Review(in.Decision, reviewer.ID, in.Note, s.now().UTC()); err != nil {
			return err
		}

		msg := fmt.Sprintf("Your request for %q was rejected.", r.BookTitle)
		if r.Status == domain.RequestApproved {
			loan, err := s.openLoan(ctx, r)
			if err != nil {
				return err
			}
			r.LoanID = loan.ID
			msg = fmt.Sprintf("Your request for %q was approved. Please return it by %s.",
				r.BookTitle, loan.DueDate.Format("2006-01-02"))
		}
		if r.ReviewNote != "" {
			msg += " Note: " + r.ReviewNote
		}

		if err := s.store.Requests().Update(ctx, r); err != nil {
			return err
		}
		if _, err := s.notify(ctx, &domain.Notification{
			UserID:  r.UserID,
			Type:    domain.NotificationRequest,
			Title:   "Borrow request " + string(r.Status),
			Message: msg,
		}); err != nil {
			return err
		}
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestReviewsTotal.WithLabelValues(string(req.Status)).Inc()
	s.logger.Info().
		Str("request_id", req.ID).
		Str("status", string(req.Status)).
		Str("reviewer_id", reviewer.ID).
		Str("loan_id", req.LoanID).
		Msg("borrow request reviewed")
	return req, nil
}

func (s *CirculationService) openLoan(ctx context.Context, r *domain.BorrowRequest) (*domain.Loan, error) {
	book, err := s.store.Books().FindByID(ctx, r.BookID)
	if err != nil {
		return nil, err
	}
	book.CheckOut()
	if err := s.store.Books().Update(ctx, book); err != nil {
		return nil, err
	}

	today := s.today()
	loan := &domain.Loan{
		RequestID: r.ID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		UserRole:  r.UserRole,
		BookID:    book.ID,
		BookTitle: book.Title,
		ISBN:      book.ISBN,
		IssueDate: today,
		DueDate:   today.AddDate(0, 0, s.opts.LoanPeriodDays),
	}
	if err := s.store.Loans().Create(ctx, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *CirculationService) ListActiveLoans(ctx context.Context, actor ports.Actor) ([]*domain.Loan, error) {
	if _, err := s.authorize(ctx, actor, policy.ProcessReturns); err != nil {
		return nil, err
	}
	open := false
	return s.store.Loans().List(ctx, ports.LoanFilter{Returned: &open})
}

// ListUserLoans returns the caller's loans, open and returned.
func (s *CirculationService) ListUserLoans(ctx context.Context, actor ports.Actor) ([]*domain.Loan, error) {
	user, err := s.authorize(ctx, actor, policy.ViewOwnLoans)
	if err != nil {
		return nil, err
	}
	return s.store.Loans().List(ctx, ports.LoanFilter{UserID: user.ID})
}

// ReturnLoan closes a loan, fixes its fine and puts the copy back on the
// shelf. The fine follows the role the borrower had when the loan opened.
func (s *CirculationService) ReturnLoan(ctx context.Context, actor ports.Actor, loanID string) (*domain.Loan, error) {
	if _, err := s.authorize(ctx, actor, policy.ProcessReturns); err != nil {
		return nil, err
	}

	var loan *domain.Loan
	err := s.mutate(ctx, func(ctx context.Context) error {
		l, err := s.store.Loans().FindByID(ctx, loanID)
		if err != nil {
			return err
		}
		if err := l.Close(s.today(), s.opts.FinePolicy); err != nil {
			return err
		}
		if err := s.store.Loans().Update(ctx, l); err != nil {
			return err
		}

		book, err := s.store.Books().FindByID(ctx, l.BookID)
		if err != nil {
			return err
		}
		book.CheckIn()
		if err := s.store.Books().Update(ctx, book); err != nil {
			return err
		}

		if l.Fine > 0 {
			if _, err := s.notify(ctx, &domain.Notification{
				UserID: l.UserID,
				Type:   domain.NotificationFine,
				Title:  "Overdue fine",
				Message: fmt.Sprintf("%q was returned %d day(s) late. A fine of %d is due.",
					l.BookTitle, domain.DaysLate(l.DueDate, *l.ActualReturnDate), l.Fine),
			}); err != nil {
				return err
			}
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	late := domain.DaysLate(loan.DueDate, *loan.ActualReturnDate) > 0
	metrics.LoansReturnedTotal.WithLabelValues(strconv.FormatBool(late)).Inc()
	metrics.FinesAssessedTotal.Add(float64(loan.Fine))
	s.logger.Info().Str("loan_id", loan.ID).Int64("fine", int64(loan.Fine)).Bool("late", late).Msg("loan returned")
	return loan, nil
}

var _ ports.CirculationService = (*CirculationService)(nil)
