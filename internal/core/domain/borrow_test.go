package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRequestStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to RequestStatus
		want     bool
	}{
		{RequestPending, RequestApproved, true},
		{RequestPending, RequestRejected, true},
		{RequestApproved, RequestRejected, false},
		{RequestRejected, RequestApproved, false},
		{RequestApproved, RequestApproved, false},
		{RequestPending, RequestPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}

	if RequestPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	if !RequestApproved.Terminal() || !RequestRejected.Terminal() {
		t.Error("approved and rejected must be terminal")
	}
}

func TestBorrowRequest_ReviewTwiceFails(t *testing.T) {
	r := &BorrowRequest{Status: RequestPending}
	now := time.Now()

	if err := r.Review(RequestRejected, "lib-1", "no copies", now); err != nil {
		t.Fatalf("first review: %v", err)
	}
	err := r.Review(RequestApproved, "lib-2", "changed my mind", now)
	if !errors.Is(err, ErrRequestNotPending) || !errors.Is(err, ErrDomain) {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}
	if r.Status != RequestRejected || r.ReviewNote != "no copies" || r.ReviewedBy != "lib-1" {
		t.Fatalf("request mutated by failed review: %+v", r)
	}
}

func TestParseDecision(t *testing.T) {
	if _, err := ParseDecision("pending"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for pending, got %v", err)
	}
	if s, err := ParseDecision("approved"); err != nil || s != RequestApproved {
		t.Fatalf("unexpected result: %v %v", s, err)
	}
}

func TestLoan_Close(t *testing.T) {
	l := &Loan{UserRole: RoleStudent, DueDate: date("2024-05-02")}
	if err := l.Close(date("2024-05-06"), DefaultFinePolicy()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !l.Returned || l.Fine != 8 || l.FinePaid {
		t.Fatalf("unexpected loan after close: %+v", l)
	}
	if l.Outstanding() != 8 {
		t.Fatalf("expected outstanding 8, got %d", l.Outstanding())
	}

	err := l.Close(date("2024-05-10"), DefaultFinePolicy())
	if !errors.Is(err, ErrLoanAlreadyReturned) {
		t.Fatalf("expected ErrLoanAlreadyReturned, got %v", err)
	}
	if l.Fine != 8 || !l.ActualReturnDate.Equal(date("2024-05-06")) {
		t.Fatalf("second close changed the loan: %+v", l)
	}
}

func TestDeactivatedError_Is(t *testing.T) {
	err := error(&DeactivatedError{Remark: "unpaid fines"})
	if !errors.Is(err, ErrAuth) || !errors.Is(err, ErrAccountDeactivated) {
		t.Fatal("deactivated error must match ErrAuth and ErrAccountDeactivated")
	}
	if err.Error() != "account has been deactivated: unpaid fines" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
