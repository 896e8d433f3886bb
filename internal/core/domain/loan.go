package domain

import "time"

// Loan is a checkout created when a borrow request is approved. It stays open
// until the copy is returned, at which point the fine is fixed.
type Loan struct {
	ID               string     `json:"id" bson:"_id"`
	RequestID        string     `json:"request_id" bson:"request_id"`
	UserID           string     `json:"user_id" bson:"user_id"`
	UserName         string     `json:"user_name" bson:"user_name"`
	UserRole         Role       `json:"user_role" bson:"user_role"`
	BookID           string     `json:"book_id" bson:"book_id"`
	BookTitle        string     `json:"book_title" bson:"book_title"`
	ISBN             string     `json:"isbn" bson:"isbn"`
	IssueDate        time.Time  `json:"issue_date" bson:"issue_date"`
	DueDate          time.Time  `json:"due_date" bson:"due_date"`
	ActualReturnDate *time.Time `json:"actual_return_date,omitempty" bson:"actual_return_date,omitempty"`
	Fine             Amount     `json:"fine" bson:"fine"`
	FinePaid         bool       `json:"fine_paid" bson:"fine_paid"`
	Returned         bool       `json:"returned" bson:"returned"`
}

// Accrued returns the fine the loan would carry if it were returned today.
// Returned loans report their settled fine.
func (l *Loan) Accrued(today time.Time, p FinePolicy) Amount {
	if l.Returned {
		return l.Fine
	}
	return p.Assess(l.DueDate, today, l.UserRole)
}

// Close marks the loan returned on today and fixes its fine.
func (l *Loan) Close(today time.Time, p FinePolicy) error {
	if l.Returned {
		return ErrLoanAlreadyReturned
	}
	day := Day(today)
	l.Fine = p.Assess(l.DueDate, day, l.UserRole)
	l.FinePaid = l.Fine == 0
	l.ActualReturnDate = &day
	l.Returned = true
	return nil
}

// Outstanding returns the unpaid fine on a returned loan.
func (l *Loan) Outstanding() Amount {
	if !l.Returned || l.FinePaid {
		return 0
	}
	return l.Fine
}
