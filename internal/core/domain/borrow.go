package domain

import "time"

// RequestStatus represents the lifecycle state of a borrow request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// validRequestTransitions defines the allowed state machine transitions.
// Approved and rejected are terminal.
var validRequestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending: {RequestApproved, RequestRejected},
}

// ParseDecision converts a review decision into the status it leads to.
func ParseDecision(s string) (RequestStatus, error) {
	switch RequestStatus(s) {
	case RequestApproved, RequestRejected:
		return RequestStatus(s), nil
	}
	return "", Invalid("decision must be %q or %q", RequestApproved, RequestRejected)
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validRequestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return len(validRequestTransitions[s]) == 0
}

// BorrowRequest links a user to a book they want to borrow. It is reviewed
// exactly once by a librarian or admin.
type BorrowRequest struct {
	ID          string        `json:"id" bson:"_id"`
	UserID      string        `json:"user_id" bson:"user_id"`
	UserName    string        `json:"user_name" bson:"user_name"`
	UserRole    Role          `json:"user_role" bson:"user_role"`
	BookID      string        `json:"book_id" bson:"book_id"`
	BookTitle   string        `json:"book_title" bson:"book_title"`
	RequestDate time.Time     `json:"request_date" bson:"request_date"`
	Status      RequestStatus `json:"status" bson:"status"`
	ReviewNote  string        `json:"review_note,omitempty" bson:"review_note,omitempty"`
	// DueAmount is the student's outstanding fine when the request was made.
	// It is advisory and never recomputed.
	DueAmount  *Amount    `json:"due_amount,omitempty" bson:"due_amount,omitempty"`
	ReviewedBy string     `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	LoanID     string     `json:"loan_id,omitempty" bson:"loan_id,omitempty"`
}

// Review moves the request to its decided status.
func (r *BorrowRequest) Review(decision RequestStatus, reviewer, note string, at time.Time) error {
	if !r.Status.CanTransitionTo(decision) {
		return ErrRequestNotPending
	}
	r.Status = decision
	r.ReviewNote = note
	r.ReviewedBy = reviewer
	r.ReviewedAt = &at
	return nil
}
