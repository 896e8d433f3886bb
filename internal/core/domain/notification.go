package domain

import "time"

// NotificationType classifies a message shown to a user.
type NotificationType string

const (
	NotificationDueDate    NotificationType = "due_date"
	NotificationNewArrival NotificationType = "new_arrival"
	NotificationFine       NotificationType = "fine"
	NotificationRequest    NotificationType = "request"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID      string           `json:"id" bson:"_id"`
	UserID  string           `json:"user_id" bson:"user_id"`
	Type    NotificationType `json:"type" bson:"type"`
	Title   string           `json:"title" bson:"title"`
	Message string           `json:"message" bson:"message"`
	Date    time.Time        `json:"date" bson:"date"`
	Read    bool             `json:"read" bson:"read"`
	// DedupKey makes generated reminders idempotent; empty for ad-hoc messages.
	DedupKey string `json:"-" bson:"dedup_key,omitempty"`
}

// Payment records a settlement of returned-loan fines. No money moves through
// the system; the reference is whatever the caller's payment provider issued.
type Payment struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	LoanIDs   []string  `json:"loan_ids" bson:"loan_ids"`
	Amount    Amount    `json:"amount" bson:"amount"`
	Reference string    `json:"reference,omitempty" bson:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at" bson:"paid_at"`
}
