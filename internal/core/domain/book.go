package domain

import "time"

// Book is a catalog entry together with its inventory counters.
// Invariant: 0 <= AvailableQuantity <= TotalQuantity.
type Book struct {
	ID                string    `json:"id" bson:"_id"`
	Title             string    `json:"title" bson:"title"`
	Author            string    `json:"author" bson:"author"`
	Genre             string    `json:"genre" bson:"genre"`
	ISBN              string    `json:"isbn" bson:"isbn"`
	TotalQuantity     int       `json:"total_quantity" bson:"total_quantity"`
	AvailableQuantity int       `json:"available_quantity" bson:"available_quantity"`
	AddedAt           time.Time `json:"added_at" bson:"added_at"`
}

// Available reports whether at least one copy can be lent out.
func (b *Book) Available() bool {
	return b.AvailableQuantity > 0
}

// Borrowed returns how many copies are currently checked out.
func (b *Book) Borrowed() int {
	return b.TotalQuantity - b.AvailableQuantity
}

// CheckOut takes one copy off the shelf. The counter never goes below zero.
func (b *Book) CheckOut() {
	if b.AvailableQuantity > 0 {
		b.AvailableQuantity--
	}
}

// CheckIn puts one copy back. The counter never exceeds the total.
func (b *Book) CheckIn() {
	if b.AvailableQuantity < b.TotalQuantity {
		b.AvailableQuantity++
	}
}

// Resize changes the number of owned copies while keeping the copies that are
// out on loan accounted for.
func (b *Book) Resize(newTotal int) error {
	if newTotal < 0 {
		return Invalid("quantity must not be negative")
	}
	available := newTotal - b.Borrowed()
	if available < 0 {
		available = 0
	}
	b.TotalQuantity = newTotal
	b.AvailableQuantity = available
	return nil
}

// Genre is a lookup entry used for catalog tagging and filtering. Books refer
// to genres by name only.
type Genre struct {
	ID          string `json:"id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}
