package domain

import "time"

// Amount is a sum of money in whole currency units.
type Amount int64

// DefaultFineRatePerDay is charged for every calendar day a student loan is late.
const DefaultFineRatePerDay Amount = 2

// Day returns midnight UTC of t's calendar date. All date arithmetic in the
// circulation rules happens on values normalized this way.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from one date to another,
// negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)) / (24 * time.Hour))
}

// DaysLate returns how many whole days today is past due, or zero.
func DaysLate(due, today time.Time) int {
	if d := DaysBetween(due, today); d > 0 {
		return d
	}
	return 0
}

// FinePolicy computes overdue fines.
type FinePolicy struct {
	RatePerDay Amount
}

// DefaultFinePolicy returns the policy with the standard daily rate.
func DefaultFinePolicy() FinePolicy {
	return FinePolicy{RatePerDay: DefaultFineRatePerDay}
}

// Assess returns the fine owed for a loan of the given role that was due on
// due and is settled (or evaluated) on today.
func (p FinePolicy) Assess(due, today time.Time, role Role) Amount {
	if !role.AccruesFines() {
		return 0
	}
	return Amount(DaysLate(due, today)) * p.RatePerDay
}
