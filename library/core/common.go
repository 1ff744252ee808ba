package core

import (
	"time"
)

// UserIDString represents a user (patron or librarian) identifier, e.g. "C101".
type UserIDString = string

// BookIDString represents a book identifier, e.g. "L001".
type BookIDString = string

// LoanIDString represents a loan identifier, zero-padded decimal, e.g. "007".
type LoanIDString = string

// EventTypeString represents the type identifier of a domain event.
type EventTypeString = string

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

// ToDay normalizes t to midnight UTC of its calendar date (in t's own location).
func ToDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b, negative if b is before a.
func DaysBetween(a, b time.Time) int {
	return int(ToDay(b).Sub(ToDay(a)).Hours() / 24)
}

// AddDays moves a calendar date by n days.
func AddDays(day time.Time, n int) time.Time {
	return ToDay(day).AddDate(0, 0, n)
}
