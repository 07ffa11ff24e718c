package models

import (
	"fmt"
	"time"
)

// BookingStatus models the booking lifecycle state machine.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingDeclined   BookingStatus = "declined"
	BookingNoShow     BookingStatus = "no_show"
)

// ParseBookingStatus validates a raw status string.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted,
		BookingCancelled, BookingDeclined, BookingNoShow:
		return BookingStatus(s), nil
	default:
		return "", fmt.Errorf("unknown booking status: %s", s)
	}
}

var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	BookingPending:    {BookingConfirmed: true, BookingDeclined: true},
	BookingConfirmed:  {BookingInProgress: true, BookingCancelled: true, BookingNoShow: true},
	BookingInProgress: {BookingCompleted: true},
	BookingCompleted:  {},
	BookingCancelled:  {},
	BookingDeclined:   {},
	BookingNoShow:     {},
}

// CanTransition reports whether the lifecycle graph allows from → to.
func CanTransition(from, to BookingStatus) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// IsTerminal reports whether a status admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// AssignmentOpen reports whether reassignment is still permitted. Once a
// booking is in progress, time tracking and payout attribution depend on the
// current assignee, so assignment is locked.
func (s BookingStatus) AssignmentOpen() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking represents one appointment. Rows are retained forever; lifecycle is
// modelled purely through status transitions.
type Booking struct {
	ID                 string        `db:"id" json:"id"`
	BusinessID         string        `db:"business_id" json:"business_id"`
	ProviderID         *string       `db:"provider_id" json:"provider_id"`
	CustomerID         string        `db:"customer_id" json:"customer_id"`
	ServiceID          string        `db:"service_id" json:"service_id"`
	Date               time.Time     `db:"date" json:"date"`
	StartTime          string        `db:"start_time" json:"start_time"`
	EndTime            string        `db:"end_time" json:"end_time"`
	Status             BookingStatus `db:"status" json:"status"`
	TotalAmount        float64       `db:"total_amount" json:"total_amount"`
	CancellationReason *string       `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingFilter captures filtering criteria for listing bookings.
type BookingFilter struct {
	Status     *BookingStatus
	ProviderID *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// BookingEvent is the payload published to real-time subscribers after a
// successful status change.
type BookingEvent struct {
	BookingID string        `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	At        time.Time     `json:"at"`
}
