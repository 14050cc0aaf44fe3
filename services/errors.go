package services

import (
	"fmt"

	"field-booking/models"
)

// ConflictError reports that a requested slot overlaps existing
// reservations. Conflicts holds every overlap in store order; messages use
// the first one.
type ConflictError struct {
	ResourceID string
	Date       string
	StartHour  int
	EndHour    int
	Conflicts  []models.Reservation
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("slot %s on %s is not available", models.FormatHourRange(e.StartHour, e.EndHour), e.Date)
	}
	c := e.Conflicts[0]
	return fmt.Sprintf("slot %s on %s is already booked by %s (%s) for %s",
		models.FormatHourRange(e.StartHour, e.EndHour), e.Date, c.HolderName, c.HolderContact, c.TimeRange())
}

// First returns the conflict used for messaging.
func (e *ConflictError) First() models.Reservation {
	if len(e.Conflicts) == 0 {
		return models.Reservation{}
	}
	return e.Conflicts[0]
}

type GuardReason string

const (
	ReasonCutoffPassed       GuardReason = "cutoff_passed"
	ReasonNotPaid            GuardReason = "not_paid"
	ReasonNotConfirmed       GuardReason = "not_confirmed"
	ReasonAlreadyRescheduled GuardReason = "already_rescheduled"
	ReasonTerminal           GuardReason = "terminal_status"
	ReasonSlotNotElapsed     GuardReason = "slot_not_elapsed"
)

// GuardFailedError reports an operation attempted outside the conditions
// that allow it.
type GuardFailedError struct {
	ReservationID string
	Op            string
	Reason        GuardReason
}

func (e *GuardFailedError) Error() string {
	return fmt.Sprintf("%s not allowed for reservation %s: %s", e.Op, e.ReservationID, e.Reason)
}

type NotFoundError struct {
	Kind string // "reservation" or "resource"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// InvalidStateError reports a transition that the state machine does not
// allow from the reservation's current state.
type InvalidStateError struct {
	ReservationID string
	Op            string
	Status        models.ReservationStatus
	PaymentStatus models.PaymentStatus
	Reason        string
}

func (e *InvalidStateError) Error() string {
	msg := fmt.Sprintf("cannot %s reservation %s in status %s/%s", e.Op, e.ReservationID, e.Status, e.PaymentStatus)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
