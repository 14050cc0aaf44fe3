package services

import (
	"time"

	"field-booking/models"
)

const (
	// OpeningHour and LastStartHour bound the start hours ever offered.
	OpeningHour   = 8
	LastStartHour = 21

	MinDurationHours = 1
	MaxDurationHours = 4

	PaymentWindow = 15 * time.Minute
	ChangeCutoff  = 12 * time.Hour
)

// OperatingHours lists every bookable start hour in order.
func OperatingHours() []int {
	hours := make([]int, 0, LastStartHour-OpeningHour+1)
	for h := OpeningHour; h <= LastStartHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, date, loc)
}

// SlotStart is the instant the reserved interval begins.
func SlotStart(r models.Reservation, loc *time.Location) (time.Time, error) {
	return hourOnDate(r.Date, r.StartHour, loc)
}

// SlotEnd is the instant the reserved interval ends.
func SlotEnd(r models.Reservation, loc *time.Location) (time.Time, error) {
	return hourOnDate(r.Date, r.EndHour(), loc)
}

func hourOnDate(date string, hour int, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc), nil
}

func PaymentDeadline(r models.Reservation) time.Time {
	return r.CreatedAt.Add(PaymentWindow)
}

// PaymentExpired reports whether an unpaid pending reservation has run out
// of payment time.
func PaymentExpired(r models.Reservation, now time.Time) bool {
	return r.Status == models.StatusPending &&
		r.PaymentStatus == models.PaymentPending &&
		!now.Before(PaymentDeadline(r))
}

// PaymentTimeRemaining is the query side of expiry. ok is false when the
// reservation is not waiting for payment.
func PaymentTimeRemaining(r models.Reservation, now time.Time) (remaining time.Duration, ok bool) {
	if r.Status != models.StatusPending || r.PaymentStatus != models.PaymentPending {
		return 0, false
	}
	remaining = PaymentDeadline(r).Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// SlotElapsed reports whether the reserved interval is fully in the past.
func SlotElapsed(r models.Reservation, now time.Time, loc *time.Location) bool {
	end, err := SlotEnd(r, loc)
	if err != nil {
		return false
	}
	return !now.Before(end)
}

func beforeCutoff(r models.Reservation, now time.Time, loc *time.Location) bool {
	start, err := SlotStart(r, loc)
	if err != nil {
		return false
	}
	return now.Before(start.Add(-ChangeCutoff))
}

// CancelBlocker returns the reason a cancel is refused, or "" when allowed.
func CancelBlocker(r models.Reservation, now time.Time, loc *time.Location) GuardReason {
	if r.Status == models.StatusCompleted || r.Status == models.StatusCancelled {
		return ReasonTerminal
	}
	if !beforeCutoff(r, now, loc) {
		return ReasonCutoffPassed
	}
	return ""
}

// RescheduleBlocker returns the reason a reschedule is refused, or "" when
// allowed. The new slot's availability is checked separately.
func RescheduleBlocker(r models.Reservation, now time.Time, loc *time.Location) GuardReason {
	switch {
	case r.HasBeenRescheduled:
		return ReasonAlreadyRescheduled
	case r.Status == models.StatusCompleted || r.Status == models.StatusCancelled:
		return ReasonTerminal
	case r.PaymentStatus != models.PaymentPaid:
		return ReasonNotPaid
	case r.Status != models.StatusConfirmed:
		return ReasonNotConfirmed
	case !beforeCutoff(r, now, loc):
		return ReasonCutoffPassed
	}
	return ""
}

func CanCancel(r models.Reservation, now time.Time, loc *time.Location) bool {
	return CancelBlocker(r, now, loc) == ""
}

func CanReschedule(r models.Reservation, now time.Time, loc *time.Location) bool {
	return RescheduleBlocker(r, now, loc) == ""
}
