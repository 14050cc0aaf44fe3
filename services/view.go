package services

import (
	"time"

	"field-booking/models"
)

// ReservationView is a reservation plus the values derived from the clock.
type ReservationView struct {
	models.Reservation
	TimeRange               string     `json:"timeRange"`
	EndHour                 int        `json:"endHour"`
	CanCancel               bool       `json:"canCancel"`
	CanReschedule           bool       `json:"canReschedule"`
	PaymentDeadline         *time.Time `json:"paymentDeadline,omitempty"`
	PaymentSecondsRemaining *int64     `json:"paymentSecondsRemaining,omitempty"`
}

func (s *BookingService) View(r models.Reservation) ReservationView {
	now := s.clock.Now()
	v := ReservationView{
		Reservation:   r,
		TimeRange:     r.TimeRange(),
		EndHour:       r.EndHour(),
		CanCancel:     CanCancel(r, now, s.loc),
		CanReschedule: CanReschedule(r, now, s.loc),
	}
	if remaining, ok := PaymentTimeRemaining(r, now); ok {
		deadline := PaymentDeadline(r)
		secs := int64(remaining / time.Second)
		v.PaymentDeadline = &deadline
		v.PaymentSecondsRemaining = &secs
	}
	return v
}

func (s *BookingService) Views(list []models.Reservation) []ReservationView {
	out := make([]ReservationView, 0, len(list))
	for _, r := range list {
		out = append(out, s.View(r))
	}
	return out
}
