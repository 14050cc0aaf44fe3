package services

import (
	"context"
	"log"
	"time"

	"field-booking/models"
)

const (
	EventReservationCreated     = "reservation.created"
	EventReservationPaid        = "reservation.paid"
	EventReservationCancelled   = "reservation.cancelled"
	EventReservationRescheduled = "reservation.rescheduled"
	EventReservationExpired     = "reservation.expired"
	EventReservationCompleted   = "reservation.completed"
)

// EventPublisher receives lifecycle events. mq.Publisher implements it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, any) error { return nil }

type event struct {
	key string
	res models.Reservation
	at  time.Time
}

func (s *BookingService) publish(ctx context.Context, events []event) {
	for _, e := range events {
		payload := map[string]any{
			"event":          e.key,
			"reservation_id": e.res.ID,
			"resource_id":    e.res.ResourceID,
			"date":           e.res.Date,
			"start_hour":     e.res.StartHour,
			"duration_hours": e.res.DurationHours,
			"status":         e.res.Status,
			"payment_status": e.res.PaymentStatus,
			"total_price":    e.res.TotalPrice,
			"occurred_at":    e.at.UTC().Format(time.RFC3339),
		}
		if err := s.events.PublishJSON(ctx, e.key, payload); err != nil {
			log.Printf("[booking] publish %s for %s failed: %v", e.key, e.res.ID, err)
		}
	}
}
