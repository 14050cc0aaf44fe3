package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"field-booking/models"
	"field-booking/services"
)

const PaymentPaidKey = "payment.paid"

type PaymentPaid struct {
	Event string `json:"event"` // "payment.paid"
	Data  struct {
		ReservationID string `json:"reservation_id"`
		PaymentID     string `json:"payment_id"`
		Amount        int64  `json:"amount"`
	} `json:"data"`
}

// PaymentMarker is the part of the booking service the consumer drives.
type PaymentMarker interface {
	MarkPaid(ctx context.Context, id string) (*models.Reservation, error)
}

// DeliverySource yields deliveries; *mq.Consumer implements it.
type DeliverySource interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

type PaymentConsumer struct {
	svc  PaymentMarker
	cons DeliverySource
}

func NewPaymentConsumer(svc PaymentMarker, cons DeliverySource) *PaymentConsumer {
	return &PaymentConsumer{svc: svc, cons: cons}
}

func (pc *PaymentConsumer) Run(ctx context.Context) error {
	msgs, err := pc.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	go func() {
		for d := range msgs {
			pc.Handle(ctx, d)
		}
		log.Printf("[payment-consumer] delivery channel closed")
	}()
	return nil
}

// Handle processes one delivery and settles it. Payloads that can never
// succeed are dropped; store failures are requeued.
func (pc *PaymentConsumer) Handle(ctx context.Context, d amqp.Delivery) {
	if d.RoutingKey != PaymentPaidKey {
		_ = d.Ack(false)
		return
	}

	var evt PaymentPaid
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.Printf("[payment-consumer] unmarshal error: %v", err)
		_ = d.Nack(false, false)
		return
	}
	if evt.Data.ReservationID == "" || evt.Data.PaymentID == "" {
		log.Printf("[payment-consumer] invalid event payload")
		_ = d.Nack(false, false)
		return
	}

	_, err := pc.svc.MarkPaid(ctx, evt.Data.ReservationID)
	var invalid *services.InvalidStateError
	var notFound *services.NotFoundError
	switch {
	case err == nil:
		log.Printf("[payment-consumer] reservation %s paid by %s", evt.Data.ReservationID, evt.Data.PaymentID)
		_ = d.Ack(false)
	case errors.As(err, &invalid), errors.As(err, &notFound):
		// already paid, expired or unknown: redelivery cannot change that
		log.Printf("[payment-consumer] skip %s: %v", evt.Data.ReservationID, err)
		_ = d.Ack(false)
	default:
		log.Printf("[payment-consumer] mark paid error: %v", err)
		_ = d.Nack(false, true)
	}
}
