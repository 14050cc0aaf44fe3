package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"field-booking/models"
)

// SweepResult counts the transitions one sweep applied.
type SweepResult struct {
	Expired   int
	Completed int
}

// Sweep applies due expiries and completions to every open reservation.
// Each reservation is handled under its own pair lock, so a sweep never
// races a create or reschedule on the same pair.
func (s *BookingService) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	open, err := s.store.ListByStatus(ctx, models.StatusPending, models.StatusConfirmed)
	if err != nil {
		return res, fmt.Errorf("failed to list open reservations: %w", err)
	}

	now := s.clock.Now()
	for _, candidate := range open {
		if !PaymentExpired(candidate, now) && !(candidate.Status == models.StatusConfirmed && SlotElapsed(candidate, now, s.loc)) {
			continue
		}

		ev, err := s.sweepOne(ctx, candidate.ID)
		if err != nil {
			return res, err
		}
		if ev == nil {
			continue
		}
		switch ev.key {
		case EventReservationExpired:
			res.Expired++
		case EventReservationCompleted:
			res.Completed++
		}
	}
	return res, nil
}

func (s *BookingService) sweepOne(ctx context.Context, id string) (*event, error) {
	r, unlock, err := s.lockReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	ev, err := s.reconcileLocked(ctx, r, s.clock.Now())
	unlock()
	if err != nil {
		return nil, err
	}
	if ev != nil {
		s.publish(ctx, []event{*ev})
	}
	return ev, nil
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (s *BookingService) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := s.Sweep(ctx)
				if err != nil {
					log.Printf("[sweeper] error: %v", err)
					continue
				}
				if res.Expired > 0 || res.Completed > 0 {
					log.Printf("[sweeper] expired=%d completed=%d", res.Expired, res.Completed)
				}
			}
		}
	}()
}
