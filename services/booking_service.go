// services/booking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"field-booking/models"
	"field-booking/repository"
)

// ReservationStore is the authoritative collection of reservations.
type ReservationStore interface {
	Create(ctx context.Context, r *models.Reservation) error
	Get(ctx context.Context, id string) (*models.Reservation, error)
	Update(ctx context.Context, r *models.Reservation) error
	// ListByResourceDate returns reservations in insertion order.
	ListByResourceDate(ctx context.Context, resourceID, date string) ([]models.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]models.Reservation, error)
	ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error)
	AppendRescheduleLog(ctx context.Context, l *models.RescheduleLog) error
	ListRescheduleLogs(ctx context.Context, reservationID string) ([]models.RescheduleLog, error)
}

// FieldCatalog is the read-only resource lookup.
type FieldCatalog interface {
	GetResource(ctx context.Context, id string) (*models.Field, error)
	ListResources(ctx context.Context) ([]models.Field, error)
}

// BookingService owns every reservation write. Writes touching a
// (resource, date) pair run under that pair's lock, so "read occupied slots,
// decide, write" is atomic with respect to other writers on the same pair.
type BookingService struct {
	store   ReservationStore
	catalog FieldCatalog
	clock   Clock
	loc     *time.Location
	events  EventPublisher
	locks   *keyedLocker
	newID   func() string
}

type Option func(*BookingService)

// WithLocation sets the zone used to turn a civil date and hour into an
// instant. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *BookingService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(s *BookingService) {
		if p != nil {
			s.events = p
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *BookingService) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewBookingService(store ReservationStore, catalog FieldCatalog, clock Clock, opts ...Option) *BookingService {
	if clock == nil {
		clock = RealClock{}
	}
	s := &BookingService{
		store:   store,
		catalog: catalog,
		clock:   clock,
		loc:     time.Local,
		events:  NopPublisher{},
		locks:   newKeyedLocker(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) Location() *time.Location { return s.loc }

func (s *BookingService) Now() time.Time { return s.clock.Now() }

// BookingRequest is a request to reserve one resource for a contiguous range
// of hours on one date.
type BookingRequest struct {
	ResourceID    string
	Date          string
	StartHour     int
	DurationHours int
	HolderName    string
	HolderContact string
}

func (s *BookingService) validateSlot(date string, startHour, durationHours int) error {
	if _, err := ParseDate(date, s.loc); err != nil {
		return &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if startHour < OpeningHour || startHour > LastStartHour {
		return &ValidationError{Field: "startHour", Message: fmt.Sprintf("must be between %d and %d", OpeningHour, LastStartHour)}
	}
	if durationHours < MinDurationHours || durationHours > MaxDurationHours {
		return &ValidationError{Field: "durationHours", Message: fmt.Sprintf("must be between %d and %d", MinDurationHours, MaxDurationHours)}
	}
	if startHour+durationHours > 24 {
		return &ValidationError{Field: "durationHours", Message: "reservation cannot run past midnight"}
	}
	return nil
}

func (s *BookingService) ensureFuture(date string, startHour int, now time.Time) error {
	start, err := hourOnDate(date, startHour, s.loc)
	if err != nil {
		return &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if !now.Before(start) {
		return &ValidationError{Field: "startHour", Message: "slot has already started"}
	}
	return nil
}

// bookableSlots drops free start hours that have already begun, so the list
// matches what CreateReservation and ConfirmReschedule accept.
func (s *BookingService) bookableSlots(free []int, date string, now time.Time) []int {
	out := make([]int, 0, len(free))
	for _, h := range free {
		if s.ensureFuture(date, h, now) == nil {
			out = append(out, h)
		}
	}
	return out
}

func (s *BookingService) resource(ctx context.Context, id string) (*models.Field, error) {
	f, err := s.catalog.GetResource(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Kind: "resource", ID: id}
		}
		return nil, fmt.Errorf("catalog lookup %s: %w", id, err)
	}
	return f, nil
}

// CreateReservation checks the slot and creates the reservation in one step
// under the (resource, date) lock.
func (s *BookingService) CreateReservation(ctx context.Context, req BookingRequest) (*models.Reservation, error) {
	req.HolderName = strings.TrimSpace(req.HolderName)
	req.HolderContact = strings.TrimSpace(req.HolderContact)
	req.ResourceID = strings.TrimSpace(req.ResourceID)

	if err := s.validateSlot(req.Date, req.StartHour, req.DurationHours); err != nil {
		return nil, err
	}
	if req.HolderName == "" {
		return nil, &ValidationError{Field: "holderName", Message: "is required"}
	}
	if req.HolderContact == "" {
		return nil, &ValidationError{Field: "holderContact", Message: "is required"}
	}

	field, err := s.resource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}

	var events []event
	defer func() { s.publish(ctx, events) }()

	unlock := s.locks.Lock(slotKey(req.ResourceID, req.Date))
	defer unlock()

	now := s.clock.Now()
	if err := s.ensureFuture(req.Date, req.StartHour, now); err != nil {
		return nil, err
	}

	existing, evs, err := s.loadKeyLocked(ctx, req.ResourceID, req.Date, now)
	events = append(events, evs...)
	if err != nil {
		return nil, err
	}

	if conflicts := FindConflicts(existing, req.ResourceID, req.Date, req.StartHour, req.DurationHours, ""); len(conflicts) > 0 {
		return nil, &ConflictError{
			ResourceID: req.ResourceID,
			Date:       req.Date,
			StartHour:  req.StartHour,
			EndHour:    req.StartHour + req.DurationHours,
			Conflicts:  conflicts,
		}
	}

	res := &models.Reservation{
		ID:            s.newID(),
		ResourceID:    req.ResourceID,
		Date:          req.Date,
		StartHour:     req.StartHour,
		DurationHours: req.DurationHours,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		TotalPrice:    field.HourlyPrice * int64(req.DurationHours),
		HolderName:    req.HolderName,
		HolderContact: req.HolderContact,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	log.Printf("[booking] created %s on %s %s %s for %s", res.ID, res.ResourceID, res.Date, res.TimeRange(), res.HolderName)
	events = append(events, event{key: EventReservationCreated, res: *res, at: now})
	return res, nil
}

// loadKeyLocked lists the pair's reservations and applies any due expiry or
// completion. Caller holds the pair's lock.
func (s *BookingService) loadKeyLocked(ctx context.Context, resourceID, date string, now time.Time) ([]models.Reservation, []event, error) {
	list, err := s.store.ListByResourceDate(ctx, resourceID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	var events []event
	for i := range list {
		ev, err := s.reconcileLocked(ctx, &list[i], now)
		if err != nil {
			return nil, events, err
		}
		if ev != nil {
			events = append(events, *ev)
		}
	}
	return list, events, nil
}

// reconcileLocked applies the time-driven transitions (expire, complete) to
// r and persists them. Caller holds r's pair lock.
func (s *BookingService) reconcileLocked(ctx context.Context, r *models.Reservation, now time.Time) (*event, error) {
	var key string
	switch {
	case PaymentExpired(*r, now):
		r.Status = models.StatusCancelled
		key = EventReservationExpired
	case r.Status == models.StatusConfirmed && SlotElapsed(*r, now, s.loc):
		r.Status = models.StatusCompleted
		key = EventReservationCompleted
	default:
		return nil, nil
	}

	r.UpdatedAt = now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to apply %s to %s: %w", key, r.ID, err)
	}
	log.Printf("[booking] %s: %s", key, r.ID)
	return &event{key: key, res: *r, at: now}, nil
}

func (s *BookingService) get(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Kind: "reservation", ID: id}
		}
		return nil, fmt.Errorf("failed to load reservation %s: %w", id, err)
	}
	return r, nil
}

const maxLockAttempts = 5

// lockReservation loads id and holds the lock of its current pair, plus the
// extra keys. A reschedule can move the reservation between the unlocked read
// and the lock, so the read is repeated under the lock until it is stable.
func (s *BookingService) lockReservation(ctx context.Context, id string, extra ...string) (*models.Reservation, func(), error) {
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		snap, err := s.get(ctx, id)
		if err != nil {
			return nil, nil, err
		}

		unlock := s.locks.Lock(append([]string{slotKey(snap.ResourceID, snap.Date)}, extra...)...)
		r, err := s.get(ctx, id)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if r.ResourceID == snap.ResourceID && r.Date == snap.Date {
			return r, unlock, nil
		}
		unlock()
	}
	return nil, nil, fmt.Errorf("reservation %s kept moving while locking", id)
}

// GetReservation returns the current state of one reservation after
// applying any due expiry or completion.
func (s *BookingService) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var events []event
	defer func() { s.publish(ctx, events) }()

	r, unlock, err := s.lockReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.clock.Now()
	ev, err := s.reconcileLocked(ctx, r, now)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		events = append(events, *ev)
	}
	return r, nil
}

// MarkPaid applies a captured payment. Only an unexpired pending reservation
// can be paid.
func (s *BookingService) MarkPaid(ctx context.Context, id string) (*models.Reservation, error) {
	var events []event
	defer func() { s.publish(ctx, events) }()

	r, unlock, err := s.lockReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.clock.Now()
	ev, err := s.reconcileLocked(ctx, r, now)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		events = append(events, *ev)
		if ev.key == EventReservationExpired {
			return nil, &InvalidStateError{ReservationID: id, Op: "pay", Status: r.Status, PaymentStatus: r.PaymentStatus, Reason: "payment deadline passed"}
		}
	}

	if r.Status != models.StatusPending || r.PaymentStatus != models.PaymentPending {
		return nil, &InvalidStateError{ReservationID: id, Op: "pay", Status: r.Status, PaymentStatus: r.PaymentStatus}
	}

	r.Status = models.StatusConfirmed
	r.PaymentStatus = models.PaymentPaid
	r.UpdatedAt = now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to mark %s paid: %w", id, err)
	}

	log.Printf("[booking] paid %s", id)
	events = append(events, event{key: EventReservationPaid, res: *r, at: now})
	return r, nil
}

// CancelReservation cancels a pending or confirmed reservation more than
// ChangeCutoff before its start.
func (s *BookingService) CancelReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var events []event
	defer func() { s.publish(ctx, events) }()

	r, unlock, err := s.lockReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.clock.Now()
	ev, err := s.reconcileLocked(ctx, r, now)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		events = append(events, *ev)
	}

	if reason := CancelBlocker(*r, now, s.loc); reason != "" {
		return nil, &GuardFailedError{ReservationID: id, Op: "cancel", Reason: reason}
	}

	r.Status = models.StatusCancelled
	r.UpdatedAt = now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to cancel %s: %w", id, err)
	}

	log.Printf("[booking] cancelled %s", id)
	events = append(events, event{key: EventReservationCancelled, res: *r, at: now})
	return r, nil
}

// CompleteReservation closes a confirmed reservation whose slot has ended.
func (s *BookingService) CompleteReservation(ctx context.Context, id string) (*models.Reservation, error) {
	var events []event
	defer func() { s.publish(ctx, events) }()

	r, unlock, err := s.lockReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.clock.Now()
	ev, err := s.reconcileLocked(ctx, r, now)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		events = append(events, *ev)
		if ev.key == EventReservationCompleted {
			return r, nil
		}
	}

	if r.Status != models.StatusConfirmed {
		return nil, &InvalidStateError{ReservationID: id, Op: "complete", Status: r.Status, PaymentStatus: r.PaymentStatus}
	}
	return nil, &GuardFailedError{ReservationID: id, Op: "complete", Reason: ReasonSlotNotElapsed}
}

// AvailableSlots returns the free start hours for resourceID on date that
// have not started yet. excludeID ignores one reservation's own slot.
func (s *BookingService) AvailableSlots(ctx context.Context, resourceID, date, excludeID string) ([]int, error) {
	if _, err := ParseDate(date, s.loc); err != nil {
		return nil, &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if _, err := s.resource(ctx, resourceID); err != nil {
		return nil, err
	}

	var events []event
	defer func() { s.publish(ctx, events) }()

	now := s.clock.Now()
	unlock := s.locks.Lock(slotKey(resourceID, date))
	list, evs, err := s.loadKeyLocked(ctx, resourceID, date, now)
	unlock()
	events = evs
	if err != nil {
		return nil, err
	}
	return s.bookableSlots(AvailableSlots(list, resourceID, date, excludeID), date, now), nil
}

// RescheduleProposal is step one of the reschedule workflow: the current
// schedule next to the requested one and the free hours on the new date.
type RescheduleProposal struct {
	Reservation    models.Reservation   `json:"reservation"`
	NewDate        string               `json:"newDate"`
	NewStartHour   int                  `json:"newStartHour"`
	NewEndHour     int                  `json:"newEndHour"`
	AvailableSlots []int                `json:"availableSlots"`
	SlotAvailable  bool                 `json:"slotAvailable"`
	Conflicts      []models.Reservation `json:"conflicts"`
}

func (p RescheduleProposal) NewTimeRange() string {
	return models.FormatHourRange(p.NewStartHour, p.NewEndHour)
}

// ProposeReschedule checks eligibility and reports availability on newDate
// without changing anything. Nothing from it is trusted by
// ConfirmReschedule.
func (s *BookingService) ProposeReschedule(ctx context.Context, id, newDate string, newStartHour int) (*RescheduleProposal, error) {
	r, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if reason := RescheduleBlocker(*r, now, s.loc); reason != "" {
		return nil, &GuardFailedError{ReservationID: id, Op: "reschedule", Reason: reason}
	}
	if err := s.validateSlot(newDate, newStartHour, r.DurationHours); err != nil {
		return nil, err
	}

	var events []event
	defer func() { s.publish(ctx, events) }()

	unlock := s.locks.Lock(slotKey(r.ResourceID, newDate))
	list, evs, err := s.loadKeyLocked(ctx, r.ResourceID, newDate, now)
	unlock()
	events = evs
	if err != nil {
		return nil, err
	}

	conflicts := FindConflicts(list, r.ResourceID, newDate, newStartHour, r.DurationHours, r.ID)
	return &RescheduleProposal{
		Reservation:    *r,
		NewDate:        newDate,
		NewStartHour:   newStartHour,
		NewEndHour:     newStartHour + r.DurationHours,
		AvailableSlots: s.bookableSlots(AvailableSlots(list, r.ResourceID, newDate, r.ID), newDate, now),
		SlotAvailable:  len(conflicts) == 0 && s.ensureFuture(newDate, newStartHour, now) == nil,
		Conflicts:      conflicts,
	}, nil
}

// ConfirmReschedule moves a confirmed, paid reservation to a new date and
// start hour on the same resource. All guards are evaluated again here
// under the locks of both the old and the new (resource, date) pair.
func (s *BookingService) ConfirmReschedule(ctx context.Context, id, newDate string, newStartHour int) (*models.Reservation, error) {
	if _, err := ParseDate(newDate, s.loc); err != nil {
		return nil, &ValidationError{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	var events []event
	defer func() { s.publish(ctx, events) }()

	// The resource never changes on reschedule, so the target key computed
	// from an unlocked read stays valid.
	snap, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	r, unlock, err := s.lockReservation(ctx, id, slotKey(snap.ResourceID, newDate))
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.clock.Now()
	ev, err := s.reconcileLocked(ctx, r, now)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		events = append(events, *ev)
	}

	if reason := RescheduleBlocker(*r, now, s.loc); reason != "" {
		return nil, &GuardFailedError{ReservationID: id, Op: "reschedule", Reason: reason}
	}
	if err := s.validateSlot(newDate, newStartHour, r.DurationHours); err != nil {
		return nil, err
	}
	if newDate == r.Date && newStartHour == r.StartHour {
		return nil, &ValidationError{Field: "startHour", Message: "new schedule is the same as the current one"}
	}
	if err := s.ensureFuture(newDate, newStartHour, now); err != nil {
		return nil, err
	}

	list, evs, err := s.loadKeyLocked(ctx, r.ResourceID, newDate, now)
	events = append(events, evs...)
	if err != nil {
		return nil, err
	}
	if conflicts := FindConflicts(list, r.ResourceID, newDate, newStartHour, r.DurationHours, r.ID); len(conflicts) > 0 {
		return nil, &ConflictError{
			ResourceID: r.ResourceID,
			Date:       newDate,
			StartHour:  newStartHour,
			EndHour:    newStartHour + r.DurationHours,
			Conflicts:  conflicts,
		}
	}

	entry := &models.RescheduleLog{
		ID:            s.newID(),
		ReservationID: r.ID,
		OldDate:       r.Date,
		OldStartHour:  r.StartHour,
		NewDate:       newDate,
		NewStartHour:  newStartHour,
		RescheduledAt: now,
	}

	r.Date = newDate
	r.StartHour = newStartHour
	r.Status = models.StatusConfirmed
	r.HasBeenRescheduled = true
	r.UpdatedAt = now
	if err := s.store.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to reschedule %s: %w", id, err)
	}
	if err := s.store.AppendRescheduleLog(ctx, entry); err != nil {
		log.Printf("[booking] warning: reschedule log for %s not written: %v", id, err)
	}

	log.Printf("[booking] rescheduled %s from %s %02d:00 to %s %02d:00", id, entry.OldDate, entry.OldStartHour, newDate, newStartHour)
	events = append(events, event{key: EventReservationRescheduled, res: *r, at: now})
	return r, nil
}

// RescheduleHistory lists the committed reschedules of one reservation.
func (s *BookingService) RescheduleHistory(ctx context.Context, id string) ([]models.RescheduleLog, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListRescheduleLogs(ctx, id)
}

// ListReservations reconciles due expiries and completions, then lists
// reservations, newest first.
func (s *BookingService) ListReservations(ctx context.Context, holder string) ([]models.Reservation, error) {
	if _, err := s.Sweep(ctx); err != nil {
		return nil, err
	}
	return s.store.List(ctx, repository.ReservationFilter{Holder: holder})
}

// ListResources exposes the catalog for display.
func (s *BookingService) ListResources(ctx context.Context) ([]models.Field, error) {
	return s.catalog.ListResources(ctx)
}

func (s *BookingService) GetResource(ctx context.Context, id string) (*models.Field, error) {
	return s.resource(ctx, id)
}
