package repository

import (
	"context"
	"sync"

	"field-booking/models"
)

// MemoryReservationRepo keeps reservations in a slice in insertion order.
type MemoryReservationRepo struct {
	mu    sync.RWMutex
	items []*models.Reservation
	byID  map[string]*models.Reservation
	logs  []models.RescheduleLog
}

func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{byID: make(map[string]*models.Reservation)}
}

func (m *MemoryReservationRepo) Create(ctx context.Context, r *models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[r.ID]; ok {
		return ErrDuplicate
	}
	cp := *r
	m.items = append(m.items, &cp)
	m.byID[cp.ID] = &cp
	return nil
}

func (m *MemoryReservationRepo) Get(ctx context.Context, id string) (*models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryReservationRepo) Update(ctx context.Context, r *models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[r.ID]
	if !ok {
		return ErrNotFound
	}
	*existing = *r
	return nil
}

func (m *MemoryReservationRepo) ListByResourceDate(ctx context.Context, resourceID, date string) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Reservation{}
	for _, r := range m.items {
		if r.ResourceID == resourceID && r.Date == date {
			out = append(out, *r)
		}
	}
	return out, nil
}

// List returns matching reservations, newest first.
func (m *MemoryReservationRepo) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Reservation{}
	for i := len(m.items) - 1; i >= 0; i-- {
		if f.match(m.items[i]) {
			out = append(out, *m.items[i])
		}
	}
	return out, nil
}

func (m *MemoryReservationRepo) ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Reservation{}
	for _, r := range m.items {
		if hasStatus(r, statuses) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MemoryReservationRepo) AppendRescheduleLog(ctx context.Context, l *models.RescheduleLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *l)
	return nil
}

func (m *MemoryReservationRepo) ListRescheduleLogs(ctx context.Context, reservationID string) ([]models.RescheduleLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.RescheduleLog{}
	for _, l := range m.logs {
		if l.ReservationID == reservationID {
			out = append(out, l)
		}
	}
	return out, nil
}
