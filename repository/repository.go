// Package repository holds the persistence backends for reservations and the
// field catalog. Every backend returns copies: callers persist changes with
// Update, never by mutating a returned value.
package repository

import (
	"errors"
	"strings"

	"field-booking/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same id already exists.
	ErrDuplicate = errors.New("duplicate record")
)

// ReservationFilter narrows List. Zero value lists everything.
type ReservationFilter struct {
	// Holder matches holder name or contact, case-insensitive substring.
	Holder     string
	ResourceID string
}

func (f ReservationFilter) match(r *models.Reservation) bool {
	if f.ResourceID != "" && r.ResourceID != f.ResourceID {
		return false
	}
	if h := strings.ToLower(strings.TrimSpace(f.Holder)); h != "" {
		return strings.Contains(strings.ToLower(r.HolderName), h) ||
			strings.Contains(strings.ToLower(r.HolderContact), h)
	}
	return true
}

func hasStatus(r *models.Reservation, statuses []models.ReservationStatus) bool {
	for _, s := range statuses {
		if r.Status == s {
			return true
		}
	}
	return false
}
