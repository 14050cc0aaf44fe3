package services

import "field-booking/models"

// Overlaps is the half-open interval test: [s1,e1) and [s2,e2) conflict iff
// s1 < e2 and s2 < e1. Touching endpoints do not conflict.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// FindConflicts returns every non-cancelled reservation on resourceID and
// date whose interval overlaps [startHour, startHour+durationHours), in the
// order given. An empty result means the slot is free.
func FindConflicts(reservations []models.Reservation, resourceID, date string, startHour, durationHours int, excludeID string) []models.Reservation {
	end := startHour + durationHours
	conflicts := []models.Reservation{}
	for _, r := range reservations {
		if r.ResourceID != resourceID || r.Date != date || !r.Occupies() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if Overlaps(startHour, end, r.StartHour, r.EndHour()) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}
