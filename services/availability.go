package services

import (
	"sort"

	"field-booking/models"
)

// OccupiedSlots returns the operating-window start hours covered by
// non-cancelled reservations on resourceID and date. excludeID, when set,
// skips that reservation (used while rescheduling it).
func OccupiedSlots(reservations []models.Reservation, resourceID, date, excludeID string) []int {
	occupied := make(map[int]struct{})
	for _, r := range reservations {
		if r.ResourceID != resourceID || r.Date != date || !r.Occupies() {
			continue
		}
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		for h := r.StartHour; h < r.EndHour(); h++ {
			if h >= OpeningHour && h <= LastStartHour {
				occupied[h] = struct{}{}
			}
		}
	}

	out := make([]int, 0, len(occupied))
	for h := range occupied {
		out = append(out, h)
	}
	sort.Ints(out)
	return out
}

// AvailableSlots is the complement of OccupiedSlots within the operating
// window.
func AvailableSlots(reservations []models.Reservation, resourceID, date, excludeID string) []int {
	taken := make(map[int]bool)
	for _, h := range OccupiedSlots(reservations, resourceID, date, excludeID) {
		taken[h] = true
	}
	free := []int{}
	for _, h := range OperatingHours() {
		if !taken[h] {
			free = append(free, h)
		}
	}
	return free
}
