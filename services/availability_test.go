package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"field-booking/models"
)

func TestOperatingHours(t *testing.T) {
	hours := OperatingHours()
	assert.Len(t, hours, 14)
	assert.Equal(t, 8, hours[0])
	assert.Equal(t, 21, hours[len(hours)-1])
}

func TestOccupiedAndAvailableSlots(t *testing.T) {
	existing := []models.Reservation{
		res("a", 10, 2, models.StatusConfirmed),
		res("b", 15, 1, models.StatusPending),
		res("c", 17, 3, models.StatusCancelled),
	}

	assert.Equal(t, []int{10, 11, 15}, OccupiedSlots(existing, "1", "2030-05-10", ""))
	assert.Equal(t,
		[]int{8, 9, 12, 13, 14, 16, 17, 18, 19, 20, 21},
		AvailableSlots(existing, "1", "2030-05-10", ""),
	)
}

func TestOccupiedSlotsExcludeAndClip(t *testing.T) {
	existing := []models.Reservation{
		res("a", 10, 2, models.StatusConfirmed),
		res("late", 21, 3, models.StatusConfirmed),
	}

	assert.Equal(t, []int{21}, OccupiedSlots(existing, "1", "2030-05-10", "a"))
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	assert.Equal(t, OperatingHours(), AvailableSlots(nil, "1", "2030-05-10", ""))
	assert.Empty(t, OccupiedSlots(nil, "1", "2030-05-10", ""))
}
