package models

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	// StatusRescheduled is accepted on stored records but the engine keeps
	// rescheduled reservations in StatusConfirmed with HasBeenRescheduled set.
	StatusRescheduled ReservationStatus = "rescheduled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// DateLayout is the civil date format used for Reservation.Date.
const DateLayout = "2006-01-02"

type Reservation struct {
	ID         string `gorm:"primaryKey;size:64" json:"id"`
	ResourceID string `gorm:"column:resource_id;size:64;index:idx_resource_date,priority:1" json:"resourceId"`
	// Date is a civil date (YYYY-MM-DD) without a zone.
	Date          string `gorm:"column:date;size:10;index:idx_resource_date,priority:2" json:"date"`
	StartHour     int    `gorm:"column:start_hour" json:"startHour"`
	DurationHours int    `gorm:"column:duration_hours" json:"durationHours"`

	Status        ReservationStatus `gorm:"column:status;size:32;index" json:"status"`
	PaymentStatus PaymentStatus     `gorm:"column:payment_status;size:32" json:"paymentStatus"`
	TotalPrice    int64             `gorm:"column:total_price" json:"totalPrice"`

	HolderName    string `gorm:"column:holder_name;size:255" json:"holderName"`
	HolderContact string `gorm:"column:holder_contact;size:64" json:"holderContact"`

	HasBeenRescheduled bool `gorm:"column:has_been_rescheduled;default:false" json:"hasBeenRescheduled"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

// EndHour is the exclusive end of the reserved interval.
func (r Reservation) EndHour() int {
	return r.StartHour + r.DurationHours
}

// TimeRange renders the reserved interval, e.g. "10:00-12:00".
func (r Reservation) TimeRange() string {
	return FormatHourRange(r.StartHour, r.EndHour())
}

// Occupies reports whether the reservation still blocks its slot.
func (r Reservation) Occupies() bool {
	return r.Status != StatusCancelled
}

func FormatHourRange(start, end int) string {
	return fmt.Sprintf("%02d:00-%02d:00", start, end)
}

// RescheduleLog records one committed reschedule.
type RescheduleLog struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	ReservationID string    `gorm:"column:reservation_id;size:64;index" json:"reservationId"`
	OldDate       string    `gorm:"column:old_date;size:10" json:"oldDate"`
	OldStartHour  int       `gorm:"column:old_start_hour" json:"oldStartHour"`
	NewDate       string    `gorm:"column:new_date;size:10" json:"newDate"`
	NewStartHour  int       `gorm:"column:new_start_hour" json:"newStartHour"`
	RescheduledAt time.Time `gorm:"column:rescheduled_at" json:"rescheduledAt"`
}
