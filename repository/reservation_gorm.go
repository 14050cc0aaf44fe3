package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"field-booking/models"
)

// GormReservationRepo is the MySQL-backed reservation store.
type GormReservationRepo struct {
	DB *gorm.DB
}

func NewGormReservationRepo(db *gorm.DB) *GormReservationRepo {
	return &GormReservationRepo{DB: db}
}

// isDuplicateKeyError detects MySQL error 1062 (duplicate entry), or gorm's
// translated form when TranslateError is enabled.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (r *GormReservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	if err := r.DB.WithContext(ctx).Create(res).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *GormReservationRepo) Get(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.DB.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation %s: %w", id, err)
	}
	return &res, nil
}

// Update locks the row for the duration of the write so a second process
// sharing the database cannot interleave its own read-modify-write.
func (r *GormReservationRepo) Update(ctx context.Context, res *models.Reservation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Reservation
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, "id = ?", res.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&current).Updates(map[string]interface{}{
			"date":                 res.Date,
			"start_hour":           res.StartHour,
			"duration_hours":       res.DurationHours,
			"status":               res.Status,
			"payment_status":       res.PaymentStatus,
			"has_been_rescheduled": res.HasBeenRescheduled,
			"updated_at":           res.UpdatedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to update reservation %s: %w", res.ID, err)
		}
		return nil
	})
}

func (r *GormReservationRepo) ListByResourceDate(ctx context.Context, resourceID, date string) ([]models.Reservation, error) {
	list := []models.Reservation{}
	if err := r.DB.WithContext(ctx).
		Where("resource_id = ? AND date = ?", resourceID, date).
		Order("created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}

func (r *GormReservationRepo) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	qb := r.DB.WithContext(ctx).Model(&models.Reservation{})
	if f.ResourceID != "" {
		qb = qb.Where("resource_id = ?", f.ResourceID)
	}
	if h := strings.ToLower(strings.TrimSpace(f.Holder)); h != "" {
		like := "%" + h + "%"
		qb = qb.Where("(LOWER(holder_name) LIKE ? OR LOWER(holder_contact) LIKE ?)", like, like)
	}

	list := []models.Reservation{}
	if err := qb.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reservations: %w", err)
	}
	return list, nil
}

func (r *GormReservationRepo) ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	list := []models.Reservation{}
	if len(statuses) == 0 {
		return list, nil
	}
	if err := r.DB.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations by status: %w", err)
	}
	return list, nil
}

func (r *GormReservationRepo) AppendRescheduleLog(ctx context.Context, l *models.RescheduleLog) error {
	if err := r.DB.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to write reschedule log: %w", err)
	}
	return nil
}

func (r *GormReservationRepo) ListRescheduleLogs(ctx context.Context, reservationID string) ([]models.RescheduleLog, error) {
	logs := []models.RescheduleLog{}
	if err := r.DB.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("rescheduled_at ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list reschedule logs: %w", err)
	}
	return logs, nil
}
