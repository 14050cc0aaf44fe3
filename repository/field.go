package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"field-booking/models"
)

// DefaultFields is the standard catalog used for seeding and for the
// database-less drivers.
func DefaultFields() []models.Field {
	return []models.Field{
		{ID: "1", Name: "Lapangan Futsal A", Category: "Futsal", HourlyPrice: 150000, Capacity: "10 Pemain",
			Features: datatypes.JSON(`["Rumput Sintetis","Lampu LED","Tribun"]`)},
		{ID: "2", Name: "Lapangan Basket Indoor", Category: "Basket", HourlyPrice: 200000, Capacity: "10 Pemain",
			Features: datatypes.JSON(`["AC","Lantai Parket","Sound System"]`)},
		{ID: "3", Name: "Lapangan Badminton", Category: "Badminton", HourlyPrice: 80000, Capacity: "4 Pemain",
			Features: datatypes.JSON(`["AC","Lantai Vinyl","Net Standar"]`)},
		{ID: "4", Name: "Lapangan Tenis", Category: "Tenis", HourlyPrice: 120000, Capacity: "4 Pemain",
			Features: datatypes.JSON(`["Hard Court","Lampu Floodlight","Tribun"]`)},
	}
}

// StaticFieldRepo serves a fixed catalog from memory.
type StaticFieldRepo struct {
	fields []models.Field
}

func NewStaticFieldRepo(fields []models.Field) *StaticFieldRepo {
	cp := make([]models.Field, len(fields))
	copy(cp, fields)
	return &StaticFieldRepo{fields: cp}
}

func (s *StaticFieldRepo) GetResource(ctx context.Context, id string) (*models.Field, error) {
	for i := range s.fields {
		if s.fields[i].ID == id {
			f := s.fields[i]
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func (s *StaticFieldRepo) ListResources(ctx context.Context) ([]models.Field, error) {
	out := make([]models.Field, len(s.fields))
	copy(out, s.fields)
	return out, nil
}

// GormFieldRepo reads the fields table.
type GormFieldRepo struct {
	DB *gorm.DB
}

func NewGormFieldRepo(db *gorm.DB) *GormFieldRepo {
	return &GormFieldRepo{DB: db}
}

func (r *GormFieldRepo) GetResource(ctx context.Context, id string) (*models.Field, error) {
	var f models.Field
	if err := r.DB.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get field %s: %w", id, err)
	}
	return &f, nil
}

func (r *GormFieldRepo) ListResources(ctx context.Context) ([]models.Field, error) {
	fields := []models.Field{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	return fields, nil
}
