package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-booking/models"
	"field-booking/repository"
)

// reservationStore is the method set shared by every backend.
type reservationStore interface {
	Create(ctx context.Context, r *models.Reservation) error
	Get(ctx context.Context, id string) (*models.Reservation, error)
	Update(ctx context.Context, r *models.Reservation) error
	ListByResourceDate(ctx context.Context, resourceID, date string) ([]models.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]models.Reservation, error)
	ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error)
	AppendRescheduleLog(ctx context.Context, l *models.RescheduleLog) error
	ListRescheduleLogs(ctx context.Context, reservationID string) ([]models.RescheduleLog, error)
}

func newBoltStore(t *testing.T) reservationStore {
	t.Helper()
	s, err := repository.OpenBoltReservationRepo(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func backends() map[string]func(t *testing.T) reservationStore {
	return map[string]func(t *testing.T) reservationStore{
		"memory": func(*testing.T) reservationStore { return repository.NewMemoryReservationRepo() },
		"bolt":   newBoltStore,
	}
}

var base = time.Date(2030, 5, 9, 8, 0, 0, 0, time.UTC)

func sample(id, resource, date string, start int, holder string, offset time.Duration) *models.Reservation {
	return &models.Reservation{
		ID:            id,
		ResourceID:    resource,
		Date:          date,
		StartHour:     start,
		DurationHours: 1,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		TotalPrice:    150000,
		HolderName:    holder,
		HolderContact: "0812-" + id,
		CreatedAt:     base.Add(offset),
		UpdatedAt:     base.Add(offset),
	}
}

func TestReservationStores(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Run("create and get", func(t *testing.T) { testCreateGet(t, open(t)) })
			t.Run("update", func(t *testing.T) { testUpdate(t, open(t)) })
			t.Run("list by resource date", func(t *testing.T) { testListByResourceDate(t, open(t)) })
			t.Run("list filter", func(t *testing.T) { testList(t, open(t)) })
			t.Run("list by status", func(t *testing.T) { testListByStatus(t, open(t)) })
			t.Run("reschedule logs", func(t *testing.T) { testRescheduleLogs(t, open(t)) })
		})
	}
}

func testCreateGet(t *testing.T, s reservationStore) {
	ctx := context.Background()
	r := sample("a", "1", "2030-05-10", 10, "Budi", 0)
	require.NoError(t, s.Create(ctx, r))
	assert.ErrorIs(t, s.Create(ctx, r), repository.ErrDuplicate)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.HolderName)
	assert.Equal(t, int64(150000), got.TotalPrice)
	assert.True(t, got.CreatedAt.Equal(r.CreatedAt))

	got.Status = models.StatusCancelled
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status, "returned records are copies")

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testUpdate(t *testing.T, s reservationStore) {
	ctx := context.Background()
	r := sample("a", "1", "2030-05-10", 10, "Budi", 0)
	require.NoError(t, s.Create(ctx, r))

	r.Date = "2030-05-11"
	r.StartHour = 9
	r.Status = models.StatusConfirmed
	r.PaymentStatus = models.PaymentPaid
	r.HasBeenRescheduled = true
	require.NoError(t, s.Update(ctx, r))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2030-05-11", got.Date)
	assert.Equal(t, 9, got.StartHour)
	assert.True(t, got.HasBeenRescheduled)

	old, err := s.ListByResourceDate(ctx, "1", "2030-05-10")
	require.NoError(t, err)
	assert.Empty(t, old)

	err = s.Update(ctx, sample("missing", "1", "2030-05-10", 10, "x", 0))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testListByResourceDate(t *testing.T, s reservationStore) {
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, sample("c", "1", "2030-05-10", 15, "C", 0)))
	require.NoError(t, s.Create(ctx, sample("a", "1", "2030-05-10", 10, "A", time.Minute)))
	require.NoError(t, s.Create(ctx, sample("other-field", "2", "2030-05-10", 10, "B", 2*time.Minute)))
	require.NoError(t, s.Create(ctx, sample("other-date", "1", "2030-05-11", 10, "D", 3*time.Minute)))

	list, err := s.ListByResourceDate(ctx, "1", "2030-05-10")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func testList(t *testing.T, s reservationStore) {
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, sample("a", "1", "2030-05-10", 10, "Budi Santoso", 0)))
	require.NoError(t, s.Create(ctx, sample("b", "2", "2030-05-10", 10, "Sari", time.Minute)))

	all, err := s.List(ctx, repository.ReservationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	byName, err := s.List(ctx, repository.ReservationFilter{Holder: "SANTOSO"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "a", byName[0].ID)

	byContact, err := s.List(ctx, repository.ReservationFilter{Holder: "0812-b"})
	require.NoError(t, err)
	require.Len(t, byContact, 1)
	assert.Equal(t, "b", byContact[0].ID)

	byField, err := s.List(ctx, repository.ReservationFilter{ResourceID: "1"})
	require.NoError(t, err)
	require.Len(t, byField, 1)
}

func testListByStatus(t *testing.T, s reservationStore) {
	ctx := context.Background()
	pending := sample("p", "1", "2030-05-10", 10, "P", 0)
	confirmed := sample("c", "1", "2030-05-10", 12, "C", time.Minute)
	confirmed.Status = models.StatusConfirmed
	cancelled := sample("x", "1", "2030-05-10", 14, "X", 2*time.Minute)
	cancelled.Status = models.StatusCancelled
	for _, r := range []*models.Reservation{pending, confirmed, cancelled} {
		require.NoError(t, s.Create(ctx, r))
	}

	open, err := s.ListByStatus(ctx, models.StatusPending, models.StatusConfirmed)
	require.NoError(t, err)
	ids := []string{}
	for _, r := range open {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"p", "c"}, ids)
}

func testRescheduleLogs(t *testing.T, s reservationStore) {
	ctx := context.Background()
	require.NoError(t, s.AppendRescheduleLog(ctx, &models.RescheduleLog{
		ID: "l1", ReservationID: "a", OldDate: "2030-05-10", OldStartHour: 14,
		NewDate: "2030-05-11", NewStartHour: 9, RescheduledAt: base,
	}))
	require.NoError(t, s.AppendRescheduleLog(ctx, &models.RescheduleLog{
		ID: "l2", ReservationID: "b", OldDate: "2030-05-10", OldStartHour: 10,
		NewDate: "2030-05-10", NewStartHour: 11, RescheduledAt: base,
	}))

	logs, err := s.ListRescheduleLogs(ctx, "a")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "l1", logs[0].ID)
	assert.Equal(t, 9, logs[0].NewStartHour)

	none, err := s.ListRescheduleLogs(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := repository.OpenBoltReservationRepo(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, sample("a", "1", "2030-05-10", 10, "Budi", 0)))
	require.NoError(t, s.Close())

	s, err = repository.OpenBoltReservationRepo(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.HolderName)
}

func TestStaticFieldRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewStaticFieldRepo(repository.DefaultFields())

	fields, err := repo.ListResources(ctx)
	require.NoError(t, err)
	assert.Len(t, fields, 4)

	futsal, err := repo.GetResource(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(150000), futsal.HourlyPrice)

	_, err = repo.GetResource(ctx, "99")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
