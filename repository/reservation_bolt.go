package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"

	"field-booking/models"
)

const (
	reservationsBucket   = "reservations"
	reservationIDsBucket = "reservation_ids"
	rescheduleLogsBucket = "reschedule_logs"
)

// BoltReservationRepo stores reservations in a single BoltDB file.
//
// Reservations live in a bucket keyed by a big-endian sequence number so a
// cursor walks them in insertion order; a second bucket maps id -> sequence.
type BoltReservationRepo struct {
	db *bolt.DB
}

// OpenBoltReservationRepo opens (or creates) the database file at path and
// ensures the buckets exist.
func OpenBoltReservationRepo(path string) (*BoltReservationRepo, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{reservationsBucket, reservationIDsBucket, rescheduleLogsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltReservationRepo{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltReservationRepo) Close() error {
	return s.db.Close()
}

func seqKey(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func (s *BoltReservationRepo) Create(ctx context.Context, r *models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket([]byte(reservationIDsBucket))
		if ids.Get([]byte(r.ID)) != nil {
			return ErrDuplicate
		}

		b := tx.Bucket([]byte(reservationsBucket))
		n, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		key := seqKey(n)
		if err := b.Put(key, data); err != nil {
			return err
		}
		return ids.Put([]byte(r.ID), key)
	})
}

func (s *BoltReservationRepo) Get(ctx context.Context, id string) (*models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var r models.Reservation
	err := s.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket([]byte(reservationIDsBucket)).Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}
		v := tx.Bucket([]byte(reservationsBucket)).Get(key)
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *BoltReservationRepo) Update(ctx context.Context, r *models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		key := tx.Bucket([]byte(reservationIDsBucket)).Get([]byte(r.ID))
		if key == nil {
			return ErrNotFound
		}
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(reservationsBucket)).Put(key, data)
	})
}

// scan walks every reservation in insertion order.
func (s *BoltReservationRepo) scan(fn func(r *models.Reservation)) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(reservationsBucket)).ForEach(func(k, v []byte) error {
			var r models.Reservation
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			fn(&r)
			return nil
		})
	})
}

func (s *BoltReservationRepo) ListByResourceDate(ctx context.Context, resourceID, date string) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []models.Reservation{}
	err := s.scan(func(r *models.Reservation) {
		if r.ResourceID == resourceID && r.Date == date {
			out = append(out, *r)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns matching reservations, newest first.
func (s *BoltReservationRepo) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []models.Reservation
	err := s.scan(func(r *models.Reservation) {
		if f.match(r) {
			items = append(items, *r)
		}
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.Reservation, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	return out, nil
}

func (s *BoltReservationRepo) ListByStatus(ctx context.Context, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []models.Reservation{}
	err := s.scan(func(r *models.Reservation) {
		if hasStatus(r, statuses) {
			out = append(out, *r)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltReservationRepo) AppendRescheduleLog(ctx context.Context, l *models.RescheduleLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(rescheduleLogsBucket))
		n, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(l)
		if err != nil {
			return err
		}
		return b.Put(seqKey(n), data)
	})
}

func (s *BoltReservationRepo) ListRescheduleLogs(ctx context.Context, reservationID string) ([]models.RescheduleLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []models.RescheduleLog{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(rescheduleLogsBucket)).ForEach(func(k, v []byte) error {
			var l models.RescheduleLog
			if err := json.Unmarshal(v, &l); err != nil {
				return err
			}
			if l.ReservationID == reservationID {
				out = append(out, l)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
