// Package storage persists notification records and their audit trails in
// BoltDB. The store supplies the transactional boundary the state machine
// relies on: a transition's read-validate-write runs inside one Update
// transaction, so concurrent transitions on the same record serialize.
package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/jsenecal/netbox-notices/internal/notification"
)

var (
	bucketNotifications = []byte("notifications")
	bucketAudit         = []byte("audit")
)

// ErrNotFound is returned when a record ID has no stored notification
var ErrNotFound = errors.New("notification not found")

// BoltStore implements notification.Store using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the database at path
func NewBoltStore(path string) (*BoltStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketNotifications, bucketAudit} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Create stores a new record; the ID must not already exist
func (s *BoltStore) Create(ctx context.Context, rec *notification.Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketNotifications)
		if bucket.Get([]byte(rec.ID)) != nil {
			return fmt.Errorf("notification %s already exists", rec.ID)
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		if err := bucket.Put([]byte(rec.ID), data); err != nil {
			return fmt.Errorf("failed to store notification: %w", err)
		}
		return nil
	})
}

// Get retrieves a record by ID
func (s *BoltStore) Get(ctx context.Context, id string) (*notification.Record, error) {
	var rec *notification.Record

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNotifications).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		rec = &notification.Record{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies fn to the stored record inside one write transaction. When
// fn returns an audit entry it is appended to the record's trail in the
// same transaction; when fn returns an error nothing is written.
func (s *BoltStore) Update(ctx context.Context, id string, fn func(*notification.Record) (*notification.AuditEntry, error)) (*notification.Record, error) {
	var rec *notification.Record

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketNotifications)
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}

		rec = &notification.Record{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("failed to unmarshal notification: %w", err)
		}

		entry, err := fn(rec)
		if err != nil {
			rec = nil
			return err
		}

		updated, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal notification: %w", err)
		}
		if err := bucket.Put([]byte(id), updated); err != nil {
			return fmt.Errorf("failed to update notification: %w", err)
		}

		if entry != nil {
			if err := appendAudit(tx, id, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Audit returns the record's audit entries in append order
func (s *BoltStore) Audit(ctx context.Context, id string) ([]notification.AuditEntry, error) {
	var entries []notification.AuditEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		trail := tx.Bucket(bucketAudit).Bucket([]byte(id))
		if trail == nil {
			return nil
		}

		c := trail.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var entry notification.AuditEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListFilter represents filter options for listing notifications
type ListFilter struct {
	Status notification.Status
	Limit  int
	Offset int
}

// List returns notifications with optional filtering
func (s *BoltStore) List(ctx context.Context, filter ListFilter) ([]*notification.Record, error) {
	var records []*notification.Record

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketNotifications).Cursor()

		count := 0
		skipped := 0

		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec notification.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}

			if filter.Status != "" && rec.Status != filter.Status {
				continue
			}

			if skipped < filter.Offset {
				skipped++
				continue
			}

			records = append(records, &rec)
			count++

			if filter.Limit > 0 && count >= filter.Limit {
				break
			}
		}
		return nil
	})

	return records, err
}

// Delete removes a record and its audit trail
func (s *BoltStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		audit := tx.Bucket(bucketAudit)
		if audit.Bucket([]byte(id)) != nil {
			if err := audit.DeleteBucket([]byte(id)); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketNotifications).Delete([]byte(id))
	})
}

// Close closes the database connection
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying bolt.DB instance
func (s *BoltStore) DB() *bolt.DB {
	return s.db
}

// appendAudit writes entry under the record's per-ID audit bucket. Keys are
// the bucket's monotonically increasing sequence number, so iteration order
// is append order and entries are never overwritten.
func appendAudit(tx *bolt.Tx, id string, entry *notification.AuditEntry) error {
	trail, err := tx.Bucket(bucketAudit).CreateBucketIfNotExists([]byte(id))
	if err != nil {
		return fmt.Errorf("failed to create audit bucket: %w", err)
	}

	seq, err := trail.NextSequence()
	if err != nil {
		return fmt.Errorf("failed to allocate audit sequence: %w", err)
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if err := trail.Put(key, data); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
