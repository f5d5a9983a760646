package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"

	"github.com/iudanet/jobtrail/internal/client/storage"
	"github.com/iudanet/jobtrail/internal/models"
)

var (
	// BoltDB bucket names
	bucketQueue       = []byte("sync_queue")
	bucketQueueEntity = []byte("sync_queue_by_entity")
	bucketConflicts   = []byte("conflict_log")
	bucketGeocode     = []byte("geocode_cache")
	bucketMetadata    = []byte("metadata")
)

// defaultOpenTimeout ограничивает ожидание file lock, если базу держит другой процесс
const defaultOpenTimeout = 2 * time.Second

// Storage represents BoltDB storage implementation for client.
// It implements the Local Store, the Sync Queue, the conflict log,
// the geocode cache and client metadata.
type Storage struct {
	db  *bbolt.DB
	now func() time.Time
}

// Option configures Storage
type Option func(*Storage)

// WithClock overrides the clock used for queue timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string, opts ...Option) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: defaultOpenTimeout})
	if err != nil {
		if errors.Is(err, bolterrors.ErrTimeout) {
			return nil, fmt.Errorf("%w: database %s is locked by another process", storage.ErrStorageUnavailable, dbPath)
		}
		return nil, fmt.Errorf("%w: failed to open boltdb: %v", storage.ErrStorageUnavailable, err)
	}

	s := &Storage{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// collectionBuckets returns every bucket created on open
func collectionBuckets() [][]byte {
	buckets := [][]byte{
		bucketQueue,
		bucketQueueEntity,
		bucketConflicts,
		bucketGeocode,
		bucketMetadata,
	}
	for _, c := range models.EntityCollections() {
		buckets = append(buckets, []byte(c))
	}
	return buckets
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range collectionBuckets() {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// view runs fn in a read-only transaction
func (s *Storage) view(fn func(tx *bbolt.Tx) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return mapBoltError(s.db.View(fn))
}

// update runs fn in a read-write transaction
func (s *Storage) update(fn func(tx *bbolt.Tx) error) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return mapBoltError(s.db.Update(fn))
}

// bucket returns the named bucket or ErrStorageUnavailable if it was never created
func bucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("%w: collection %q is not initialized", storage.ErrStorageUnavailable, name)
	}
	return b, nil
}

func mapBoltError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, bolterrors.ErrDatabaseNotOpen) || errors.Is(err, bolterrors.ErrDatabaseReadOnly) {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return err
}

// copyBytes копирует значение из bbolt: память валидна только внутри транзакции
func copyBytes(v []byte) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
