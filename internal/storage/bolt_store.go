package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	historyBucket = []byte("history")

	errNoBucket = errors.New("history bucket missing")
)

// boltStore keeps one JSON Record per request id in a single bucket.
type boltStore struct {
	db    *bolt.DB
	ttl   time.Duration
	every time.Duration
	now   func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history bucket: %w", err)
	}

	return &boltStore{
		db:        db,
		ttl:       opts.RecordTTL,
		every:     opts.CleanupInterval,
		now:       time.Now,
		lastSweep: time.Now(),
	}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Swap reads the previous record and writes rec in one transaction, so two
// runs sharing a database never lose a streak increment.
func (b *boltStore) Swap(id string, rec Record) (Record, Record, bool, error) {
	if b == nil || b.db == nil {
		return advance(rec, Record{}, false), Record{}, false, nil
	}

	now := b.now()
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = now.UTC()
	}
	rec.ExpiresAt = now.Add(b.ttl).UTC()

	var (
		prev  Record
		found bool
	)
	sweep := b.sweepDue(now)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(historyBucket)
		if bucket == nil {
			return errNoBucket
		}
		if sweep {
			if err := sweepExpired(bucket, now); err != nil {
				return fmt.Errorf("sweep expired history: %w", err)
			}
		}

		key := []byte(id)
		prev, found = decodeLive(bucket.Get(key), now)
		rec = advance(rec, prev, found)

		value, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		return bucket.Put(key, value)
	})
	if err != nil {
		return Record{}, Record{}, false, err
	}
	if sweep {
		b.markSwept(now)
	}
	return rec, prev, found, nil
}

func (b *boltStore) sweepDue(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastSweep) >= b.every
}

func (b *boltStore) markSwept(now time.Time) {
	b.mu.Lock()
	b.lastSweep = now
	b.mu.Unlock()
}

// sweepExpired deletes every record that is expired or unreadable.
func sweepExpired(bucket *bolt.Bucket, now time.Time) error {
	c := bucket.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if _, ok := decodeLive(v, now); !ok {
			if err := c.Delete(); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeLive decodes value and reports whether it is a readable, unexpired record.
func decodeLive(value []byte, now time.Time) (Record, bool) {
	if value == nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(value, &rec); err != nil || !rec.ExpiresAt.After(now) {
		return Record{}, false
	}
	return rec, true
}

func (b *boltStore) count() (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(historyBucket)
		if bucket == nil {
			return errNoBucket
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}
