// Package buffer keeps admin product writes on local disk while Postgres is
// unreachable.
package buffer

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/storefront/domain"
)

var (
	queueBucket = []byte("pending_products")
	indexBucket = []byte("pending_fingerprints")
)

// Store is a FIFO of pending product writes. Queue keys are bucket sequence
// numbers; the index maps each fingerprint to its queue key.
type Store struct {
	db *bolt.DB
}

// Open creates the Bolt file and its buckets if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{queueBucket, indexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Add queues p behind every other pending write. A fingerprint that is
// already queued yields ErrAlreadyPending.
func (s *Store) Add(p Pending) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if p.Product.ID == "" {
		return domain.ErrInvalidPayload
	}
	p.normalize()

	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(indexBucket)
		fingerprint := []byte(p.Fingerprint())
		if index.Get(fingerprint) != nil {
			return ErrAlreadyPending
		}
		return put(tx, index, fingerprint, p)
	})
}

// Peek returns up to limit writes, oldest first, without removing them.
func (s *Store) Peek(limit int) ([]Pending, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var out []Pending
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(queueBucket).Cursor()
		for k, v := c.First(); k != nil && len(out) < limit; k, v = c.Next() {
			var p Pending
			if err := json.Unmarshal(v, &p); err != nil {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// Remove drops the queued write for p's product. Unknown products are ignored.
func (s *Store) Remove(p Pending) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := unlink(tx, []byte(p.Fingerprint()), p.Product.ID)
		return err
	})
}

// Retry moves p to the back of the queue with its attempt count as given.
func (s *Store) Retry(p Pending) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	p.normalize()
	return s.db.Update(func(tx *bolt.Tx) error {
		fingerprint := []byte(p.Fingerprint())
		found, err := unlink(tx, fingerprint, p.Product.ID)
		if err != nil || !found {
			return err
		}
		return put(tx, tx.Bucket(indexBucket), fingerprint, p)
	})
}

// Size returns the number of queued writes.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(queueBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup discards writes first queued before olderThan.
func (s *Store) Cleanup(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		queue := tx.Bucket(queueBucket)
		index := tx.Bucket(indexBucket)

		var keys, fingerprints [][]byte
		c := queue.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var p Pending
			if err := json.Unmarshal(v, &p); err != nil {
				keys = append(keys, append([]byte(nil), k...))
				continue
			}
			if p.QueuedAt.Before(olderThan) {
				keys = append(keys, append([]byte(nil), k...))
				fingerprints = append(fingerprints, []byte(p.Fingerprint()))
			}
		}
		for _, k := range keys {
			if err := queue.Delete(k); err != nil {
				return err
			}
		}
		for _, f := range fingerprints {
			if err := index.Delete(f); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func put(tx *bolt.Tx, index *bolt.Bucket, fingerprint []byte, p Pending) error {
	queue := tx.Bucket(queueBucket)
	seq, err := queue.NextSequence()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	key := itob(seq)
	if err := queue.Put(key, payload); err != nil {
		return err
	}
	return index.Put(fingerprint, key)
}

// unlink deletes the queue entry behind fingerprint when it belongs to
// productID.
func unlink(tx *bolt.Tx, fingerprint []byte, productID string) (bool, error) {
	index := tx.Bucket(indexBucket)
	queue := tx.Bucket(queueBucket)
	key := index.Get(fingerprint)
	if key == nil {
		return false, nil
	}
	var stored Pending
	if err := json.Unmarshal(queue.Get(key), &stored); err == nil && stored.Product.ID != productID {
		return false, nil
	}
	key = append([]byte(nil), key...)
	if err := queue.Delete(key); err != nil {
		return false, err
	}
	return true, index.Delete(fingerprint)
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
