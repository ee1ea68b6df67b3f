package store

import (
	"analytics-api-go/logcolors"
	"analytics-api-go/utils"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	resultsBucketName  = "results"
	queueBucketName    = "queue"
	countersBucketName = "counters"
)

// Store is the shared BoltDB-backed state for the pipeline: the result cache,
// the pending work queue and the pipeline counters. It is the sole source of
// truth and survives restarts of both the request path and the worker.
type Store struct {
	db                 *bolt.DB
	dbPath             string
	compressionEnabled bool
}

// resultEntry is a cached analysis value with its expiry deadline.
type resultEntry struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// NewStore opens (or creates) the store database and its buckets.
func NewStore(dbPath string, compressionEnabled bool) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %v", err)
	}

	if info, err := os.Stat(dbPath); err == nil {
		log.Infof("%s Found existing database file at: %s (size: %d bytes)", logcolors.LogStoreInit, dbPath, info.Size())
	} else {
		log.Infof("%s Creating new database file at: %s", logcolors.LogStoreInit, dbPath)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{resultsBucketName, queueBucketName, countersBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create store buckets: %v", err)
	}

	log.Infof("%s Store initialized at %s (compression: %v)", logcolors.LogStore, dbPath, compressionEnabled)
	return &Store{
		db:                 db,
		dbPath:             dbPath,
		compressionEnabled: compressionEnabled,
	}, nil
}

// GetResult retrieves a cached result. Expired entries behave as a miss and
// are deleted lazily.
func (s *Store) GetResult(key string) (string, bool) {
	var entry resultEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucketName))
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("key not found")
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return "", false
	}

	if entry.ExpiresAt > 0 && time.Now().UnixNano() > entry.ExpiresAt {
		if err := s.DeleteResult(key); err != nil {
			log.Warnf("%s Failed to delete expired key %s: %v", logcolors.LogStore, key, err)
		}
		return "", false
	}

	if s.compressionEnabled {
		decompressed, err := utils.DecompressString(entry.Value)
		if err != nil {
			log.Errorf("%s Error decompressing value for key %s: %v", logcolors.LogStore, key, err)
			return "", false
		}
		return decompressed, true
	}

	return entry.Value, true
}

// SetResult stores a result with a TTL, overwriting any previous value for the
// key. Once it returns, every subsequent GetResult observes the new value
// until expiry.
func (s *Store) SetResult(key, value string, ttl time.Duration) error {
	finalValue := value
	if s.compressionEnabled {
		compressed, err := utils.CompressString(value)
		if err != nil {
			return fmt.Errorf("failed to compress value for key %s: %v", key, err)
		}
		finalValue = compressed
	}

	entry := resultEntry{
		Value:     finalValue,
		ExpiresAt: time.Now().Add(ttl).UnixNano(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucketName))
		return b.Put([]byte(key), data)
	})
}

// DeleteResult removes a key from the result cache.
func (s *Store) DeleteResult(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucketName))
		return b.Delete([]byte(key))
	})
}

// ResultStats returns the number of cached results and their size in KB.
func (s *Store) ResultStats() (numKeys int, sizeInKB int) {
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucketName))
		return b.ForEach(func(k, v []byte) error {
			numKeys++
			sizeInKB += len(k) + len(v)
			return nil
		})
	})
	sizeInKB = sizeInKB / 1024
	return
}

// PushQueue appends an item to the tail of the work queue.
func (s *Store) PushQueue(item []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(queueBucketName))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, item)
	})
}

// PopQueue removes and returns the oldest queue item. The read and the delete
// happen in one write transaction, so each item is handed to exactly one
// caller. Returns ok=false when the queue is empty.
func (s *Store) PopQueue() (item []byte, ok bool, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(queueBucketName))
		c := b.Cursor()
		k, v := c.First()
		if k == nil {
			return nil
		}
		item = append([]byte(nil), v...)
		ok = true
		return b.Delete(k)
	})
	if err != nil {
		return nil, false, err
	}
	return item, ok, nil
}

// QueueLength returns the current number of pending queue items.
func (s *Store) QueueLength() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(queueBucketName))
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// IncrCounter atomically adds delta to a named counter.
func (s *Store) IncrCounter(name string, delta int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(countersBucketName))
		current := int64(0)
		if data := b.Get([]byte(name)); data != nil {
			parsed, err := strconv.ParseInt(string(data), 10, 64)
			if err != nil {
				log.Warnf("%s Resetting unparseable counter %s: %v", logcolors.LogCounters, name, err)
			} else {
				current = parsed
			}
		}
		return b.Put([]byte(name), []byte(strconv.FormatInt(current+delta, 10)))
	})
}

// Counter returns the current value of a named counter (zero if unset).
func (s *Store) Counter(name string) (int64, error) {
	var value int64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(countersBucketName))
		data := b.Get([]byte(name))
		if data == nil {
			return nil
		}
		parsed, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("unparseable counter %s: %v", name, err)
		}
		value = parsed
		return nil
	})
	return value, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
