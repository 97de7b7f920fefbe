package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	BucketRuns = "runs"
)

// RunRecord is the per-run summary kept in the history database.
type RunRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Target    string    `json:"target"`
	Engine    string    `json:"engine"`

	// Best sequential result per direction, two-decimal MB/s.
	ReadMBps  string `json:"read_mbps"`
	WriteMBps string `json:"write_mbps"`
}

// Store keeps the run history in a bbolt database.
type Store struct {
	db *bbolt.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores one run record keyed by timestamp+ID so listing in key
// order is chronological.
func (s *Store) Save(rec RunRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))

		key := []byte(rec.Timestamp.UTC().Format(time.RFC3339Nano) + "/" + rec.ID)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put(key, data)
	})
}

// List returns past runs, newest first.
func (s *Store) List() []RunRecord {
	var recs []RunRecord

	s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		c := b.Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err == nil {
				recs = append(recs, rec)
			}
		}
		return nil
	})

	return recs
}

// Get looks a run up by its ID.
func (s *Store) Get(id string) (*RunRecord, error) {
	var found *RunRecord
	s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRuns))
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err == nil && rec.ID == id {
				found = &rec
				return nil
			}
		}
		return nil
	})
	if found == nil {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return found, nil
}
