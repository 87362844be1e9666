package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/freema/coauthor/internal/roster"
)

var rosterBucket = []byte("roster")

// BoltStore persists the roster in a bbolt database under a single fixed key.
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a roster store backed by an open bbolt database.
func NewBoltStore(db *bbolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

// Load reads the persisted roster. An absent slot yields an empty roster.
func (s *BoltStore) Load(ctx context.Context) ([]roster.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []roster.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(rosterBucket)
		if bucket == nil {
			return nil
		}
		val := bucket.Get([]byte(roster.SlotKey))
		if val == nil {
			return nil
		}
		return json.Unmarshal(val, &entries)
	})
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	return entries, nil
}

// Save writes the full roster to the slot, replacing any previous value.
func (s *BoltStore) Save(ctx context.Context, entries []roster.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entries == nil {
		entries = []roster.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling roster: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(rosterBucket)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(roster.SlotKey), data)
	})
	if err != nil {
		return fmt.Errorf("saving roster: %w", err)
	}
	return nil
}

var _ Store = (*BoltStore)(nil)
