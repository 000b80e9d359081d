// Package journal keeps an append-only audit trail of inspection
// lifecycle transitions in a local badger store.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/safetrack/safetrack/engine"
)

const keyPrefix = "transition:"

// Journal records every lifecycle transition. It implements
// engine.Auditor; entries are best-effort and a write failure never
// affects the transition that produced it.
type Journal struct {
	db  *badger.DB
	seq *badger.Sequence
}

// Open opens or creates the journal at the given path.
func Open(path string) (*Journal, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	seq, err := db.GetSequence([]byte("transition-seq"), 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening journal sequence: %w", err)
	}
	return &Journal{db: db, seq: seq}, nil
}

// Close releases the sequence and the underlying store.
func (j *Journal) Close() error {
	if err := j.seq.Release(); err != nil {
		j.db.Close()
		return err
	}
	return j.db.Close()
}

// RecordTransition appends one transition event.
func (j *Journal) RecordTransition(event engine.TransitionEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding transition: %w", err)
	}
	seq, err := j.seq.Next()
	if err != nil {
		return fmt.Errorf("allocating sequence: %w", err)
	}
	key := []byte(fmt.Sprintf("%s%s:%020d", keyPrefix, event.InspectionID, seq))

	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// List returns the recorded transitions of one inspection in append
// order.
func (j *Journal) List(inspectionID string) ([]engine.TransitionEvent, error) {
	prefix := []byte(keyPrefix + inspectionID + ":")
	var events []engine.TransitionEvent

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var event engine.TransitionEvent
				if err := json.Unmarshal(val, &event); err != nil {
					return err
				}
				events = append(events, event)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, err
	}
	return events, nil
}
