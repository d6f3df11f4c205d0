// Package badgerstore implements plan.StorageAgent on top of badger, the
// default checkpoint store for operator instances.
package badgerstore

import (
	"bytes"
	"encoding/gob"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tarungka/flowplan/internal/logger"
)

var ErrStoreNotOpen = errors.New("badgerstore: store not open")

// Config controls where the store keeps its data. An empty Dir opens an
// in-memory database, useful for tests and for operators with no durable
// checkpoint requirement.
type Config struct {
	Dir string
}

// Store is a plan.StorageAgent backed by a single badger database. One
// Store is normally shared by every operator in a plan; keys are
// namespaced by the caller (operator name / checkpoint id).
type Store struct {
	open atomic.Bool

	dbPath string
	logger zerolog.Logger

	db *badger.DB
	mu sync.RWMutex
}

// New creates a Store. Call Open before using it.
func New(c *Config) *Store {
	l := logger.GetLogger("badgerstore")
	return &Store{dbPath: c.Dir, logger: l}
}

// Open opens the underlying badger database, creating it on disk at Dir,
// or in memory if Dir is empty.
func (s *Store) Open() error {
	var opts badger.Options
	if s.dbPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(s.dbPath)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
	s.open.Store(true)
	s.logger.Debug().Str("dir", s.dbPath).Msg("opened checkpoint store")
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open.Load() {
		return nil
	}
	s.open.Store(false)
	return s.db.Close()
}

// Store implements plan.StorageAgent: it gob-encodes operatorInstance and
// writes it under key.
func (s *Store) Store(key string, operatorInstance any) error {
	if !s.open.Load() {
		return ErrStoreNotOpen
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(operatorInstance); err != nil {
		s.logger.Err(err).Str("key", key).Msg("failed to encode checkpoint")
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf.Bytes())
	})
}

// Retrieve implements plan.StorageAgent: it reads the bytes under key and
// gob-decodes them into template, which must be a pointer.
func (s *Store) Retrieve(key string, template any) error {
	if !s.open.Load() {
		return ErrStoreNotOpen
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(template)
		})
	})
}

// Delete removes the checkpoint stored under key.
func (s *Store) Delete(key string) error {
	if !s.open.Load() {
		return ErrStoreNotOpen
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
