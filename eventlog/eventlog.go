// Package eventlog implements plan.StatsRecorder on top of bbolt, keeping
// an append-only record of operator/container events for later replay.
package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/tarungka/flowplan/internal/logger"
	"github.com/tarungka/flowplan/plan"
)

var containersBucket = []byte("containers")

// bucketFor returns the bbolt bucket name for an operator event type: one
// bucket per tag, so ReplayOperatorsByType can filter by type without
// decoding every entry in the log.
func bucketFor(t plan.EventType) []byte { return []byte("operator:" + string(t)) }

// entry is the on-disk framing for one recorded event: an id, a wall-clock
// timestamp, a source tag ("operator" or "container"), and the JSON payload.
type entry struct {
	ID        uint64          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
}

// Log is a plan.StatsRecorder backed by a single bbolt database file.
type Log struct {
	mu sync.Mutex
	db *bbolt.DB
}

// Open opens or creates the event log at path, pre-creating one bucket per
// operator event type tag plus the container-stats bucket.
func Open(path string) (*Log, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, t := range plan.AllEventTypes {
			if _, err := tx.CreateBucketIfNotExists(bucketFor(t)); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucketIfNotExists(containersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	l := logger.GetLogger("eventlog")
	l.Debug().Str("path", path).Msg("opened event log")
	return &Log{db: db}, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

// RecordOperators implements plan.StatsRecorder.
func (l *Log) RecordOperators(events []plan.Event, timestamp int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Update(func(tx *bbolt.Tx) error {
		for _, ev := range events {
			b := tx.Bucket(bucketFor(ev.Header.Type))
			if b == nil {
				return fmt.Errorf("eventlog: no bucket for event type %q", ev.Header.Type)
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			e := entry{ID: uint64(ev.Header.ID), Timestamp: timestamp, Source: "operator", Payload: payload}
			if err := putEntry(b, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordContainers implements plan.StatsRecorder.
func (l *Log) RecordContainers(containers map[string]any, timestamp int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(containersBucket)
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		payload, err := json.Marshal(containers)
		if err != nil {
			return err
		}
		return putEntry(b, entry{ID: id, Timestamp: timestamp, Source: "container", Payload: payload})
	})
}

func putEntry(b *bbolt.Bucket, e entry) error {
	buf, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, e.ID)
	return b.Put(key, buf)
}

// ReplayOperators calls fn once for every recorded operator event, across
// every event-type bucket, in ascending id order within each bucket.
func (l *Log) ReplayOperators(fn func(ts int64, ev plan.Event) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.View(func(tx *bbolt.Tx) error {
		for _, t := range plan.AllEventTypes {
			b := tx.Bucket(bucketFor(t))
			if b == nil {
				continue
			}
			err := b.ForEach(func(_, v []byte) error {
				var e entry
				if err := json.Unmarshal(v, &e); err != nil {
					return fmt.Errorf("eventlog: decode entry: %w", err)
				}
				var ev plan.Event
				if err := json.Unmarshal(e.Payload, &ev); err != nil {
					return fmt.Errorf("eventlog: decode event payload: %w", err)
				}
				return fn(e.Timestamp, ev)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplayOperatorsByType calls fn once for every recorded event of the
// given type, in ascending id order.
func (l *Log) ReplayOperatorsByType(t plan.EventType, fn func(ts int64, ev plan.Event) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFor(t))
		if b == nil {
			return fmt.Errorf("eventlog: no bucket for event type %q", t)
		}
		return b.ForEach(func(_, v []byte) error {
			var e entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("eventlog: decode entry: %w", err)
			}
			var ev plan.Event
			if err := json.Unmarshal(e.Payload, &ev); err != nil {
				return fmt.Errorf("eventlog: decode event payload: %w", err)
			}
			return fn(e.Timestamp, ev)
		})
	})
}
