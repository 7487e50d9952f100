package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/nachoal/parts-agent-go/internal/metrics"
)

var sessionKeyPrefix = []byte("session/")

// BadgerStore persists sessions in an embedded badger database so
// conversations survive restarts. Entries carry a TTL of the idle timeout
// and the sweeper removes anything badger has not expired yet.
type BadgerStore struct {
	db   *badger.DB
	opts options

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// OpenBadgerStore opens (or creates) a store at path. An empty path opens an
// in-memory database.
func OpenBadgerStore(path string, opts ...Option) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger session store: %w", err)
	}
	return NewBadgerStore(db, opts...), nil
}

// NewBadgerStore wraps an open database. The store owns db and closes it on Close.
func NewBadgerStore(db *badger.DB, opts ...Option) *BadgerStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &BadgerStore{
		db:     db,
		opts:   o,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go runSweeper(ctx, b, o, b.done)
	return b
}

func sessionKey(id string) []byte {
	return append(append([]byte{}, sessionKeyPrefix...), id...)
}

// Get loads a session
func (b *BadgerStore) Get(_ context.Context, id string) (*Session, error) {
	var s Session
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get session key: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save writes the session with a TTL of the idle timeout
func (b *BadgerStore) Save(_ context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(sessionKey(s.ID), raw).WithTTL(b.opts.timeout))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	b.reportActive()
	return nil
}

// Delete removes a session
func (b *BadgerStore) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	b.reportActive()
	return nil
}

// Sweep removes sessions idle for longer than the timeout as of now
func (b *BadgerStore) Sweep(_ context.Context, now time.Time) (int, error) {
	var stale [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: sessionKeyPrefix, PrefetchValues: true, PrefetchSize: 64})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var s Session
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &s) }); err != nil {
				// undecodable entries are dropped too
				stale = append(stale, item.KeyCopy(nil))
				continue
			}
			if expired(&s, now, b.opts.timeout) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("evict sessions: %w", err)
	}

	metrics.RecordEvictions(len(stale))
	b.reportActive()
	return len(stale), nil
}

// Len counts live sessions
func (b *BadgerStore) Len(_ context.Context) (int, error) {
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: sessionKeyPrefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (b *BadgerStore) reportActive() {
	if n, err := b.Len(context.Background()); err == nil {
		metrics.SetActiveSessions(n)
	}
}

// Close stops the sweeper and closes the database
func (b *BadgerStore) Close() error {
	var err error
	b.once.Do(func() {
		b.cancel()
		<-b.done
		err = b.db.Close()
	})
	return err
}
