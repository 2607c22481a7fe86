// Package source holds the current snapshot of every collection and tells
// subscribers when it changes. Readers never learn whether a change was pushed
// by a write or pulled by a periodic reload.
package source

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamenight-tracker/internal/domain"
)

// DataSource exposes the current snapshot and change notifications
type DataSource interface {
	Current() domain.Snapshot
	Subscribe(fn func(domain.Snapshot)) (unsubscribe func())
}

type subscriber struct {
	id int
	fn func(domain.Snapshot)
}

// Store is an in-memory DataSource
type Store struct {
	mu      sync.RWMutex
	current domain.Snapshot

	subMu  sync.Mutex
	subs   []subscriber
	nextID int

	epoch  string
	logger *slog.Logger
}

// NewStore creates an empty store at version 0 with a fresh epoch
func NewStore(logger *slog.Logger) *Store {
	epoch := uuid.NewString()
	return &Store{
		current: domain.Snapshot{Epoch: epoch},
		epoch:   epoch,
		logger:  logger,
	}
}

// Epoch returns the identifier stamped on every snapshot this store publishes
func (s *Store) Epoch() string {
	return s.epoch
}

// Current returns the latest published snapshot
func (s *Store) Current() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Publish replaces the snapshot, assigns it the next version and notifies every
// subscriber in subscription order. It returns the stored snapshot.
func (s *Store) Publish(snapshot domain.Snapshot) domain.Snapshot {
	s.mu.Lock()
	snapshot.Version = s.current.Version + 1
	snapshot.Epoch = s.epoch
	if snapshot.LoadedAt.IsZero() {
		snapshot.LoadedAt = time.Now()
	}
	s.current = snapshot
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	s.logger.Debug("snapshot published",
		"version", snapshot.Version,
		"epoch", snapshot.Epoch,
		"subscribers", len(subs),
	)

	for _, sub := range subs {
		sub.fn(snapshot)
	}
	return snapshot
}

// Subscribe registers fn to run after every publish. The returned function
// removes the registration and is safe to call more than once.
func (s *Store) Subscribe(fn func(domain.Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}
