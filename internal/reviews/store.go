package reviews

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"manaklaltailor.in/web/internal/kv"
)

// Store persists a Collection as a single value under one key.
//
// Every operation re-reads the persisted value, so there is no cached copy to
// invalidate. There is no locking: two writers that interleave load and save
// silently overwrite each other and the last Save wins.
type Store struct {
	kv     kv.Store
	key    string
	logger *zap.Logger
}

// NewStore binds a store to backend under key. An empty key selects DefaultKey.
func NewStore(backend kv.Store, key string, logger *zap.Logger) *Store {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: backend, key: key, logger: logger}
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load returns the persisted collection. An absent key, an unreadable
// backend, or a corrupt payload all yield an empty collection.
func (s *Store) Load(ctx context.Context) Collection {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("reviews: load failed, treating as empty", zap.String("key", s.key), zap.Error(err))
		return Collection{}
	}
	if !ok {
		return Collection{}
	}
	c, report := Decode(raw)
	switch {
	case report.Malformed:
		s.logger.Warn("reviews: discarding malformed payload", zap.String("key", s.key), zap.Int("bytes", len(raw)))
	case report.Dropped > 0:
		s.logger.Warn("reviews: dropped invalid records",
			zap.String("key", s.key),
			zap.Int("dropped", report.Dropped),
			zap.Int("kept", len(c)),
		)
	}
	return c
}

// Save replaces the persisted value with c.
func (s *Store) Save(ctx context.Context, c Collection) error {
	payload, err := Encode(c)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Append loads the collection, pushes r to the end and saves the result.
// r receives the next sequence number, and its time is raised to the last
// record's time when the clock went backwards.
func (s *Store) Append(ctx context.Context, r Record) (Collection, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: record fails collection invariants", ErrInvalidSubmission)
	}
	c := s.Load(ctx)
	if last, ok := c.Last(); ok && r.Time < last.Time {
		r.Time = last.Time
	}
	r.Seq = c.maxSeq() + 1
	c = append(c, r)
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear removes the persisted value. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
