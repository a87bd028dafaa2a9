package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
)

// MemoryStore keeps history in process memory. It is used when no database
// is configured; entries are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.Entry
	closed  bool
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Append(ctx context.Context, entry model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreUnavailable
	}
	s.entries = append(s.entries, normalize(entry, s.now))
	return nil
}

func (s *MemoryStore) ListByUsername(ctx context.Context, username string) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreUnavailable
	}

	out := []model.Entry{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Username == username {
			out = append(out, s.entries[i])
		}
	}
	// Ties keep reverse insertion order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreUnavailable
	}

	kept := s.entries[:0]
	var removed int64
	for _, e := range s.entries {
		if e.CreatedAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed, nil
}

func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
}

// normalize fills the defaults every store applies before writing.
func normalize(entry model.Entry, now func() time.Time) model.Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Username == "" {
		entry.Username = model.DefaultUsername
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now().UTC()
	}
	return entry
}
