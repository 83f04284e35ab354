package audit

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage implements Storage in process memory. It is intended for
// tests and ephemeral deployments; records are lost on restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*Record
	closed  bool
}

// NewMemoryStorage creates an empty in-memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists a record.
func (s *MemoryStorage) Store(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return newStorageError("memory", "store", errClosed)
	}
	cp := *record
	s.records = append(s.records, &cp)
	return nil
}

// Query returns records matching the filters, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *Query) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, newStorageError("memory", "query", errClosed)
	}

	matched := []*Record{}
	for _, record := range s.records {
		if matches(record, query) {
			cp := *record
			matched = append(matched, &cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RecordedAt.After(matched[j].RecordedAt)
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*Record{}, nil
		}
		matched = matched[query.Offset:]
	}
	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, newStorageError("memory", "count", errClosed)
	}

	var count int64
	for _, record := range s.records {
		if matches(record, query) {
			count++
		}
	}
	return count, nil
}

// Delete removes matching records and reports how many.
func (s *MemoryStorage) Delete(ctx context.Context, query *Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, newStorageError("memory", "delete", errClosed)
	}

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if matches(record, query) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return deleted, nil
}

// Close marks the backend closed.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func matches(record *Record, query *Query) bool {
	if query.StartTime != nil && record.RecordedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.RecordedAt.After(*query.EndTime) {
		return false
	}
	if query.Mode != "" && record.Mode != query.Mode {
		return false
	}
	if query.State != "" && record.State != query.State {
		return false
	}
	if query.Caller != "" && record.Caller != query.Caller {
		return false
	}
	return true
}
