package exercise

import (
	"context"
	"sync"
	"time"

	"lingocode_backend/internal/util"
)

type memoryEntry struct {
	snap    Snapshot
	running bool
	touched time.Time
}

// MemoryStore 进程内状态存储，重启后状态丢失
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) entry(key Key) *memoryEntry {
	e, ok := s.entries[key]
	if !ok {
		e = &memoryEntry{snap: Snapshot{State: StateIdle}}
		s.entries[key] = e
	}
	e.touched = s.now()
	return e
}

func (s *MemoryStore) Begin(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(key)
	if e.running {
		return util.ErrRunInProgress
	}
	e.running = true
	e.snap.State = StateRunning
	return nil
}

func (s *MemoryStore) Finish(_ context.Context, key Key, correct bool) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(key)
	first := correct && !e.snap.Completed
	if correct {
		e.snap.Completed = true
	}
	out := Outcome{Snapshot: e.snap, FirstCompletion: first}
	out.State = settle(e.snap.Completed)
	return out, nil
}

func (s *MemoryStore) Release(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(key)
	if !e.running {
		return nil
	}
	e.running = false
	e.snap.State = settle(e.snap.Completed)
	return nil
}

func (s *MemoryStore) MarkPersisted(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(key).snap.Persisted = true
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key Key) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Snapshot{State: StateIdle}, nil
	}
	return e.snap, nil
}

// Prune 清理超过 maxIdle 未访问且不在运行中的实例，返回清理数量
func (s *MemoryStore) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for key, e := range s.entries {
		if e.running || e.touched.After(cutoff) {
			continue
		}
		delete(s.entries, key)
		removed++
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
