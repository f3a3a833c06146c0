package cache

import (
	"context"
	"sync"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/domain"
)

var _ domain.LocalStore = (*MemoryLocalStore)(nil)

// MemoryLocalStore backs the local-cache port when no redis is configured,
// and in tests. Contents live for the process lifetime only.
type MemoryLocalStore struct {
	mu        sync.RWMutex
	weeks     map[string][]domain.Category
	flags     map[string]bool
	profileID string
}

func NewMemoryLocalStore() *MemoryLocalStore {
	return &MemoryLocalStore{
		weeks: make(map[string][]domain.Category),
		flags: make(map[string]bool),
	}
}

func (s *MemoryLocalStore) GetWeek(ctx context.Context, weekStamp string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cats, ok := s.weeks[weekStamp]
	if !ok {
		return nil, domain.ErrLocalMiss
	}
	return cats, nil
}

func (s *MemoryLocalStore) PutWeek(ctx context.Context, weekStamp string, categories []domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weeks[weekStamp] = categories
	return nil
}

func (s *MemoryLocalStore) DeleteWeek(ctx context.Context, weekStamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.weeks, weekStamp)
	return nil
}

func (s *MemoryLocalStore) ListWeekStamps(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stamps := make([]string, 0, len(s.weeks))
	for stamp := range s.weeks {
		stamps = append(stamps, stamp)
	}
	return stamps, nil
}

func (s *MemoryLocalStore) GetFlag(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[name], nil
}

func (s *MemoryLocalStore) SetFlag(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[name] = true
	return nil
}

func (s *MemoryLocalStore) GetProfileID(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profileID == "" {
		return "", domain.ErrLocalMiss
	}
	return s.profileID, nil
}

func (s *MemoryLocalStore) SetProfileID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileID = id
	return nil
}
