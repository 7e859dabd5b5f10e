package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"time-tracker-backend/internal/apperr"
	"time-tracker-backend/internal/model"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu         sync.Mutex
	categories []model.Category
	entries    []model.TimeEntry
	nextID     int64
	clock      time.Time

	failWith error
	pingErr  error
}

func newMemStore(names ...string) *memStore {
	s := &memStore{clock: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	for _, n := range names {
		if _, err := s.CreateCategory(context.Background(), n); err != nil {
			panic(err)
		}
	}
	return s
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) Ping(context.Context) error {
	return s.pingErr
}

func (s *memStore) ListCategories(context.Context) ([]model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *memStore) CategoryByID(_ context.Context, id int64) (model.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return model.Category{}, false, s.failWith
	}
	for _, c := range s.categories {
		if c.ID == id {
			return c, true, nil
		}
	}
	return model.Category{}, false, nil
}

func (s *memStore) CategoryByName(_ context.Context, name string) (model.Category, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return model.Category{}, false, s.failWith
	}
	for _, c := range s.categories {
		if c.Name == name {
			return c, true, nil
		}
	}
	return model.Category{}, false, nil
}

func (s *memStore) CreateCategory(_ context.Context, name string) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == name {
			return model.Category{}, apperr.Conflict(fmt.Sprintf("Category %q already exists", name), nil)
		}
	}
	s.nextID++
	c := model.Category{ID: s.nextID, Name: name, CreatedAt: s.tick()}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *memStore) ListEntries(_ context.Context, filter EntryFilter) ([]model.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}

	out := make([]model.TimeEntry, 0)
	for _, e := range s.entries {
		if filter.Range != nil && !filter.Range.Contains(e.Date) {
			continue
		}
		if filter.CategoryID != nil && e.CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, e)
	}
	older := func(a, b model.TimeEntry) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.OldestFirst {
			return older(out[i], out[j])
		}
		return older(out[j], out[i])
	})
	return out, nil
}

func (s *memStore) CreateEntry(_ context.Context, in model.NewTimeEntry) (model.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return model.TimeEntry{}, s.failWith
	}

	var name string
	for _, c := range s.categories {
		if c.ID == in.CategoryID {
			name = c.Name
		}
	}
	if name == "" {
		return model.TimeEntry{}, apperr.CategoryNotFound(in.CategoryID)
	}

	s.nextID++
	e := model.TimeEntry{
		ID:            s.nextID,
		Date:          in.Date,
		CategoryID:    in.CategoryID,
		DurationHours: in.DurationHours,
		Note:          in.Note,
		CreatedAt:     s.tick(),
		CategoryName:  name,
	}
	s.entries = append(s.entries, e)
	return e, nil
}
