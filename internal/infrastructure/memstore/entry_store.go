// Package memstore provides process-local stores for dry runs and tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MRM-Billing/internal/domain/billing"
	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// EntryStore is a mutex-guarded billing.EntryRepository.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[billing.Key]*billing.Entry
	now     func() time.Time
}

func NewEntryStore() *EntryStore {
	return &EntryStore{
		entries: make(map[billing.Key]*billing.Entry),
		now:     time.Now,
	}
}

var _ billing.EntryRepository = (*EntryStore)(nil)

// Save replaces any entry with the same key, keeping its id and creation time.
func (s *EntryStore) Save(_ context.Context, e *billing.Entry) (*billing.Entry, error) {
	if err := e.CheckDerived(); err != nil {
		return nil, err
	}
	saved := e.Clone()
	key := saved.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if prev, ok := s.entries[key]; ok {
		saved.ID = prev.ID
		saved.CreatedAt = prev.CreatedAt
	} else {
		if saved.ID == "" {
			saved.ID = uuid.New().String()
		}
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now
	s.entries[key] = saved
	return saved.Clone(), nil
}

func (s *EntryStore) Get(_ context.Context, key billing.Key) (*billing.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, notFound(key)
	}
	return e.Clone(), nil
}

func (s *EntryStore) Delete(_ context.Context, key billing.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return notFound(key)
	}
	delete(s.entries, key)
	return nil
}

func (s *EntryStore) ListByMonth(ctx context.Context, month billing.Month, fyStart int) ([]*billing.Entry, error) {
	out := s.collect(billing.EntryFilter{Month: month, FYStart: fyStart})
	billing.SortByClientName(out)
	return out, nil
}

func (s *EntryStore) ListByClient(ctx context.Context, clientID string) ([]*billing.Entry, error) {
	out := s.collect(billing.EntryFilter{ClientID: clientID})
	billing.SortByMonth(out)
	return out, nil
}

func (s *EntryStore) List(ctx context.Context, filter billing.EntryFilter) ([]*billing.Entry, error) {
	out := s.collect(filter)
	billing.SortByClientName(out)
	return out, nil
}

// UpdateStatus sets only the status labels; derived fields are untouched.
func (s *EntryStore) UpdateStatus(_ context.Context, key billing.Key, u billing.StatusUpdate) (*billing.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, notFound(key)
	}
	u.Apply(e)
	e.UpdatedAt = s.now()
	return e.Clone(), nil
}

// Len reports the number of stored entries.
func (s *EntryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *EntryStore) collect(filter billing.EntryFilter) []*billing.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*billing.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Matches(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func notFound(key billing.Key) error {
	return errors.New(errors.ErrCodeEntryNotFound, "billing entry not found").WithDetail(key.String())
}

//Personal.AI order the ending
