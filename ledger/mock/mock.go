// Package mock provides an in-memory EventStore implementation for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"HADIRKU/ledger"
	"HADIRKU/models"
)

// MockEventStore is an in-memory implementation of ledger.EventStore.
// Insert is atomic under a single mutex, matching the uniqueness guarantee
// the production store gets from its composite unique index.
type MockEventStore struct {
	mu     sync.Mutex
	byKey  map[[3]string]struct{} // (userId, tgl, jenis)
	events []models.AttendanceEvent
	nextId int64

	// Error injection
	InsertError error
	QueryError  error
}

func NewMockEventStore() *MockEventStore {
	return &MockEventStore{byKey: make(map[[3]string]struct{})}
}

func (m *MockEventStore) Insert(ctx context.Context, event *models.AttendanceEvent) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := [3]string{event.UserId, event.TglAbsen, event.Jenis}
	if _, exists := m.byKey[key]; exists {
		return ledger.ErrDuplicateEvent
	}

	m.nextId++
	event.Id = m.nextId
	m.byKey[key] = struct{}{}
	m.events = append(m.events, *event)
	return nil
}

func (m *MockEventStore) EventsByDay(ctx context.Context, userId, tgl string) ([]models.AttendanceEvent, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AttendanceEvent
	for _, ev := range m.events {
		if ev.UserId == userId && ev.TglAbsen == tgl {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *MockEventStore) List(ctx context.Context, filter ledger.Filter) ([]models.AttendanceEvent, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AttendanceEvent
	for _, ev := range m.events {
		if filter.UserId != "" && ev.UserId != filter.UserId {
			continue
		}
		if filter.TglDari != "" && ev.TglAbsen < filter.TglDari {
			continue
		}
		if filter.TglSampai != "" && ev.TglAbsen > filter.TglSampai {
			continue
		}
		if filter.Jenis != "" && ev.Jenis != filter.Jenis {
			continue
		}
		out = append(out, ev)
	}

	// Newest first, like the production store's created_at desc ordering
	sort.Slice(out, func(i, j int) bool { return out[i].Id > out[j].Id })
	return out, nil
}

// Count returns the total number of stored events.
func (m *MockEventStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
