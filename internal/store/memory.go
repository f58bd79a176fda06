package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/roach88/linkage/internal/record"
)

// Memory is a map-backed store with the same contract as Store.
// Values are copied on the way in and out, so callers never share state
// with the store. Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	members  map[string][]record.Record
	profiles map[string]Profile
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		members:  make(map[string][]record.Record),
		profiles: make(map[string]Profile),
	}
}

// ListGroupIDs returns every group id in ascending binary order.
func (m *Memory) ListGroupIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.members))
	for id := range m.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// LoadGroup returns a copy of the members of a group.
func (m *Memory) LoadGroup(ctx context.Context, id string) ([]record.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.members[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return slices.Clone(members), nil
}

// LoadProfile returns a copy of the profile of a group.
func (m *Memory) LoadProfile(ctx context.Context, id string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.members[id]; !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.profiles[id].Clone(), nil
}

// SaveGroup replaces the member list of a group.
func (m *Memory) SaveGroup(ctx context.Context, id string, members []record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.members[id] = cloneMembers(members)
	return nil
}

// SaveProfile replaces the profile of a group.
func (m *Memory) SaveProfile(ctx context.Context, id string, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[id]; !ok {
		m.members[id] = []record.Record{}
	}
	m.profiles[id] = p.Clone()
	return nil
}

// SaveGroupWithProfile replaces members and profile under one lock.
func (m *Memory) SaveGroupWithProfile(ctx context.Context, id string, members []record.Record, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.members[id] = cloneMembers(members)
	m.profiles[id] = p.Clone()
	return nil
}

// Clear removes every group.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.members = make(map[string][]record.Record)
	m.profiles = make(map[string]Profile)
	return nil
}

// FindAnchors returns the ids of groups holding a Customer member with the
// given entity id, in ascending group order.
func (m *Memory) FindAnchors(ctx context.Context, entityID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := []string{}
	for id, members := range m.members {
		for _, r := range members {
			if r.Type == record.TypeCustomer && r.EntityID == entityID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func cloneMembers(members []record.Record) []record.Record {
	if members == nil {
		return []record.Record{}
	}
	return slices.Clone(members)
}
