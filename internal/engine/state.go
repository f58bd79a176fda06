package engine

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/linkage/internal/record"
	"github.com/roach88/linkage/internal/store"
)

// state is the working copy of the store for one batch. It is rebuilt
// from the store at the start of every batch and kept in step with each
// write, so the store stays the only source of truth across batches.
type state struct {
	ids      []string // ascending
	members  map[string][]record.Record
	profiles map[string]store.Profile

	// anchors maps a Customer entity id to the lowest group id holding it.
	anchors map[string]string
	// owners maps a business id to the lowest group id holding an
	// ownBusiness Customer for it.
	owners map[string]string
}

func newState() *state {
	return &state{
		members:  make(map[string][]record.Record),
		profiles: make(map[string]store.Profile),
		anchors:  make(map[string]string),
		owners:   make(map[string]string),
	}
}

// loadState reads every group and profile from the store.
func loadState(ctx context.Context, s Store) (*state, error) {
	ids, err := s.ListGroupIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	st := newState()
	st.ids = slices.Clone(ids)
	sort.Strings(st.ids)

	for _, id := range st.ids {
		members, err := s.LoadGroup(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load state: group %s: %w", id, err)
		}
		profile, err := s.LoadProfile(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load state: profile %s: %w", id, err)
		}
		st.members[id] = members
		st.profiles[id] = profile
		for _, m := range members {
			st.index(id, m)
		}
	}
	return st, nil
}

// addGroup registers a new group id, keeping ids sorted.
func (st *state) addGroup(id string) {
	i, found := slices.BinarySearch(st.ids, id)
	if found {
		return
	}
	st.ids = slices.Insert(st.ids, i, id)
}

// appendMember returns the group's member list with r appended. The
// stored slice is not modified; call commitMembers after the write.
func (st *state) appendMember(id string, r record.Record) []record.Record {
	current := st.members[id]
	out := make([]record.Record, len(current), len(current)+1)
	copy(out, current)
	return append(out, r)
}

// commitMembers records a successful member write.
func (st *state) commitMembers(id string, members []record.Record) {
	st.addGroup(id)
	st.members[id] = members
	st.index(id, members[len(members)-1])
}

// index updates the anchor and owner lookups for one member.
func (st *state) index(id string, m record.Record) {
	if m.Type != record.TypeCustomer {
		return
	}
	setLowest(st.anchors, m.EntityID, id)
	// Business rows also carry ownBusiness, but their party is the owner.
	if txn, err := m.Txn(); err == nil && txn.Kind == record.KindOwnBusiness {
		setLowest(st.owners, txn.Party, id)
	}
}

// anchorOf returns the group anchored by a Customer with entityID.
func (st *state) anchorOf(entityID string) (string, bool) {
	id, ok := st.anchors[entityID]
	return id, ok
}

// ownerOf returns the group holding the ownBusiness member for businessID.
func (st *state) ownerOf(businessID string) (string, bool) {
	id, ok := st.owners[businessID]
	return id, ok
}

// snapshot copies the member lists for the batch result.
func (st *state) snapshot() map[string][]record.Record {
	out := make(map[string][]record.Record, len(st.members))
	for id, members := range st.members {
		out[id] = slices.Clone(members)
	}
	return out
}

func setLowest(m map[string]string, key, id string) {
	if key == "" {
		return
	}
	if cur, ok := m[key]; !ok || id < cur {
		m[key] = id
	}
}
