package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/linkage/internal/record"
)

// ListGroupIDs returns every group id in ascending binary order.
//
// Returns an empty slice (not nil) for an empty store.
func (s *Store) ListGroupIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM groups
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return ids, nil
}

// LoadGroup returns the members of a group in assignment order.
// Returns ErrNotFound if the group does not exist.
func (s *Store) LoadGroup(ctx context.Context, id string) ([]record.Record, error) {
	if err := s.requireGroup(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, entity_id, txn, compound_key, link_group_id
		FROM members
		WHERE group_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	members := []record.Record{}
	for rows.Next() {
		var (
			m    record.Record
			typ  string
			link sql.NullString
		)
		if err := rows.Scan(&typ, &m.EntityID, &m.Transaction, &m.CompoundKey, &link); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Type = record.Type(typ)
		m.LinkGroupID = link.String
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// LoadProfile returns the profile of a group. A group that exists but has
// no profile yet returns an empty Profile.
// Returns ErrNotFound if the group does not exist.
func (s *Store) LoadProfile(ctx context.Context, id string) (Profile, error) {
	if err := s.requireGroup(ctx, id); err != nil {
		return Profile{}, err
	}

	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM profiles WHERE group_id = ?
	`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return unmarshalProfile(data)
}

// FindAnchors returns the ids of groups holding a Customer member with the
// given entity id, in ascending group order.
func (s *Store) FindAnchors(ctx context.Context, entityID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT group_id FROM members
		WHERE entity_id = ? AND type = ?
		ORDER BY group_id COLLATE BINARY ASC
	`, entityID, string(record.TypeCustomer))
	if err != nil {
		return nil, fmt.Errorf("query anchors: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anchors: %w", err)
	}
	return ids, nil
}

func (s *Store) requireGroup(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM groups WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("query group: %w", err)
	}
	return nil
}
