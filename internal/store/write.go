package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/linkage/internal/record"
)

// SaveGroup replaces the member list of a group, creating the group if it
// does not exist yet.
func (s *Store) SaveGroup(ctx context.Context, id string, members []record.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save group: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := writeMembers(ctx, tx, id, members); err != nil {
		return fmt.Errorf("save group %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save group %s: commit: %w", id, err)
	}
	return nil
}

// SaveProfile replaces the profile of a group, creating the group if it
// does not exist yet.
func (s *Store) SaveProfile(ctx context.Context, id string, p Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save profile: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeProfile(ctx, tx, id, p); err != nil {
		return fmt.Errorf("save profile %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save profile %s: commit: %w", id, err)
	}
	return nil
}

// SaveGroupWithProfile atomically replaces both the member list and the
// profile of a group in a single transaction.
//
// This is the crash-safe variant of SaveGroup followed by SaveProfile.
func (s *Store) SaveGroupWithProfile(ctx context.Context, id string, members []record.Record, p Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save group with profile: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := writeMembers(ctx, tx, id, members); err != nil {
		return fmt.Errorf("save group with profile %s: %w", id, err)
	}
	if err := writeProfile(ctx, tx, id, p); err != nil {
		return fmt.Errorf("save group with profile %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save group with profile %s: commit: %w", id, err)
	}
	return nil
}

// Clear deletes every group, member and profile.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clear: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"members", "profiles", "groups"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear: commit: %w", err)
	}
	return nil
}

func ensureGroup(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO groups (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING
	`, id)
	if err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// writeMembers rewrites the whole member list; positions restart at 0.
func writeMembers(ctx context.Context, tx *sql.Tx, id string, members []record.Record) error {
	if err := ensureGroup(ctx, tx, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE group_id = ?`, id); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO members
		(group_id, position, type, entity_id, txn, compound_key, link_group_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare member insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range members {
		_, err := stmt.ExecContext(ctx,
			id,
			i,
			string(m.Type),
			m.EntityID,
			m.Transaction,
			m.CompoundKey,
			nullString(m.LinkGroupID),
		)
		if err != nil {
			return fmt.Errorf("insert member %d: %w", i, err)
		}
	}
	return nil
}

func writeProfile(ctx context.Context, tx *sql.Tx, id string, p Profile) error {
	if err := ensureGroup(ctx, tx, id); err != nil {
		return err
	}

	data, err := marshalProfile(p)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (group_id, data) VALUES (?, ?)
		ON CONFLICT(group_id) DO UPDATE SET data = excluded.data
	`, id, data)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
