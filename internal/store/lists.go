package store

import (
	"context"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"keygate/internal/domain"
)

// AddListEntry inserts an allow- or deny-list row. Re-adding an existing
// pair is success, not error.
func (s *SQLite) AddListEntry(ctx context.Context, kind domain.ListKind, e domain.ListEntry) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn,
		`INSERT INTO list_entries (kind, owner_aid, other_aid, added_at, note)
		 VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		&sqlitex.ExecOptions{
			Args: []any{string(kind), string(e.Owner), string(e.Other), e.AddedAt.UnixMilli(), e.Note},
		})
}

// RemoveListEntry deletes a row; removing an absent pair is a no-op.
func (s *SQLite) RemoveListEntry(ctx context.Context, kind domain.ListKind, owner, other domain.AID) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn,
		`DELETE FROM list_entries WHERE kind = ? AND owner_aid = ? AND other_aid = ?`,
		&sqlitex.ExecOptions{Args: []any{string(kind), string(owner), string(other)}})
}

// ListEntries returns owner's list of the given kind.
func (s *SQLite) ListEntries(ctx context.Context, kind domain.ListKind, owner domain.AID) ([]domain.ListEntry, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var entries []domain.ListEntry
	err = sqlitex.Execute(conn,
		`SELECT owner_aid, other_aid, added_at, note FROM list_entries
		 WHERE kind = ? AND owner_aid = ? ORDER BY added_at`,
		&sqlitex.ExecOptions{
			Args: []any{string(kind), string(owner)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entries = append(entries, domain.ListEntry{
					Owner:   domain.AID(stmt.ColumnText(0)),
					Other:   domain.AID(stmt.ColumnText(1)),
					AddedAt: time.UnixMilli(stmt.ColumnInt64(2)),
					Note:    stmt.ColumnText(3),
				})
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

var _ domain.ListStore = (*SQLite)(nil)
