package store

import (
	"context"
	"encoding/json"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"keygate/internal/domain"
)

// PutKeyState inserts the inception record for an AID. It fails with an
// already_exists error if the AID has a live record.
func (s *SQLite) PutKeyState(ctx context.Context, ks domain.KeyState) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	keys, err := json.Marshal(ks.Keys)
	if err != nil {
		return fmt.Errorf("store: encoding keys: %w", err)
	}
	err = sqlitex.Execute(conn,
		`INSERT INTO key_states (aid, ksn, keys, threshold, last_event_ref)
		 VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{string(ks.AID), int64(ks.KSN), string(keys), ks.Threshold, ks.LastEventRef},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintPrimaryKey {
			return domain.Ef(domain.CodeAlreadyExists, "store.keystate", "key state for %s already exists", ks.AID)
		}
		return err
	}
	return nil
}

// GetKeyState loads the live key state for aid.
func (s *SQLite) GetKeyState(ctx context.Context, aid domain.AID) (domain.KeyState, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return domain.KeyState{}, err
	}
	defer s.pool.Put(conn)
	return getKeyState(conn, aid)
}

func getKeyState(conn *sqlite.Conn, aid domain.AID) (domain.KeyState, error) {
	var ks domain.KeyState
	found := false
	err := sqlitex.Execute(conn,
		`SELECT aid, ksn, keys, threshold, last_event_ref FROM key_states WHERE aid = ?`,
		&sqlitex.ExecOptions{
			Args: []any{string(aid)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				ks.AID = domain.AID(stmt.ColumnText(0))
				ks.KSN = uint32(stmt.ColumnInt64(1))
				ks.Threshold = stmt.ColumnInt(3)
				ks.LastEventRef = stmt.ColumnText(4)
				return json.Unmarshal([]byte(stmt.ColumnText(2)), &ks.Keys)
			},
		})
	if err != nil {
		return domain.KeyState{}, err
	}
	if !found {
		return domain.KeyState{}, domain.Ef(domain.CodeNotFound, "store.keystate", "unknown AID %s", aid)
	}
	return ks, nil
}

// RotateKeyState replaces keys/threshold and increments the KSN as a single
// UPDATE, so no reader can observe new keys with the old sequence number.
func (s *SQLite) RotateKeyState(ctx context.Context, aid domain.AID, keys []string, threshold int, eventRef string) (domain.KeyState, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return domain.KeyState{}, err
	}
	defer s.pool.Put(conn)

	encoded, err := json.Marshal(keys)
	if err != nil {
		return domain.KeyState{}, fmt.Errorf("store: encoding keys: %w", err)
	}
	err = sqlitex.Execute(conn,
		`UPDATE key_states
		 SET ksn = ksn + 1, keys = ?, threshold = ?, last_event_ref = ?
		 WHERE aid = ?`,
		&sqlitex.ExecOptions{
			Args: []any{string(encoded), threshold, eventRef, string(aid)},
		})
	if err != nil {
		return domain.KeyState{}, err
	}
	if conn.Changes() == 0 {
		return domain.KeyState{}, domain.Ef(domain.CodeNotFound, "store.keystate", "unknown AID %s", aid)
	}
	return getKeyState(conn, aid)
}

var _ domain.KeyStateStore = (*SQLite)(nil)
