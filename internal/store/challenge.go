package store

import (
	"context"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"keygate/internal/domain"
)

// PutChallenge persists a freshly issued challenge.
func (s *SQLite) PutChallenge(ctx context.Context, ch domain.Challenge) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn,
		`INSERT INTO challenges (id, nonce, aid, purpose, args_hash, created_at, expires_at, used)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				ch.ID, ch.Nonce, string(ch.AID), ch.Purpose, ch.ArgsHash,
				ch.CreatedAt.UnixMilli(), ch.ExpiresAt.UnixMilli(), boolInt(ch.Used),
			},
		})
}

// GetChallenge loads a challenge by id.
func (s *SQLite) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return domain.Challenge{}, err
	}
	defer s.pool.Put(conn)
	return getChallenge(conn, id)
}

func getChallenge(conn *sqlite.Conn, id string) (domain.Challenge, error) {
	var ch domain.Challenge
	found := false
	err := sqlitex.Execute(conn,
		`SELECT id, nonce, aid, purpose, args_hash, created_at, expires_at, used
		 FROM challenges WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				ch.ID = stmt.ColumnText(0)
				ch.Nonce = stmt.ColumnText(1)
				ch.AID = domain.AID(stmt.ColumnText(2))
				ch.Purpose = stmt.ColumnText(3)
				ch.ArgsHash = stmt.ColumnText(4)
				ch.CreatedAt = time.UnixMilli(stmt.ColumnInt64(5))
				ch.ExpiresAt = time.UnixMilli(stmt.ColumnInt64(6))
				ch.Used = stmt.ColumnInt64(7) != 0
				return nil
			},
		})
	if err != nil {
		return domain.Challenge{}, err
	}
	if !found {
		return domain.Challenge{}, domain.Ef(domain.CodeNotFound, "store.challenge", "unknown challenge %s", id)
	}
	return ch, nil
}

// ConsumeChallenge flips used to true exactly once. The UPDATE's WHERE
// clause is the compare-and-set: of two racing consumers only one sees a
// changed row, the other gets ErrChallengeUsed.
func (s *SQLite) ConsumeChallenge(ctx context.Context, id string) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`UPDATE challenges SET used = 1 WHERE id = ? AND used = 0`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return err
	}
	if conn.Changes() == 1 {
		return nil
	}
	if _, err := getChallenge(conn, id); err != nil {
		return err
	}
	return domain.ErrChallengeUsed
}

// DeleteExpiredChallenges removes challenges whose expiry has passed.
func (s *SQLite) DeleteExpiredChallenges(ctx context.Context, now time.Time) (int, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM challenges WHERE expires_at < ?`,
		&sqlitex.ExecOptions{Args: []any{now.UnixMilli()}})
	if err != nil {
		return 0, err
	}
	return conn.Changes(), nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

var _ domain.ChallengeStore = (*SQLite)(nil)
