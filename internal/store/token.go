package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"keygate/internal/domain"
)

// PutToken persists a session token under its digest.
func (s *SQLite) PutToken(ctx context.Context, digest string, tok domain.SessionToken) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	claims, err := cbor.Marshal(tok.Claims)
	if err != nil {
		return fmt.Errorf("store: encoding claims: %w", err)
	}
	scopes := make([]string, len(tok.Scopes))
	for i, sc := range tok.Scopes {
		scopes[i] = string(sc)
	}

	return sqlitex.Execute(conn,
		`INSERT INTO session_tokens
		 (token_digest, aid, ksn, scopes, claims, created_at, expires_at, used_challenge_id, last_used_at, use_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				digest, string(tok.AID), int64(tok.KSN), strings.Join(scopes, " "), claims,
				tok.CreatedAt.UnixMilli(), tok.ExpiresAt.UnixMilli(),
				tok.UsedChallengeID, tok.LastUsedAt.UnixMilli(), tok.UseCount,
			},
		})
}

// GetToken loads a session token by digest.
func (s *SQLite) GetToken(ctx context.Context, digest string) (domain.SessionToken, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return domain.SessionToken{}, err
	}
	defer s.pool.Put(conn)

	var tok domain.SessionToken
	found := false
	err = sqlitex.Execute(conn,
		`SELECT aid, ksn, scopes, claims, created_at, expires_at, used_challenge_id, last_used_at, use_count
		 FROM session_tokens WHERE token_digest = ?`,
		&sqlitex.ExecOptions{
			Args: []any{digest},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				tok.AID = domain.AID(stmt.ColumnText(0))
				tok.KSN = uint32(stmt.ColumnInt64(1))
				for _, sc := range strings.Fields(stmt.ColumnText(2)) {
					tok.Scopes = append(tok.Scopes, domain.Scope(sc))
				}
				claims := make([]byte, stmt.ColumnLen(3))
				stmt.ColumnBytes(3, claims)
				tok.CreatedAt = time.UnixMilli(stmt.ColumnInt64(4))
				tok.ExpiresAt = time.UnixMilli(stmt.ColumnInt64(5))
				tok.UsedChallengeID = stmt.ColumnText(6)
				tok.LastUsedAt = time.UnixMilli(stmt.ColumnInt64(7))
				tok.UseCount = stmt.ColumnInt64(8)
				if len(claims) == 0 {
					return nil
				}
				return cbor.Unmarshal(claims, &tok.Claims)
			},
		})
	if err != nil {
		return domain.SessionToken{}, err
	}
	if !found {
		return domain.SessionToken{}, domain.E(domain.CodeNotFound, "store.token", "unknown session token")
	}
	return tok, nil
}

// TouchToken updates the audit fields on use. Lost updates between racing
// touches are acceptable; these fields are not security-relevant.
func (s *SQLite) TouchToken(ctx context.Context, digest string, at time.Time) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn,
		`UPDATE session_tokens SET last_used_at = ?, use_count = use_count + 1 WHERE token_digest = ?`,
		&sqlitex.ExecOptions{Args: []any{at.UnixMilli(), digest}})
}

// DeleteTokensForAID removes every token for aid (logout, rotation, incident
// response).
func (s *SQLite) DeleteTokensForAID(ctx context.Context, aid domain.AID) (int, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM session_tokens WHERE aid = ?`,
		&sqlitex.ExecOptions{Args: []any{string(aid)}})
	if err != nil {
		return 0, err
	}
	return conn.Changes(), nil
}

// SweepTokens reaps rows that are expired or whose pinned KSN no longer
// matches the live key state. Validation already rejects both; this is
// storage hygiene, not a security boundary.
func (s *SQLite) SweepTokens(ctx context.Context, now time.Time) (int, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return 0, err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`DELETE FROM session_tokens
		 WHERE expires_at < ?
		    OR ksn <> COALESCE(
		        (SELECT ks.ksn FROM key_states AS ks WHERE ks.aid = session_tokens.aid), -1)`,
		&sqlitex.ExecOptions{Args: []any{now.UnixMilli()}})
	if err != nil {
		return 0, err
	}
	return conn.Changes(), nil
}

var _ domain.TokenStore = (*SQLite)(nil)
