package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS key_states (
	aid            TEXT PRIMARY KEY,
	ksn            INTEGER NOT NULL,
	keys           TEXT NOT NULL,
	threshold      INTEGER NOT NULL,
	last_event_ref TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS challenges (
	id         TEXT PRIMARY KEY,
	nonce      TEXT NOT NULL,
	aid        TEXT NOT NULL,
	purpose    TEXT NOT NULL,
	args_hash  TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL,
	used       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS challenges_expiry ON challenges (expires_at);

CREATE TABLE IF NOT EXISTS session_tokens (
	token_digest      TEXT PRIMARY KEY,
	aid               TEXT NOT NULL,
	ksn               INTEGER NOT NULL,
	scopes            TEXT NOT NULL,
	claims            BLOB,
	created_at        INTEGER NOT NULL,
	expires_at        INTEGER NOT NULL,
	used_challenge_id TEXT NOT NULL DEFAULT '',
	last_used_at      INTEGER NOT NULL DEFAULT 0,
	use_count         INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS session_tokens_aid ON session_tokens (aid);
CREATE INDEX IF NOT EXISTS session_tokens_expiry ON session_tokens (expires_at);

CREATE TABLE IF NOT EXISTS list_entries (
	kind      TEXT NOT NULL,
	owner_aid TEXT NOT NULL,
	other_aid TEXT NOT NULL,
	added_at  INTEGER NOT NULL,
	note      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (kind, owner_aid, other_aid)
);

CREATE TABLE IF NOT EXISTS roles (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS permissions (
	id    INTEGER PRIMARY KEY,
	key   TEXT NOT NULL UNIQUE,
	scope BLOB
);

CREATE TABLE IF NOT EXISTS role_permissions (
	role_id       INTEGER NOT NULL,
	permission_id INTEGER NOT NULL,
	PRIMARY KEY (role_id, permission_id)
);

CREATE TABLE IF NOT EXISTS user_roles (
	aid     TEXT NOT NULL,
	role_id INTEGER NOT NULL,
	PRIMARY KEY (aid, role_id)
);
`

// SQLite is the production store. It implements every store interface in
// internal/domain over a single WAL-mode database.
//
// SQLite is safe for concurrent use. Individual connections are not; every
// method takes its own connection from the pool for the duration of the call.
type SQLite struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path. For an
// in-memory database use "file::memory:?mode=memory&cache=shared" with
// poolSize 1; the driver rejects the bare ":memory:" path.
func OpenSQLite(path string, poolSize int, logger *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("store: sqlite path is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return prepareConn(conn)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	logger.Info("sqlite store opened", "path", path, "pool_size", poolSize)
	return &SQLite{pool: pool, logger: logger}, nil
}

// Close closes all connections. Blocks until borrowed connections return.
func (s *SQLite) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("store: closing sqlite pool: %w", err)
	}
	return nil
}

func prepareConn(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}
	return sqlitex.ExecuteScript(conn, schema, nil)
}

// take borrows a connection; callers must defer s.pool.Put(conn).
func (s *SQLite) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: take connection: %w", err)
	}
	return conn, nil
}
