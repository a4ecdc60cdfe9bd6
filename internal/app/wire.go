package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"keygate/internal/services/access"
	"keygate/internal/services/challenge"
	"keygate/internal/services/claims"
	"keygate/internal/services/keystate"
	"keygate/internal/services/session"
	"keygate/internal/store"
)

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*App, error) {
	logger := newLogger(cfg.LogLevel)

	// URI paths ("file:...") configure their own storage; only plain file
	// paths need a parent directory.
	if dir := filepath.Dir(cfg.DBPath); !strings.HasPrefix(cfg.DBPath, "file:") && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, err := store.OpenSQLite(cfg.DBPath, cfg.PoolSize, logger)
	if err != nil {
		return nil, err
	}

	auth := challenge.New(db, db, cfg.Audience)
	resolver := claims.New(db)

	return &App{
		Log:      logger,
		Vault:    store.NewVault(cfg.VaultDir),
		Keys:     keystate.New(db, auth),
		Auth:     auth,
		Claims:   resolver,
		Access:   access.New(db),
		Sessions: session.New(db, db, resolver, auth),
		db:       db,
	}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
