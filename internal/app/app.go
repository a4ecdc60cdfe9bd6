package app

import (
	"log/slog"

	"keygate/internal/services/access"
	"keygate/internal/services/challenge"
	"keygate/internal/services/claims"
	"keygate/internal/services/keystate"
	"keygate/internal/services/session"
	"keygate/internal/store"
)

// App is the assembled service graph the CLI commands run against.
type App struct {
	Log   *slog.Logger
	Vault *store.Vault

	Keys     *keystate.Registry
	Auth     *challenge.Authority
	Claims   *claims.Resolver
	Access   *access.Resolver
	Sessions *session.Service

	db *store.SQLite
}

// Close releases the underlying database pool.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
