package store

import (
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"keygate/internal/domain"
)

// CreateRole inserts a role if absent and returns it either way.
func (s *SQLite) CreateRole(ctx context.Context, name string) (domain.Role, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return domain.Role{}, err
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT INTO roles (name) VALUES (?) ON CONFLICT (name) DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{name}})
	if err != nil {
		return domain.Role{}, err
	}
	return getRole(conn, name)
}

func getRole(conn *sqlite.Conn, name string) (domain.Role, error) {
	var role domain.Role
	found := false
	err := sqlitex.Execute(conn,
		`SELECT id, name FROM roles WHERE name = ?`,
		&sqlitex.ExecOptions{
			Args: []any{name},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				role.ID = stmt.ColumnInt64(0)
				role.Name = stmt.ColumnText(1)
				return nil
			},
		})
	if err != nil {
		return domain.Role{}, err
	}
	if !found {
		return domain.Role{}, domain.Ef(domain.CodeNotFound, "store.rbac", "unknown role %q", name)
	}
	return role, nil
}

// CreatePermission inserts a permission if absent and returns it either way.
// An existing permission keeps its original scope; callers that want to
// change a scope must do so deliberately, not through a repeated create.
func (s *SQLite) CreatePermission(ctx context.Context, key string, scope domain.ClaimScope) (domain.Permission, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return domain.Permission{}, err
	}
	defer s.pool.Put(conn)

	encoded, err := cbor.Marshal(scope)
	if err != nil {
		return domain.Permission{}, fmt.Errorf("store: encoding permission scope: %w", err)
	}
	err = sqlitex.Execute(conn,
		`INSERT INTO permissions (key, scope) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{key, encoded}})
	if err != nil {
		return domain.Permission{}, err
	}
	return getPermission(conn, key)
}

func getPermission(conn *sqlite.Conn, key string) (domain.Permission, error) {
	var perm domain.Permission
	found := false
	err := sqlitex.Execute(conn,
		`SELECT id, key, scope FROM permissions WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				perm.ID = stmt.ColumnInt64(0)
				perm.Key = stmt.ColumnText(1)
				scope := make([]byte, stmt.ColumnLen(2))
				stmt.ColumnBytes(2, scope)
				if len(scope) == 0 {
					return nil
				}
				return cbor.Unmarshal(scope, &perm.Scope)
			},
		})
	if err != nil {
		return domain.Permission{}, err
	}
	if !found {
		return domain.Permission{}, domain.Ef(domain.CodeNotFound, "store.rbac", "unknown permission %q", key)
	}
	return perm, nil
}

// GrantPermission attaches a permission to a role. Idempotent.
func (s *SQLite) GrantPermission(ctx context.Context, roleName, permKey string) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	role, err := getRole(conn, roleName)
	if err != nil {
		return err
	}
	perm, err := getPermission(conn, permKey)
	if err != nil {
		return err
	}
	return sqlitex.Execute(conn,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)
		 ON CONFLICT DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{role.ID, perm.ID}})
}

// AssignRole gives aid a role. Idempotent.
func (s *SQLite) AssignRole(ctx context.Context, aid domain.AID, roleName string) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	role, err := getRole(conn, roleName)
	if err != nil {
		return err
	}
	return sqlitex.Execute(conn,
		`INSERT INTO user_roles (aid, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		&sqlitex.ExecOptions{Args: []any{string(aid), role.ID}})
}

// UnassignRole removes a role from aid. Removing an absent assignment is a
// no-op.
func (s *SQLite) UnassignRole(ctx context.Context, aid domain.AID, roleName string) error {
	conn, err := s.take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	role, err := getRole(conn, roleName)
	if err != nil {
		return err
	}
	return sqlitex.Execute(conn,
		`DELETE FROM user_roles WHERE aid = ? AND role_id = ?`,
		&sqlitex.ExecOptions{Args: []any{string(aid), role.ID}})
}

// ClaimsForAID walks user_roles → role_permissions → permissions and returns
// the dereferenced claims. No roles means an empty set.
func (s *SQLite) ClaimsForAID(ctx context.Context, aid domain.AID) ([]domain.Claim, error) {
	conn, err := s.take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var claims []domain.Claim
	err = sqlitex.Execute(conn,
		`SELECT DISTINCT p.key, p.scope
		 FROM user_roles ur
		 JOIN role_permissions rp ON rp.role_id = ur.role_id
		 JOIN permissions p ON p.id = rp.permission_id
		 WHERE ur.aid = ?
		 ORDER BY p.key`,
		&sqlitex.ExecOptions{
			Args: []any{string(aid)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				claim := domain.Claim{Key: stmt.ColumnText(0)}
				scope := make([]byte, stmt.ColumnLen(1))
				stmt.ColumnBytes(1, scope)
				if len(scope) > 0 {
					if err := cbor.Unmarshal(scope, &claim.Scope); err != nil {
						return err
					}
				}
				claims = append(claims, claim)
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

var _ domain.RBACStore = (*SQLite)(nil)
