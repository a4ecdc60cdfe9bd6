package claims

import (
	"context"

	"keygate/internal/domain"
)

// KeyAdmin is the permission key that marks administrative claims.
const KeyAdmin = "admin"

// Resolver expands AIDs into claim sets and administers the role and
// permission tables. The administrative operations are idempotent: creating
// something that exists is success.
type Resolver struct {
	store domain.RBACStore
}

func New(store domain.RBACStore) *Resolver { return &Resolver{store: store} }

// ResolveClaims returns the claims aid holds right now: its roles' union of
// dereferenced permissions.
func (r *Resolver) ResolveClaims(ctx context.Context, aid domain.AID) ([]domain.Claim, error) {
	return r.store.ClaimsForAID(ctx, aid)
}

// CreateRole creates (or finds) a role.
func (r *Resolver) CreateRole(ctx context.Context, name string) (domain.Role, error) {
	if name == "" {
		return domain.Role{}, domain.E(domain.CodeValidation, "claims.createRole", "role name is required")
	}
	return r.store.CreateRole(ctx, name)
}

// CreatePermission creates (or finds) a permission.
func (r *Resolver) CreatePermission(ctx context.Context, key string, scope domain.ClaimScope) (domain.Permission, error) {
	if key == "" {
		return domain.Permission{}, domain.E(domain.CodeValidation, "claims.createPermission", "permission key is required")
	}
	return r.store.CreatePermission(ctx, key, scope)
}

// GrantPermission attaches permKey to roleName.
func (r *Resolver) GrantPermission(ctx context.Context, roleName, permKey string) error {
	return r.store.GrantPermission(ctx, roleName, permKey)
}

// AssignRole gives aid the role.
func (r *Resolver) AssignRole(ctx context.Context, aid domain.AID, roleName string) error {
	return r.store.AssignRole(ctx, aid, roleName)
}

// UnassignRole removes the role from aid. Open sessions keep their
// snapshotted claims until they expire or are revoked; that staleness
// window is bounded by the session TTL ceiling.
func (r *Resolver) UnassignRole(ctx context.Context, aid domain.AID, roleName string) error {
	return r.store.UnassignRole(ctx, aid, roleName)
}

// Include reports whether any claim matches key and, when pred is non-nil,
// whose scope satisfies pred. A nil pred matches any scope.
func Include(claims []domain.Claim, key string, pred func(domain.ClaimScope) bool) bool {
	for _, c := range claims {
		if c.Key != key {
			continue
		}
		if pred == nil || pred(c.Scope) {
			return true
		}
	}
	return false
}

// IncludeFor is the common scoped check: a claim for key whose scope covers
// the resource id.
func IncludeFor(claims []domain.Claim, key, id string) bool {
	return Include(claims, key, func(s domain.ClaimScope) bool { return s.Covers(id) })
}

var _ domain.ClaimsSource = (*Resolver)(nil)
