package domain

import (
	"context"
	"time"
)

// KeyStateStore persists the live key state per AID. RotateKeyState must
// replace keys/threshold and increment KSN as one atomic write.
type KeyStateStore interface {
	PutKeyState(ctx context.Context, ks KeyState) error
	GetKeyState(ctx context.Context, aid AID) (KeyState, error)
	RotateKeyState(ctx context.Context, aid AID, keys []string, threshold int, eventRef string) (KeyState, error)
}

// ChallengeStore persists one-time challenges. ConsumeChallenge must be an
// atomic check-and-set on the used flag: of two concurrent consumers exactly
// one succeeds, the other gets ErrChallengeUsed.
type ChallengeStore interface {
	PutChallenge(ctx context.Context, ch Challenge) error
	GetChallenge(ctx context.Context, id string) (Challenge, error)
	ConsumeChallenge(ctx context.Context, id string) error
	DeleteExpiredChallenges(ctx context.Context, now time.Time) (int, error)
}

// TokenStore persists session tokens keyed by a digest of the opaque bearer
// string. SweepTokens removes rows that are expired at now or whose pinned
// KSN no longer matches the live key state.
type TokenStore interface {
	PutToken(ctx context.Context, digest string, tok SessionToken) error
	GetToken(ctx context.Context, digest string) (SessionToken, error)
	TouchToken(ctx context.Context, digest string, at time.Time) error
	DeleteTokensForAID(ctx context.Context, aid AID) (int, error)
	SweepTokens(ctx context.Context, now time.Time) (int, error)
}

// RBACStore persists roles, permissions and their assignments. The create
// and grant operations are idempotent: repeating one is success, not error.
type RBACStore interface {
	CreateRole(ctx context.Context, name string) (Role, error)
	CreatePermission(ctx context.Context, key string, scope ClaimScope) (Permission, error)
	GrantPermission(ctx context.Context, roleName, permKey string) error
	AssignRole(ctx context.Context, aid AID, roleName string) error
	UnassignRole(ctx context.Context, aid AID, roleName string) error
	ClaimsForAID(ctx context.Context, aid AID) ([]Claim, error)
}

// ListStore persists allow/deny list entries, unique per (owner, other).
// AddListEntry is idempotent.
type ListStore interface {
	AddListEntry(ctx context.Context, kind ListKind, e ListEntry) error
	RemoveListEntry(ctx context.Context, kind ListKind, owner, other AID) error
	ListEntries(ctx context.Context, kind ListKind, owner AID) ([]ListEntry, error)
}

// Verifier proves control of an AID's keys. Implemented by the challenge
// authority; consumed by every service that gates a mutation on identity.
type Verifier interface {
	Verify(ctx context.Context, proof AuthProof, purpose string, args any) (AuthResult, error)
}

// ClaimsSource resolves the claims an AID holds right now.
type ClaimsSource interface {
	ResolveClaims(ctx context.Context, aid AID) ([]Claim, error)
}
