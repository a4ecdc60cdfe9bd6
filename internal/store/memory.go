package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"keygate/internal/domain"
)

// Memory is an in-process store with the same semantics as SQLite, used by
// service tests. A single mutex guards everything; the consume and rotate
// operations are therefore atomic with respect to concurrent callers, which
// is exactly the property the services rely on.
type Memory struct {
	mu sync.Mutex

	keyStates  map[domain.AID]domain.KeyState
	challenges map[string]domain.Challenge
	tokens     map[string]domain.SessionToken

	roles      map[string]int64
	perms      map[string]domain.Permission
	rolePerms  map[int64]map[string]bool // role id → permission keys
	userRoles  map[domain.AID]map[int64]bool
	nextRoleID int64
	nextPermID int64

	lists map[listKey]domain.ListEntry
}

type listKey struct {
	kind  domain.ListKind
	owner domain.AID
	other domain.AID
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		keyStates:  make(map[domain.AID]domain.KeyState),
		challenges: make(map[string]domain.Challenge),
		tokens:     make(map[string]domain.SessionToken),
		roles:      make(map[string]int64),
		perms:      make(map[string]domain.Permission),
		rolePerms:  make(map[int64]map[string]bool),
		userRoles:  make(map[domain.AID]map[int64]bool),
		lists:      make(map[listKey]domain.ListEntry),
	}
}

// ---------- KeyStateStore ----------

func (m *Memory) PutKeyState(_ context.Context, ks domain.KeyState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keyStates[ks.AID]; ok {
		return domain.Ef(domain.CodeAlreadyExists, "store.keystate", "key state for %s already exists", ks.AID)
	}
	ks.Keys = append([]string(nil), ks.Keys...)
	m.keyStates[ks.AID] = ks
	return nil
}

func (m *Memory) GetKeyState(_ context.Context, aid domain.AID) (domain.KeyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ks, ok := m.keyStates[aid]
	if !ok {
		return domain.KeyState{}, domain.Ef(domain.CodeNotFound, "store.keystate", "unknown AID %s", aid)
	}
	return ks, nil
}

func (m *Memory) RotateKeyState(_ context.Context, aid domain.AID, keys []string, threshold int, eventRef string) (domain.KeyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ks, ok := m.keyStates[aid]
	if !ok {
		return domain.KeyState{}, domain.Ef(domain.CodeNotFound, "store.keystate", "unknown AID %s", aid)
	}
	ks.KSN++
	ks.Keys = append([]string(nil), keys...)
	ks.Threshold = threshold
	ks.LastEventRef = eventRef
	m.keyStates[aid] = ks
	return ks, nil
}

// ---------- ChallengeStore ----------

func (m *Memory) PutChallenge(_ context.Context, ch domain.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.challenges[ch.ID] = ch
	return nil
}

func (m *Memory) GetChallenge(_ context.Context, id string) (domain.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok {
		return domain.Challenge{}, domain.Ef(domain.CodeNotFound, "store.challenge", "unknown challenge %s", id)
	}
	return ch, nil
}

func (m *Memory) ConsumeChallenge(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.challenges[id]
	if !ok {
		return domain.Ef(domain.CodeNotFound, "store.challenge", "unknown challenge %s", id)
	}
	if ch.Used {
		return domain.ErrChallengeUsed
	}
	ch.Used = true
	m.challenges[id] = ch
	return nil
}

func (m *Memory) DeleteExpiredChallenges(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, ch := range m.challenges {
		if ch.ExpiresAt.Before(now) {
			delete(m.challenges, id)
			n++
		}
	}
	return n, nil
}

// ---------- TokenStore ----------

func (m *Memory) PutToken(_ context.Context, digest string, tok domain.SessionToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[digest] = tok
	return nil
}

func (m *Memory) GetToken(_ context.Context, digest string) (domain.SessionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[digest]
	if !ok {
		return domain.SessionToken{}, domain.E(domain.CodeNotFound, "store.token", "unknown session token")
	}
	return tok, nil
}

func (m *Memory) TouchToken(_ context.Context, digest string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[digest]
	if !ok {
		return nil
	}
	tok.LastUsedAt = at
	tok.UseCount++
	m.tokens[digest] = tok
	return nil
}

func (m *Memory) DeleteTokensForAID(_ context.Context, aid domain.AID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for digest, tok := range m.tokens {
		if tok.AID == aid {
			delete(m.tokens, digest)
			n++
		}
	}
	return n, nil
}

func (m *Memory) SweepTokens(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for digest, tok := range m.tokens {
		ks, live := m.keyStates[tok.AID]
		if tok.ExpiresAt.Before(now) || !live || ks.KSN != tok.KSN {
			delete(m.tokens, digest)
			n++
		}
	}
	return n, nil
}

// ---------- RBACStore ----------

func (m *Memory) CreateRole(_ context.Context, name string) (domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.roles[name]; ok {
		return domain.Role{ID: id, Name: name}, nil
	}
	m.nextRoleID++
	m.roles[name] = m.nextRoleID
	return domain.Role{ID: m.nextRoleID, Name: name}, nil
}

func (m *Memory) CreatePermission(_ context.Context, key string, scope domain.ClaimScope) (domain.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if perm, ok := m.perms[key]; ok {
		return perm, nil
	}
	m.nextPermID++
	perm := domain.Permission{ID: m.nextPermID, Key: key, Scope: scope}
	m.perms[key] = perm
	return perm, nil
}

func (m *Memory) GrantPermission(_ context.Context, roleName, permKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	roleID, ok := m.roles[roleName]
	if !ok {
		return domain.Ef(domain.CodeNotFound, "store.rbac", "unknown role %q", roleName)
	}
	if _, ok := m.perms[permKey]; !ok {
		return domain.Ef(domain.CodeNotFound, "store.rbac", "unknown permission %q", permKey)
	}
	if m.rolePerms[roleID] == nil {
		m.rolePerms[roleID] = make(map[string]bool)
	}
	m.rolePerms[roleID][permKey] = true
	return nil
}

func (m *Memory) AssignRole(_ context.Context, aid domain.AID, roleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	roleID, ok := m.roles[roleName]
	if !ok {
		return domain.Ef(domain.CodeNotFound, "store.rbac", "unknown role %q", roleName)
	}
	if m.userRoles[aid] == nil {
		m.userRoles[aid] = make(map[int64]bool)
	}
	m.userRoles[aid][roleID] = true
	return nil
}

func (m *Memory) UnassignRole(_ context.Context, aid domain.AID, roleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	roleID, ok := m.roles[roleName]
	if !ok {
		return domain.Ef(domain.CodeNotFound, "store.rbac", "unknown role %q", roleName)
	}
	delete(m.userRoles[aid], roleID)
	return nil
}

func (m *Memory) ClaimsForAID(_ context.Context, aid domain.AID) ([]domain.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var claims []domain.Claim
	for roleID := range m.userRoles[aid] {
		for permKey := range m.rolePerms[roleID] {
			if seen[permKey] {
				continue
			}
			seen[permKey] = true
			perm := m.perms[permKey]
			claims = append(claims, domain.Claim{Key: perm.Key, Scope: perm.Scope})
		}
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].Key < claims[j].Key })
	return claims, nil
}

// ---------- ListStore ----------

func (m *Memory) AddListEntry(_ context.Context, kind domain.ListKind, e domain.ListEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := listKey{kind: kind, owner: e.Owner, other: e.Other}
	if _, ok := m.lists[k]; ok {
		return nil
	}
	m.lists[k] = e
	return nil
}

func (m *Memory) RemoveListEntry(_ context.Context, kind domain.ListKind, owner, other domain.AID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, listKey{kind: kind, owner: owner, other: other})
	return nil
}

func (m *Memory) ListEntries(_ context.Context, kind domain.ListKind, owner domain.AID) ([]domain.ListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []domain.ListEntry
	for k, e := range m.lists {
		if k.kind == kind && k.owner == owner {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Other < entries[j].Other })
	return entries, nil
}

var (
	_ domain.KeyStateStore  = (*Memory)(nil)
	_ domain.ChallengeStore = (*Memory)(nil)
	_ domain.TokenStore     = (*Memory)(nil)
	_ domain.RBACStore      = (*Memory)(nil)
	_ domain.ListStore      = (*Memory)(nil)
)
