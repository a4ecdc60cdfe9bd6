package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"keygate/internal/crypto"
	"keygate/internal/domain"
	"keygate/internal/services/challenge"
	"keygate/internal/services/claims"
	"keygate/internal/services/session"
	"keygate/internal/store"
)

type signer struct {
	aid  domain.AID
	priv domain.Ed25519Private
}

func incept(t *testing.T, s *store.Memory) signer {
	t.Helper()
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	aid := crypto.AIDFromPublicKey(pub)
	err = s.PutKeyState(context.Background(), domain.KeyState{
		AID:       aid,
		Keys:      []string{crypto.EncodeKey(pub)},
		Threshold: 1,
	})
	if err != nil {
		t.Fatalf("PutKeyState: %v", err)
	}
	return signer{aid: aid, priv: priv}
}

func (s signer) prove(issued domain.IssuedChallenge, ksn uint32) domain.AuthProof {
	return domain.AuthProof{
		ChallengeID: issued.ChallengeID,
		Sigs:        []string{crypto.EncodeIndexedSig(0, crypto.SignEd25519(s.priv, issued.PayloadToSign))},
		KSN:         ksn,
	}
}

// openArgs mirrors the argument set the service binds open-session
// signatures to.
type openArgs struct {
	Scopes []domain.Scope `json:"scopes"`
	TTLMs  int64          `json:"ttlMs"`
}

type revokeArgs struct {
	AID domain.AID `json:"aid"`
}

type fixture struct {
	store    *store.Memory
	auth     *challenge.Authority
	claims   *claims.Resolver
	sessions *session.Service
}

func newFixture() fixture {
	s := store.NewMemory()
	a := challenge.New(s, s, "keygate-test")
	c := claims.New(s)
	return fixture{store: s, auth: a, claims: c, sessions: session.New(s, s, c, a)}
}

// open runs the full ceremony: issue a challenge for the requested scopes
// and TTL, sign it, and open the session.
func (f fixture) open(t *testing.T, who signer, scopes []domain.Scope, ttl time.Duration) domain.OpenedSession {
	t.Helper()
	ctx := context.Background()
	args := openArgs{Scopes: scopes, TTLMs: ttl.Milliseconds()}
	issued, err := f.auth.Issue(ctx, who.aid, session.PurposeOpen, args, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	opened, err := f.sessions.Open(ctx, who.aid, scopes, ttl, who.prove(issued, 0))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return opened
}

func TestOpenAndValidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)

	opened := f.open(t, alice, []domain.Scope{domain.ScopeSend, domain.ScopeReceive}, 30*time.Second)
	if opened.Token == "" {
		t.Fatal("opened session has an empty token")
	}

	id, err := f.sessions.Validate(ctx, opened.Token, domain.ScopeSend)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if id.AID != alice.aid || id.KSN != 0 {
		t.Fatalf("identity = %+v, want {%s 0}", id, alice.aid)
	}

	// A scope not granted at open time is refused even though it exists.
	if _, err := f.sessions.Validate(ctx, opened.Token, domain.ScopeAdmin); !errors.Is(err, domain.ErrScopeNotGranted) {
		t.Fatalf("admin Validate: err = %v, want ErrScopeNotGranted", err)
	}
}

func TestOpenRejectsBadRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)
	proof := domain.AuthProof{ChallengeID: "x"}

	cases := []struct {
		name   string
		scopes []domain.Scope
		ttl    time.Duration
	}{
		{"no scopes", nil, 30 * time.Second},
		{"unknown scope", []domain.Scope{"fly"}, 30 * time.Second},
		{"zero ttl", []domain.Scope{domain.ScopeSend}, 0},
		{"ttl above ceiling", []domain.Scope{domain.ScopeSend}, 2 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.sessions.Open(ctx, alice.aid, tc.scopes, tc.ttl, proof)
			if domain.CodeOf(err) != domain.CodeValidation {
				t.Fatalf("err = %v, want a validation error", err)
			}
		})
	}
}

func TestOpenBindsScopesAndTTL(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)

	// Signed for {send}, presented for {send, admin}: scope escalation
	// after signing must fail.
	args := openArgs{Scopes: []domain.Scope{domain.ScopeSend}, TTLMs: (30 * time.Second).Milliseconds()}
	issued, err := f.auth.Issue(ctx, alice.aid, session.PurposeOpen, args, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = f.sessions.Open(ctx, alice.aid, []domain.Scope{domain.ScopeSend, domain.ScopeAdmin}, 30*time.Second, alice.prove(issued, 0))
	if domain.CodeOf(err) != domain.CodeAuth {
		t.Fatalf("err = %v, want an auth error", err)
	}
}

func TestOpenRejectsProofForOtherAID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)
	bob := incept(t, f.store)

	scopes := []domain.Scope{domain.ScopeSend}
	args := openArgs{Scopes: scopes, TTLMs: (30 * time.Second).Milliseconds()}
	issued, err := f.auth.Issue(ctx, bob.aid, session.PurposeOpen, args, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, err = f.sessions.Open(ctx, alice.aid, scopes, 30*time.Second, bob.prove(issued, 0))
	if domain.CodeOf(err) != domain.CodeAuth {
		t.Fatalf("err = %v, want an auth error", err)
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)

	opened := f.open(t, alice, []domain.Scope{domain.ScopeSend}, time.Second)
	f.sessions.Now = func() time.Time { return time.Now().Add(5 * time.Second) }

	if _, err := f.sessions.Validate(ctx, opened.Token, domain.ScopeSend); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestValidateRejectsAfterRotation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)

	opened := f.open(t, alice, []domain.Scope{domain.ScopeSend}, 30*time.Second)

	_, newPub, _ := crypto.GenerateEd25519()
	if _, err := f.store.RotateKeyState(ctx, alice.aid, []string{crypto.EncodeKey(newPub)}, 1, "rot"); err != nil {
		t.Fatalf("RotateKeyState: %v", err)
	}

	if _, err := f.sessions.Validate(ctx, opened.Token, domain.ScopeSend); !errors.Is(err, domain.ErrKSNMismatch) {
		t.Fatalf("err = %v, want ErrKSNMismatch", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	f := newFixture()
	if _, err := f.sessions.Validate(context.Background(), "not-a-token", domain.ScopeSend); domain.CodeOf(err) != domain.CodeNotFound {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestValidateServesSnapshottedClaims(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)

	seedAdmin(t, f.claims, alice.aid)
	opened := f.open(t, alice, []domain.Scope{domain.ScopeSend}, 30*time.Second)

	// Revoking the role after open does not touch the live session; the
	// snapshot stays until the token dies.
	if err := f.claims.UnassignRole(ctx, alice.aid, "ops"); err != nil {
		t.Fatalf("UnassignRole: %v", err)
	}
	id, err := f.sessions.Validate(ctx, opened.Token, domain.ScopeSend)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !claims.Include(id.Claims, claims.KeyAdmin, nil) {
		t.Fatalf("claims = %+v, want the snapshotted admin claim", id.Claims)
	}
}

func seedAdmin(t *testing.T, r *claims.Resolver, aid domain.AID) {
	t.Helper()
	ctx := context.Background()
	if _, err := r.CreateRole(ctx, "ops"); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if _, err := r.CreatePermission(ctx, claims.KeyAdmin, domain.ClaimScope{Unrestricted: true}); err != nil {
		t.Fatalf("CreatePermission: %v", err)
	}
	if err := r.GrantPermission(ctx, "ops", claims.KeyAdmin); err != nil {
		t.Fatalf("GrantPermission: %v", err)
	}
	if err := r.AssignRole(ctx, aid, "ops"); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
}

func (f fixture) revoke(t *testing.T, caller signer, target domain.AID) (int, error) {
	t.Helper()
	ctx := context.Background()
	issued, err := f.auth.Issue(ctx, caller.aid, session.PurposeRevoke, revokeArgs{AID: target}, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return f.sessions.RevokeForAID(ctx, target, caller.prove(issued, 0))
}

func TestRevokeOwnSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)

	first := f.open(t, alice, []domain.Scope{domain.ScopeSend}, 30*time.Second)
	second := f.open(t, alice, []domain.Scope{domain.ScopeReceive}, 30*time.Second)

	n, err := f.revoke(t, alice, alice.aid)
	if err != nil {
		t.Fatalf("RevokeForAID: %v", err)
	}
	if n != 2 {
		t.Fatalf("revoked %d sessions, want 2", n)
	}
	for _, tok := range []string{first.Token, second.Token} {
		if _, err := f.sessions.Validate(ctx, tok, domain.ScopeSend); domain.CodeOf(err) != domain.CodeNotFound {
			t.Fatalf("Validate after revoke: err = %v, want not_found", err)
		}
	}
}

func TestRevokeByAdmin(t *testing.T) {
	f := newFixture()
	alice := incept(t, f.store)
	admin := incept(t, f.store)
	seedAdmin(t, f.claims, admin.aid)

	f.open(t, alice, []domain.Scope{domain.ScopeSend}, 30*time.Second)

	n, err := f.revoke(t, admin, alice.aid)
	if err != nil {
		t.Fatalf("RevokeForAID: %v", err)
	}
	if n != 1 {
		t.Fatalf("revoked %d sessions, want 1", n)
	}
}

func TestRevokeDeniedWithoutAdminClaim(t *testing.T) {
	f := newFixture()
	alice := incept(t, f.store)
	mallory := incept(t, f.store)

	f.open(t, alice, []domain.Scope{domain.ScopeSend}, 30*time.Second)

	if _, err := f.revoke(t, mallory, alice.aid); domain.CodeOf(err) != domain.CodePermission {
		t.Fatalf("err = %v, want a permission error", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	alice := incept(t, f.store)

	short := f.open(t, alice, []domain.Scope{domain.ScopeSend}, time.Second)
	long := f.open(t, alice, []domain.Scope{domain.ScopeSend}, time.Minute)

	f.sessions.Now = func() time.Time { return time.Now().Add(10 * time.Second) }
	n, err := f.sessions.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept %d tokens, want 1", n)
	}

	if _, err := f.sessions.Validate(ctx, short.Token, domain.ScopeSend); domain.CodeOf(err) != domain.CodeNotFound {
		t.Fatalf("short token: err = %v, want not_found", err)
	}
	f.sessions.Now = time.Now
	if _, err := f.sessions.Validate(ctx, long.Token, domain.ScopeSend); err != nil {
		t.Fatalf("long token: %v", err)
	}
}
