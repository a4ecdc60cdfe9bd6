package session

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"

	"keygate/internal/crypto"
	"keygate/internal/domain"
	"keygate/internal/services/claims"
)

const (
	// MaxTTL is the hard ceiling on session lifetime. Short by design: it
	// bounds both the blast radius of a stolen token and the staleness
	// window of snapshotted claims. Requests above it are rejected, not
	// clamped, since a caller asking for a long-lived credential is wrong.
	MaxTTL = 60 * time.Second

	// Challenge purposes bound to session operations.
	PurposeOpen   = "openSession"
	PurposeRevoke = "revokeSessions"
)

// openArgs is the argument set an open-session signature is bound to.
type openArgs struct {
	Scopes []domain.Scope `json:"scopes"`
	TTLMs  int64          `json:"ttlMs"`
}

type revokeArgs struct {
	AID domain.AID `json:"aid"`
}

// Service implements the session-token layer.
type Service struct {
	tokens   domain.TokenStore
	keys     domain.KeyStateStore
	claims   domain.ClaimsSource
	verifier domain.Verifier

	// Now is the time source; injectable for deterministic expiry tests.
	Now func() time.Time
}

func New(tokens domain.TokenStore, keys domain.KeyStateStore, cs domain.ClaimsSource, verifier domain.Verifier) *Service {
	return &Service{tokens: tokens, keys: keys, claims: cs, verifier: verifier, Now: time.Now}
}

// Digest is the storage key for a bearer token: hex BLAKE3 of the opaque
// string. The raw credential is never written anywhere.
func Digest(token string) string {
	sum := blake3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Open mints a bearer token for aid after proof verifies for purpose
// "openSession" over exactly the requested scopes and TTL.
func (s *Service) Open(ctx context.Context, aid domain.AID, scopes []domain.Scope, ttl time.Duration, proof domain.AuthProof) (domain.OpenedSession, error) {
	const op = "session.open"

	if len(scopes) == 0 {
		return domain.OpenedSession{}, domain.E(domain.CodeValidation, op, "at least one scope is required")
	}
	for _, sc := range scopes {
		if !domain.ValidScope(sc) {
			return domain.OpenedSession{}, domain.Ef(domain.CodeValidation, op, "unknown scope %q", sc)
		}
	}
	if ttl <= 0 {
		return domain.OpenedSession{}, domain.E(domain.CodeValidation, op, "ttl must be positive")
	}
	if ttl > MaxTTL {
		return domain.OpenedSession{}, domain.Ef(domain.CodeValidation, op, "ttl %v exceeds ceiling %v", ttl, MaxTTL)
	}

	res, err := s.verifier.Verify(ctx, proof, PurposeOpen, openArgs{Scopes: scopes, TTLMs: ttl.Milliseconds()})
	if err != nil {
		return domain.OpenedSession{}, err
	}
	if res.AID != aid {
		return domain.OpenedSession{}, domain.Ef(domain.CodeAuth, op, "proof is for %s, not %s", res.AID, aid)
	}

	// Snapshot claims now; Validate serves them without an RBAC lookup.
	snapshot, err := s.claims.ResolveClaims(ctx, aid)
	if err != nil {
		return domain.OpenedSession{}, err
	}

	now := s.Now()
	token := crypto.NewToken()
	tok := domain.SessionToken{
		AID:             aid,
		KSN:             res.KSN,
		Scopes:          scopes,
		Claims:          snapshot,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
		UsedChallengeID: proof.ChallengeID,
	}
	if err := s.tokens.PutToken(ctx, Digest(token), tok); err != nil {
		return domain.OpenedSession{}, err
	}
	return domain.OpenedSession{Token: token, ExpiresAt: tok.ExpiresAt}, nil
}

// Validate resolves a presented token for one scoped use. It re-reads the
// key-state registry: a token whose pinned KSN no longer matches the live
// value is dead, which is how key rotation revokes sessions without a list.
func (s *Service) Validate(ctx context.Context, token string, required domain.Scope) (domain.SessionIdentity, error) {
	digest := Digest(token)
	tok, err := s.tokens.GetToken(ctx, digest)
	if err != nil {
		return domain.SessionIdentity{}, err
	}
	if s.Now().After(tok.ExpiresAt) {
		return domain.SessionIdentity{}, domain.ErrTokenExpired
	}
	if !tok.HasScope(required) {
		return domain.SessionIdentity{}, domain.ErrScopeNotGranted
	}

	ks, err := s.keys.GetKeyState(ctx, tok.AID)
	if err != nil {
		return domain.SessionIdentity{}, err
	}
	if ks.KSN != tok.KSN {
		return domain.SessionIdentity{}, domain.ErrKSNMismatch
	}

	// Audit fields only; a lost race here is acceptable.
	if err := s.tokens.TouchToken(ctx, digest, s.Now()); err != nil {
		return domain.SessionIdentity{}, err
	}
	return domain.SessionIdentity{AID: tok.AID, KSN: tok.KSN, Claims: tok.Claims}, nil
}

// RevokeForAID deletes every session for aid: logout, rotation follow-up,
// incident response. The proof must be aid's own, or carry the admin claim.
func (s *Service) RevokeForAID(ctx context.Context, aid domain.AID, proof domain.AuthProof) (int, error) {
	const op = "session.revoke"

	res, err := s.verifier.Verify(ctx, proof, PurposeRevoke, revokeArgs{AID: aid})
	if err != nil {
		return 0, err
	}
	if res.AID != aid {
		callerClaims, err := s.claims.ResolveClaims(ctx, res.AID)
		if err != nil {
			return 0, err
		}
		if !claims.Include(callerClaims, claims.KeyAdmin, nil) {
			return 0, domain.Ef(domain.CodePermission, op, "%s may not revoke sessions for %s", res.AID, aid)
		}
	}
	return s.tokens.DeleteTokensForAID(ctx, aid)
}

// CleanupExpired reaps expired and rotation-orphaned tokens. Validate
// already rejects both; this is storage hygiene, not a security boundary.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	return s.tokens.SweepTokens(ctx, s.Now())
}
