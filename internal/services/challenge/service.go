package challenge

import (
	"context"
	"time"

	"github.com/google/uuid"

	"keygate/internal/crypto"
	"keygate/internal/domain"
)

const (
	// MaxTTL caps challenge lifetime. Requests above it are clamped:
	// issuing a shorter-lived challenge than asked for is harmless.
	MaxTTL = 2 * time.Minute

	// DefaultTTL applies when the caller passes no TTL.
	DefaultTTL = 30 * time.Second
)

// Authority issues and verifies one-time challenges against the key-state
// registry.
type Authority struct {
	keys       domain.KeyStateStore
	challenges domain.ChallengeStore
	audience   string

	// Now is the time source; injectable for deterministic expiry tests.
	Now func() time.Time
}

// New constructs an Authority. audience is the fixed tag baked into every
// signed payload so a signature for one deployment cannot verify in another.
func New(keys domain.KeyStateStore, challenges domain.ChallengeStore, audience string) *Authority {
	return &Authority{keys: keys, challenges: challenges, audience: audience, Now: time.Now}
}

// Issue creates a challenge binding aid to one invocation of purpose with
// exactly these args, and returns the payload bytes the caller must sign.
func (a *Authority) Issue(ctx context.Context, aid domain.AID, purpose string, args any, ttl time.Duration) (domain.IssuedChallenge, error) {
	if purpose == "" {
		return domain.IssuedChallenge{}, domain.E(domain.CodeValidation, "challenge.issue", "purpose is required")
	}
	if _, err := a.keys.GetKeyState(ctx, aid); err != nil {
		return domain.IssuedChallenge{}, err
	}

	switch {
	case ttl <= 0:
		ttl = DefaultTTL
	case ttl > MaxTTL:
		ttl = MaxTTL
	}

	argsHash, err := crypto.HashArgs(args)
	if err != nil {
		return domain.IssuedChallenge{}, domain.Wrap(domain.CodeValidation, "challenge.issue", err)
	}

	now := a.Now()
	ch := domain.Challenge{
		ID:        uuid.NewString(),
		Nonce:     crypto.NewNonceB64(),
		AID:       aid,
		Purpose:   purpose,
		ArgsHash:  argsHash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	payload, err := payloadBytes(ch, a.audience)
	if err != nil {
		return domain.IssuedChallenge{}, err
	}
	if err := a.challenges.PutChallenge(ctx, ch); err != nil {
		return domain.IssuedChallenge{}, err
	}
	return domain.IssuedChallenge{
		ChallengeID:   ch.ID,
		PayloadToSign: payload,
		ExpiresAt:     ch.ExpiresAt,
	}, nil
}

// Verify checks a signed response. On success the challenge is atomically
// consumed and the caller's identity is returned with the registry's
// *current* KSN. Authentication failures are terminal: the caller re-runs
// the full ceremony, nothing here retries.
func (a *Authority) Verify(ctx context.Context, proof domain.AuthProof, expectedPurpose string, args any) (domain.AuthResult, error) {
	const op = "challenge.verify"

	ch, err := a.challenges.GetChallenge(ctx, proof.ChallengeID)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if ch.Used {
		return domain.AuthResult{}, domain.ErrChallengeUsed
	}
	if a.Now().After(ch.ExpiresAt) {
		return domain.AuthResult{}, domain.ErrChallengeExpired
	}
	if ch.Purpose != expectedPurpose {
		return domain.AuthResult{}, domain.Ef(domain.CodeAuth, op, "challenge was issued for purpose %q", ch.Purpose)
	}

	// Recompute the args hash from what the caller is actually asking for.
	// This is what stops a valid signature being replayed against
	// different arguments.
	argsHash, err := crypto.HashArgs(args)
	if err != nil {
		return domain.AuthResult{}, domain.Wrap(domain.CodeValidation, op, err)
	}
	if argsHash != ch.ArgsHash {
		return domain.AuthResult{}, domain.E(domain.CodeAuth, op, "arguments do not match the challenged operation")
	}

	ks, err := a.keys.GetKeyState(ctx, ch.AID)
	if err != nil {
		return domain.AuthResult{}, err
	}
	if proof.KSN != ks.KSN {
		return domain.AuthResult{}, domain.ErrKSNMismatch
	}

	// Reconstruct the exact signed payload from stored fields; the client
	// never supplies it.
	payload, err := payloadBytes(ch, a.audience)
	if err != nil {
		return domain.AuthResult{}, err
	}

	valid := 0
	seen := make(map[int]bool)
	for _, sig := range proof.Sigs {
		index, raw, err := crypto.DecodeIndexedSig(sig)
		if err != nil {
			return domain.AuthResult{}, err
		}
		if index >= len(ks.Keys) || seen[index] {
			continue
		}
		seen[index] = true
		pub, err := crypto.DecodeKey(ks.Keys[index])
		if err != nil {
			return domain.AuthResult{}, err
		}
		if crypto.VerifyEd25519(pub, payload, raw) {
			valid++
		}
	}
	if valid < ks.Threshold {
		return domain.AuthResult{}, domain.ErrThresholdNotMet
	}

	// Atomic consumption: of two racing submissions of the same signed
	// response, exactly one passes this point.
	if err := a.challenges.ConsumeChallenge(ctx, ch.ID); err != nil {
		return domain.AuthResult{}, err
	}
	return domain.AuthResult{AID: ch.AID, KSN: ks.KSN}, nil
}

// CleanupExpired sweeps challenges whose expiry has passed. Verify already
// rejects them; this is storage hygiene.
func (a *Authority) CleanupExpired(ctx context.Context) (int, error) {
	return a.challenges.DeleteExpiredChallenges(ctx, a.Now())
}

// payloadBytes renders the canonical signing payload for ch. Key order is
// fixed by the canonical serializer, not by this map.
func payloadBytes(ch domain.Challenge, audience string) ([]byte, error) {
	return crypto.CanonicalJSON(map[string]any{
		"aid":      string(ch.AID),
		"argsHash": ch.ArgsHash,
		"aud":      audience,
		"nonce":    ch.Nonce,
		"purpose":  ch.Purpose,
		"ts":       ch.CreatedAt.UnixMilli(),
	})
}

var _ domain.Verifier = (*Authority)(nil)
