package keystate

import (
	"context"

	"keygate/internal/crypto"
	"keygate/internal/domain"
)

// PurposeRotate is the challenge purpose a rotation proof must carry.
const PurposeRotate = "rotate"

// rotateArgs is the argument set a rotation signature is bound to.
type rotateArgs struct {
	Keys      []string `json:"keys"`
	Threshold int      `json:"threshold"`
}

// Registry implements the key-state registry over a backing store.
type Registry struct {
	keys     domain.KeyStateStore
	verifier domain.Verifier
}

// New constructs a Registry. verifier may be nil for read-only use; Rotate
// requires it.
func New(keys domain.KeyStateStore, verifier domain.Verifier) *Registry {
	return &Registry{keys: keys, verifier: verifier}
}

// Incept registers a new AID from its inception keys. The AID is the first
// key's CESR encoding, so controlling that key is what the identifier means.
func (r *Registry) Incept(ctx context.Context, keys []string, threshold int, eventRef string) (domain.KeyState, error) {
	if err := validateKeys(keys, threshold); err != nil {
		return domain.KeyState{}, err
	}
	ks := domain.KeyState{
		AID:          domain.AID(keys[0]),
		KSN:          0,
		Keys:         keys,
		Threshold:    threshold,
		LastEventRef: eventRef,
	}
	if err := r.keys.PutKeyState(ctx, ks); err != nil {
		return domain.KeyState{}, err
	}
	return ks, nil
}

// Get returns the live key state for aid.
func (r *Registry) Get(ctx context.Context, aid domain.AID) (domain.KeyState, error) {
	return r.keys.GetKeyState(ctx, aid)
}

// Rotate installs new keys for aid. The proof must verify under the
// *current* keys; you rotate away from keys you still control. The store
// applies the key replacement and the KSN increment as one atomic write.
func (r *Registry) Rotate(ctx context.Context, aid domain.AID, newKeys []string, threshold int, eventRef string, proof domain.AuthProof) (domain.KeyState, error) {
	if err := validateKeys(newKeys, threshold); err != nil {
		return domain.KeyState{}, err
	}
	res, err := r.verifier.Verify(ctx, proof, PurposeRotate, rotateArgs{Keys: newKeys, Threshold: threshold})
	if err != nil {
		return domain.KeyState{}, err
	}
	if res.AID != aid {
		return domain.KeyState{}, domain.Ef(domain.CodeAuth, "keystate.rotate", "proof is for %s, not %s", res.AID, aid)
	}
	return r.keys.RotateKeyState(ctx, aid, newKeys, threshold, eventRef)
}

func validateKeys(keys []string, threshold int) error {
	if len(keys) == 0 {
		return domain.E(domain.CodeValidation, "keystate", "at least one key is required")
	}
	if threshold < 1 || threshold > len(keys) {
		return domain.Ef(domain.CodeValidation, "keystate", "threshold %d out of range for %d keys", threshold, len(keys))
	}
	for _, k := range keys {
		if _, err := crypto.DecodeKey(k); err != nil {
			return err
		}
	}
	return nil
}
