package commands

import (
	"fmt"

	"keygate/internal/crypto"
	"keygate/internal/domain"
)

// loadIdentity reads the local signing identity from the vault.
func loadIdentity() (domain.Identity, error) {
	if passphrase == "" {
		return domain.Identity{}, fmt.Errorf("passphrase required (-p)")
	}
	return appCtx.Vault.LoadIdentity(passphrase)
}

// signProof answers an issued challenge with the vault key. The CLI holds a
// single signing key, so the indexed signature is always index 0.
func signProof(id domain.Identity, issued domain.IssuedChallenge, ksn uint32) domain.AuthProof {
	return domain.AuthProof{
		ChallengeID: issued.ChallengeID,
		Sigs:        []string{crypto.EncodeIndexedSig(0, crypto.SignEd25519(id.Priv, issued.PayloadToSign))},
		KSN:         ksn,
	}
}
