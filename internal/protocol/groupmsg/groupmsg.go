package groupmsg

import (
	"fmt"

	"keygate/internal/crypto"
	"keygate/internal/domain"
	"keygate/internal/util/memzero"
)

// wrapInfo is the HKDF info string for deriving per-member wrap keys from
// ECDH output.
const wrapInfo = "keygate-groupkey-wrap"

// contentAAD binds a ciphertext to its routing context.
func contentAAD(groupID string, sender domain.AID) []byte {
	return []byte(groupID + ":" + string(sender))
}

// Encrypt seals plaintext for every member in members under a fresh
// ephemeral group key. The full EncryptedKeys map is built before anything
// is returned; a partial map is never visible to callers.
func Encrypt(
	plaintext []byte,
	members map[domain.AID]domain.Ed25519Public,
	senderPriv domain.Ed25519Private,
	groupID string,
	sender domain.AID,
) (domain.GroupMessage, error) {
	if len(members) == 0 {
		return domain.GroupMessage{}, domain.E(domain.CodeValidation, "groupmsg.encrypt", "no recipients")
	}

	// Fresh random group key per message; never derived, never persisted.
	groupKey := crypto.RandBytes(crypto.KeyBytes)
	defer memzero.Zero(groupKey)

	aad := contentAAD(groupID, sender)
	contentNonce, content, err := crypto.Seal(groupKey, plaintext, aad)
	if err != nil {
		return domain.GroupMessage{}, fmt.Errorf("sealing content: %w", err)
	}

	// Convert the sender's signing key once; reuse for every member.
	senderX := crypto.PrivateToX25519(senderPriv)
	defer memzero.Zero32((*[32]byte)(&senderX))

	wrapped := make(map[domain.AID]domain.WrappedKey, len(members))
	for aid, pub := range members {
		memberX, err := crypto.PublicToX25519(pub)
		if err != nil {
			return domain.GroupMessage{}, fmt.Errorf("converting key for %s: %w", aid, err)
		}
		wk, err := wrapKeyFor(senderX, memberX)
		if err != nil {
			return domain.GroupMessage{}, err
		}
		keyNonce, sealedKey, err := crypto.Seal(wk, groupKey, nil)
		memzero.Zero(wk)
		if err != nil {
			return domain.GroupMessage{}, fmt.Errorf("wrapping key for %s: %w", aid, err)
		}
		wrapped[aid] = domain.WrappedKey{EncryptedKey: sealedKey, Nonce: keyNonce}
	}

	return domain.GroupMessage{
		EncryptedContent: content,
		Nonce:            contentNonce,
		EncryptedKeys:    wrapped,
		SenderAID:        sender,
		GroupID:          groupID,
		AAD:              aad,
	}, nil
}

// Decrypt recovers the plaintext of msg for own. It fails with
// domain.ErrNoKeyForRecipient when own was not a recipient, and with
// domain.ErrDecryptionFailed on any tampering or wrong key; the two crypto
// failure modes are deliberately indistinguishable.
func Decrypt(
	msg domain.GroupMessage,
	ownPriv domain.Ed25519Private,
	own domain.AID,
	senderPub domain.Ed25519Public,
) ([]byte, error) {
	wrapped, ok := msg.EncryptedKeys[own]
	if !ok {
		return nil, domain.ErrNoKeyForRecipient
	}

	ownX := crypto.PrivateToX25519(ownPriv)
	defer memzero.Zero32((*[32]byte)(&ownX))

	senderX, err := crypto.PublicToX25519(senderPub)
	if err != nil {
		return nil, err
	}

	wk, err := wrapKeyFor(ownX, senderX)
	if err != nil {
		return nil, err
	}
	groupKey, err := crypto.Open(wk, wrapped.Nonce, wrapped.EncryptedKey, nil)
	memzero.Zero(wk)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(groupKey)

	return crypto.Open(groupKey, msg.Nonce, msg.EncryptedContent, contentAAD(msg.GroupID, msg.SenderAID))
}

// wrapKeyFor runs ECDH between ours and theirs and derives the AEAD wrap
// key. The raw shared secret never leaves this function.
func wrapKeyFor(ours domain.X25519Private, theirs domain.X25519Public) ([]byte, error) {
	shared, err := crypto.DH(ours, theirs)
	if err != nil {
		return nil, err
	}
	// DeriveWrapKey wipes the shared secret slice it is handed.
	return crypto.DeriveWrapKey(shared[:], wrapInfo)
}
