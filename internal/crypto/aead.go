package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"keygate/internal/domain"
	"keygate/internal/util/memzero"
)

const (
	KeyBytes   = chacha20poly1305.KeySize
	NonceBytes = chacha20poly1305.NonceSize
)

// Seal encrypts plaintext under key with a fresh random nonce and the given
// additional data. key must be KeyBytes long.
func Seal(key, plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, NonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return nonce, aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts ciphertext. Any tampering (ciphertext, nonce, or aad) fails
// with domain.ErrDecryptionFailed; a wrong key is indistinguishable from
// tampering on purpose.
func Open(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceBytes {
		return nil, domain.ErrDecryptionFailed
	}
	pt, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}
	return pt, nil
}

// DeriveWrapKey derives a KeyBytes AEAD key from an ECDH shared secret with
// HKDF-SHA256. The shared secret is wiped before returning.
func DeriveWrapKey(shared []byte, info string) ([]byte, error) {
	key := make([]byte, KeyBytes)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, []byte(info)), key); err != nil {
		return nil, err
	}
	memzero.Zero(shared)
	return key, nil
}
