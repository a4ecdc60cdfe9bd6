package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// RandBytes returns n cryptographically random bytes.
func RandBytes(n int) []byte {
	b := make([]byte, n)
	// don't care about recovering from crypto/rand failures.
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand call failed")
	}
	return b
}

// NewToken returns an opaque bearer token with 256 bits of entropy, encoded
// as unpadded base64url. The token carries no structure.
func NewToken() string {
	return base64.RawURLEncoding.EncodeToString(RandBytes(32))
}

// NewNonceB64 returns a random challenge nonce as unpadded base64url.
func NewNonceB64() string {
	return base64.RawURLEncoding.EncodeToString(RandBytes(16))
}
