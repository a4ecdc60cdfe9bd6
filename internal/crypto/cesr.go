package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"keygate/internal/domain"
)

// PrefixEd25519 tags a non-transferable Ed25519 public key in CESR-style
// encodings: one ASCII type byte followed by unpadded base64url of the raw
// 32 key bytes.
const PrefixEd25519 = "D"

// EncodeKey renders pub in CESR form.
func EncodeKey(pub domain.Ed25519Public) string {
	return PrefixEd25519 + base64.RawURLEncoding.EncodeToString(pub.Slice())
}

// DecodeKey parses a CESR-encoded Ed25519 public key.
func DecodeKey(s string) (domain.Ed25519Public, error) {
	var out domain.Ed25519Public
	if !strings.HasPrefix(s, PrefixEd25519) {
		return out, domain.Ef(domain.CodeValidation, "crypto.cesr", "unsupported key prefix in %q", s)
	}
	raw, err := base64.RawURLEncoding.DecodeString(s[len(PrefixEd25519):])
	if err != nil {
		return out, domain.Ef(domain.CodeValidation, "crypto.cesr", "malformed key encoding: %v", err)
	}
	if len(raw) != len(out) {
		return out, domain.Ef(domain.CodeValidation, "crypto.cesr", "key is %d bytes, want %d", len(raw), len(out))
	}
	copy(out[:], raw)
	return out, nil
}

// AIDFromPublicKey derives the self-certifying identifier for a single-key
// identity: it is simply the CESR encoding of the inception key.
func AIDFromPublicKey(pub domain.Ed25519Public) domain.AID {
	return domain.AID(EncodeKey(pub))
}

// Fingerprint renders pub as a short hex string for display next to an AID:
// SHA-256 truncated to 10 bytes (20 hex chars).
func Fingerprint(pub domain.Ed25519Public) string {
	sum := sha256.Sum256(pub.Slice())
	return hex.EncodeToString(sum[:10])
}

// EncodeIndexedSig renders an indexed signature: "<key-index>-<base64url
// signature>", unpadded. The index selects which key-state entry to verify
// against.
func EncodeIndexedSig(index int, sig []byte) string {
	return strconv.Itoa(index) + "-" + base64.RawURLEncoding.EncodeToString(sig)
}

// DecodeIndexedSig parses an indexed signature.
func DecodeIndexedSig(s string) (int, []byte, error) {
	idx, rest, ok := strings.Cut(s, "-")
	if !ok {
		return 0, nil, domain.Ef(domain.CodeValidation, "crypto.cesr", "indexed signature missing separator")
	}
	index, err := strconv.Atoi(idx)
	if err != nil || index < 0 {
		return 0, nil, domain.Ef(domain.CodeValidation, "crypto.cesr", "bad signature index %q", idx)
	}
	sig, err := base64.RawURLEncoding.DecodeString(rest)
	if err != nil {
		return 0, nil, domain.Ef(domain.CodeValidation, "crypto.cesr", "malformed signature encoding: %v", err)
	}
	return index, sig, nil
}
