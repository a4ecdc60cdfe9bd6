package crypto

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"

	"keygate/internal/domain"
	"keygate/internal/util/memzero"
)

// PrivateToX25519 converts an Ed25519 private key to its X25519 counterpart:
// SHA-512 of the seed, clamped per RFC 7748. Signing keys are never used for
// Diffie–Hellman directly; every DH here goes through this map first.
func PrivateToX25519(priv domain.Ed25519Private) domain.X25519Private {
	h := sha512.Sum512(priv.Seed())
	var out domain.X25519Private
	copy(out[:], h[:32])
	memzero.Zero(h[:])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return out
}

// PublicToX25519 converts an Ed25519 public key to its X25519 counterpart
// via the birational Edwards→Montgomery map.
func PublicToX25519(pub domain.Ed25519Public) (domain.X25519Public, error) {
	var out domain.X25519Public
	p, err := new(edwards25519.Point).SetBytes(pub.Slice())
	if err != nil {
		return out, domain.Ef(domain.CodeValidation, "crypto.convert", "not a valid Ed25519 point")
	}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}

// DH computes the X25519 shared secret. The caller owns wiping the result.
func DH(priv domain.X25519Private, pub domain.X25519Public) (out [32]byte, err error) {
	secret, err := curve25519.X25519(priv.Slice(), pub.Slice())
	if err != nil {
		return out, err
	}
	copy(out[:], secret)
	memzero.Zero(secret)
	return out, nil
}
