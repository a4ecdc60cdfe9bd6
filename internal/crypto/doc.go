// Package crypto exposes the primitives the trust layer is built from.
//
// Contents
//
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - Ed25519 → X25519 conversion via the birational Edwards↔Montgomery map
//     (PrivateToX25519, PublicToX25519) and Diffie–Hellman (DH)
//   - ChaCha20-Poly1305 authenticated encryption (Seal, Open) and HKDF key
//     derivation for key wrapping (DeriveWrapKey)
//   - CESR-style key and indexed-signature encoding (EncodeKey, DecodeKey,
//     EncodeIndexedSig, DecodeIndexedSig, AIDFromPublicKey)
//   - Canonical JSON for signing payloads and argument hashing
//     (CanonicalJSON, HashArgs)
//   - Random material (RandBytes, NewToken, NewNonceB64)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Fixed-size key types come from internal/domain. Callers must treat every
// derived secret as sensitive and wipe it with internal/util/memzero when
// done; nothing in this package retains key material.
package crypto
