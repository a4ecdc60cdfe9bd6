// Package keystate manages the key-state registry: one live record per AID
// holding its current public keys, signing threshold, and monotonically
// increasing key sequence number (KSN).
//
// Inception derives the AID from the first public key, making the
// identifier self-certifying. Rotation requires a challenge proof signed
// under the keys being replaced, and bumps the KSN in the same atomic write
// that installs the new keys. Every proof and session token pinned to the
// old KSN is void the instant the rotation lands.
package keystate
