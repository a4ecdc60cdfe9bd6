// Package store provides the durable state backing the trust layer.
//
// Three implementations live here:
//
//   - SQLite: the production store. One WAL-mode database holds key states,
//     challenges, session tokens, allow/deny lists, and the role/permission
//     tables. SQLite's single-writer transactions give the two atomicity
//     guarantees the services need for free: challenge consumption is a
//     compare-and-set UPDATE, and key rotation is a single UPDATE that
//     replaces keys and increments the sequence number together.
//   - Memory: a mutex-guarded in-process store with identical semantics,
//     used by service tests.
//   - Vault: a passphrase-encrypted file (scrypt + ChaCha20-Poly1305) for
//     the locally held signing keys the CLI operates with.
//
// Session-token rows are keyed by a BLAKE3 digest of the bearer token, so
// the database never contains the raw credential.
package store
