// Package groupmsg implements zero-knowledge group message encryption.
//
// One message for N recipients costs one content encryption plus N key
// wraps: a fresh 256-bit group key seals the body, then for every member the
// sender runs X25519 with converted signing keys and seals the group key
// under the derived wrap key. The storage layer only ever moves ciphertext,
// nonces, and wrapped keys; it can never decrypt.
//
// Each message gets an independent group key, so compromising one message
// reveals nothing about any other. The content AEAD is bound to
// "groupID:senderAID" as additional data, so a ciphertext cannot be replayed
// into another group or attributed to a different sender.
//
// All derived secrets (group key, per-member shared secrets, wrap keys) are
// wiped on every exit path, including errors.
package groupmsg
