// Package challenge implements the challenge–response authority at the
// heart of the trust layer.
//
// Issue hands a caller a one-time payload to sign: a canonical JSON object
// binding a random nonce, the caller's AID, the operation purpose, a hash of
// the operation arguments, an audience tag, and the issue timestamp. Verify
// reconstructs that payload from the stored record, never from anything the
// client submits, checks the indexed signatures against the AID's current
// key state up to its threshold, and consumes the challenge with an atomic
// check-and-set so a signed response can be replayed neither against other
// arguments nor a second time.
package challenge
