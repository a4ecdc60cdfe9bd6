// Package session exchanges one verified challenge response for a
// short-lived bearer token, so streaming operations do not re-run the full
// signing ceremony per call.
//
// A token is an opaque random string; the store only ever sees its BLAKE3
// digest. Each token pins the key sequence number current at issuance:
// validation re-reads the registry and rejects on any drift, so rotating a
// key silently voids every outstanding token with no revocation list. The
// caller's claims are snapshotted into the token at open time; permission
// changes do not reach an open session until it expires (the TTL ceiling
// bounds this window) or is revoked.
package session
