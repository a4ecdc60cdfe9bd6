package domain

// AID is a self-certifying identifier derived from a public key. For a
// single-key identity it equals the CESR encoding of the inception key.
type AID string

// KeyState is the live key material for one AID. There is exactly one record
// per AID; Rotate replaces Keys/Threshold and increments KSN atomically.
type KeyState struct {
	AID          AID
	KSN          uint32
	Keys         []string // CESR-encoded ('D' + base64url raw Ed25519 key)
	Threshold    int
	LastEventRef string
}

// Identity is locally held key material for one AID: the signing keys the
// challenge ceremony and the group engine both consume.
type Identity struct {
	AID  AID
	Priv Ed25519Private
	Pub  Ed25519Public
}
