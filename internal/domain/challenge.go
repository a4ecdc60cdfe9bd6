package domain

import "time"

// Challenge is a one-time, purpose- and argument-bound authentication
// challenge. It is consumable at most once, and only for the purpose and
// argsHash it was issued for.
type Challenge struct {
	ID        string
	Nonce     string
	AID       AID
	Purpose   string
	ArgsHash  string // hex SHA-256 of the canonical JSON of the bound args
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// IssuedChallenge is what Issue hands back to the caller: the id to echo in
// the proof and the exact bytes to sign.
type IssuedChallenge struct {
	ChallengeID   string
	PayloadToSign []byte
	ExpiresAt     time.Time
}

// AuthProof is a caller's signed response to a challenge. Sigs are indexed
// signatures of the form "<key-index>-<base64url signature>".
type AuthProof struct {
	ChallengeID string   `json:"challengeId"`
	Sigs        []string `json:"sigs"`
	KSN         uint32   `json:"ksn"`
}

// AuthResult is the identity a successful verification establishes. KSN is
// always the registry's value at verification time.
type AuthResult struct {
	AID AID
	KSN uint32
}
