package domain

import "time"

// Scope names one operation a session token may be used for.
type Scope string

const (
	ScopeSend    Scope = "send"
	ScopeReceive Scope = "receive"
	ScopeAck     Scope = "ack"
	ScopeAdmin   Scope = "admin"
)

// ValidScope reports whether s is one of the known scopes.
func ValidScope(s Scope) bool {
	switch s {
	case ScopeSend, ScopeReceive, ScopeAck, ScopeAdmin:
		return true
	}
	return false
}

// SessionToken is a short-lived bearer credential that amortizes the
// challenge ceremony for streaming use. The opaque token string itself is
// never stored; stores key records by a digest of it. KSN is pinned at
// issuance so a key rotation silently voids the token.
type SessionToken struct {
	AID             AID
	KSN             uint32
	Scopes          []Scope
	Claims          []Claim // snapshotted at issuance
	CreatedAt       time.Time
	ExpiresAt       time.Time
	UsedChallengeID string
	LastUsedAt      time.Time
	UseCount        int64
}

// HasScope reports whether the token grants s.
func (t SessionToken) HasScope(s Scope) bool {
	for _, have := range t.Scopes {
		if have == s {
			return true
		}
	}
	return false
}

// OpenedSession is the result of opening a session: the bearer token and its
// expiry. The token is the only copy; it cannot be recovered later.
type OpenedSession struct {
	Token     string
	ExpiresAt time.Time
}

// SessionIdentity is the identity and claims a validated token resolves to.
type SessionIdentity struct {
	AID    AID
	KSN    uint32
	Claims []Claim
}
