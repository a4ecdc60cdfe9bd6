package domain

// ClaimScope is the closed set of scoping shapes a permission's data can
// take: everything, or an explicit id set. Keeping this typed (rather than an
// opaque payload interpreted ad hoc) keeps claim checks statically checkable.
type ClaimScope struct {
	Unrestricted bool     `cbor:"1,keyasint,omitempty"`
	IDs          []string `cbor:"2,keyasint,omitempty"`
}

// Covers reports whether the scope authorizes the given resource id.
func (s ClaimScope) Covers(id string) bool {
	if s.Unrestricted {
		return true
	}
	for _, have := range s.IDs {
		if have == id {
			return true
		}
	}
	return false
}

// Claim is a resolved (permission key, scope) pair derived from a caller's
// roles. Claims are derived, never stored directly against an AID.
type Claim struct {
	Key   string     `cbor:"1,keyasint"`
	Scope ClaimScope `cbor:"2,keyasint,omitempty"`
}

// Role is a named bundle of permissions.
type Role struct {
	ID   int64
	Name string
}

// Permission is a grantable capability: a key string plus optional scoping
// data. Unique by Key.
type Permission struct {
	ID    int64
	Key   string
	Scope ClaimScope
}
