package domain

import "time"

// ListKind selects which of a recipient's lists an entry belongs to.
type ListKind string

const (
	AllowList ListKind = "allow"
	DenyList  ListKind = "deny"
)

// ListEntry is one allow- or deny-list row, owned and managed by Owner.
type ListEntry struct {
	Owner   AID
	Other   AID
	AddedAt time.Time
	Note    string
}

// Block reasons returned in Decision.Reason.
const (
	ReasonDenyList       = "deny-list"
	ReasonNotOnAllowList = "not on allow-list"
)

// Decision is the outcome of an access-control check. Reason is set only
// when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
}
