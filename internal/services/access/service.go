package access

import (
	"context"
	"time"

	"keygate/internal/domain"
)

// Resolver evaluates and administers allow/deny lists.
type Resolver struct {
	lists domain.ListStore

	// Now is the time source for AddedAt stamps; injectable for tests.
	Now func() time.Time
}

func New(lists domain.ListStore) *Resolver {
	return &Resolver{lists: lists, Now: time.Now}
}

// Allow adds other to owner's allow list. Adding an already-listed AID is
// success.
func (r *Resolver) Allow(ctx context.Context, owner, other domain.AID, note string) error {
	return r.add(ctx, domain.AllowList, owner, other, note)
}

// Unallow removes other from owner's allow list.
func (r *Resolver) Unallow(ctx context.Context, owner, other domain.AID) error {
	return r.lists.RemoveListEntry(ctx, domain.AllowList, owner, other)
}

// Deny adds other to owner's deny list.
func (r *Resolver) Deny(ctx context.Context, owner, other domain.AID, note string) error {
	return r.add(ctx, domain.DenyList, owner, other, note)
}

// Undeny removes other from owner's deny list.
func (r *Resolver) Undeny(ctx context.Context, owner, other domain.AID) error {
	return r.lists.RemoveListEntry(ctx, domain.DenyList, owner, other)
}

func (r *Resolver) add(ctx context.Context, kind domain.ListKind, owner, other domain.AID, note string) error {
	if owner == "" || other == "" {
		return domain.E(domain.CodeValidation, "access.add", "owner and other AIDs are required")
	}
	return r.lists.AddListEntry(ctx, kind, domain.ListEntry{
		Owner:   owner,
		Other:   other,
		AddedAt: r.Now(),
		Note:    note,
	})
}

// CanMessage decides whether sender may message recipient.
func (r *Resolver) CanMessage(ctx context.Context, sender, recipient domain.AID) (domain.Decision, error) {
	decisions, err := r.CanMessageBatch(ctx, []domain.AID{sender}, recipient)
	if err != nil {
		return domain.Decision{}, err
	}
	return decisions[sender], nil
}

// CanMessageBatch evaluates the rule for many senders against one fetch of
// the recipient's two lists.
func (r *Resolver) CanMessageBatch(ctx context.Context, senders []domain.AID, recipient domain.AID) (map[domain.AID]domain.Decision, error) {
	deny, err := r.members(ctx, domain.DenyList, recipient)
	if err != nil {
		return nil, err
	}
	allow, err := r.members(ctx, domain.AllowList, recipient)
	if err != nil {
		return nil, err
	}

	decisions := make(map[domain.AID]domain.Decision, len(senders))
	for _, sender := range senders {
		decisions[sender] = decide(sender, allow, deny)
	}
	return decisions, nil
}

func decide(sender domain.AID, allow, deny map[domain.AID]bool) domain.Decision {
	// Deny always wins, even for allow-listed senders.
	if deny[sender] {
		return domain.Decision{Reason: domain.ReasonDenyList}
	}
	// A non-empty allow list is active: membership is required.
	if len(allow) > 0 && !allow[sender] {
		return domain.Decision{Reason: domain.ReasonNotOnAllowList}
	}
	return domain.Decision{Allowed: true}
}

func (r *Resolver) members(ctx context.Context, kind domain.ListKind, owner domain.AID) (map[domain.AID]bool, error) {
	entries, err := r.lists.ListEntries(ctx, kind, owner)
	if err != nil {
		return nil, err
	}
	set := make(map[domain.AID]bool, len(entries))
	for _, e := range entries {
		set[e.Other] = true
	}
	return set, nil
}
