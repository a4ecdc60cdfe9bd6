package access_test

import (
	"context"
	"testing"

	"keygate/internal/domain"
	"keygate/internal/services/access"
	"keygate/internal/store"
)

func TestDefaultAllow(t *testing.T) {
	r := access.New(store.NewMemory())

	d, err := r.CanMessage(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("CanMessage: %v", err)
	}
	if !d.Allowed {
		t.Fatalf("decision = %+v, want allowed (no lists configured)", d)
	}
}

func TestDenyListBlocks(t *testing.T) {
	ctx := context.Background()
	r := access.New(store.NewMemory())

	if err := r.Deny(ctx, "bob", "alice", "spam"); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	d, err := r.CanMessage(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("CanMessage: %v", err)
	}
	if d.Allowed || d.Reason != domain.ReasonDenyList {
		t.Fatalf("decision = %+v, want blocked with %q", d, domain.ReasonDenyList)
	}
}

func TestDenyBeatsAllow(t *testing.T) {
	ctx := context.Background()
	r := access.New(store.NewMemory())

	if err := r.Allow(ctx, "bob", "alice", ""); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if err := r.Deny(ctx, "bob", "alice", ""); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	d, err := r.CanMessage(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("CanMessage: %v", err)
	}
	if d.Allowed || d.Reason != domain.ReasonDenyList {
		t.Fatalf("decision = %+v, want deny-list to win", d)
	}
}

func TestActiveAllowListFiltersOthers(t *testing.T) {
	ctx := context.Background()
	r := access.New(store.NewMemory())

	if err := r.Allow(ctx, "bob", "carol", ""); err != nil {
		t.Fatalf("Allow: %v", err)
	}

	if d, _ := r.CanMessage(ctx, "carol", "bob"); !d.Allowed {
		t.Fatalf("carol should pass an allow list she is on: %+v", d)
	}
	d, _ := r.CanMessage(ctx, "alice", "bob")
	if d.Allowed || d.Reason != domain.ReasonNotOnAllowList {
		t.Fatalf("decision for alice = %+v, want blocked with %q", d, domain.ReasonNotOnAllowList)
	}

	// Emptying the allow list deactivates it.
	if err := r.Unallow(ctx, "bob", "carol"); err != nil {
		t.Fatalf("Unallow: %v", err)
	}
	if d, _ := r.CanMessage(ctx, "alice", "bob"); !d.Allowed {
		t.Fatalf("decision after list emptied = %+v, want default-allow", d)
	}
}

func TestUndenyRestores(t *testing.T) {
	ctx := context.Background()
	r := access.New(store.NewMemory())

	if err := r.Deny(ctx, "bob", "alice", ""); err != nil {
		t.Fatalf("Deny: %v", err)
	}
	if err := r.Undeny(ctx, "bob", "alice"); err != nil {
		t.Fatalf("Undeny: %v", err)
	}
	if d, _ := r.CanMessage(ctx, "alice", "bob"); !d.Allowed {
		t.Fatalf("decision after undeny = %+v, want allowed", d)
	}
}

func TestCanMessageBatch(t *testing.T) {
	ctx := context.Background()
	r := access.New(store.NewMemory())

	if err := r.Allow(ctx, "bob", "carol", ""); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if err := r.Deny(ctx, "bob", "mallory", ""); err != nil {
		t.Fatalf("Deny: %v", err)
	}

	got, err := r.CanMessageBatch(ctx, []domain.AID{"carol", "mallory", "alice"}, "bob")
	if err != nil {
		t.Fatalf("CanMessageBatch: %v", err)
	}
	if !got["carol"].Allowed {
		t.Fatalf("carol = %+v, want allowed", got["carol"])
	}
	if got["mallory"].Reason != domain.ReasonDenyList {
		t.Fatalf("mallory = %+v, want deny-list", got["mallory"])
	}
	if got["alice"].Reason != domain.ReasonNotOnAllowList {
		t.Fatalf("alice = %+v, want not on allow-list", got["alice"])
	}
}
