package crypto_test

import (
	"testing"

	"keygate/internal/crypto"
)

func TestCanonicalJSONSortsKeys(t *testing.T) {
	got, err := crypto.CanonicalJSON(map[string]any{
		"zulu":  1,
		"alpha": "x",
		"mike":  map[string]any{"c": true, "a": nil, "b": []any{"y", 2}},
	})
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	want := `{"alpha":"x","mike":{"a":null,"b":["y",2],"c":true},"zulu":1}`
	if string(got) != want {
		t.Fatalf("canonical form = %s, want %s", got, want)
	}
}

func TestCanonicalJSONStructTags(t *testing.T) {
	type args struct {
		To     string `json:"to"`
		CtHash string `json:"ctHash"`
	}
	got, err := crypto.CanonicalJSON(args{To: "B", CtHash: "deadbeef"})
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	want := `{"ctHash":"deadbeef","to":"B"}`
	if string(got) != want {
		t.Fatalf("canonical form = %s, want %s", got, want)
	}
}

func TestHashArgsOrderIndependent(t *testing.T) {
	a, err := crypto.HashArgs(map[string]any{"to": "B", "ctHash": "deadbeef"})
	if err != nil {
		t.Fatalf("HashArgs: %v", err)
	}
	b, err := crypto.HashArgs(map[string]any{"ctHash": "deadbeef", "to": "B"})
	if err != nil {
		t.Fatalf("HashArgs: %v", err)
	}
	if a != b {
		t.Fatal("hash depends on map insertion order")
	}

	c, err := crypto.HashArgs(map[string]any{"to": "C", "ctHash": "deadbeef"})
	if err != nil {
		t.Fatalf("HashArgs: %v", err)
	}
	if a == c {
		t.Fatal("different args hash to the same value")
	}
}

func TestCanonicalJSONNumbers(t *testing.T) {
	// Large integers must not pick up float formatting.
	got, err := crypto.CanonicalJSON(map[string]any{"ts": int64(1735689600123)})
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	if string(got) != `{"ts":1735689600123}` {
		t.Fatalf("canonical form = %s", got)
	}
}
