package crypto_test

import (
	"bytes"
	"strings"
	"testing"

	"keygate/internal/crypto"
)

func TestEncodeDecodeKey(t *testing.T) {
	_, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	enc := crypto.EncodeKey(pub)
	if !strings.HasPrefix(enc, "D") {
		t.Fatalf("encoded key %q does not start with D", enc)
	}
	if strings.ContainsAny(enc, "=+/") {
		t.Fatalf("encoded key %q contains padding or non-url characters", enc)
	}

	back, err := crypto.DecodeKey(enc)
	if err != nil {
		t.Fatalf("DecodeKey: %v", err)
	}
	if back != pub {
		t.Fatal("decoded key differs from original")
	}
}

func TestDecodeKeyRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"Xabc",            // unknown prefix
		"D!!!",            // not base64url
		"Dabc",            // wrong length
		"D" + strings.Repeat("A", 100), // too long
	}
	for _, c := range cases {
		if _, err := crypto.DecodeKey(c); err == nil {
			t.Errorf("DecodeKey(%q): want error, got nil", c)
		}
	}
}

func TestIndexedSigRoundTrip(t *testing.T) {
	priv, _, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	sig := crypto.SignEd25519(priv, []byte("payload"))

	enc := crypto.EncodeIndexedSig(2, sig)
	if !strings.HasPrefix(enc, "2-") {
		t.Fatalf("indexed signature %q missing index prefix", enc)
	}

	idx, back, err := crypto.DecodeIndexedSig(enc)
	if err != nil {
		t.Fatalf("DecodeIndexedSig: %v", err)
	}
	if idx != 2 {
		t.Fatalf("index = %d, want 2", idx)
	}
	if !bytes.Equal(back, sig) {
		t.Fatal("decoded signature differs from original")
	}
}

func TestDecodeIndexedSigRejectsMalformed(t *testing.T) {
	for _, c := range []string{"", "nodash", "x-abcd", "-1-abcd", "0-!!!"} {
		if _, _, err := crypto.DecodeIndexedSig(c); err == nil {
			t.Errorf("DecodeIndexedSig(%q): want error, got nil", c)
		}
	}
}

func TestFingerprint(t *testing.T) {
	_, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	fp := crypto.Fingerprint(pub)
	if len(fp) != 20 {
		t.Fatalf("fingerprint %q is %d chars, want 20", fp, len(fp))
	}
	if fp != crypto.Fingerprint(pub) {
		t.Fatal("fingerprint is not deterministic")
	}

	_, other, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	if fp == crypto.Fingerprint(other) {
		t.Fatal("distinct keys share a fingerprint")
	}
}

func TestAIDFromPublicKey(t *testing.T) {
	_, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	aid := crypto.AIDFromPublicKey(pub)
	back, err := crypto.DecodeKey(string(aid))
	if err != nil {
		t.Fatalf("AID is not a valid CESR key: %v", err)
	}
	if back != pub {
		t.Fatal("AID does not round-trip to the inception key")
	}
}
