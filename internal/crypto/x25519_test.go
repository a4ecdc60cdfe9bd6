package crypto_test

import (
	"bytes"
	"testing"

	"keygate/internal/crypto"
)

// Converting both halves of two Ed25519 identities must land on the same
// X25519 shared secret from either side.
func TestConvertedKeysAgreeOnSharedSecret(t *testing.T) {
	alicePriv, alicePub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	bobPriv, bobPub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	aliceX := crypto.PrivateToX25519(alicePriv)
	bobX := crypto.PrivateToX25519(bobPriv)

	alicePubX, err := crypto.PublicToX25519(alicePub)
	if err != nil {
		t.Fatalf("PublicToX25519(alice): %v", err)
	}
	bobPubX, err := crypto.PublicToX25519(bobPub)
	if err != nil {
		t.Fatalf("PublicToX25519(bob): %v", err)
	}

	ab, err := crypto.DH(aliceX, bobPubX)
	if err != nil {
		t.Fatalf("DH(alice, bobPub): %v", err)
	}
	ba, err := crypto.DH(bobX, alicePubX)
	if err != nil {
		t.Fatalf("DH(bob, alicePub): %v", err)
	}
	if ab != ba {
		t.Fatal("shared secrets differ")
	}
}

func TestPublicToX25519RejectsNonPoint(t *testing.T) {
	// Roughly half of all field elements are not the y-coordinate of any
	// curve point, so scanning a handful of small candidates always finds
	// an encoding the decoder must reject.
	var enc [32]byte
	for y := byte(2); y < 64; y++ {
		enc[0] = y
		if _, err := crypto.PublicToX25519(enc); err != nil {
			return
		}
	}
	t.Fatal("every candidate decoded as a curve point")
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := crypto.RandBytes(crypto.KeyBytes)
	aad := []byte("group-1:sender")

	nonce, ct, err := crypto.Seal(key, []byte("hello"), aad)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	pt, err := crypto.Open(key, nonce, ct, aad)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(pt, []byte("hello")) {
		t.Fatalf("plaintext = %q, want %q", pt, "hello")
	}

	// Wrong additional data must fail the tag check.
	if _, err := crypto.Open(key, nonce, ct, []byte("group-2:sender")); err == nil {
		t.Fatal("Open succeeded with mismatched aad")
	}
}
