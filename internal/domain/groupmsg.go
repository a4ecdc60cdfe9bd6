package domain

import (
	"encoding/base64"
	"encoding/json"
)

// Bytes is a byte slice that marshals to unpadded base64url in JSON, the
// encoding every binary wire field uses.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.RawURLEncoding.EncodeToString(b))
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// WrappedKey is the ephemeral group key sealed to one recipient.
type WrappedKey struct {
	EncryptedKey Bytes `json:"encryptedKey"`
	Nonce        Bytes `json:"nonce"`
}

// GroupMessage is the wire payload of one group message. The storage layer
// only ever sees this form: ciphertext, nonces, and per-member wrapped keys.
// The ephemeral group key exists in memory during encryption and decryption
// only.
type GroupMessage struct {
	EncryptedContent Bytes              `json:"encryptedContent"`
	Nonce            Bytes              `json:"nonce"`
	EncryptedKeys    map[AID]WrappedKey `json:"encryptedKeys"`
	SenderAID        AID                `json:"senderAid"`
	GroupID          string             `json:"groupId"`
	AAD              Bytes              `json:"aad,omitempty"`
}
