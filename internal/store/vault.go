package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"keygate/internal/domain"
	"keygate/internal/util/memzero"
)

const (
	vaultFile = "identity.enc"

	// The current supported version of the encrypted blob format on disk.
	vaultFormatVersion = 1
)

var (
	// Returned when the passphrase is incorrect or the ciphertext has been
	// modified / corrupted.
	errWrongPassphrase = errors.New("wrong passphrase or corrupted identity")
)

// Vault stores the locally held signing identity on disk, sealed under a
// passphrase-derived key.
type Vault struct {
	dir string
	mu  sync.Mutex
}

func NewVault(dir string) *Vault { return &Vault{dir: dir} }

// blob is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

type vaultIdentity struct {
	AID  string `json:"aid"`
	Priv []byte `json:"priv"`
	Pub  []byte `json:"pub"`
}

// SaveIdentity seals id under passphrase and writes it via temp file then
// rename.
func (v *Vault) SaveIdentity(passphrase string, id domain.Identity) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	raw, err := json.Marshal(vaultIdentity{
		AID:  string(id.AID),
		Priv: id.Priv.Slice(),
		Pub:  id.Pub.Slice(),
	})
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)

	sealed, err := sealVault(passphrase, raw)
	if err != nil {
		return err
	}
	path := filepath.Join(v.dir, vaultFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadIdentity decrypts and returns the local identity.
func (v *Vault) LoadIdentity(passphrase string) (domain.Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	sealed, err := os.ReadFile(filepath.Join(v.dir, vaultFile))
	if err != nil {
		return domain.Identity{}, err
	}
	raw, err := openVault(passphrase, sealed)
	if err != nil {
		return domain.Identity{}, err
	}
	defer memzero.Zero(raw)

	var vi vaultIdentity
	if err := json.Unmarshal(raw, &vi); err != nil {
		return domain.Identity{}, err
	}
	if len(vi.Priv) != 64 || len(vi.Pub) != 32 {
		return domain.Identity{}, errWrongPassphrase
	}
	id := domain.Identity{
		AID:  domain.AID(vi.AID),
		Priv: domain.MustEd25519Private(vi.Priv),
		Pub:  domain.MustEd25519Public(vi.Pub),
	}
	memzero.Zero(vi.Priv)
	return id, nil
}

// sealVault derives a key from passphrase and seals raw into a JSON blob.
func sealVault(passphrase string, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(blob{V: vaultFormatVersion, Salt: salt[:], N: N, R: r, P: p, Cipher: ct})
}

// openVault opens the JSON blob using a key derived from passphrase.
func openVault(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > vaultFormatVersion {
		return nil, fmt.Errorf("unsupported vault version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
