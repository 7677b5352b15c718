package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// MasterKeyEnv names the variable LoadSecretBox falls back to when no key
// file is configured.
const MasterKeyEnv = "IDKIT_MASTER_KEY"

var ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")

// SecretBox seals API key secrets with AES-256-GCM. Output is
// [nonce][ciphertext+tag]; every Seal uses a fresh random nonce.
type SecretBox struct {
	aead cipher.AEAD
}

// NewSecretBox derives the AES-256 key from arbitrary key material with
// SHA-256.
func NewSecretBox(keyMaterial []byte) (*SecretBox, error) {
	if len(keyMaterial) == 0 {
		return nil, errors.New("cryptox: empty master key")
	}

	key := sha256.Sum256(keyMaterial)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &SecretBox{aead: aead}, nil
}

// LoadSecretBox reads the master key from path, then from MasterKeyEnv.
// With neither set it uses a random key and ephemeral reports true: sealed
// secrets will not open after a restart.
func LoadSecretBox(path string) (box *SecretBox, ephemeral bool, err error) {
	var material []byte
	switch {
	case path != "":
		material, err = os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read master key file: %w", err)
		}
	case os.Getenv(MasterKeyEnv) != "":
		material = []byte(os.Getenv(MasterKeyEnv))
	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, false, fmt.Errorf("failed to generate ephemeral master key: %w", err)
		}
		ephemeral = true
	}

	box, err = NewSecretBox(material)
	return box, ephemeral, err
}

func (b *SecretBox) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize(), b.aead.NonceSize()+len(plaintext)+b.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (b *SecretBox) Open(sealed []byte) ([]byte, error) {
	n := b.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := b.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
