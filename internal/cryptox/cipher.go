// Package cryptox implements the symmetric cipher protecting stored
// credentials and vault entries: AES-256-GCM over a key persisted once and
// reused for the lifetime of the store. Between operations the key lives in
// a memguard enclave rather than as a plain slice on the heap.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/awnumar/memguard"

	"github.com/dmitrijs2005/passvault/internal/common"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	nonceSize = 12
)

// Cipher encrypts and decrypts byte blobs. Two independent instances exist
// in the system, one per key file, so a compromise of the identity key does
// not expose vault contents and vice versa.
type Cipher struct {
	key *memguard.Enclave
}

// NewCipher loads the key from keyPath, generating and persisting a fresh
// one on first use, and seals it in an enclave.
func NewCipher(keyPath string) (*Cipher, error) {
	key, err := loadOrCreateKey(keyPath)
	if err != nil {
		return nil, err
	}
	// NewEnclave wipes the source slice after sealing.
	return &Cipher{key: memguard.NewEnclave(key)}, nil
}

// NewCipherWithKey seals an existing key. The source slice is wiped.
func NewCipherWithKey(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	return &Cipher{key: memguard.NewEnclave(key)}, nil
}

// Encrypt seals plaintext with a fresh random nonce. The returned blob is
// nonce || ciphertext+tag, so every call yields a different result for the
// same input.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	aead, lb, err := c.open()
	if err != nil {
		return nil, err
	}
	defer lb.Destroy()

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Truncated blobs, tag mismatches
// and wrong keys all fail with common.ErrDecryption; the error never carries
// plaintext or key material.
func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < nonceSize+1 {
		return nil, common.ErrDecryption
	}

	aead, lb, err := c.open()
	if err != nil {
		return nil, err
	}
	defer lb.Destroy()

	plaintext, err := aead.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return nil, common.ErrDecryption
	}
	return plaintext, nil
}

// open unseals the key and builds the AEAD. The caller must destroy the
// returned buffer.
func (c *Cipher) open() (cipher.AEAD, *memguard.LockedBuffer, error) {
	lb, err := c.key.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open key enclave: %w", err)
	}

	block, err := aes.NewCipher(lb.Bytes())
	if err != nil {
		lb.Destroy()
		return nil, nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		lb.Destroy()
		return nil, nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, lb, nil
}
