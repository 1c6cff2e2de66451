// Package encryption seals the cookie store with AES-GCM.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// KeySize is the size of the keys used by the cookie store.
const KeySize = 32

// SaltSize is the size of the salt used to derive passphrase keys.
const SaltSize = 16

const gcmPrefix = "gcm1"

var (
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrUnknownFormat      = errors.New("unknown ciphertext format")
	ErrEmptyPassphrase    = errors.New("passphrase is empty")
)

// scrypt cost parameters, a package var so tests can lower them.
var scryptN, scryptR, scryptP = 1 << 15, 8, 1

var randReader io.Reader = rand.Reader

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext. The output is the format prefix, the nonce and
// the ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(randReader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, len(gcmPrefix)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, gcmPrefix...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func Open(data, key []byte) ([]byte, error) {
	if len(data) < len(gcmPrefix) || string(data[:len(gcmPrefix)]) != gcmPrefix {
		return nil, ErrUnknownFormat
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	data = data[len(gcmPrefix):]
	if len(data) < gcm.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	return gcm.Open(nil, data[:gcm.NonceSize()], data[gcm.NonceSize():], nil)
}

// NewSalt returns a random salt for DeriveKey.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches a passphrase into a KeySize key with scrypt.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, KeySize)
}
