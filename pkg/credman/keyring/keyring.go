// Package keyring stores the cookie encryption key. The operating system
// keyring is used when available, with a key file or a passphrase as
// alternatives.
package keyring

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeySize is the size of generated keys.
const KeySize = 32

var ErrInvalidKey = errors.New("invalid key")

// Provider gets, creates and forgets the cookie encryption key.
type Provider interface {
	GetKey() ([]byte, error)
	SetKey() ([]byte, error)
	DeleteKey() error
}

// Keyring keeps the key hex-encoded in the OS keyring.
type Keyring struct {
	AppName  string
	KeyField string
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  "hmectl",
		KeyField: "cookie-key",
	}
}

func newKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// decodeKey parses a hex key and checks its length.
func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}
	return key, nil
}

// ParseHexKey decodes a key given on the command line or in the
// environment.
func ParseHexKey(s string) ([]byte, error) {
	return decodeKey(s)
}

func (k *Keyring) SetKey() ([]byte, error) {
	key, err := newKey()
	if err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

func (k *Keyring) GetKey() ([]byte, error) {
	s, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	return decodeKey(s)
}

func (k *Keyring) DeleteKey() error {
	err := keyringDelete(k.AppName, k.KeyField)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// fallback tries primary first and secondary when primary fails.
type fallback struct {
	primary, secondary Provider
}

// WithFallback returns a Provider that uses secondary whenever primary
// cannot serve a request, e.g. on systems without a keyring daemon.
func WithFallback(primary, secondary Provider) Provider {
	return &fallback{primary: primary, secondary: secondary}
}

func (f *fallback) GetKey() ([]byte, error) {
	key, err := f.primary.GetKey()
	if err == nil {
		return key, nil
	}
	key, ferr := f.secondary.GetKey()
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return key, nil
}

func (f *fallback) SetKey() ([]byte, error) {
	key, err := f.primary.SetKey()
	if err == nil {
		return key, nil
	}
	return f.secondary.SetKey()
}

func (f *fallback) DeleteKey() error {
	return errors.Join(f.primary.DeleteKey(), f.secondary.DeleteKey())
}
