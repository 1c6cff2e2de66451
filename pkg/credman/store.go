// Package credman persists the cookies of an iCloud session between runs,
// sealed with a key from the keyring package.
package credman

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hmectl/hmectl/pkg/credman/encryption"
	"github.com/hmectl/hmectl/pkg/icloud"
	"github.com/spf13/afero"
)

// StoreFileName is the name of the cookie store in the config directory.
const StoreFileName = "cookies.hme"

var (
	ErrNoCookies  = errors.New("no stored session, run 'hmectl login' first")
	ErrInvalidKey = errors.New("cookie key must be 32 bytes")
)

// Record is what the store keeps: the cookie set and where it came from.
type Record struct {
	Cookies icloud.Cookies
	// Source is "manual", "prompt" or the browser the cookies were
	// imported from.
	Source  string
	SavedAt time.Time
}

// CookieStore keeps one Record, gob-encoded and sealed with AES-GCM.
type CookieStore struct {
	fs   afero.Fs
	path string
	key  []byte
}

// NewCookieStore returns a store at dir/StoreFileName on fs.
func NewCookieStore(fs afero.Fs, dir string, key []byte) (*CookieStore, error) {
	if len(key) != encryption.KeySize {
		return nil, ErrInvalidKey
	}
	return &CookieStore{
		fs:   fs,
		path: filepath.Join(dir, StoreFileName),
		key:  append([]byte(nil), key...),
	}, nil
}

// Path returns the location of the store file.
func (s *CookieStore) Path() string {
	return s.path
}

// Exists reports whether a record has been saved.
func (s *CookieStore) Exists() bool {
	ok, _ := afero.Exists(s.fs, s.path)
	return ok
}

// Save replaces the stored record.
func (s *CookieStore) Save(cookies icloud.Cookies, source string) error {
	var buf bytes.Buffer
	rec := Record{Cookies: cookies, Source: source, SavedAt: time.Now().UTC()}
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	sealed, err := encryption.Seal(buf.Bytes(), s.key)
	if err != nil {
		return fmt.Errorf("seal cookies: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, sealed, 0600); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write cookies: %w", err)
	}
	return nil
}

// Load opens the stored record. It returns ErrNoCookies if nothing was
// saved yet.
func (s *CookieStore) Load() (*Record, error) {
	sealed, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoCookies
	}
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	plain, err := encryption.Open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("open cookie store %s (wrong key?): %w", s.path, err)
	}
	var rec Record
	if err := gob.NewDecoder(bytes.NewReader(plain)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode cookies: %w", err)
	}
	if len(rec.Cookies) == 0 {
		return nil, ErrNoCookies
	}
	return &rec, nil
}

// Delete removes the stored record. Deleting an empty store is not an
// error.
func (s *CookieStore) Delete() error {
	return remove(s.fs, s.path)
}

// Remove deletes the store kept in dir. Unlike Delete it needs no key.
func Remove(fs afero.Fs, dir string) error {
	return remove(fs, filepath.Join(dir, StoreFileName))
}

func remove(fs afero.Fs, path string) error {
	if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
