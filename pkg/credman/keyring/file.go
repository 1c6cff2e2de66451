package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hmectl/hmectl/pkg/credman/encryption"
	"github.com/spf13/afero"
)

const (
	keyFileName  = "cookie.key"
	saltFileName = "cookie.salt"
	keyFileMode  = 0600
)

// FileKeyStore keeps the key hex-encoded in a 0600 file of the config
// directory.
type FileKeyStore struct {
	fs  afero.Fs
	dir string
}

func NewFileKeyStore(fs afero.Fs, configDir string) *FileKeyStore {
	return &FileKeyStore{fs: fs, dir: configDir}
}

func (f *FileKeyStore) keyPath() string {
	return filepath.Join(f.dir, keyFileName)
}

// SetKey generates a new key and replaces the key file atomically.
func (f *FileKeyStore) SetKey() ([]byte, error) {
	key, err := newKey()
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(f.fs, f.dir, keyFileName, []byte(hex.EncodeToString(key))); err != nil {
		return nil, err
	}
	return key, nil
}

func (f *FileKeyStore) GetKey() ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.keyPath())
	if err != nil {
		return nil, err
	}
	return decodeKey(strings.TrimSpace(string(data)))
}

func (f *FileKeyStore) DeleteKey() error {
	return removeIfExists(f.fs, f.keyPath())
}

// PassphraseKeyStore derives the key from a passphrase. Only the random
// salt is written to disk.
type PassphraseKeyStore struct {
	fs         afero.Fs
	dir        string
	passphrase string
}

func NewPassphraseKeyStore(fs afero.Fs, configDir, passphrase string) *PassphraseKeyStore {
	return &PassphraseKeyStore{fs: fs, dir: configDir, passphrase: passphrase}
}

func (p *PassphraseKeyStore) saltPath() string {
	return filepath.Join(p.dir, saltFileName)
}

// SetKey draws a new salt. Anything sealed with the previous key can no
// longer be opened.
func (p *PassphraseKeyStore) SetKey() ([]byte, error) {
	if p.passphrase == "" {
		return nil, encryption.ErrEmptyPassphrase
	}
	salt, err := encryption.NewSalt()
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(p.fs, p.dir, saltFileName, salt); err != nil {
		return nil, err
	}
	return encryption.DeriveKey(p.passphrase, salt)
}

func (p *PassphraseKeyStore) GetKey() ([]byte, error) {
	salt, err := afero.ReadFile(p.fs, p.saltPath())
	if err != nil {
		return nil, err
	}
	if len(salt) != encryption.SaltSize {
		return nil, fmt.Errorf("%w: salt file is %d bytes", ErrInvalidKey, len(salt))
	}
	return encryption.DeriveKey(p.passphrase, salt)
}

func (p *PassphraseKeyStore) DeleteKey() error {
	return removeIfExists(p.fs, p.saltPath())
}

// writeAtomic writes name in dir through a temporary file and a rename so
// an interrupted write never leaves a truncated file behind.
func writeAtomic(fs afero.Fs, dir, name string, data []byte) error {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := afero.TempFile(fs, dir, "."+name+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fs.Chmod(tmpPath, keyFileMode); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("set permissions: %w", err)
	}
	if err := fs.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func removeIfExists(fs afero.Fs, path string) error {
	if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
