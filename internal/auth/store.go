package auth

import (
	"crypto/sha256"
	"errors"
	"io"
	"io/fs"

	"github.com/gorilla/securecookie"
	"github.com/spf13/afero"
	"golang.org/x/crypto/hkdf"

	"github.com/example/lessonsched/internal/pkg/errs"
)

const tokenName = "sportivity_token"

// FileStore keeps the bearer token in a file, signed and encrypted with
// keys derived from a secret.
type FileStore struct {
	fs   afero.Fs
	path string
	sc   *securecookie.SecureCookie
}

func NewFileStore(fsys afero.Fs, path string, secret []byte) (*FileStore, error) {
	hashKey, err := deriveKey(secret, "lessonsched token hash", 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, "lessonsched token block", 32)
	if err != nil {
		return nil, err
	}
	sc := securecookie.New(hashKey, blockKey)
	// Tokens expire on the platform side; the file itself has no max age.
	sc.MaxAge(0)
	sc.MaxLength(0)
	return &FileStore{fs: fsys, path: path, sc: sc}, nil
}

func deriveKey(secret []byte, info string, n int) ([]byte, error) {
	key := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, errs.Wrap(err, "derive key")
	}
	return key, nil
}

// Load returns the stored token, or "" when none is stored.
func (s *FileStore) Load() (string, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errs.Wrap(err, "read token file")
	}
	var token string
	if err := s.sc.Decode(tokenName, string(b), &token); err != nil {
		return "", errs.Wrap(err, "decode token file")
	}
	return token, nil
}

func (s *FileStore) Save(token string) error {
	encoded, err := s.sc.Encode(tokenName, token)
	if err != nil {
		return errs.Wrap(err, "encode token")
	}
	if err := afero.WriteFile(s.fs, s.path, []byte(encoded), 0o600); err != nil {
		return errs.Wrap(err, "write token file")
	}
	return nil
}

func (s *FileStore) Clear() error {
	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errs.Wrap(err, "remove token file")
	}
	return nil
}
