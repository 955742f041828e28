package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/example/lessonsched/internal/config"
)

const (
	secretSize  = 32
	keyringUser = "token-secret"
)

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// SecretSource provides the 32-byte secret that protects the stored token.
type SecretSource interface {
	Secret() ([]byte, error)
}

// StaticSecret is a base64 secret supplied through TOKEN_KEY.
type StaticSecret string

func (s StaticSecret) Secret() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_KEY is not valid base64: %w", err)
	}
	if len(b) < secretSize {
		return nil, fmt.Errorf("TOKEN_KEY must decode to at least %d bytes, got %d", secretSize, len(b))
	}
	return b, nil
}

// KeyringSecret keeps the secret in the OS keyring and creates it on first use.
type KeyringSecret struct {
	Service string
}

func (k KeyringSecret) Secret() ([]byte, error) {
	stored, err := keyringGet(k.Service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return k.Generate()
	}
	if err != nil {
		return nil, fmt.Errorf("read keyring: %w", err)
	}
	return StaticSecret(stored).Secret()
}

// Generate replaces the keyring secret with a fresh random one.
func (k KeyringSecret) Generate() ([]byte, error) {
	b := make([]byte, secretSize)
	if _, err := randRead(b); err != nil {
		return nil, err
	}
	if err := keyringSet(k.Service, keyringUser, base64.StdEncoding.EncodeToString(b)); err != nil {
		return nil, fmt.Errorf("write keyring: %w", err)
	}
	return b, nil
}

func (k KeyringSecret) Delete() error {
	err := keyringDelete(k.Service, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// NewSecretSource prefers TOKEN_KEY and falls back to the keyring.
func NewSecretSource(cfg config.StoreConfig) SecretSource {
	if cfg.TokenKey != "" {
		return StaticSecret(cfg.TokenKey)
	}
	return KeyringSecret{Service: cfg.KeyringService}
}

// GenerateSecret returns a new base64 secret suitable for TOKEN_KEY.
func GenerateSecret() (string, error) {
	b := make([]byte, secretSize)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
