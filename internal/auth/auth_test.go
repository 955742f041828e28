package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/pkg/clock"
)

func testSecret() []byte {
	return []byte(strings.Repeat("k", secretSize))
}

func TestFileStore_Roundtrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFileStore(fs, "/data/token.enc", testSecret())
	require.NoError(t, err)

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok, "missing file is not an error")

	require.NoError(t, store.Save("bearer-123"))

	raw, err := afero.ReadFile(fs, "/data/token.enc")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "bearer-123", "token is encrypted at rest")

	info, err := fs.Stat("/data/token.enc")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	tok, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "bearer-123", tok)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileStore_WrongSecret(t *testing.T) {
	fs := afero.NewMemMapFs()
	a, err := NewFileStore(fs, "token.enc", testSecret())
	require.NoError(t, err)
	require.NoError(t, a.Save("bearer-123"))

	b, err := NewFileStore(fs, "token.enc", []byte(strings.Repeat("x", secretSize)))
	require.NoError(t, err)
	_, err = b.Load()
	assert.Error(t, err)
}

func TestKeyringSecret(t *testing.T) {
	keyring.MockInit()
	src := KeyringSecret{Service: "lessonsched-test"}

	first, err := src.Secret()
	require.NoError(t, err)
	assert.Len(t, first, secretSize)

	again, err := src.Secret()
	require.NoError(t, err)
	assert.Equal(t, first, again, "secret is created once")

	require.NoError(t, src.Delete())
	require.NoError(t, src.Delete())
	fresh, err := src.Secret()
	require.NoError(t, err)
	assert.NotEqual(t, first, fresh)
}

func TestKeyringSecret_WriteFailure(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keyring daemon"))
	_, err := KeyringSecret{Service: "lessonsched-test"}.Secret()
	assert.Error(t, err)
}

func TestStaticSecret(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(testSecret())
	b, err := StaticSecret(good).Secret()
	require.NoError(t, err)
	assert.Equal(t, testSecret(), b)

	_, err = StaticSecret("!!!").Secret()
	assert.Error(t, err)
	_, err = StaticSecret(base64.StdEncoding.EncodeToString([]byte("short"))).Secret()
	assert.Error(t, err)
}

func TestNewSecretSource(t *testing.T) {
	assert.IsType(t, StaticSecret(""), NewSecretSource(config.StoreConfig{TokenKey: "abc"}))
	assert.Equal(t, KeyringSecret{Service: "svc"}, NewSecretSource(config.StoreConfig{KeyringService: "svc"}))
}

func TestGenerateSecret(t *testing.T) {
	s, err := GenerateSecret()
	require.NoError(t, err)
	_, err = StaticSecret(s).Secret()
	assert.NoError(t, err)
}

type fakeAuthenticator struct {
	logins int
	tokens []string
	err    error
}

func (f *fakeAuthenticator) Login(_ context.Context, username, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.logins++
	return f.tokens[min(f.logins-1, len(f.tokens)-1)], nil
}

func newTestManager(t *testing.T, a Authenticator, clk clock.Clock) (*Manager, *FileStore) {
	t.Helper()
	store, err := NewFileStore(afero.NewMemMapFs(), "token.enc", testSecret())
	require.NoError(t, err)
	return NewManager(a, store, Credentials{Username: "me", Password: "pw"}, clk, nil), store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("platform"))
	require.NoError(t, err)
	return tok
}

func TestManager_LoginsOnceAndCaches(t *testing.T) {
	a := &fakeAuthenticator{tokens: []string{"opaque-1"}}
	m, store := newTestManager(t, a, nil)

	for range 3 {
		tok, err := m.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "opaque-1", tok)
	}
	assert.Equal(t, 1, a.logins)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "opaque-1", stored)
}

func TestManager_UsesStoredToken(t *testing.T) {
	a := &fakeAuthenticator{tokens: []string{"fresh"}}
	m, store := newTestManager(t, a, nil)
	require.NoError(t, store.Save("from-disk"))

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-disk", tok)
	assert.Equal(t, 0, a.logins)
}

func TestManager_ExpiredJWTIsReplaced(t *testing.T) {
	now := time.Date(2025, 11, 2, 20, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	a := &fakeAuthenticator{tokens: []string{"fresh"}}
	m, store := newTestManager(t, a, clk)

	require.NoError(t, store.Save(signedToken(t, now.Add(-time.Hour))))

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)
	assert.Equal(t, 1, a.logins)
}

func TestManager_ValidJWTIsKept(t *testing.T) {
	now := time.Date(2025, 11, 2, 20, 0, 0, 0, time.UTC)
	a := &fakeAuthenticator{tokens: []string{"fresh"}}
	m, store := newTestManager(t, a, clock.NewMockClock(now))

	valid := signedToken(t, now.Add(time.Hour))
	require.NoError(t, store.Save(valid))

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, valid, tok)
}

func TestManager_Invalidate(t *testing.T) {
	a := &fakeAuthenticator{tokens: []string{"one", "two"}}
	m, store := newTestManager(t, a, nil)

	_, err := m.Token(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(context.Background()))

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)

	tok, err := m.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "two", tok)
	assert.Equal(t, 2, a.logins)
}

func TestManager_LoginError(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuthenticator{err: errors.New("bad credentials")}, nil)
	_, err := m.Token(context.Background())
	assert.EqualError(t, err, "bad credentials")
}
