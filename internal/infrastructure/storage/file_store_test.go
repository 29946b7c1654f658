package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ASongADay/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "token.json")
	store := NewFileCredentialStore(path)

	want := domain.Credential{
		AccessToken:  "a",
		RefreshToken: "r",
		TokenType:    "bearer",
		ExpiresIn:    7200,
		Expiry:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreReplaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewFileCredentialStore(filepath.Join(dir, "token.json"))

	require.NoError(t, store.Save(context.Background(), domain.Credential{RefreshToken: "r1"}))
	require.NoError(t, store.Save(context.Background(), domain.Credential{RefreshToken: "r2"}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r2", got.RefreshToken)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStoreMissing(t *testing.T) {
	t.Parallel()

	_, err := NewFileCredentialStore(filepath.Join(t.TempDir(), "none.json")).Load(context.Background())
	assert.True(t, errors.Is(err, ErrNoCredential))
}

func TestFileStoreCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{'refresh_token': 'r'}"), 0o600))

	_, err := NewFileCredentialStore(path).Load(context.Background())
	require.Error(t, err)
}
