package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ASongADay/internal/domain"
	"ASongADay/internal/ports"
)

// FileCredentialStore keeps the credential as a JSON file. Writes go to a
// temporary file first and are renamed into place.
type FileCredentialStore struct {
	path string
}

var _ ports.CredentialSink = (*FileCredentialStore)(nil)

// NewFileCredentialStore points the store at path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

// Load reads and decodes the credential file.
func (f *FileCredentialStore) Load(_ context.Context) (domain.Credential, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Credential{}, fmt.Errorf("%s: %w", f.path, ErrNoCredential)
		}
		return domain.Credential{}, fmt.Errorf("read credential: %w", err)
	}
	return domain.DecodeCredential(raw)
}

// Save atomically replaces the credential file.
func (f *FileCredentialStore) Save(_ context.Context, cred domain.Credential) error {
	raw, err := domain.EncodeCredential(cred)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("create temp credential: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod credential: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace credential: %w", err)
	}
	return nil
}
