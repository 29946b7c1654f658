package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ASongADay/internal/domain"
	"ASongADay/internal/ports"
)

// CredentialStore owns the persisted credential for the duration of a run.
type CredentialStore struct {
	issuer ports.TokenIssuer
	sink   ports.CredentialSink
	logger *slog.Logger
}

// NewCredentialStore wires the token endpoint with the persistence sink.
func NewCredentialStore(issuer ports.TokenIssuer, sink ports.CredentialSink, logger *slog.Logger) *CredentialStore {
	return &CredentialStore{issuer: issuer, sink: sink, logger: logger}
}

// Current returns the persisted credential.
func (s *CredentialStore) Current(ctx context.Context) (domain.Credential, error) {
	cred, err := s.sink.Load(ctx)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	return cred, nil
}

// Refresh exchanges the current refresh token and persists the new pair
// before handing it back. Refresh tokens are single use, so the returned
// credential must never be used unless the save succeeded.
func (s *CredentialStore) Refresh(ctx context.Context, current domain.Credential) (domain.Credential, error) {
	if current.RefreshToken == "" {
		return domain.Credential{}, fmt.Errorf("refresh credential: no refresh token")
	}

	fresh, err := s.issuer.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("refresh credential: %w", err)
	}

	if err := s.sink.Save(ctx, fresh); err != nil {
		return domain.Credential{}, fmt.Errorf("persist credential: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("credential refreshed", "expiry", fresh.Expiry, "rotated", fresh.RefreshToken != current.RefreshToken)
	}
	return fresh, nil
}
