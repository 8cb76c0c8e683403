package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// CredentialStore hashes passwords on the way in and delegates persistence to
// a repository. It is safe for concurrent use when the repository is.
type CredentialStore struct {
	repo   ports.CredentialRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

// NewCredentialStore builds a store that hashes through hasher and persists to repo.
func NewCredentialStore(repo ports.CredentialRepository, hasher ports.PasswordHasher, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// Find returns the credential for username or domain.ErrCredentialNotFound.
func (s *CredentialStore) Find(ctx context.Context, username string) (*domain.Credential, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Create registers a new credential. Empty fields yield domain.ErrInvalidInput;
// an existing username yields domain.ErrDuplicateUsername.
func (s *CredentialStore) Create(ctx context.Context, username, password string) (*domain.Credential, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	// Cheap pre-check so a taken username does not cost a bcrypt round. The
	// repository insert remains the authoritative duplicate check.
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrDuplicateUsername
	} else if !errors.Is(err, domain.ErrCredentialNotFound) {
		return nil, fmt.Errorf("create credential: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("create credential: hash password: %w", err)
	}

	cred := &domain.Credential{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, cred); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("create credential: %w", err)
	}

	s.log.Info().Str("username", username).Str("id", cred.ID).Msg("credential created")
	return cred, nil
}

// Delete removes username's credential. Tokens already issued for it stop
// authorizing on their next use.
func (s *CredentialStore) Delete(ctx context.Context, username string) error {
	if err := s.repo.Delete(ctx, username); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("credential deleted")
	return nil
}
