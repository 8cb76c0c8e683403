package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// Authenticator checks a username and password against the credential store.
type Authenticator struct {
	store  ports.CredentialStore
	hasher ports.PasswordHasher
	log    zerolog.Logger

	// Unknown usernames are verified against decoy so both failure paths pay
	// for one hash comparison at the configured cost.
	decoyMu sync.Mutex
	decoy   string
}

// NewAuthenticator checks passwords from store with hasher.
func NewAuthenticator(store ports.CredentialStore, hasher ports.PasswordHasher, log zerolog.Logger) *Authenticator {
	return &Authenticator{store: store, hasher: hasher, log: log}
}

// Authenticate returns the matching credential. Unknown users and wrong
// passwords both fail with domain.ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*domain.Credential, error) {
	cred, err := a.store.Find(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrCredentialNotFound) {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		decoy, err := a.decoyHash(ctx)
		if err != nil {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		if _, err := a.hasher.Verify(ctx, password, decoy); err != nil {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		a.log.Debug().Str("username", username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := a.hasher.Verify(ctx, password, cred.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !ok {
		a.log.Debug().Str("username", username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	return cred, nil
}

func (a *Authenticator) decoyHash(ctx context.Context) (string, error) {
	a.decoyMu.Lock()
	defer a.decoyMu.Unlock()

	if a.decoy == "" {
		h, err := a.hasher.Hash(ctx, uuid.NewString())
		if err != nil {
			return "", err
		}
		a.decoy = h
	}
	return a.decoy, nil
}
