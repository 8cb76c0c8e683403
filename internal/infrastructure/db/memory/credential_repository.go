// Package memory provides a process-local credential repository.
package memory

import (
	"context"
	"sync"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// CredentialRepository keeps credentials in a map guarded by a RWMutex.
// Lookups share the read lock; Insert holds the write lock across the
// duplicate check and the insert.
type CredentialRepository struct {
	mu    sync.RWMutex
	users map[string]domain.Credential
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{users: make(map[string]domain.Credential)}
}

func (r *CredentialRepository) Insert(_ context.Context, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[cred.Username]; exists {
		return domain.ErrDuplicateUsername
	}
	r.users[cred.Username] = *cred
	return nil
}

func (r *CredentialRepository) FindByUsername(_ context.Context, username string) (*domain.Credential, error) {
	r.mu.RLock()
	cred, ok := r.users[username]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &cred, nil
}

func (r *CredentialRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return domain.ErrCredentialNotFound
	}
	delete(r.users, username)
	return nil
}

// Ping always succeeds.
func (r *CredentialRepository) Ping(context.Context) error { return nil }
