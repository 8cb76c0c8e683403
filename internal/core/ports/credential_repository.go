package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// CredentialRepository is the persistence backend behind the credential store.
// Implementations must make Insert atomic with respect to the duplicate check.
type CredentialRepository interface {
	// Insert stores cred, or returns domain.ErrDuplicateUsername when a record
	// with the same username already exists.
	Insert(ctx context.Context, cred *domain.Credential) error
	// FindByUsername performs a case-sensitive exact match and returns
	// domain.ErrCredentialNotFound on a miss.
	FindByUsername(ctx context.Context, username string) (*domain.Credential, error)
	// Delete removes the record, returning domain.ErrCredentialNotFound if absent.
	Delete(ctx context.Context, username string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
