package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// CredentialStore maps usernames to credential records and owns password hashing
// on creation, so plaintext never reaches a repository.
type CredentialStore interface {
	Find(ctx context.Context, username string) (*domain.Credential, error)
	Create(ctx context.Context, username, password string) (*domain.Credential, error)
	Delete(ctx context.Context, username string) error
}
