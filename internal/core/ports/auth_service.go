package ports

import (
	"context"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Token     string
	TokenType string
	ExpiresIn time.Duration
	Identity  *domain.Identity
}

// Authenticator turns a username and plaintext password into a credential.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*domain.Credential, error)
}

// SessionGate turns a bearer token into a credential for protected access.
type SessionGate interface {
	Authorize(ctx context.Context, token string) (*domain.Credential, error)
}

// AuthService is the registration and login surface used by the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.Identity, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}
