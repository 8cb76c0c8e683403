package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/pkg/metrics"
)

const (
	tokenTypeBearer = "bearer"
	defaultTokenTTL = 30 * time.Minute
)

// AuthService implements registration and login. Minting the token is a
// decision made here, not by the authenticator.
type AuthService struct {
	store    ports.CredentialStore
	authn    ports.Authenticator
	codec    ports.TokenCodec
	tokenTTL time.Duration
	log      zerolog.Logger
}

// NewAuthService wires the facade. A non-positive tokenTTL falls back to 30m.
func NewAuthService(store ports.CredentialStore, authn ports.Authenticator, codec ports.TokenCodec, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{store: store, authn: authn, codec: codec, tokenTTL: tokenTTL, log: log}
}

// Register creates a credential and returns its public identity.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.Identity, error) {
	cred, err := s.store.Create(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		case errors.Is(err, domain.ErrDuplicateUsername):
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		default:
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	return cred.Identity(), nil
}

// Login authenticates and issues a bearer token for the username.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	cred, err := s.authn.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	tok, err := s.codec.Issue(ports.Claims{"sub": cred.Username}, s.tokenTTL)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("username", cred.Username).Msg("login succeeded")

	return &ports.LoginResult{
		Token:     tok,
		TokenType: tokenTypeBearer,
		ExpiresIn: s.tokenTTL,
		Identity:  cred.Identity(),
	}, nil
}
