package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/pkg/metrics"
)

// SessionGate resolves a bearer token to the credential it names.
//
// Received → Decoding → Rejected(Malformed | Expired)
//
//	→ Decoded → ResolvingIdentity → Rejected(UnknownSubject) | Authorized
//
// Rejections are terminal; the client has to log in again.
type SessionGate struct {
	codec ports.TokenCodec
	store ports.CredentialStore
	log   zerolog.Logger
}

// NewSessionGate decodes tokens with codec and resolves subjects in store.
func NewSessionGate(codec ports.TokenCodec, store ports.CredentialStore, log zerolog.Logger) *SessionGate {
	return &SessionGate{codec: codec, store: store, log: log}
}

// Authorize returns the credential named by the token's subject, or a
// malformed, expired or unknown-subject error.
func (g *SessionGate) Authorize(ctx context.Context, tokenString string) (*domain.Credential, error) {
	claims, err := g.codec.Decode(tokenString)
	if err != nil {
		g.reject(err)
		return nil, err
	}

	sub, err := claims.Subject()
	if err != nil {
		g.reject(err)
		return nil, err
	}

	cred, err := g.store.Find(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			g.reject(domain.ErrUnknownSubject)
			return nil, domain.ErrUnknownSubject
		}
		metrics.AuthorizationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("authorize: %w", err)
	}

	metrics.AuthorizationsTotal.WithLabelValues("authorized").Inc()
	return cred, nil
}

func (g *SessionGate) reject(err error) {
	reason := "malformed"
	switch {
	case errors.Is(err, domain.ErrExpiredToken):
		reason = "expired"
	case errors.Is(err, domain.ErrUnknownSubject):
		reason = "unknown_subject"
	}
	metrics.AuthorizationsTotal.WithLabelValues(reason).Inc()
	g.log.Debug().Err(err).Str("reason", reason).Msg("authorization rejected")
}
