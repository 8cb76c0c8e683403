package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/infrastructure/crypto"
	"github.com/99minutos/auth-service/internal/infrastructure/token"
)

var errBackendDown = errors.New("backend unreachable")

type stubCredentialRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.Credential
	findErr error
	inserts int
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{users: make(map[string]*domain.Credential)}
}

func cloneCredential(c *domain.Credential) *domain.Credential {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func (r *stubCredentialRepo) Insert(_ context.Context, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if _, exists := r.users[cred.Username]; exists {
		return domain.ErrDuplicateUsername
	}
	r.users[cred.Username] = cloneCredential(cred)
	return nil
}

func (r *stubCredentialRepo) FindByUsername(_ context.Context, username string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return cloneCredential(u), nil
}

func (r *stubCredentialRepo) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return domain.ErrCredentialNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *stubCredentialRepo) Ping(context.Context) error { return nil }

type fixture struct {
	repo  *stubCredentialRepo
	store *CredentialStore
	authn *Authenticator
	codec *token.JWTCodec
	gate  *SessionGate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	hasher := crypto.NewBcryptHasher(bcrypt.MinCost)
	repo := newStubCredentialRepo()
	store := NewCredentialStore(repo, hasher, log)

	codec, err := token.NewJWTCodec([]byte("service-test-secret"))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	return &fixture{
		repo:  repo,
		store: store,
		authn: NewAuthenticator(store, hasher, log),
		codec: codec,
		gate:  NewSessionGate(codec, store, log),
	}
}
