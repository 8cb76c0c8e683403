package service

import (
	"context"
	"errors"
	"testing"

	"github.com/99minutos/auth-service/internal/core/domain"
)

func TestCredentialStore_Create_HashesPassword(t *testing.T) {
	f := newFixture(t)

	cred, err := f.store.Create(context.Background(), "alice", "s3cr3t1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cred.ID == "" || cred.CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at, got %+v", cred)
	}

	stored := f.repo.users["alice"]
	if stored == nil {
		t.Fatalf("credential not persisted")
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "s3cr3t1" {
		t.Fatalf("expected hashed password, got %q", stored.PasswordHash)
	}
}

func TestCredentialStore_Create_InvalidInput(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ username, password string }{{"", "pwd"}, {"bob", ""}, {"", ""}} {
		if _, err := f.store.Create(context.Background(), tc.username, tc.password); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("create(%q, %q): expected ErrInvalidInput, got %v", tc.username, tc.password, err)
		}
	}
	if f.repo.inserts != 0 {
		t.Fatalf("repository should not be touched on invalid input")
	}
}

func TestCredentialStore_Create_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.store.Create(ctx, "bob", "first"); err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, pwd := range []string{"first", "second", "anything"} {
		if _, err := f.store.Create(ctx, "bob", pwd); !errors.Is(err, domain.ErrDuplicateUsername) {
			t.Fatalf("expected ErrDuplicateUsername, got %v", err)
		}
	}
}

func TestCredentialStore_Create_BackendFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.findErr = errBackendDown

	_, err := f.store.Create(context.Background(), "carol", "pwd")
	if !errors.Is(err, errBackendDown) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("infrastructure failure must not look like a user error: %v", err)
	}
}

func TestCredentialStore_FindAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.store.Create(ctx, "dave", "pwd")

	if _, err := f.store.Find(ctx, "dave"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if _, err := f.store.Find(ctx, "Dave"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("expected case-sensitive miss, got %v", err)
	}
	if err := f.store.Delete(ctx, "dave"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.store.Find(ctx, "dave"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
}
