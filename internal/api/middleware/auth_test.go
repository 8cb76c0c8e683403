package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/core/domain"
)

type stubGate struct {
	authorizeFn func(ctx context.Context, token string) (*domain.Credential, error)
}

func (s *stubGate) Authorize(ctx context.Context, token string) (*domain.Credential, error) {
	return s.authorizeFn(ctx, token)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	gate := &stubGate{authorizeFn: func(_ context.Context, token string) (*domain.Credential, error) {
		if token != "good-token" {
			t.Fatalf("unexpected token %q", token)
		}
		return &domain.Credential{ID: "1", Username: "alice", PasswordHash: "h"}, nil
	}}

	called := false
	handler := Auth(gate)(func(c echo.Context) error {
		called = true
		id, ok := c.Get(IdentityKey).(*domain.Identity)
		if !ok || id.Username != "alice" {
			t.Fatalf("identity not set: %v", c.Get(IdentityKey))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_HeaderRejections(t *testing.T) {
	gate := &stubGate{authorizeFn: func(context.Context, string) (*domain.Credential, error) {
		t.Fatalf("gate should not be called")
		return nil, nil
	}}

	for _, header := range []string{"", "Token abc", "Bearer", "Bearer "} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := Auth(gate)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddleware_PropagatesGateErrors(t *testing.T) {
	for _, want := range []error{domain.ErrMalformedToken, domain.ErrExpiredToken, domain.ErrUnknownSubject} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer tok")
		c := e.NewContext(req, httptest.NewRecorder())

		gate := &stubGate{authorizeFn: func(context.Context, string) (*domain.Credential, error) {
			return nil, want
		}}
		handler := Auth(gate)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})

		if err := handler(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}
