package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/auth-service/internal/core/ports"
)

// IdentityKey is the echo context key holding the *domain.Identity of an
// authorized request.
const IdentityKey = "identity"

// Auth runs the session gate on the bearer token and injects the resolved
// identity into the context. Rejections are returned to the HTTP error handler.
func Auth(gate ports.SessionGate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			cred, err := gate.Authorize(c.Request().Context(), parts[1])
			if err != nil {
				return err
			}

			c.Set(IdentityKey, cred.Identity())
			return next(c)
		}
	}
}
