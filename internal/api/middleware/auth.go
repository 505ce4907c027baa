package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/service"
	"github.com/kompu/storefront/internal/core/token"
)

// Context keys set by Auth.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
)

// ClaimsResolver decodes the current session token.
type ClaimsResolver interface {
	Claims(ctx context.Context, op string) (*token.Claims, error)
}

// BearerToken copies the "Authorization: Bearer" token into the request
// context. Every HTTP request is resolved from its own header only; a request
// without one is anonymous even when the process holds a stored token.
func BearerToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			tok := bearer(req.Header.Get(echo.HeaderAuthorization))
			c.SetRequest(req.WithContext(service.WithToken(req.Context(), tok)))
			return next(c)
		}
	}
}

func bearer(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth requires a decodable, unexpired session token and injects its
// identity into the echo context.
func Auth(resolver ClaimsResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := resolver.Claims(c.Request().Context(), c.Path())
			if err != nil {
				if errors.Is(err, domain.ErrSkipped) {
					return echo.NewHTTPError(http.StatusUnauthorized, "sesión no válida")
				}
				return err
			}

			c.Set(KeyUserID, claims.ID)
			c.Set(KeyRole, claims.Rol)
			return next(c)
		}
	}
}
