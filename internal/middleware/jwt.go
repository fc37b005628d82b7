package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/verdantlabs/verdant-backend/internal/model"
	"github.com/verdantlabs/verdant-backend/internal/utils"
)

// principalKey is the context key under which the authenticated principal is
// stored.  Handlers read it through GetPrincipal rather than the raw key.
const principalKey = "principal"

// JWTAuth returns an Echo middleware that validates a Bearer token and
// attaches the embedded principal to the request context as a typed value.
// The provided secret must match the one used when issuing tokens.  Missing,
// malformed or expired tokens all yield the same 401; token parsing and
// claim validation live in utils.ParseBearerToken.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			p, err := utils.ParseBearerToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// GetPrincipal retrieves the authenticated principal stored by JWTAuth.  The
// boolean is false when the middleware did not run on this route.
func GetPrincipal(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}
