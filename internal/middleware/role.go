package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/verdantlabs/verdant-backend/internal/model"
)

// RequireRole returns a middleware that enforces the authorization policy:
// the request passes when the principal holds the required role, or holds
// ADMIN, which is a universal override in this model.  It assumes JWTAuth
// already ran and stored a typed principal; requests without one are
// unauthorized, requests with the wrong role are forbidden.
func RequireRole(required string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := GetPrincipal(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			if !Authorized(p, required) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// Authorized implements the role policy on its own so it can be reused and
// evolved without touching every handler.
func Authorized(p model.Principal, required string) bool {
	return p.Role == required || p.Role == model.RoleAdmin
}
