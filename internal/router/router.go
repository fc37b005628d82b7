package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/verdantlabs/verdant-backend/internal/config"
	"github.com/verdantlabs/verdant-backend/internal/handler"
	"github.com/verdantlabs/verdant-backend/internal/middleware"
	"github.com/verdantlabs/verdant-backend/internal/model"
)

// Handlers groups everything the router needs to wire the API surface.
type Handlers struct {
	Auth    *handler.AuthHandler
	Project *handler.ProjectHandler
	Admin   *handler.AdminHandler
	Cart    *handler.CartHandler
}

// RegisterRoutes registers the full HTTP surface on the provided Echo
// instance.  The layout mirrors the role model:
//
//	/healthz                       unauthenticated health check
//	/v1/auth/*                     register and login (rate limited)
//	/v1/me                         any authenticated principal
//	/v1/projects/*                 NGO authoring + submission, shared reads
//	/v1/admin/*                    ADMIN review workflow and dashboard
//	/v1/cart/checkout              COMPANY purchases
//
// ADMIN passes every role gate because RequireRole treats it as a universal
// override.
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated endpoints.  The fixed-window limiter only guards these:
	// they are the ones exposed to credential stuffing.
	authGroup := e.Group("/v1/auth")
	authGroup.Use(middleware.NewRateLimiter(config.LoadRateLimit(), rdb))
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	// Everything below requires a valid bearer token.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))

	v1.GET("/me", h.Auth.Me)

	// Project reads are open to any authenticated role; writes are NGO-only.
	v1.GET("/projects", h.Project.List)
	v1.GET("/projects/:id", h.Project.Get)

	ngo := v1.Group("/projects")
	ngo.Use(middleware.RequireRole(model.RoleNGO))
	ngo.POST("", h.Project.Create)
	ngo.POST("/:id/upload", h.Project.AttachEvidence)
	ngo.POST("/:id/submit", h.Project.Submit)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/projects/pending", h.Admin.Pending)
	admin.POST("/projects/:id/status", h.Admin.SetStatus)
	admin.GET("/projects/:id/audit", h.Admin.Audit)
	admin.GET("/dashboard/stats", h.Admin.Stats)

	cart := v1.Group("/cart")
	cart.Use(middleware.RequireRole(model.RoleCompany))
	cart.POST("/checkout", h.Cart.Checkout)
	cart.GET("/transactions", h.Cart.History)
}
