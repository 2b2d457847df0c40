// Package router maps HTTP routes onto handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
)

// RegisterRoutes registers routes that carry no authentication.
// Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints. Register, login and
// refresh live under /v1/auth without a session; /v1/me and logout run
// behind JWT.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout", a.Logout)
}

// RegisterPublic wires the unauthenticated travel catalogue. The cache
// middleware is applied here only; booking and auth routes never pass
// through it.
func RegisterPublic(e *echo.Echo, t *handler.TravelHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/travel-options")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("", t.List)
	g.GET("/:id", t.Detail)
}

// RegisterCustomer wires the booking lifecycle and profile endpoints.
// Both CUSTOMER and ADMIN tokens are accepted; bookings are always
// scoped to the token's own user ID.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, tk *handler.TicketHandler, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))

	g.POST("/bookings", b.Create)
	g.GET("/bookings", b.ListMine)
	g.GET("/bookings/:reference", b.Get)
	g.GET("/bookings/:reference/cancel-quote", b.Quote)
	g.POST("/bookings/:reference/cancel", b.Cancel)
	g.GET("/bookings/:reference/ticket", tk.Ticket)
	g.GET("/bookings/:reference/receipt", tk.Receipt)

	g.GET("/profile", p.Get)
	g.PUT("/profile", p.Update)
}

// RegisterAdmin wires catalogue management and the stats dashboard,
// ADMIN only.
func RegisterAdmin(e *echo.Echo, at *handler.AdminTravelHandler, st *handler.AdminStatsHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.POST("/travel-options", at.Create)
	g.PUT("/travel-options/:id", at.Update)
	g.DELETE("/travel-options/:id", at.Delete)
	g.GET("/stats", st.Overview)
}
