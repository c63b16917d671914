// Package router wires handlers to routes.  Three surfaces exist:
// public browsing without auth, the member booking surface behind
// JWTAuth, and the admin surface behind JWTAuth plus RequireRole.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coworking-reservation/internal/handler"
	"github.com/iliyamo/coworking-reservation/internal/middleware"
)

// RegisterRoutes registers unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Register, login and the
// refresh flows need no session; /v1/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes either a refresh token in the body or a bearer
	// header, so it is reachable without the JWT middleware.
	g.POST("/logout", a.Logout)
	e.POST("/v1/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("MEMBER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest browsing endpoints: resources,
// availability probes and subscription plans.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/resources", p.ListResources)
	e.GET("/v1/resources/:id", p.GetResource)
	// Advisory availability probe; the booking path re-checks under lock.
	e.GET("/v1/resources/:id/availability", p.CheckAvailability)
	e.GET("/v1/plans", p.ListPlans)
}

// RegisterMember registers the authenticated member surface: booking,
// the member's ledger and subscription enrollment.
func RegisterMember(e *echo.Echo, r *handler.ReservationHandler, acc *handler.AccountHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("MEMBER", "ADMIN"))

	g.POST("/reservations", r.Create)
	g.GET("/reservations", r.ListMine)
	g.GET("/reservations/:id", r.Get)
	g.DELETE("/reservations/:id", r.Cancel)

	g.GET("/account/credits", acc.ListCredits)
	g.GET("/account/transactions", acc.ListTransactions)
	g.GET("/account/enrollment", acc.ActiveEnrollment)
	g.POST("/account/enrollments", acc.Enroll)
}

// RegisterAdmin registers the management surface.  Every route requires
// the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.POST("/resources", a.CreateResource)
	g.PUT("/resources/:id", a.UpdateResource)
	g.PATCH("/resources/:id/availability", a.SetResourceAvailability)
	g.DELETE("/resources/:id", a.DeleteResource)

	g.POST("/promos", a.CreatePromo)
	g.GET("/promos", a.ListPromos)

	g.POST("/plans", a.CreatePlan)
	g.GET("/plans", a.ListAllPlans)

	g.GET("/reservations", a.ListReservations)
	g.POST("/reservations/:id/confirm", a.ConfirmReservation)
	g.POST("/reservations/:id/cancel", a.CancelReservation)

	g.GET("/transactions", a.ListTransactions)
}
