package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/handler"
	"github.com/iliyamo/airline-reservation/internal/middleware"
)

// RegisterRoutes registers routes that never require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the session lifecycle. Register, login, refresh
// and logout live under /v1/auth without a JWT; /v1/me requires one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes a refresh token in the body, no JWT needed.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("AGENT", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest-facing browse endpoints: flight
// search and per-flight seat maps.
func RegisterPublic(e *echo.Echo, b *handler.BookingHandler, extra ...echo.MiddlewareFunc) {
	e.GET("/v1/search/flights", b.SearchFlights, extra...)
	e.GET("/v1/flights/:id/seats", b.SeatMap, extra...)
}

// RegisterFleet registers the agent-only fleet and schedule management
// endpoints plus maintenance operations.
func RegisterFleet(e *echo.Echo, f *handler.FleetHandler, adm *handler.AdminHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("AGENT"))

	g.POST("/airplanes", f.CreateAirplane)
	g.GET("/airplanes", f.ListAirplanes)
	g.POST("/flights", f.CreateFlight)
	g.GET("/flights", f.ListFlights)
	g.GET("/admin/records", b.ListRecords)
	g.GET("/admin/clients", adm.ListClients)
	g.DELETE("/admin/data", adm.ClearAll)
}

// RegisterBooking registers the customer booking endpoints. Both roles
// may book; agents sometimes purchase on a customer's behalf with their
// own account.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("AGENT", "CUSTOMER"))

	g.POST("/flights/:id/book", b.BookSeat)
	g.GET("/records", b.MyRecords)
}
