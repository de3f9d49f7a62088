package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/medlab/diagnostic-booking/docs"
	"github.com/medlab/diagnostic-booking/internal/api/handler"
	"github.com/medlab/diagnostic-booking/internal/api/middleware"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Users    ports.UserService
	Tests    ports.TestService
	Bookings ports.BookingService
	Payments ports.PaymentService
	Issuer   ports.TokenIssuer
	Verifier ports.TokenVerifier

	// Health holds the readiness checks, keyed by dependency name.
	Health map[string]handler.Pinger
	Logger zerolog.Logger

	// PublicRoutes lists "METHOD /path" entries that skip token verification.
	PublicRoutes []string
	CORSOrigins  []string
	// RateLimitRPS caps /jwt and /payment-intent per client IP; 0 disables it.
	RateLimitRPS float64
}

type access int

const (
	open access = iota
	verified
	verifiedSelf // verified, and the token email must match :email
)

type route struct {
	method  string
	path    string
	access  access
	limited bool
	handle  echo.HandlerFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(d.CORSOrigins),
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "Idempotency-Key",
		},
	}))

	// --- Handlers ---
	health := handler.NewHealthHandler(d.Health)
	tokens := handler.NewTokenHandler(d.Issuer)
	users := handler.NewUserHandler(d.Users)
	tests := handler.NewTestHandler(d.Tests)
	bookings := handler.NewBookingHandler(d.Bookings)
	payments := handler.NewPaymentHandler(d.Payments)

	// --- Operational routes ---
	e.GET("/", health.Root)
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	public := publicSet(d.PublicRoutes)
	auth := middleware.Auth(d.Verifier)
	limiter := rateLimiter(d.RateLimitRPS)

	for _, r := range routes(tokens, users, tests, bookings, payments) {
		var mws []echo.MiddlewareFunc
		if r.limited && limiter != nil {
			mws = append(mws, limiter)
		}
		if r.access != open && !public[r.method+" "+r.path] {
			mws = append(mws, auth)
			if r.access == verifiedSelf {
				mws = append(mws, middleware.RequireSelf("email"))
			}
		}
		e.Add(r.method, r.path, r.handle, mws...)
	}

	return e
}

func routes(
	tokens *handler.TokenHandler,
	users *handler.UserHandler,
	tests *handler.TestHandler,
	bookings *handler.BookingHandler,
	payments *handler.PaymentHandler,
) []route {
	return []route{
		{method: http.MethodPost, path: "/jwt", access: open, limited: true, handle: tokens.Issue},

		{method: http.MethodGet, path: "/users", access: verified, handle: users.List},
		{method: http.MethodPost, path: "/users", access: open, handle: users.Create},
		{method: http.MethodGet, path: "/user/:email", access: verified, handle: users.Get},
		{method: http.MethodPatch, path: "/user/:email", access: verified, handle: users.UpdateStatus},
		{method: http.MethodPatch, path: "/user", access: verified, handle: users.UpdateName},
		{method: http.MethodPatch, path: "/users/admin/:email", access: verified, handle: users.MakeAdmin},
		{method: http.MethodGet, path: "/users/admin/:email", access: verifiedSelf, handle: users.Get},

		{method: http.MethodGet, path: "/tests", access: open, handle: tests.List},
		{method: http.MethodGet, path: "/tests/:id", access: open, handle: tests.Get},
		{method: http.MethodPost, path: "/tests", access: verified, handle: tests.Create},
		{method: http.MethodPatch, path: "/tests/:id", access: verified, handle: tests.Update},
		{method: http.MethodDelete, path: "/tests/:id", access: verified, handle: tests.Delete},

		{method: http.MethodPost, path: "/payment-intent", access: open, limited: true, handle: payments.CreateIntent},

		{method: http.MethodPost, path: "/bookings", access: open, handle: bookings.Create},
		{method: http.MethodGet, path: "/results/:email", access: verified, handle: bookings.Results},
		{method: http.MethodGet, path: "/bookings/:email", access: verified, handle: bookings.BookedTests},
		{method: http.MethodGet, path: "/reservations/:id", access: verified, handle: bookings.Reservations},
		{method: http.MethodDelete, path: "/reservations", access: verified, handle: bookings.Cancel},
		{method: http.MethodPatch, path: "/reservations/:id", access: verified, handle: bookings.Update},
	}
}

// publicSet normalises "METHOD /path" entries into a lookup set.
func publicSet(entries []string) map[string]bool {
	set := make(map[string]bool, len(entries))
	for _, entry := range entries {
		fields := strings.Fields(entry)
		if len(fields) != 2 {
			continue
		}
		set[strings.ToUpper(fields[0])+" "+fields[1]] = true
	}
	return set
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func rateLimiter(rps float64) echo.MiddlewareFunc {
	if rps <= 0 {
		return nil
	}
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStore(rate.Limit(rps)),
		DenyHandler: func(_ echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
