package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/api/metrics"
	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// Context keys set by Auth.
const (
	ClaimsKey = "claims"
	EmailKey  = "email"
)

// Auth verifies the bearer token before next runs and injects the decoded
// claims into the context. Any failure ends the request with 401.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject("missing_header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return reject("malformed_header")
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return reject("invalid_token")
			}

			c.Set(ClaimsKey, claims)
			c.Set(EmailKey, claims.Email())

			return next(c)
		}
	}
}

func reject(reason string) error {
	metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthorized.Error())
}
