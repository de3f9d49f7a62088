package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/api/metrics"
	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

// RequireSelf only lets a request through when the token's email claim
// matches the named path parameter. It must run after Auth.
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, _ := c.Get(EmailKey).(string)
			target := strings.TrimSpace(c.Param(param))
			if email == "" || !strings.EqualFold(strings.TrimSpace(email), target) {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}
