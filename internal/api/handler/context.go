package handler

import "github.com/labstack/echo/v4"

// idempotencyKey reads the optional Idempotency-Key request header.
func idempotencyKey(c echo.Context) string {
	return c.Request().Header.Get("Idempotency-Key")
}
