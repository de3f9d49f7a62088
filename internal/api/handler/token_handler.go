package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// TokenHandler signs bearer tokens. Claims are taken from the request body
// as-is; nothing ties them to a registered identity.
type TokenHandler struct {
	issuer ports.TokenIssuer
}

func NewTokenHandler(issuer ports.TokenIssuer) *TokenHandler {
	return &TokenHandler{issuer: issuer}
}

// Issue handles POST /jwt.
//
// @Summary      Issue a bearer token
// @Description  Signs the posted JSON object as token claims. Expires after the configured TTL (72h by default).
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Claims, usually {\"email\": \"...\"}"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Router       /jwt [post]
func (h *TokenHandler) Issue(c echo.Context) error {
	var claims domain.Claims
	if err := json.NewDecoder(c.Request().Body).Decode(&claims); err != nil || claims == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}

	token, err := h.issuer.Issue(claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}
