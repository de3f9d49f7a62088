package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medlab/diagnostic-booking/internal/api/metrics"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

type PaymentHandler struct {
	service ports.PaymentService
}

func NewPaymentHandler(service ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreateIntent handles POST /payment-intent.
//
// @Summary      Create a card payment intent
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                false  "Forwarded to the payment gateway"
// @Param        body             body      paymentIntentRequest  true   "Price in major units"
// @Success      200              {object}  paymentIntentResponse
// @Failure      400              {object}  messageResponse
// @Failure      429              {object}  messageResponse
// @Failure      500              {object}  messageResponse
// @Router       /payment-intent [post]
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req paymentIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	secret, err := h.service.CreateIntent(c.Request().Context(), req.Price, idempotencyKey(c))
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusOK, paymentIntentResponse{ClientSecret: secret})
}
