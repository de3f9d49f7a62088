package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

const DefaultCurrency = "usd"

// PaymentService converts a price to minor units and opens a card payment
// intent at the gateway. It never sees card data.
type PaymentService struct {
	gateway  ports.PaymentGateway
	currency string
	logger   zerolog.Logger
}

func NewPaymentService(gateway ports.PaymentGateway, currency string, logger zerolog.Logger) *PaymentService {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	return &PaymentService{gateway: gateway, currency: currency, logger: logger}
}

func (s *PaymentService) CreateIntent(ctx context.Context, price float64, idempotencyKey string) (string, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return "", domain.ErrInvalidInput
	}
	amount := ToMinorUnits(price)
	if amount <= 0 {
		return "", domain.ErrInvalidInput
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, ports.PaymentIntentRequest{
		Amount:         amount,
		Currency:       s.currency,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("amount", amount).Str("currency", s.currency).Msg("payment intent failed")
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	s.logger.Info().Int64("amount", amount).Str("currency", s.currency).Msg("payment intent created")
	return secret, nil
}

// ToMinorUnits rounds a major-unit price to the nearest minor unit (cents).
func ToMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
