package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/medlab/diagnostic-booking/internal/core/ports"
)

// StripeGateway opens card PaymentIntents through the Stripe API.
type StripeGateway struct {
	sc *client.API
}

// NewStripeGateway builds a gateway for the secret key. backends may be nil
// to use Stripe's default endpoints.
func NewStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{sc: client.New(secretKey, backends)}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req ports.PaymentIntentRequest) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
