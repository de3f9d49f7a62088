package ports

import "context"

// PaymentIntentRequest is what the payment gateway needs to open an intent.
type PaymentIntentRequest struct {
	Amount         int64 // minor units
	Currency       string
	IdempotencyKey string
}

// PaymentGateway creates payment intents at the external processor.
type PaymentGateway interface {
	// CreatePaymentIntent returns the intent's client secret.
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (string, error)
}
