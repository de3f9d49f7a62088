package ports

import "context"

// PaymentService turns a price into a gateway payment intent.
type PaymentService interface {
	// CreateIntent returns the client secret for a price in major currency units.
	CreateIntent(ctx context.Context, price float64, idempotencyKey string) (string, error)
}
