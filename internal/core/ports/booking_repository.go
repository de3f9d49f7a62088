package ports

import (
	"context"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

// BookingRepository persists reservations.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (string, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	ListByService(ctx context.Context, serviceID string) ([]domain.Booking, error)
	DeleteByServiceAndEmail(ctx context.Context, serviceID, email string) (domain.DeleteResult, error)
	// Merge sets every key of fields on the booking with the given id.
	Merge(ctx context.Context, id string, fields map[string]any) (domain.UpdateResult, error)
}

// IdempotencyStore remembers request keys for a bounded time.
type IdempotencyStore interface {
	// Claim records key under scope and reports whether this call was first.
	Claim(ctx context.Context, scope, key string) (bool, error)
	// Release forgets a claimed key so the request can be retried.
	Release(ctx context.Context, scope, key string) error
}
