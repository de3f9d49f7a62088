package ports

import (
	"context"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

// CreateBookingInput carries a booking request from the transport layer.
type CreateBookingInput struct {
	ServiceID      string
	ServiceName    string
	Email          string
	Name           string
	Date           string
	Price          float64
	Meta           map[string]any
	IdempotencyKey string
}

// BookingResult pairs the two writes of a booking: the inserted reservation
// and the slot counter update on the referenced test.
type BookingResult struct {
	InsertedID string
	Slots      domain.UpdateResult
}

// CancelResult pairs the reservation delete with the slot counter update.
type CancelResult struct {
	Deleted domain.DeleteResult
	Slots   domain.UpdateResult
}

// BookingService defines the booking workflow.
type BookingService interface {
	Book(ctx context.Context, in CreateBookingInput) (*BookingResult, error)
	Cancel(ctx context.Context, serviceID, email string) (*CancelResult, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	ListByService(ctx context.Context, serviceID string) ([]domain.Booking, error)
	// BookedTests resolves the tests referenced by an email's bookings.
	BookedTests(ctx context.Context, email string) ([]domain.Test, error)
	Update(ctx context.Context, id string, fields map[string]any) (domain.UpdateResult, error)
}
