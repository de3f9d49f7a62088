package ports

import (
	"context"

	"github.com/medlab/diagnostic-booking/internal/core/domain"
)

// TestRepository persists the test catalog. Ids are hex object ids; a
// malformed id yields domain.ErrInvalidID.
type TestRepository interface {
	List(ctx context.Context) ([]domain.Test, error)
	// FindByID returns domain.ErrTestNotFound when no test matches.
	FindByID(ctx context.Context, id string) (*domain.Test, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Test, error)
	Create(ctx context.Context, test *domain.Test) (string, error)
	Update(ctx context.Context, id string, patch domain.TestPatch) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (domain.DeleteResult, error)

	// AdjustSlots applies $inc {slots: delta, booked: -delta} to one test in a
	// single-document update. When guard is set and delta is negative, the
	// update only matches while slots >= -delta.
	AdjustSlots(ctx context.Context, id string, delta int, guard bool) (domain.UpdateResult, error)
}
